package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/models"
	"go-storefront/payment"
	"go-storefront/pricing"
)

// OrderStore is the document store for orders.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, order *models.Order) error
}

// ProductFinder looks up catalog entries by id.
type ProductFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

type OrderService struct {
	orders   OrderStore
	products ProductFinder
	gateway  payment.Gateway
	now      func() time.Time
}

func NewOrderService(orders OrderStore, products ProductFinder, gateway payment.Gateway) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		gateway:  gateway,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrder snapshots a cart into a new order owned by ownerID. Each product
// may appear once, with a quantity no larger than its stock. Unit prices come
// from the catalog and totals are recomputed; a cart that carries totals which
// disagree with the recomputation is rejected.
func (s *OrderService) PlaceOrder(ctx context.Context, ownerID primitive.ObjectID, c models.Cart) (*models.Order, error) {
	if len(c.Items) == 0 {
		return nil, models.ValidationError("no order items")
	}
	if !c.ShippingAddress.IsComplete() {
		return nil, models.ValidationError("shipping address is required")
	}
	if c.PaymentMethod == "" {
		return nil, models.ValidationError("payment method is required")
	}

	items := make([]models.LineItem, 0, len(c.Items))
	seen := make(map[primitive.ObjectID]struct{}, len(c.Items))
	for _, item := range c.Items {
		if item.Qty < 1 {
			return nil, models.ValidationError("quantity for %s must be at least 1", item.Name)
		}
		if _, dup := seen[item.ProductID]; dup {
			return nil, models.ValidationError("product %s appears more than once", item.ProductID.Hex())
		}
		seen[item.ProductID] = struct{}{}
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, models.NotFoundError("product %s not found", item.ProductID.Hex())
			}
			return nil, fmt.Errorf("service: failed to load product: %w", err)
		}
		if item.Qty > product.CountInStock {
			return nil, models.ValidationError("only %d of %s in stock", product.CountInStock, product.Name)
		}
		item.Name = product.Name
		item.Image = product.Image
		item.Price = product.Price
		items = append(items, item)
	}

	totals := pricing.Calculate(items)
	claimed := pricing.FromCart(c)
	if !claimed.TotalPrice.IsZero() && !claimed.Equal(totals) {
		log.Warn().
			Str("user_id", ownerID.Hex()).
			Str("claimed_total", claimed.TotalPrice.StringFixed(2)).
			Str("total", totals.TotalPrice.StringFixed(2)).
			Msg("service: rejected order with mismatched totals")
		return nil, models.ValidationError("order totals do not match item prices")
	}

	now := s.now()
	order := &models.Order{
		UserID:          ownerID,
		OrderItems:      items,
		ShippingAddress: c.ShippingAddress,
		PaymentMethod:   c.PaymentMethod,
		ItemsPrice:      totals.ItemsPrice,
		ShippingPrice:   totals.ShippingPrice,
		TaxPrice:        totals.TaxPrice,
		TotalPrice:      totals.TotalPrice,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		log.Error().Err(err).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Str("order_id", order.ID.Hex()).Str("user_id", ownerID.Hex()).Str("total", order.TotalPrice.StringFixed(2)).Msg("service: order created")
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return s.orders.FindByID(ctx, id)
}

func (s *OrderService) MyOrders(ctx context.Context, ownerID primitive.ObjectID) ([]models.Order, error) {
	return s.orders.FindByUser(ctx, ownerID)
}

func (s *OrderService) AllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.FindAll(ctx)
}

// MarkPaid attaches a payment receipt. Paying an order twice overwrites the
// earlier receipt.
func (s *OrderService) MarkPaid(ctx context.Context, id primitive.ObjectID, result models.PaymentResult) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.IsPaid {
		log.Warn().Str("order_id", id.Hex()).Msg("service: order already paid, overwriting payment result")
	}

	order.MarkPaid(result, s.now())
	if err := s.orders.UpdateStatus(ctx, order); err != nil {
		return nil, fmt.Errorf("service: failed to mark order paid: %w", err)
	}

	log.Info().Str("order_id", id.Hex()).Str("payment_id", result.ID).Msg("service: order paid")
	return order, nil
}

// Charge collects the order total through the payment gateway and records
// the receipt.
func (s *OrderService) Charge(ctx context.Context, id primitive.ObjectID, payerEmail string) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.IsPaid {
		return nil, models.PreconditionError("order is already paid")
	}

	result, err := s.gateway.Charge(ctx, payment.ChargeRequest{
		OrderID:    id.Hex(),
		Amount:     order.TotalPrice,
		PayerEmail: payerEmail,
	})
	if err != nil {
		if errors.Is(err, payment.ErrDeclined) {
			log.Warn().Err(err).Str("order_id", id.Hex()).Msg("service: payment declined")
			return nil, models.ValidationError("%s", err.Error())
		}
		log.Error().Err(err).Str("order_id", id.Hex()).Msg("service: payment gateway failed")
		return nil, fmt.Errorf("service: failed to charge order: %w", err)
	}

	return s.MarkPaid(ctx, id, result)
}

// MarkDelivered records delivery of a paid order.
func (s *OrderService) MarkDelivered(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := order.MarkDelivered(s.now()); err != nil {
		log.Warn().Str("order_id", id.Hex()).Str("status", order.Status().String()).Msg("service: cannot deliver unpaid order")
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, order); err != nil {
		return nil, fmt.Errorf("service: failed to mark order delivered: %w", err)
	}

	log.Info().Str("order_id", id.Hex()).Msg("service: order delivered")
	return order, nil
}
