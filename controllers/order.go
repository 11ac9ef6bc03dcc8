package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/cart"
	"go-storefront/models"
	"go-storefront/storage"
	"go-storefront/utils"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, ownerID primitive.ObjectID, c models.Cart) (*models.Order, error)
	GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	MyOrders(ctx context.Context, ownerID primitive.ObjectID) ([]models.Order, error)
	AllOrders(ctx context.Context) ([]models.Order, error)
	MarkPaid(ctx context.Context, id primitive.ObjectID, result models.PaymentResult) (*models.Order, error)
	Charge(ctx context.Context, id primitive.ObjectID, payerEmail string) (*models.Order, error)
	MarkDelivered(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
}

// UserLookup resolves the recipient of order notifications.
type UserLookup interface {
	Profile(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type PaymentResultRequest struct {
	ID           string `json:"id" validate:"required"`
	Status       string `json:"status" validate:"required"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address" validate:"omitempty,email"`
}

type ChargeRequest struct {
	EmailAddress string `json:"email_address" validate:"omitempty,email"`
}

type emailBuilder func(models.User, models.Order) (string, string)

const notifyTimeout = 10 * time.Second

// OrderController handles order-related requests
type OrderController struct {
	orders   OrderService
	users    UserLookup
	carts    storage.KV
	mailer   utils.Mailer
	validate *validator.Validate
}

func NewOrderController(orders OrderService, users UserLookup, carts storage.KV, mailer utils.Mailer) *OrderController {
	return &OrderController{
		orders:   orders,
		users:    users,
		carts:    carts,
		mailer:   mailer,
		validate: validator.New(),
	}
}

// notify emails the order owner in the background. Failures are logged.
func (oc *OrderController) notify(order models.Order, build emailBuilder) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		user, err := oc.users.Profile(ctx, order.UserID)
		if err != nil {
			log.Warn().Err(err).Str("order_id", order.ID.Hex()).Msg("failed to load order owner for notification")
			return
		}
		subject, content := build(*user, order)
		if err := oc.mailer.SendEmail(ctx, user.Email, subject, content); err != nil {
			log.Error().Err(err).Str("to", user.Email).Str("order_id", order.ID.Hex()).Msg("failed to send email")
		}
	}()
}

// authorizedOrder loads the {id} order when the caller owns it or is an admin
func (oc *OrderController) authorizedOrder(w http.ResponseWriter, r *http.Request) (*models.Order, *utils.Claims, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, nil, false
	}
	claims, userID, ok := currentUser(w, r)
	if !ok {
		return nil, nil, false
	}

	order, err := oc.orders.GetOrder(r.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to retrieve order")
		return nil, nil, false
	}
	if order.UserID != userID && !claims.IsAdmin {
		utils.RespondWithError(w, http.StatusForbidden, "Not authorized to access this order")
		return nil, nil, false
	}
	return order, claims, true
}

// CreateOrder places an order from the posted cart and clears the session cart
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var c models.Cart
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := oc.orders.PlaceOrder(r.Context(), userID, c)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to create order")
		return
	}

	cart.Load(r.Context(), oc.carts, cart.KeyFor(claims.UserID)).Clear(r.Context())
	oc.notify(*order, utils.OrderPlacedEmail)

	utils.RespondWithJSON(w, http.StatusCreated, order)
}

// GetMyOrders retrieves all orders for the authenticated user
func (oc *OrderController) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	orders, err := oc.orders.MyOrders(r.Context(), userID)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to retrieve orders")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, orders)
}

// GetOrders retrieves every order (Admin only)
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := oc.orders.AllOrders(r.Context())
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to retrieve orders")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, orders)
}

// GetOrderByID returns one order to its owner or an admin
func (oc *OrderController) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	order, _, ok := oc.authorizedOrder(w, r)
	if !ok {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, order)
}

// UpdateOrderToPaid records a receipt issued by an external payment provider
func (oc *OrderController) UpdateOrderToPaid(w http.ResponseWriter, r *http.Request) {
	order, _, ok := oc.authorizedOrder(w, r)
	if !ok {
		return
	}

	var req PaymentResultRequest
	if !decodeAndValidate(w, r, oc.validate, &req) {
		return
	}

	paid, err := oc.orders.MarkPaid(r.Context(), order.ID, models.PaymentResult(req))
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to update payment status")
		return
	}

	oc.notify(*paid, utils.OrderPaidEmail)
	utils.RespondWithJSON(w, http.StatusOK, paid)
}

// ChargeOrder collects payment through the gateway
func (oc *OrderController) ChargeOrder(w http.ResponseWriter, r *http.Request) {
	order, claims, ok := oc.authorizedOrder(w, r)
	if !ok {
		return
	}

	var req ChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := oc.validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid email address")
		return
	}
	payer := req.EmailAddress
	if payer == "" {
		payer = claims.Email
	}

	paid, err := oc.orders.Charge(r.Context(), order.ID, payer)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to charge order")
		return
	}

	oc.notify(*paid, utils.OrderPaidEmail)
	utils.RespondWithJSON(w, http.StatusOK, paid)
}

// UpdateOrderToDelivered marks a paid order delivered (Admin only)
func (oc *OrderController) UpdateOrderToDelivered(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	delivered, err := oc.orders.MarkDelivered(r.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to update delivery status")
		return
	}

	oc.notify(*delivered, utils.OrderDeliveredEmail)
	utils.RespondWithJSON(w, http.StatusOK, delivered)
}
