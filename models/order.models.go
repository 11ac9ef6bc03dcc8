package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is derived from the paid and delivered flags.
type OrderStatus string

const (
	StatusCreated   OrderStatus = "Created"
	StatusPaid      OrderStatus = "Paid"
	StatusDelivered OrderStatus = "Delivered"
)

func (s OrderStatus) String() string {
	return string(s)
}

// Order is an immutable snapshot of a cart at placement time. Only the
// payment and delivery fields change afterwards, and only forwards.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID          primitive.ObjectID `bson:"user_id" json:"user_id"`
	OrderItems      []LineItem         `bson:"order_items" json:"order_items"`
	ShippingAddress Address            `bson:"shipping_address" json:"shipping_address"`
	PaymentMethod   string             `bson:"payment_method" json:"payment_method"`
	PaymentResult   *PaymentResult     `bson:"payment_result,omitempty" json:"payment_result,omitempty"`
	ItemsPrice      decimal.Decimal    `bson:"items_price" json:"items_price"`
	ShippingPrice   decimal.Decimal    `bson:"shipping_price" json:"shipping_price"`
	TaxPrice        decimal.Decimal    `bson:"tax_price" json:"tax_price"`
	TotalPrice      decimal.Decimal    `bson:"total_price" json:"total_price"`
	IsPaid          bool               `bson:"is_paid" json:"is_paid"`
	PaidAt          *time.Time         `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
	IsDelivered     bool               `bson:"is_delivered" json:"is_delivered"`
	DeliveredAt     *time.Time         `bson:"delivered_at,omitempty" json:"delivered_at,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// Status reports the lifecycle state of the order.
func (o *Order) Status() OrderStatus {
	switch {
	case o.IsDelivered:
		return StatusDelivered
	case o.IsPaid:
		return StatusPaid
	default:
		return StatusCreated
	}
}

// MarkPaid records a payment receipt. A repeated call overwrites the
// previous receipt and timestamp.
func (o *Order) MarkPaid(result PaymentResult, now time.Time) {
	o.IsPaid = true
	o.PaidAt = &now
	o.PaymentResult = &result
	o.UpdatedAt = now
}

// MarkDelivered records delivery. The order must already be paid.
func (o *Order) MarkDelivered(now time.Time) error {
	if !o.IsPaid {
		return PreconditionError("order %s is not paid", o.ID.Hex())
	}
	o.IsDelivered = true
	o.DeliveredAt = &now
	o.UpdatedAt = now
	return nil
}
