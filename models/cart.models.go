package models

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineItem is one product and quantity within a cart or an order.
type LineItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image" json:"image"`
	Price     decimal.Decimal    `bson:"price" json:"price"`
	Qty       int                `bson:"qty" json:"qty"`
}

// Cart is the pre-checkout collection of line items owned by one session.
// The four price fields are derived and recomputed after every item mutation.
type Cart struct {
	Items           []LineItem      `json:"cart_items"`
	ShippingAddress Address         `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	ItemsPrice      decimal.Decimal `json:"items_price"`
	ShippingPrice   decimal.Decimal `json:"shipping_price"`
	TaxPrice        decimal.Decimal `json:"tax_price"`
	TotalPrice      decimal.Decimal `json:"total_price"`
}
