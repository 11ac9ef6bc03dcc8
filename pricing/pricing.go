// Package pricing turns line items into itemized cart totals.
package pricing

import (
	"github.com/shopspring/decimal"

	"go-storefront/models"
)

var (
	// FreeShippingThreshold is exclusive: an items total of exactly 100.00 still ships at the flat rate.
	FreeShippingThreshold = decimal.NewFromInt(100)
	FlatShipping          = decimal.NewFromInt(10)
	TaxRate               = decimal.RequireFromString("0.15")
)

// Breakdown holds the four derived price fields.
type Breakdown struct {
	ItemsPrice    decimal.Decimal `json:"items_price"`
	ShippingPrice decimal.Decimal `json:"shipping_price"`
	TaxPrice      decimal.Decimal `json:"tax_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// Equal reports whether both breakdowns carry the same amounts.
func (b Breakdown) Equal(o Breakdown) bool {
	return b.ItemsPrice.Equal(o.ItemsPrice) &&
		b.ShippingPrice.Equal(o.ShippingPrice) &&
		b.TaxPrice.Equal(o.TaxPrice) &&
		b.TotalPrice.Equal(o.TotalPrice)
}

// Round rounds to cents, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Calculate prices a list of line items. Tax is taken from the rounded
// items total, and the grand total is the sum of the rounded components.
func Calculate(items []models.LineItem) Breakdown {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	itemsPrice := Round(sum)

	shippingPrice := FlatShipping
	if itemsPrice.GreaterThan(FreeShippingThreshold) {
		shippingPrice = decimal.Zero
	}
	shippingPrice = Round(shippingPrice)

	taxPrice := Round(itemsPrice.Mul(TaxRate))

	return Breakdown{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shippingPrice,
		TaxPrice:      taxPrice,
		TotalPrice:    Round(itemsPrice.Add(shippingPrice).Add(taxPrice)),
	}
}

// Apply copies a breakdown onto the cart's derived fields.
func Apply(c *models.Cart, b Breakdown) {
	c.ItemsPrice = b.ItemsPrice
	c.ShippingPrice = b.ShippingPrice
	c.TaxPrice = b.TaxPrice
	c.TotalPrice = b.TotalPrice
}

// FromCart reads the derived fields a cart currently carries.
func FromCart(c models.Cart) Breakdown {
	return Breakdown{
		ItemsPrice:    c.ItemsPrice,
		ShippingPrice: c.ShippingPrice,
		TaxPrice:      c.TaxPrice,
		TotalPrice:    c.TotalPrice,
	}
}
