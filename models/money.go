package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Amounts are rendered as JSON strings with exactly two decimal places.
// decimal.Decimal accepts that form when decoding, so stored carts still
// round-trip.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func (li LineItem) MarshalJSON() ([]byte, error) {
	type plain LineItem
	return json.Marshal(struct {
		plain
		Price string `json:"price"`
	}{plain(li), money(li.Price)})
}

func (c Cart) MarshalJSON() ([]byte, error) {
	type plain Cart
	return json.Marshal(struct {
		plain
		ItemsPrice    string `json:"items_price"`
		ShippingPrice string `json:"shipping_price"`
		TaxPrice      string `json:"tax_price"`
		TotalPrice    string `json:"total_price"`
	}{plain(c), money(c.ItemsPrice), money(c.ShippingPrice), money(c.TaxPrice), money(c.TotalPrice)})
}

func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	return json.Marshal(struct {
		plain
		ItemsPrice    string `json:"items_price"`
		ShippingPrice string `json:"shipping_price"`
		TaxPrice      string `json:"tax_price"`
		TotalPrice    string `json:"total_price"`
	}{plain(o), money(o.ItemsPrice), money(o.ShippingPrice), money(o.TaxPrice), money(o.TotalPrice)})
}

func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		Price string `json:"price"`
	}{plain(p), money(p.Price)})
}
