// Package cart implements the pre-checkout shopping cart as pure reducer
// functions over models.Cart, plus a Manager that persists every change.
package cart

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/models"
	"go-storefront/pricing"
)

const DefaultPaymentMethod = "PayPal"

// New returns the default empty cart.
func New() models.Cart {
	return models.Cart{
		Items:         []models.LineItem{},
		PaymentMethod: DefaultPaymentMethod,
	}
}

func reprice(c models.Cart) models.Cart {
	pricing.Apply(&c, pricing.Calculate(c.Items))
	return c
}

// AddItem puts item into the cart with quantity qty. An existing line for the
// same product is replaced, not accumulated.
func AddItem(c models.Cart, item models.LineItem, qty int) models.Cart {
	item.Qty = qty
	items := make([]models.LineItem, 0, len(c.Items)+1)
	replaced := false
	for _, existing := range c.Items {
		if existing.ProductID == item.ProductID {
			items = append(items, item)
			replaced = true
			continue
		}
		items = append(items, existing)
	}
	if !replaced {
		items = append(items, item)
	}
	c.Items = items
	return reprice(c)
}

// RemoveItem drops the line for productID, if any.
func RemoveItem(c models.Cart, productID primitive.ObjectID) models.Cart {
	items := make([]models.LineItem, 0, len(c.Items))
	for _, existing := range c.Items {
		if existing.ProductID != productID {
			items = append(items, existing)
		}
	}
	c.Items = items
	return reprice(c)
}

func SetShippingAddress(c models.Cart, addr models.Address) models.Cart {
	c.ShippingAddress = addr
	return c
}

func SetPaymentMethod(c models.Cart, method string) models.Cart {
	c.PaymentMethod = method
	return c
}

// Clear empties the items and resets address and payment method.
func Clear(c models.Cart) models.Cart {
	c.Items = []models.LineItem{}
	c.ShippingAddress = models.Address{}
	c.PaymentMethod = DefaultPaymentMethod
	return reprice(c)
}

// Reset discards everything, including prices, and returns the default cart.
func Reset(models.Cart) models.Cart {
	return New()
}
