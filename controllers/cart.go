package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/cart"
	"go-storefront/models"
	"go-storefront/storage"
	"go-storefront/utils"
)

// ProductLookup finds a catalog product by id.
type ProductLookup interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Qty       int    `json:"qty" validate:"required,min=1"`
}

type PaymentMethodRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
}

// CartController serves the caller's session cart
type CartController struct {
	store    storage.KV
	products ProductLookup
	validate *validator.Validate
}

func NewCartController(store storage.KV, products ProductLookup) *CartController {
	return &CartController{store: store, products: products, validate: validator.New()}
}

func (cc *CartController) load(w http.ResponseWriter, r *http.Request) (*cart.Manager, bool) {
	claims, _, ok := currentUser(w, r)
	if !ok {
		return nil, false
	}
	return cart.Load(r.Context(), cc.store, cart.KeyFor(claims.UserID)), true
}

// GetCart retrieves the user's cart
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	m, ok := cc.load(w, r)
	if !ok {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, m.Cart())
}

// AddToCart sets the quantity of a product in the cart
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	m, ok := cc.load(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if !decodeAndValidate(w, r, cc.validate, &req) {
		return
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Invalid ObjectId of: "+req.ProductID)
		return
	}

	product, err := cc.products.Get(r.Context(), productID)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Error fetching product")
		return
	}
	if req.Qty > product.CountInStock {
		utils.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("Only %d of %s in stock", product.CountInStock, product.Name))
		return
	}

	item := models.LineItem{
		ProductID: product.ID,
		Name:      product.Name,
		Image:     product.Image,
		Price:     product.Price,
	}
	utils.RespondWithJSON(w, http.StatusOK, m.AddItem(r.Context(), item, req.Qty))
}

// RemoveFromCart removes a product from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r)
	if !ok {
		return
	}
	m, ok := cc.load(w, r)
	if !ok {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, m.RemoveItem(r.Context(), productID))
}

// SaveShippingAddress stores the checkout address
func (cc *CartController) SaveShippingAddress(w http.ResponseWriter, r *http.Request) {
	m, ok := cc.load(w, r)
	if !ok {
		return
	}

	var addr models.Address
	if !decodeAndValidate(w, r, cc.validate, &addr) {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, m.SetShippingAddress(r.Context(), addr))
}

// SavePaymentMethod stores the checkout payment method
func (cc *CartController) SavePaymentMethod(w http.ResponseWriter, r *http.Request) {
	m, ok := cc.load(w, r)
	if !ok {
		return
	}

	var req PaymentMethodRequest
	if !decodeAndValidate(w, r, cc.validate, &req) {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, m.SetPaymentMethod(r.Context(), req.PaymentMethod))
}

// ClearCart empties the cart and forgets the checkout details
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	m, ok := cc.load(w, r)
	if !ok {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, m.Clear(r.Context()))
}
