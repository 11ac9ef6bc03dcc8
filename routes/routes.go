package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"go-storefront/controllers"
	"go-storefront/middleware"
)

// Controllers groups the handlers mounted under /api.
type Controllers struct {
	Users    *controllers.UserController
	Products *controllers.ProductController
	Carts    *controllers.CartController
	Orders   *controllers.OrderController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, auth *middleware.Auth, c Controllers) {
	router.Use(middleware.RequestLogger)
	api := router.PathPrefix("/api").Subrouter()

	protect := func(h http.HandlerFunc) http.Handler {
		return auth.Required(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return auth.Required(middleware.AdminOnly(h))
	}
	withID := middleware.CheckObjectID

	// Users
	api.HandleFunc("/users", c.Users.Register).Methods(http.MethodPost)
	api.HandleFunc("/users/auth", c.Users.Login).Methods(http.MethodPost)
	api.Handle("/users/logout", protect(c.Users.Logout)).Methods(http.MethodPost)
	api.Handle("/users/profile", protect(c.Users.GetProfile)).Methods(http.MethodGet)
	api.Handle("/users/profile", protect(c.Users.UpdateProfile)).Methods(http.MethodPut)
	api.Handle("/users", admin(c.Users.GetUsers)).Methods(http.MethodGet)
	api.Handle("/users/{id}", withID(admin(c.Users.GetUserByID))).Methods(http.MethodGet)
	api.Handle("/users/{id}", withID(admin(c.Users.UpdateUser))).Methods(http.MethodPut)
	api.Handle("/users/{id}", withID(admin(c.Users.DeleteUser))).Methods(http.MethodDelete)

	// Products
	api.HandleFunc("/products", c.Products.GetProducts).Methods(http.MethodGet)
	api.Handle("/products", admin(c.Products.CreateProduct)).Methods(http.MethodPost)
	api.HandleFunc("/products/top", c.Products.GetTopProducts).Methods(http.MethodGet)
	api.Handle("/products/{id}", withID(http.HandlerFunc(c.Products.GetProductByID))).Methods(http.MethodGet)
	api.Handle("/products/{id}", withID(admin(c.Products.UpdateProduct))).Methods(http.MethodPut)
	api.Handle("/products/{id}", withID(admin(c.Products.DeleteProduct))).Methods(http.MethodDelete)
	api.Handle("/products/{id}/reviews", withID(protect(c.Products.CreateProductReview))).Methods(http.MethodPost)

	// Cart
	api.Handle("/cart", protect(c.Carts.GetCart)).Methods(http.MethodGet)
	api.Handle("/cart", protect(c.Carts.ClearCart)).Methods(http.MethodDelete)
	api.Handle("/cart/items", protect(c.Carts.AddToCart)).Methods(http.MethodPost)
	api.Handle("/cart/items/{id}", withID(protect(c.Carts.RemoveFromCart))).Methods(http.MethodDelete)
	api.Handle("/cart/shipping", protect(c.Carts.SaveShippingAddress)).Methods(http.MethodPut)
	api.Handle("/cart/payment", protect(c.Carts.SavePaymentMethod)).Methods(http.MethodPut)

	// Orders
	api.Handle("/orders", protect(c.Orders.CreateOrder)).Methods(http.MethodPost)
	api.Handle("/orders", admin(c.Orders.GetOrders)).Methods(http.MethodGet)
	api.Handle("/orders/mine", protect(c.Orders.GetMyOrders)).Methods(http.MethodGet)
	api.Handle("/orders/{id}", withID(protect(c.Orders.GetOrderByID))).Methods(http.MethodGet)
	api.Handle("/orders/{id}/pay", withID(protect(c.Orders.UpdateOrderToPaid))).Methods(http.MethodPut)
	api.Handle("/orders/{id}/charge", withID(protect(c.Orders.ChargeOrder))).Methods(http.MethodPost)
	api.Handle("/orders/{id}/deliver", withID(admin(c.Orders.UpdateOrderToDelivered))).Methods(http.MethodPut)
}
