package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/models"
	"go-storefront/services"
	"go-storefront/utils"
)

type ProductService interface {
	List(ctx context.Context, keyword string, page int) (*services.ProductPage, error)
	Top(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	CreateSample(ctx context.Context, ownerID primitive.ObjectID) (*models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, in services.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddReview(ctx context.Context, productID primitive.ObjectID, reviewer models.User, rating int, comment string) (*models.Product, error)
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

// ProductController handles product-related requests
type ProductController struct {
	products ProductService
	validate *validator.Validate
}

func NewProductController(products ProductService) *ProductController {
	return &ProductController{products: products, validate: validator.New()}
}

// GetProducts lists products, filtered by ?keyword= and paged by ?pageNumber=
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := strconv.Atoi(query.Get("pageNumber"))
	if err != nil || page < 1 {
		page = 1
	}

	result, err := pc.products.List(r.Context(), query.Get("keyword"), page)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Error fetching products")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, result)
}

// GetTopProducts returns the best rated products
func (pc *ProductController) GetTopProducts(w http.ResponseWriter, r *http.Request) {
	products, err := pc.products.Top(r.Context())
	if err != nil {
		utils.RespondWithServiceError(w, err, "Error fetching products")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, products)
}

// GetProductByID retrieves a single product by ID
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	product, err := pc.products.Get(r.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Error fetching product")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, product)
}

// CreateProduct adds a sample product for an admin to edit
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	product, err := pc.products.CreateSample(r.Context(), userID)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Error creating product")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles updating a product (Admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req services.ProductUpdate
	if !decodeAndValidate(w, r, pc.validate, &req) {
		return
	}

	product, err := pc.products.Update(r.Context(), id, req)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Error updating product")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct handles deleting a product (Admin only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := pc.products.Delete(r.Context(), id); err != nil {
		utils.RespondWithServiceError(w, err, "Error deleting product")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Product removed"})
}

// CreateProductReview adds the caller's review to a product
func (pc *ProductController) CreateProductReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	claims, userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req ReviewRequest
	if !decodeAndValidate(w, r, pc.validate, &req) {
		return
	}

	reviewer := models.User{ID: userID, Name: claims.Name}
	if _, err := pc.products.AddReview(r.Context(), id, reviewer, req.Rating, req.Comment); err != nil {
		utils.RespondWithServiceError(w, err, "Error adding review")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "Review added"})
}
