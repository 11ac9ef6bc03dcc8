package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/models"
)

// ProductStore is the document store for the catalog.
type ProductStore interface {
	ProductFinder
	Find(ctx context.Context, keyword string, skip, limit int64) ([]models.Product, int64, error)
	FindTop(ctx context.Context, limit int64) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// AddReview must append the review and recompute the rating in a single
	// write that fails when the user already reviewed the product.
	AddReview(ctx context.Context, productID primitive.ObjectID, review models.Review) (*models.Product, error)
}

const topProductsLimit = 3

type ProductPage struct {
	Products []models.Product `json:"products"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
}

// ProductUpdate carries the admin-editable fields of a product.
type ProductUpdate struct {
	Name         string          `json:"name" validate:"required"`
	Price        decimal.Decimal `json:"price"`
	Description  string          `json:"description"`
	Image        string          `json:"image"`
	Brand        string          `json:"brand"`
	Category     string          `json:"category"`
	CountInStock int             `json:"count_in_stock" validate:"gte=0"`
}

type ProductService struct {
	products ProductStore
	pageSize int
	now      func() time.Time
}

func NewProductService(products ProductStore, pageSize int) *ProductService {
	if pageSize < 1 {
		pageSize = 8
	}
	return &ProductService{
		products: products,
		pageSize: pageSize,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// List returns page number page (1-based) of products matching keyword.
func (s *ProductService) List(ctx context.Context, keyword string, page int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	skip := int64(s.pageSize) * int64(page-1)

	products, count, err := s.products.Find(ctx, keyword, skip, int64(s.pageSize))
	if err != nil {
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}

	return &ProductPage{
		Products: products,
		Page:     page,
		Pages:    int(math.Ceil(float64(count) / float64(s.pageSize))),
	}, nil
}

func (s *ProductService) Top(ctx context.Context) ([]models.Product, error) {
	return s.products.FindTop(ctx, topProductsLimit)
}

func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return s.products.FindByID(ctx, id)
}

// CreateSample adds a placeholder product for an admin to edit.
func (s *ProductService) CreateSample(ctx context.Context, ownerID primitive.ObjectID) (*models.Product, error) {
	product := &models.Product{
		UserID:      ownerID,
		Name:        "Sample name",
		Price:       decimal.Zero,
		Image:       "/images/sample.jpg",
		Brand:       "Sample brand",
		Category:    "Sample category",
		Description: "Sample description",
		Reviews:     []models.Review{},
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}
	log.Info().Str("product_id", product.ID.Hex()).Msg("service: product created")
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, id primitive.ObjectID, in ProductUpdate) (*models.Product, error) {
	if in.Price.IsNegative() {
		return nil, models.ValidationError("price cannot be negative")
	}
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = in.Name
	product.Price = in.Price.Round(2)
	product.Description = in.Description
	product.Image = in.Image
	product.Brand = in.Brand
	product.Category = in.Category
	product.CountInStock = in.CountInStock

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("product_id", id.Hex()).Msg("service: product removed")
	return nil
}

// AddReview records reviewer's rating of a product and returns the product
// with its recomputed rating. A user may review a product once.
func (s *ProductService) AddReview(ctx context.Context, productID primitive.ObjectID, reviewer models.User, rating int, comment string) (*models.Product, error) {
	if rating < 1 || rating > 5 {
		return nil, models.ValidationError("rating must be between 1 and 5")
	}

	review := models.Review{
		UserID:    reviewer.ID,
		Name:      reviewer.Name,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: s.now(),
	}

	product, err := s.products.AddReview(ctx, productID, review)
	if err != nil {
		log.Warn().Err(err).Str("product_id", productID.Hex()).Str("user_id", reviewer.ID.Hex()).Msg("service: review rejected")
		return nil, err
	}

	log.Info().Str("product_id", productID.Hex()).Int("num_reviews", product.NumReviews).Float64("rating", product.Rating).Msg("service: review added")
	return product, nil
}
