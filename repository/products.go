package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/models"
)

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{collection: collection(db, "products")}
}

func keywordFilter(keyword string) bson.M {
	if keyword == "" {
		return bson.M{}
	}
	return bson.M{"name": bson.M{"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}}}
}

// Find returns one page of products whose name matches keyword, and the
// total number of matches.
func (r *ProductRepository) Find(ctx context.Context, keyword string, skip, limit int64) ([]models.Product, int64, error) {
	filter := keywordFilter(keyword)

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	opts := options.Find().SetSkip(skip).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("failed to decode products: %w", err)
	}
	recomputeRatings(products)
	return products, count, nil
}

func (r *ProductRepository) FindTop(ctx context.Context, limit int64) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rating", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find top products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	recomputeRatings(products)
	return products, nil
}

func recomputeRatings(products []models.Product) {
	for i := range products {
		products[i].RecomputeRating()
	}
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NotFoundError("product not found")
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	product.RecomputeRating()
	return &product, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Reviews == nil {
		product.Reviews = []models.Review{}
	}

	result, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		product.ID = id
	}
	return nil
}

// Update replaces the editable catalog fields. Reviews and the derived
// rating are left alone.
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":           product.Name,
			"price":          product.Price,
			"description":    product.Description,
			"image":          product.Image,
			"brand":          product.Brand,
			"category":       product.Category,
			"count_in_stock": product.CountInStock,
			"updated_at":     product.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": product.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.NotFoundError("product not found")
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.NotFoundError("product not found")
	}
	return nil
}

// AddReview appends a review and recomputes num_reviews and rating in one
// conditional write. The filter only matches a product this user has not
// reviewed, so concurrent duplicates cannot both land. The pipeline stores
// the same aggregate models.Product.RecomputeRating derives.
func (r *ProductRepository) AddReview(ctx context.Context, productID primitive.ObjectID, review models.Review) (*models.Product, error) {
	filter := bson.M{
		"_id":          productID,
		"reviews.user": bson.M{"$ne": review.UserID},
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"reviews": bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$reviews", bson.A{}}},
				bson.A{bson.M{"$literal": review}},
			}},
		}}},
		{{Key: "$set", Value: bson.M{
			"num_reviews": bson.M{"$size": "$reviews"},
			"rating":      bson.M{"$avg": "$reviews.rating"},
			"updated_at":  time.Now().UTC(),
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product models.Product
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&product)
	if err == nil {
		product.RecomputeRating()
		return &product, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to add review: %w", err)
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": productID})
	if err != nil {
		return nil, fmt.Errorf("failed to check product: %w", err)
	}
	if count == 0 {
		return nil, models.NotFoundError("product not found")
	}
	return nil, models.ValidationError("product already reviewed")
}

func (r *ProductRepository) CreateIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "rating", Value: -1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}
	return nil
}
