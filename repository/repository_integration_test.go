package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"go-storefront/models"
)

func setupTestDB(t *testing.T) *mongo.Database {
	if testing.Short() {
		t.Skip("skipping MongoDB integration test in short mode")
	}
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := ConnectDB(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	db := client.Database("testdb")
	require.NoError(t, EnsureIndexes(ctx, db))
	return db
}

func TestRepositories(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	products := NewProductRepository(db)
	orders := NewOrderRepository(db)
	users := NewUserRepository(db)

	t.Run("product round trip keeps decimal price", func(t *testing.T) {
		p := &models.Product{Name: "Airpods", Price: decimal.RequireFromString("89.99"), CountInStock: 10}
		require.NoError(t, products.Create(ctx, p))
		require.False(t, p.ID.IsZero())

		got, err := products.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("89.99").Equal(got.Price))
	})

	t.Run("product not found", func(t *testing.T) {
		_, err := products.FindByID(ctx, primitive.NewObjectID())
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})

	t.Run("keyword search and pagination", func(t *testing.T) {
		for _, name := range []string{"Cannon EOS 80D", "Sony Playstation", "Logitech Mouse (G502)"} {
			require.NoError(t, products.Create(ctx, &models.Product{Name: name, Price: decimal.NewFromInt(10)}))
		}

		found, count, err := products.Find(ctx, "playstation", 0, 8)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
		require.Len(t, found, 1)
		assert.Equal(t, "Sony Playstation", found[0].Name)

		found, _, err = products.Find(ctx, "(G502)", 0, 8)
		require.NoError(t, err)
		assert.Len(t, found, 1)

		page, count, err := products.Find(ctx, "", 2, 2)
		require.NoError(t, err)
		assert.EqualValues(t, 4, count)
		assert.Len(t, page, 2)
	})

	t.Run("reviews aggregate atomically", func(t *testing.T) {
		p := &models.Product{Name: "Reviewed", Price: decimal.NewFromInt(5)}
		require.NoError(t, products.Create(ctx, p))

		var last *models.Product
		for _, rating := range []int{5, 3, 4} {
			var err error
			last, err = products.AddReview(ctx, p.ID, models.Review{
				UserID:    primitive.NewObjectID(),
				Name:      "reviewer",
				Rating:    rating,
				Comment:   "price is $10 and worth it",
				CreatedAt: time.Now().UTC(),
			})
			require.NoError(t, err)
		}
		assert.Equal(t, 3, last.NumReviews)
		assert.InDelta(t, 4.0, last.Rating, 1e-9)
		assert.Equal(t, "price is $10 and worth it", last.Reviews[0].Comment)

		_, err := products.AddReview(ctx, primitive.NewObjectID(), models.Review{UserID: primitive.NewObjectID(), Rating: 1})
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})

	t.Run("stale stored rating is derived from reviews on read", func(t *testing.T) {
		reviews := []models.Review{
			{UserID: primitive.NewObjectID(), Name: "a", Rating: 5, Comment: "great"},
			{UserID: primitive.NewObjectID(), Name: "b", Rating: 2, Comment: "meh"},
		}
		p := &models.Product{Name: "Drifted", Price: decimal.NewFromInt(5), Reviews: reviews, Rating: 1, NumReviews: 7}
		require.NoError(t, products.Create(ctx, p))

		got, err := products.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.NumReviews)
		assert.InDelta(t, 3.5, got.Rating, 1e-9)

		page, _, err := products.Find(ctx, "Drifted", 0, 10)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.InDelta(t, 3.5, page[0].Rating, 1e-9)
	})

	t.Run("concurrent duplicate reviews land once", func(t *testing.T) {
		p := &models.Product{Name: "Contended", Price: decimal.NewFromInt(5)}
		require.NoError(t, products.Create(ctx, p))
		userID := primitive.NewObjectID()

		var wg sync.WaitGroup
		errs := make([]error, 5)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = products.AddReview(ctx, p.ID, models.Review{UserID: userID, Rating: 4})
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.True(t, errors.Is(err, models.ErrValidation))
		}
		assert.Equal(t, 1, succeeded)

		got, err := products.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.NumReviews)
	})

	t.Run("order lifecycle persists status only", func(t *testing.T) {
		owner := primitive.NewObjectID()
		order := &models.Order{
			UserID:     owner,
			OrderItems: []models.LineItem{{ProductID: primitive.NewObjectID(), Name: "Airpods", Price: decimal.RequireFromString("25.00"), Qty: 1}},
			ItemsPrice: decimal.RequireFromString("25.00"),
			TotalPrice: decimal.RequireFromString("38.75"),
		}
		require.NoError(t, orders.Create(ctx, order))

		order.MarkPaid(models.PaymentResult{ID: "PAY-1", Status: "COMPLETED"}, time.Now().UTC())
		require.NoError(t, orders.UpdateStatus(ctx, order))

		got, err := orders.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.True(t, got.IsPaid)
		require.NotNil(t, got.PaymentResult)
		assert.Equal(t, "PAY-1", got.PaymentResult.ID)
		assert.True(t, decimal.RequireFromString("38.75").Equal(got.TotalPrice))

		mine, err := orders.FindByUser(ctx, owner)
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		missing := &models.Order{ID: primitive.NewObjectID()}
		assert.True(t, errors.Is(orders.UpdateStatus(ctx, missing), models.ErrNotFound))
	})

	t.Run("user email is unique", func(t *testing.T) {
		require.NoError(t, users.Create(ctx, &models.User{Name: "Jane", Email: "jane@example.com"}))

		err := users.Create(ctx, &models.User{Name: "Jane 2", Email: "jane@example.com"})
		assert.True(t, errors.Is(err, models.ErrValidation))

		got, err := users.FindByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Jane", got.Name)
	})

	t.Run("user update and delete", func(t *testing.T) {
		ann := &models.User{Name: "Ann", Email: "ann@example.com", Password: "hash-1"}
		require.NoError(t, users.Create(ctx, ann))
		require.NoError(t, users.Create(ctx, &models.User{Name: "Bob", Email: "bob@example.com"}))

		ann.Name = "Ann B"
		ann.IsAdmin = true
		ann.Password = ""
		require.NoError(t, users.Update(ctx, ann))

		got, err := users.FindByID(ctx, ann.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ann B", got.Name)
		assert.True(t, got.IsAdmin)
		assert.Equal(t, "hash-1", got.Password)

		ann.Email = "bob@example.com"
		assert.True(t, errors.Is(users.Update(ctx, ann), models.ErrValidation))

		all, err := users.FindAll(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(all), 2)

		require.NoError(t, users.Delete(ctx, ann.ID))
		_, err = users.FindByID(ctx, ann.ID)
		assert.True(t, errors.Is(err, models.ErrNotFound))
		assert.True(t, errors.Is(users.Delete(ctx, ann.ID), models.ErrNotFound))
		assert.True(t, errors.Is(users.Update(ctx, &models.User{ID: primitive.NewObjectID()}), models.ErrNotFound))
	})
}
