package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB opens a client with the decimal codec registered and verifies
// the connection.
func ConnectDB(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetRegistry(NewRegistry()).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

// collection opens a collection that encodes decimal money as Decimal128
// regardless of how the client was configured.
func collection(db *mongo.Database, name string) *mongo.Collection {
	return db.Collection(name, options.Collection().SetRegistry(NewRegistry()))
}

// EnsureIndexes creates the indexes the repositories rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := NewUserRepository(db).CreateIndexes(ctx); err != nil {
		return err
	}
	if err := NewOrderRepository(db).CreateIndexes(ctx); err != nil {
		return err
	}
	return NewProductRepository(db).CreateIndexes(ctx)
}
