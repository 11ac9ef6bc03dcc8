// Package storage provides the durable key-value port used for session
// scoped state such as the shopping cart and the session expiry.
package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key is absent.
var ErrKeyNotFound = errors.New("key not found")

// KV is a string key-value store.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
