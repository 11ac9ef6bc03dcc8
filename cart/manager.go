package cart

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/models"
	"go-storefront/storage"
)

// StorageKey is the fixed key for a single-session cart.
const StorageKey = "cart"

// KeyFor scopes the cart key to a user when several sessions share a store.
func KeyFor(userID string) string {
	if userID == "" {
		return StorageKey
	}
	return StorageKey + ":" + userID
}

// Manager owns one session's cart and writes the whole cart to the store
// after every mutation. Write failures are logged and otherwise ignored.
type Manager struct {
	store storage.KV
	key   string
	cart  models.Cart
}

// Load rehydrates the cart stored under key, or starts from the default cart
// when nothing usable is stored.
func Load(ctx context.Context, store storage.KV, key string) *Manager {
	m := &Manager{store: store, key: key, cart: New()}

	raw, err := store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			log.Warn().Err(err).Str("key", key).Msg("cart: failed to read stored cart")
		}
		return m
	}

	var stored models.Cart
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cart: discarding unreadable stored cart")
		return m
	}
	if stored.Items == nil {
		stored.Items = []models.LineItem{}
	}
	m.cart = stored
	return m
}

// Cart returns a copy of the current cart.
func (m *Manager) Cart() models.Cart {
	c := m.cart
	c.Items = append([]models.LineItem(nil), m.cart.Items...)
	return c
}

func (m *Manager) AddItem(ctx context.Context, item models.LineItem, qty int) models.Cart {
	return m.apply(ctx, AddItem(m.cart, item, qty))
}

func (m *Manager) RemoveItem(ctx context.Context, productID primitive.ObjectID) models.Cart {
	return m.apply(ctx, RemoveItem(m.cart, productID))
}

func (m *Manager) SetShippingAddress(ctx context.Context, addr models.Address) models.Cart {
	return m.apply(ctx, SetShippingAddress(m.cart, addr))
}

func (m *Manager) SetPaymentMethod(ctx context.Context, method string) models.Cart {
	return m.apply(ctx, SetPaymentMethod(m.cart, method))
}

func (m *Manager) Clear(ctx context.Context) models.Cart {
	return m.apply(ctx, Clear(m.cart))
}

func (m *Manager) Reset(ctx context.Context) models.Cart {
	return m.apply(ctx, Reset(m.cart))
}

func (m *Manager) apply(ctx context.Context, next models.Cart) models.Cart {
	m.cart = next
	m.persist(ctx)
	return m.Cart()
}

func (m *Manager) persist(ctx context.Context) {
	data, err := json.Marshal(m.cart)
	if err != nil {
		log.Warn().Err(err).Str("key", m.key).Msg("cart: failed to encode cart")
		return
	}
	if err := m.store.Set(ctx, m.key, string(data)); err != nil {
		log.Warn().Err(err).Str("key", m.key).Msg("cart: failed to persist cart")
	}
}
