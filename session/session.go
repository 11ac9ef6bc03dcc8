// Package session decides whether cached identity state has outlived its
// expiry. The check is one-shot; nothing renews a session.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"go-storefront/storage"
)

// IsExpired reports whether now is strictly after expiry.
func IsExpired(expiry, now time.Time) bool {
	return now.After(expiry)
}

// ExpiredFunc is invoked once when a user's session is found expired.
type ExpiredFunc func(ctx context.Context, userID string)

// Guard stores each user's session expiry and discards it, along with any
// state registered through OnExpired, once it has passed.
type Guard struct {
	store     storage.KV
	now       func() time.Time
	onExpired []ExpiredFunc
}

func NewGuard(store storage.KV) *Guard {
	return &Guard{store: store, now: time.Now}
}

// OnExpired registers a hook that clears user state on expiry.
func (g *Guard) OnExpired(fn ExpiredFunc) {
	g.onExpired = append(g.onExpired, fn)
}

func expirationKey(userID string) string {
	return "session:" + userID + ":expiration"
}

// Start records the expiry of a freshly issued session, in unix milliseconds.
func (g *Guard) Start(ctx context.Context, userID string, expiry time.Time) error {
	value := strconv.FormatInt(expiry.UnixMilli(), 10)
	if err := g.store.Set(ctx, expirationKey(userID), value); err != nil {
		return fmt.Errorf("session: failed to store expiry: %w", err)
	}
	return nil
}

// End discards the stored expiry, as on logout.
func (g *Guard) End(ctx context.Context, userID string) error {
	if err := g.store.Delete(ctx, expirationKey(userID)); err != nil {
		return fmt.Errorf("session: failed to clear expiry: %w", err)
	}
	return nil
}

// Check reports whether the user's stored session has expired. A user with
// no stored expiry is not expired. On expiry the stored expiry is removed and
// every OnExpired hook runs.
func (g *Guard) Check(ctx context.Context, userID string) (bool, error) {
	raw, err := g.store.Get(ctx, expirationKey(userID))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("session: failed to read expiry: %w", err)
	}

	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("session: malformed expiry %q: %w", raw, err)
	}

	if !IsExpired(time.UnixMilli(millis), g.now()) {
		return false, nil
	}

	log.Info().Str("user_id", userID).Msg("session: expired, clearing cached state")
	if err := g.End(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("session: failed to clear expired session")
	}
	for _, fn := range g.onExpired {
		fn(ctx, userID)
	}
	return true, nil
}
