package payment

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"

	"go-storefront/models"
)

// BreakerGateway stops calling a failing gateway for a cool-down period.
// Declines count as successful calls.
type BreakerGateway struct {
	next Gateway
	cb   *gobreaker.CircuitBreaker[models.PaymentResult]
}

type BreakerSettings struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

func NewBreakerGateway(next Gateway, s BreakerSettings) *BreakerGateway {
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	if s.OpenTimeout == 0 {
		s.OpenTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[models.PaymentResult](gobreaker.Settings{
		Name:    "payment-gateway",
		Timeout: s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrDeclined)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("payment: circuit breaker state changed")
		},
	})

	return &BreakerGateway{next: next, cb: cb}
}

func (b *BreakerGateway) Charge(ctx context.Context, req ChargeRequest) (models.PaymentResult, error) {
	return b.cb.Execute(func() (models.PaymentResult, error) {
		return b.next.Charge(ctx, req)
	})
}
