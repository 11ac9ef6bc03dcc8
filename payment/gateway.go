// Package payment charges orders through an external gateway.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-storefront/models"
)

// ErrDeclined means the gateway refused the charge. It is a final answer,
// not an outage.
var ErrDeclined = errors.New("payment declined")

const StatusCompleted = "COMPLETED"

type ChargeRequest struct {
	OrderID    string
	Amount     decimal.Decimal
	PayerEmail string
}

// Gateway yields a receipt for a successful charge or fails.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (models.PaymentResult, error)
}

// SimulatedGateway approves any positive charge up to Limit. A zero Limit
// approves every positive amount.
type SimulatedGateway struct {
	Limit decimal.Decimal
	now   func() time.Time
}

func NewSimulatedGateway(limit decimal.Decimal) *SimulatedGateway {
	return &SimulatedGateway{Limit: limit, now: time.Now}
}

func (g *SimulatedGateway) Charge(ctx context.Context, req ChargeRequest) (models.PaymentResult, error) {
	if err := ctx.Err(); err != nil {
		return models.PaymentResult{}, err
	}
	if !req.Amount.IsPositive() {
		return models.PaymentResult{}, fmt.Errorf("%w: amount must be positive", ErrDeclined)
	}
	if !g.Limit.IsZero() && req.Amount.GreaterThan(g.Limit) {
		return models.PaymentResult{}, fmt.Errorf("%w: amount %s exceeds limit", ErrDeclined, req.Amount.StringFixed(2))
	}

	return models.PaymentResult{
		ID:           "TXN-" + uuid.NewString(),
		Status:       StatusCompleted,
		UpdateTime:   g.now().UTC().Format(time.RFC3339),
		EmailAddress: req.PayerEmail,
	}, nil
}
