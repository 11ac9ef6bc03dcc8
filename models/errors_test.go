package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"validation", ValidationError("cart is empty"), ErrValidation},
		{"not found", NotFoundError("order %s not found", "abc"), ErrNotFound},
		{"precondition", PreconditionError("order not paid"), ErrPrecondition},
		{"unauthorized", UnauthorizedError("invalid email or password"), ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("service: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.kind))

			var typed *Error
			assert.True(t, errors.As(wrapped, &typed))
			assert.Equal(t, tt.kind, typed.Kind)
		})
	}

	assert.Equal(t, "order abc not found", NotFoundError("order %s not found", "abc").Error())
}
