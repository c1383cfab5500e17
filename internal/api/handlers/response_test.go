package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/darisadam/gdbank-ledger/internal/domain/account"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", account.NewValidationError("name", "Name is required"), http.StatusBadRequest},
		{"invalid amount", fmt.Errorf("%w", account.ErrInvalidAmount), http.StatusBadRequest},
		{"invalid pin", account.InvalidPinError(), http.StatusUnauthorized},
		{"not found", account.NotFoundError(1001), http.StatusNotFound},
		{"inactive", account.InactiveError(), http.StatusConflict},
		{"already active", account.AlreadyActiveError(), http.StatusConflict},
		{"insufficient funds", fmt.Errorf("%w", account.ErrInsufficientFunds), http.StatusConflict},
		{"limit exceeded", fmt.Errorf("%w", account.ErrLimitExceeded), http.StatusUnprocessableEntity},
		{"infrastructure", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
