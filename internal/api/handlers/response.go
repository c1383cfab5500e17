package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/darisadam/gdbank-ledger/internal/domain/account"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// statusFor maps a ledger error onto the HTTP status returned to clients.
func statusFor(err error) int {
	switch {
	case errors.Is(err, account.ErrValidation), errors.Is(err, account.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, account.ErrInvalidPin):
		return http.StatusUnauthorized
	case errors.Is(err, account.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, account.ErrInactiveAccount),
		errors.Is(err, account.ErrAlreadyActive),
		errors.Is(err, account.ErrInsufficientFunds):
		return http.StatusConflict
	case errors.Is(err, account.ErrLimitExceeded):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"success": false, "error": err.Error()}

	var verr *account.ValidationError
	if errors.As(err, &verr) {
		body["field"] = verr.Field
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		body["error"] = "internal server error"
	}

	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}

// respondResult answers a (message, error) operation.
func respondResult(c *gin.Context, msg string, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account.NewResult(msg, nil))
}

// accountNumberParam reads :number, answering 400 itself when it is malformed.
func accountNumberParam(c *gin.Context) (int64, bool) {
	number, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil || number <= 0 {
		badRequest(c, "invalid account number")
		return 0, false
	}
	return number, true
}

func decimalQuery(c *gin.Context, key string) (decimal.Decimal, bool) {
	raw, ok := c.GetQuery(key)
	if !ok {
		badRequest(c, key+" is required")
		return decimal.Zero, false
	}
	d, err := account.ParseAmount(raw)
	if err != nil {
		respondError(c, err)
		return decimal.Zero, false
	}
	return d, true
}
