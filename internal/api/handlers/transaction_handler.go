package handlers

import (
	"net/http"

	"github.com/darisadam/gdbank-ledger/internal/domain/ledger"
	"github.com/darisadam/gdbank-ledger/internal/service"
	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	ledgerService service.LedgerService
}

func NewTransactionHandler(ledgerService service.LedgerService) *TransactionHandler {
	return &TransactionHandler{
		ledgerService: ledgerService,
	}
}

// Transfer godoc
// @Summary Transfer money between accounts
// @Description Moves funds atomically; the source account PIN is required
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body ledger.TransferRequest true "Transfer details"
// @Success 200 {object} ledger.TransferResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/transactions/transfer [post]
func (h *TransactionHandler) Transfer(c *gin.Context) {
	var req ledger.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.ledgerService.Transfer(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// Deposit godoc
// @Summary Deposit money to account
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body ledger.DepositRequest true "Deposit details"
// @Success 200 {object} ledger.TransactionResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /api/v1/transactions/deposit [post]
func (h *TransactionHandler) Deposit(c *gin.Context) {
	var req ledger.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.ledgerService.Deposit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *TransactionHandler) Withdraw(c *gin.Context) {
	var req ledger.WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.ledgerService.Withdraw(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
