package handlers

import (
	"net/http"
	"strconv"

	"github.com/darisadam/gdbank-ledger/internal/domain/account"
	"github.com/darisadam/gdbank-ledger/internal/service"
	"github.com/gin-gonic/gin"
)

const defaultTopN = 5

// ReportHandler serves read-only aggregates over the whole ledger.
type ReportHandler struct {
	ledgerService service.LedgerService
}

func NewReportHandler(ledgerService service.LedgerService) *ReportHandler {
	return &ReportHandler{
		ledgerService: ledgerService,
	}
}

func (h *ReportHandler) ActiveCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"active_accounts": h.ledgerService.CountActive()})
}

// TopByBalance godoc
// @Summary Accounts with the highest balances
// @Tags reports
// @Produce json
// @Param n query int false "How many accounts (default 5)"
// @Success 200 {object} account.AccountListResponse
// @Router /api/v1/reports/top [get]
func (h *ReportHandler) TopByBalance(c *gin.Context) {
	n := defaultTopN
	if raw, ok := c.GetQuery("n"); ok {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "invalid n")
			return
		}
		n = parsed
	}

	accounts := h.ledgerService.TopNByBalance(n)
	c.JSON(http.StatusOK, account.AccountListResponse{
		Accounts: accounts,
		Total:    len(accounts),
	})
}

func (h *ReportHandler) AverageBalance(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"average_balance": h.ledgerService.AverageBalance().StringFixed(2)})
}

func (h *ReportHandler) Youngest(c *gin.Context) {
	h.holder(c, h.ledgerService.YoungestHolder)
}

func (h *ReportHandler) Oldest(c *gin.Context) {
	h.holder(c, h.ledgerService.OldestHolder)
}

func (h *ReportHandler) holder(c *gin.Context, find func() (*account.Account, error)) {
	acc, err := find()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}
