package handlers

import (
	"github.com/darisadam/gdbank-ledger/internal/service"
	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the bulk operations that act on every account.
type AdminHandler struct {
	ledgerService service.LedgerService
}

func NewAdminHandler(ledgerService service.LedgerService) *AdminHandler {
	return &AdminHandler{
		ledgerService: ledgerService,
	}
}

func (h *AdminHandler) DeleteAllAccounts(c *gin.Context) {
	msg, err := h.ledgerService.DeleteAllAccounts(c.Request.Context())
	respondResult(c, msg, err)
}

func (h *AdminHandler) ExportAccounts(c *gin.Context) {
	msg, err := h.ledgerService.ExportAccounts(c.Request.Context())
	respondResult(c, msg, err)
}

func (h *AdminHandler) ImportAccounts(c *gin.Context) {
	msg, err := h.ledgerService.ImportAccounts(c.Request.Context())
	respondResult(c, msg, err)
}
