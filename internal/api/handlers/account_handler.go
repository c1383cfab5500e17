package handlers

import (
	"net/http"

	"github.com/darisadam/gdbank-ledger/internal/api/middleware"
	"github.com/darisadam/gdbank-ledger/internal/domain/account"
	"github.com/darisadam/gdbank-ledger/internal/service"
	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	ledgerService service.LedgerService
}

func NewAccountHandler(ledgerService service.LedgerService) *AccountHandler {
	return &AccountHandler{
		ledgerService: ledgerService,
	}
}

// CreateAccount godoc
// @Summary Open a new account
// @Description Open a Savings or Current account with an initial deposit
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body account.CreateAccountRequest true "Account details"
// @Success 201 {object} account.Account
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req account.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	acc, err := h.ledgerService.CreateAccount(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, acc)
}

// ListAccounts godoc
// @Summary List accounts
// @Description List every account, or filter by status or by holder name
// @Tags accounts
// @Produce json
// @Param status query string false "Active or Inactive"
// @Param name query string false "Exact holder name, case-insensitive"
// @Success 200 {object} account.AccountListResponse
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/accounts [get]
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	var accounts []*account.Account

	if name, ok := c.GetQuery("name"); ok {
		accounts = h.ledgerService.SearchByName(name)
	} else if raw, ok := c.GetQuery("status"); ok {
		status, err := account.ParseStatus(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		if status == account.AccountStatusActive {
			accounts = h.ledgerService.ListActive()
		} else {
			accounts = h.ledgerService.ListInactive()
		}
	} else {
		accounts = h.ledgerService.ListAccounts()
	}

	c.JSON(http.StatusOK, account.AccountListResponse{
		Accounts: accounts,
		Total:    len(accounts),
	})
}

// GetAccount godoc
// @Summary Get account details
// @Tags accounts
// @Produce json
// @Param number path int true "Account number"
// @Success 200 {object} account.Account
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/accounts/{number} [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
	number, ok := accountNumberParam(c)
	if !ok {
		return
	}

	acc, err := h.ledgerService.SearchByAccountNumber(number)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, acc)
}

// GetBalance godoc
// @Summary Get account balance
// @Description Requires the account PIN in the X-Account-PIN header
// @Tags accounts
// @Produce json
// @Param number path int true "Account number"
// @Success 200 {object} account.BalanceResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/accounts/{number}/balance [get]
func (h *AccountHandler) GetBalance(c *gin.Context) {
	number, ok := accountNumberParam(c)
	if !ok {
		return
	}

	balance, err := h.ledgerService.BalanceInquiry(c.Request.Context(), number, c.GetHeader(middleware.PinHeader))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

func (h *AccountHandler) CloseAccount(c *gin.Context) {
	number, ok := accountNumberParam(c)
	if !ok {
		return
	}

	var req account.CloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	msg, err := h.ledgerService.CloseAccount(c.Request.Context(), number, req.PIN)
	respondResult(c, msg, err)
}

func (h *AccountHandler) ReopenAccount(c *gin.Context) {
	number, ok := accountNumberParam(c)
	if !ok {
		return
	}

	msg, err := h.ledgerService.ReopenAccount(c.Request.Context(), number)
	respondResult(c, msg, err)
}

func (h *AccountHandler) RenameAccountHolder(c *gin.Context) {
	number, ok := accountNumberParam(c)
	if !ok {
		return
	}

	var req account.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	msg, err := h.ledgerService.RenameAccountHolder(c.Request.Context(), number, req.Name)
	respondResult(c, msg, err)
}

func (h *AccountHandler) UpgradeAccountType(c *gin.Context) {
	number, ok := accountNumberParam(c)
	if !ok {
		return
	}

	var req account.UpgradeTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	msg, err := h.ledgerService.UpgradeAccountType(c.Request.Context(), number, req.AccountType)
	respondResult(c, msg, err)
}

// GetTransactionHistory godoc
// @Summary Get transaction log lines for an account
// @Tags accounts
// @Produce json
// @Param number path int true "Account number"
// @Success 200 {object} ledger.TransactionHistoryResponse
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/accounts/{number}/transactions [get]
func (h *AccountHandler) GetTransactionHistory(c *gin.Context) {
	number, ok := accountNumberParam(c)
	if !ok {
		return
	}

	history, err := h.ledgerService.TransactionHistory(c.Request.Context(), number)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

func (h *AccountHandler) WriteTransactionLog(c *gin.Context) {
	number, ok := accountNumberParam(c)
	if !ok {
		return
	}

	msg, err := h.ledgerService.WriteTransactionLog(c.Request.Context(), number)
	respondResult(c, msg, err)
}

func (h *AccountHandler) CheckMinimumBalance(c *gin.Context) {
	number, ok := accountNumberParam(c)
	if !ok {
		return
	}

	res, err := h.ledgerService.CheckMinimumBalance(number)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AccountHandler) CheckDailyLimit(c *gin.Context) {
	number, ok := accountNumberParam(c)
	if !ok {
		return
	}

	res, err := h.ledgerService.CheckDailyLimit(number)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// SimpleInterest godoc
// @Summary Compute simple interest on the current balance
// @Tags accounts
// @Produce json
// @Param number path int true "Account number"
// @Param rate query number true "Annual rate in percent"
// @Param years query number true "Term in years"
// @Success 200 {object} account.InterestResponse
// @Router /api/v1/accounts/{number}/interest [get]
func (h *AccountHandler) SimpleInterest(c *gin.Context) {
	number, ok := accountNumberParam(c)
	if !ok {
		return
	}
	rate, ok := decimalQuery(c, "rate")
	if !ok {
		return
	}
	years, ok := decimalQuery(c, "years")
	if !ok {
		return
	}

	res, err := h.ledgerService.SimpleInterest(number, rate, years)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
