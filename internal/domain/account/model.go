package account

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/darisadam/gdbank-ledger/internal/pkg/crypto"
	"github.com/shopspring/decimal"
)

type AccountType string
type AccountStatus string

const (
	AccountTypeSavings AccountType = "Savings"
	AccountTypeCurrent AccountType = "Current"

	AccountStatusActive   AccountStatus = "Active"
	AccountStatusInactive AccountStatus = "Inactive"

	HistoryDeposit  = "DEPOSIT"
	HistoryWithdraw = "WITHDRAW"

	// DateLayout is the calendar date format used for the daily accumulator.
	DateLayout = "2006-01-02"
)

var (
	MaxSingleDeposit = decimal.NewFromInt(100000)
	DailyLimit       = decimal.NewFromInt(200000)

	minBalance = map[AccountType]decimal.Decimal{
		AccountTypeSavings: decimal.NewFromInt(500),
		AccountTypeCurrent: decimal.NewFromInt(1000),
	}
)

// MinBalance returns the floor an Active account of type t must keep.
func MinBalance(t AccountType) decimal.Decimal {
	return minBalance[t]
}

// AccountTypes lists the recognised account types.
func AccountTypes() []AccountType {
	return []AccountType{AccountTypeSavings, AccountTypeCurrent}
}

// ParseAccountType maps free text onto a known account type.
func ParseAccountType(raw string) (AccountType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "savings":
		return AccountTypeSavings, nil
	case "current":
		return AccountTypeCurrent, nil
	default:
		return "", NewValidationError("account_type",
			fmt.Sprintf("Invalid Account type %q. Choose from [Savings Current]", raw))
	}
}

// ParseStatus maps free text onto a known account status.
func ParseStatus(raw string) (AccountStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "active":
		return AccountStatusActive, nil
	case "inactive":
		return AccountStatusInactive, nil
	default:
		return "", NewValidationError("status", fmt.Sprintf("Invalid status %q", raw))
	}
}

// ParseAmount parses a decimal amount supplied as text.
func ParseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, newError(ErrInvalidAmount, "Invalid Amount")
	}
	return d, nil
}

type HistoryEntry struct {
	Type    string          `json:"type"`
	Amount  decimal.Decimal `json:"amount"`
	Balance decimal.Decimal `json:"balance"`
	Date    string          `json:"date"`
}

type Account struct {
	AccountNumber       int64           `json:"account_number"`
	Name                string          `json:"name"`
	Age                 int             `json:"age"`
	AccountType         AccountType     `json:"account_type"`
	Balance             decimal.Decimal `json:"balance"`
	Status              AccountStatus   `json:"status"`
	PIN                 string          `json:"-"`
	TransactionHistory  []HistoryEntry  `json:"transaction_history"`
	DailyTotal          decimal.Decimal `json:"daily_total"`
	LastTransactionDate string          `json:"last_transaction_date,omitempty"`
}

func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

func (a *Account) HasPIN() bool {
	return a.PIN != ""
}

// SetPIN stores pin as a bcrypt hash. An empty pin clears it.
func (a *Account) SetPIN(pin string, cost int) error {
	if pin == "" {
		a.PIN = ""
		return nil
	}
	hash, err := crypto.HashPasswordWithCost(pin, cost)
	if err != nil {
		return fmt.Errorf("failed to hash pin: %w", err)
	}
	a.PIN = hash
	return nil
}

// VerifyPIN reports whether pin matches the stored secret. Accounts without a
// pin never verify. Stored values that are not bcrypt hashes are compared as is.
func (a *Account) VerifyPIN(pin string) bool {
	if a.PIN == "" || pin == "" {
		return false
	}
	if crypto.IsHash(a.PIN) {
		return crypto.CheckPassword(pin, a.PIN)
	}
	return subtle.ConstantTimeCompare([]byte(a.PIN), []byte(pin)) == 1
}

// dailyTotalOn returns the accumulator as it stands on the given date.
func (a *Account) dailyTotalOn(today string) decimal.Decimal {
	if a.LastTransactionDate != today {
		return decimal.Zero
	}
	return a.DailyTotal
}

// DailyRemaining is how much more can move through the account today.
func (a *Account) DailyRemaining(now time.Time) decimal.Decimal {
	remaining := DailyLimit.Sub(a.dailyTotalOn(now.Format(DateLayout)))
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// DailyUsed is the amount already moved through the account today.
func (a *Account) DailyUsed(now time.Time) decimal.Decimal {
	return a.dailyTotalOn(now.Format(DateLayout))
}

func (a *Account) checkDailyLimit(amount decimal.Decimal, today string) error {
	if a.dailyTotalOn(today).Add(amount).GreaterThan(DailyLimit) {
		return newError(ErrLimitExceeded, "Daily transaction limit of %s exceeded", DailyLimit)
	}
	return nil
}

// CheckDeposit runs every deposit rule without touching the account.
func (a *Account) CheckDeposit(amount decimal.Decimal, now time.Time) error {
	if !a.IsActive() {
		return newError(ErrInactiveAccount, "Account is inactive")
	}
	if !amount.IsPositive() {
		return newError(ErrInvalidAmount, "Deposit must be positive")
	}
	if amount.GreaterThan(MaxSingleDeposit) {
		return newError(ErrLimitExceeded, "Deposit exceeds single-deposit limit %s", MaxSingleDeposit)
	}
	return a.checkDailyLimit(amount, now.Format(DateLayout))
}

// CheckWithdraw runs every withdrawal rule without touching the account.
func (a *Account) CheckWithdraw(amount decimal.Decimal, now time.Time) error {
	if !a.IsActive() {
		return newError(ErrInactiveAccount, "Account is inactive")
	}
	if !amount.IsPositive() {
		return newError(ErrInvalidAmount, "Withdrawal must be positive")
	}
	floor := MinBalance(a.AccountType)
	if a.Balance.Sub(amount).LessThan(floor) {
		return newError(ErrInsufficientFunds,
			"Insufficient funds. Minimum required balance for %s: %s", a.AccountType, floor)
	}
	return a.checkDailyLimit(amount, now.Format(DateLayout))
}

// Deposit credits amount and returns the confirmation message.
func (a *Account) Deposit(amount decimal.Decimal, now time.Time) (string, error) {
	if err := a.CheckDeposit(amount, now); err != nil {
		return "", err
	}
	a.apply(HistoryDeposit, amount, amount, now)
	return fmt.Sprintf("Deposit Successful. New Balance: %s", a.Balance.StringFixed(2)), nil
}

// Withdraw debits amount and returns the confirmation message.
func (a *Account) Withdraw(amount decimal.Decimal, now time.Time) (string, error) {
	if err := a.CheckWithdraw(amount, now); err != nil {
		return "", err
	}
	a.apply(HistoryWithdraw, amount, amount.Neg(), now)
	return fmt.Sprintf("Withdrawal successful. New Balance: %s", a.Balance.StringFixed(2)), nil
}

func (a *Account) apply(kind string, amount, delta decimal.Decimal, now time.Time) {
	today := now.Format(DateLayout)
	a.DailyTotal = a.dailyTotalOn(today).Add(amount)
	a.LastTransactionDate = today
	a.Balance = a.Balance.Add(delta)
	a.TransactionHistory = append(a.TransactionHistory, HistoryEntry{
		Type:    kind,
		Amount:  amount,
		Balance: a.Balance,
		Date:    today,
	})
}

// MeetsMinimumBalance reports whether the balance is at or above the floor.
func (a *Account) MeetsMinimumBalance() bool {
	return !a.Balance.LessThan(MinBalance(a.AccountType))
}

// Clone returns a deep copy safe to hand outside the service lock.
func (a *Account) Clone() *Account {
	cp := *a
	if a.TransactionHistory != nil {
		cp.TransactionHistory = make([]HistoryEntry, len(a.TransactionHistory))
		copy(cp.TransactionHistory, a.TransactionHistory)
	}
	return &cp
}

func (a *Account) String() string {
	return fmt.Sprintf("[%d] %s (%s) - Balance: %s - %s",
		a.AccountNumber, a.Name, a.AccountType, a.Balance.StringFixed(2), a.Status)
}

type CreateAccountRequest struct {
	Name           string          `json:"name"`
	Age            int             `json:"age"`
	AccountType    string          `json:"account_type"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"`
	PIN            string          `json:"pin,omitempty"`
}

type AccountListResponse struct {
	Accounts []*Account `json:"accounts"`
	Total    int        `json:"total"`
}

type BalanceResponse struct {
	AccountNumber int64           `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	Message       string          `json:"message"`
}

type DailyLimitResponse struct {
	AccountNumber int64           `json:"account_number"`
	Date          string          `json:"date"`
	Used          decimal.Decimal `json:"used"`
	Remaining     decimal.Decimal `json:"remaining"`
	Limit         decimal.Decimal `json:"limit"`
}

type MinimumBalanceResponse struct {
	AccountNumber int64           `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	Minimum       decimal.Decimal `json:"minimum"`
	Maintained    bool            `json:"maintained"`
	Message       string          `json:"message"`
}

type InterestResponse struct {
	AccountNumber int64           `json:"account_number"`
	Principal     decimal.Decimal `json:"principal"`
	Rate          decimal.Decimal `json:"rate"`
	Years         decimal.Decimal `json:"years"`
	Interest      decimal.Decimal `json:"interest"`
	Message       string          `json:"message"`
}

type RenameRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpgradeTypeRequest struct {
	AccountType string `json:"account_type" binding:"required"`
}

type CloseRequest struct {
	PIN string `json:"pin"`
}
