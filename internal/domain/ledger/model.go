package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Operation string

const (
	OperationCreate      Operation = "CREATE"
	OperationDeposit     Operation = "DEPOSIT"
	OperationWithdraw    Operation = "WITHDRAW"
	OperationClose       Operation = "CLOSE"
	OperationReopen      Operation = "REOPEN"
	OperationRename      Operation = "RENAME"
	OperationTransferOut Operation = "TRANSFER_OUT"
	OperationTransferIn  Operation = "TRANSFER_IN"
	OperationUpgradeType Operation = "UPGRADE_TYPE"

	// TimestampLayout is the timestamp format of a log line.
	TimestampLayout = "2006-01-02 15:04:05"
)

// Entry is one completed operation as written to the transaction log.
type Entry struct {
	EventID       uuid.UUID        `json:"event_id"`
	Timestamp     time.Time        `json:"timestamp"`
	AccountNumber int64            `json:"account_number"`
	Operation     Operation        `json:"operation"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	BalanceAfter  decimal.Decimal  `json:"balance_after"`
}

// NewEntry builds an entry; amount may be nil for operations that move no money.
func NewEntry(at time.Time, accountNumber int64, op Operation, amount *decimal.Decimal, balanceAfter decimal.Decimal) Entry {
	return Entry{
		EventID:       uuid.New(),
		Timestamp:     at,
		AccountNumber: accountNumber,
		Operation:     op,
		Amount:        amount,
		BalanceAfter:  balanceAfter,
	}
}

// Line renders the entry as "timestamp | account | operation | amount | balance".
// The amount field is empty when the entry carries none.
func (e Entry) Line() string {
	amount := ""
	if e.Amount != nil {
		amount = e.Amount.String()
	}
	return fmt.Sprintf("%s | %d | %s | %s | %s",
		e.Timestamp.Format(TimestampLayout), e.AccountNumber, e.Operation, amount, e.BalanceAfter.String())
}

// MatchesAccount reports whether a raw log line belongs to the account. Only
// the account column is compared, never the amount or balance.
func MatchesAccount(line string, accountNumber int64) bool {
	fields := strings.Split(line, "|")
	if len(fields) < 2 {
		return false
	}
	return strings.TrimSpace(fields[1]) == strconv.FormatInt(accountNumber, 10)
}

type DepositRequest struct {
	AccountNumber int64           `json:"account_number" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	PIN           string          `json:"pin"`
}

type WithdrawalRequest struct {
	AccountNumber int64           `json:"account_number" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	PIN           string          `json:"pin"`
}

type TransferRequest struct {
	FromAccount int64           `json:"from_account" binding:"required"`
	ToAccount   int64           `json:"to_account" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	PIN         string          `json:"pin"`
}

type TransactionResponse struct {
	Success       bool            `json:"success"`
	Message       string          `json:"message"`
	AccountNumber int64           `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
}

type TransferResponse struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	FromAccount int64           `json:"from_account"`
	FromBalance decimal.Decimal `json:"from_balance"`
	ToAccount   int64           `json:"to_account"`
	ToBalance   decimal.Decimal `json:"to_balance"`
}

type TransactionHistoryResponse struct {
	AccountNumber int64    `json:"account_number"`
	Records       []string `json:"records"`
	Total         int      `json:"total"`
}
