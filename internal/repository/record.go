package repository

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/darisadam/gdbank-ledger/internal/domain/account"
	"github.com/darisadam/gdbank-ledger/internal/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// accountColumns is the persisted column order of an account row.
var accountColumns = []string{
	"account_number", "name", "age", "balance", "account_type", "status", "pin",
	"transaction_history", "daily_total", "last_transaction_date",
}

type historyRecord struct {
	Type    string      `json:"type"`
	Amount  json.Number `json:"amount"`
	Balance json.Number `json:"balance"`
	Date    string      `json:"date"`
}

// accountRecord is the flat, storage-neutral form of an account. Decimal
// values are kept as plain numbers so every backend stores them exactly.
type accountRecord struct {
	AccountNumber       int64           `json:"account_number"`
	Name                string          `json:"name"`
	Age                 int             `json:"age"`
	Balance             json.Number     `json:"balance"`
	AccountType         string          `json:"account_type"`
	Status              string          `json:"status"`
	PIN                 string          `json:"pin"`
	TransactionHistory  []historyRecord `json:"transaction_history"`
	DailyTotal          json.Number     `json:"daily_total"`
	LastTransactionDate string          `json:"last_transaction_date"`
}

func newAccountRecord(acc *account.Account) accountRecord {
	history := make([]historyRecord, 0, len(acc.TransactionHistory))
	for _, h := range acc.TransactionHistory {
		history = append(history, historyRecord{
			Type:    h.Type,
			Amount:  json.Number(h.Amount.String()),
			Balance: json.Number(h.Balance.String()),
			Date:    h.Date,
		})
	}

	return accountRecord{
		AccountNumber:       acc.AccountNumber,
		Name:                acc.Name,
		Age:                 acc.Age,
		Balance:             json.Number(acc.Balance.String()),
		AccountType:         string(acc.AccountType),
		Status:              string(acc.Status),
		PIN:                 acc.PIN,
		TransactionHistory:  history,
		DailyTotal:          json.Number(acc.DailyTotal.String()),
		LastTransactionDate: acc.LastTransactionDate,
	}
}

func (r accountRecord) toAccount() (*account.Account, error) {
	if r.AccountNumber <= 0 {
		return nil, fmt.Errorf("invalid account number %d", r.AccountNumber)
	}

	accountType, err := account.ParseAccountType(r.AccountType)
	if err != nil {
		return nil, fmt.Errorf("account %d: %w", r.AccountNumber, err)
	}
	status, err := account.ParseStatus(r.Status)
	if err != nil {
		return nil, fmt.Errorf("account %d: %w", r.AccountNumber, err)
	}
	balance, err := parseDecimal(string(r.Balance))
	if err != nil {
		return nil, fmt.Errorf("account %d: invalid balance: %w", r.AccountNumber, err)
	}
	dailyTotal, err := parseDecimal(string(r.DailyTotal))
	if err != nil {
		return nil, fmt.Errorf("account %d: invalid daily total: %w", r.AccountNumber, err)
	}

	var history []account.HistoryEntry
	for _, h := range r.TransactionHistory {
		amount, err := parseDecimal(string(h.Amount))
		if err != nil {
			return nil, fmt.Errorf("account %d: invalid history amount: %w", r.AccountNumber, err)
		}
		after, err := parseDecimal(string(h.Balance))
		if err != nil {
			return nil, fmt.Errorf("account %d: invalid history balance: %w", r.AccountNumber, err)
		}
		history = append(history, account.HistoryEntry{Type: h.Type, Amount: amount, Balance: after, Date: h.Date})
	}

	return &account.Account{
		AccountNumber:       r.AccountNumber,
		Name:                strings.TrimSpace(r.Name),
		Age:                 r.Age,
		AccountType:         accountType,
		Balance:             balance,
		Status:              status,
		PIN:                 r.PIN,
		TransactionHistory:  history,
		DailyTotal:          dailyTotal,
		LastTransactionDate: r.LastTransactionDate,
	}, nil
}

// row renders the record in accountColumns order.
func (r accountRecord) row() ([]string, error) {
	history := r.TransactionHistory
	if history == nil {
		history = []historyRecord{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction history: %w", err)
	}

	return []string{
		strconv.FormatInt(r.AccountNumber, 10),
		r.Name,
		strconv.Itoa(r.Age),
		string(r.Balance),
		r.AccountType,
		r.Status,
		r.PIN,
		string(historyJSON),
		string(r.DailyTotal),
		r.LastTransactionDate,
	}, nil
}

// recordFromRow reads a row using the column positions found in the header.
func recordFromRow(index map[string]int, row []string) (accountRecord, error) {
	get := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var rec accountRecord
	number, err := strconv.ParseInt(strings.TrimSpace(get("account_number")), 10, 64)
	if err != nil {
		return rec, fmt.Errorf("invalid account number %q: %w", get("account_number"), err)
	}
	age, err := strconv.Atoi(strings.TrimSpace(get("age")))
	if err != nil {
		return rec, fmt.Errorf("account %d: invalid age %q: %w", number, get("age"), err)
	}

	rec = accountRecord{
		AccountNumber:       number,
		Name:                get("name"),
		Age:                 age,
		Balance:             json.Number(strings.TrimSpace(get("balance"))),
		AccountType:         get("account_type"),
		Status:              get("status"),
		PIN:                 get("pin"),
		DailyTotal:          json.Number(strings.TrimSpace(get("daily_total"))),
		LastTransactionDate: strings.TrimSpace(get("last_transaction_date")),
	}

	if raw := strings.TrimSpace(get("transaction_history")); raw != "" {
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&rec.TransactionHistory); err != nil {
			// an unreadable history must not keep the rest of the ledger from loading
			logger.Warn("Discarding unreadable transaction history",
				zap.Int64("account_number", number),
				zap.Error(err),
			)
			rec.TransactionHistory = nil
		}
	}

	return rec, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))] = i
	}
	for _, required := range []string{"account_number", "name", "age", "balance", "account_type", "status"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}
	return index, nil
}

// parseDecimal accepts an empty value as zero.
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
