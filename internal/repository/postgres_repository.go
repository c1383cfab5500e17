package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/darisadam/gdbank-ledger/internal/domain/account"
	"github.com/darisadam/gdbank-ledger/internal/domain/ledger"
)

type postgresAccountRepository struct {
	db    *sql.DB
	table string
}

// NewPostgresAccountRepository stores accounts in table, one row per account.
// The table must have the layout created by the accounts migration.
func NewPostgresAccountRepository(db *sql.DB, table string) AccountRepository {
	return &postgresAccountRepository{db: db, table: table}
}

func (r *postgresAccountRepository) LoadAll(ctx context.Context) (book *account.Book, err error) {
	defer observe("postgres", "load_all", time.Now(), &err)

	query := fmt.Sprintf(`
		SELECT account_number, name, age, balance::text, account_type, status, pin,
		       transaction_history, daily_total::text, last_transaction_date
		FROM %s
		ORDER BY position ASC, account_number ASC
	`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	book = account.NewBook()
	for rows.Next() {
		var rec accountRecord
		var balance, dailyTotal string
		var history []byte

		if err := rows.Scan(
			&rec.AccountNumber,
			&rec.Name,
			&rec.Age,
			&balance,
			&rec.AccountType,
			&rec.Status,
			&rec.PIN,
			&history,
			&dailyTotal,
			&rec.LastTransactionDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		rec.Balance = json.Number(balance)
		rec.DailyTotal = json.Number(dailyTotal)

		if len(history) > 0 {
			dec := json.NewDecoder(strings.NewReader(string(history)))
			dec.UseNumber()
			if err := dec.Decode(&rec.TransactionHistory); err != nil {
				return nil, fmt.Errorf("account %d: invalid transaction history: %w", rec.AccountNumber, err)
			}
		}

		acc, err := rec.toAccount()
		if err != nil {
			return nil, fmt.Errorf("failed to load account: %w", err)
		}
		book.Put(acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return book, nil
}

func (r *postgresAccountRepository) SaveAll(ctx context.Context, book *account.Book) (err error) {
	defer observe("postgres", "save_all", time.Now(), &err)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", r.table)); err != nil {
		return fmt.Errorf("failed to clear accounts: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (account_number, position, name, age, balance, account_type, status, pin,
		                transaction_history, daily_total, last_transaction_date)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9::jsonb, $10::numeric, $11)
	`, r.table)

	for i, acc := range book.Accounts() {
		rec := newAccountRecord(acc)
		history, mErr := json.Marshal(rec.TransactionHistory)
		if mErr != nil {
			err = fmt.Errorf("failed to marshal transaction history: %w", mErr)
			return err
		}

		_, err = tx.ExecContext(ctx, query,
			rec.AccountNumber,
			i,
			rec.Name,
			rec.Age,
			string(rec.Balance),
			rec.AccountType,
			rec.Status,
			rec.PIN,
			string(history),
			string(rec.DailyTotal),
			rec.LastTransactionDate,
		)
		if err != nil {
			return fmt.Errorf("failed to save account %d: %w", acc.AccountNumber, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit accounts: %w", err)
	}
	return nil
}

type postgresTransactionLogRepository struct {
	db *sql.DB
}

func NewPostgresTransactionLogRepository(db *sql.DB) TransactionLogRepository {
	return &postgresTransactionLogRepository{db: db}
}

func (r *postgresTransactionLogRepository) Append(ctx context.Context, entry ledger.Entry) (err error) {
	defer observe("postgres", "append", time.Now(), &err)

	query := `
		INSERT INTO transaction_log (event_id, account_number, operation, line, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = r.db.ExecContext(ctx, query,
		entry.EventID,
		entry.AccountNumber,
		string(entry.Operation),
		entry.Line(),
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append transaction log: %w", err)
	}
	return nil
}

func (r *postgresTransactionLogRepository) ReadByAccount(ctx context.Context, accountNumber int64) (lines []string, err error) {
	defer observe("postgres", "read_by_account", time.Now(), &err)

	query := `
		SELECT line
		FROM transaction_log
		WHERE account_number = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction log: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	lines = []string{}
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("failed to scan transaction log: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction log: %w", err)
	}

	return lines, nil
}
