package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/darisadam/gdbank-ledger/internal/domain/account"
	"github.com/darisadam/gdbank-ledger/internal/pkg/metrics"
)

// AccountRepository loads and stores the whole ledger at once.
type AccountRepository interface {
	// LoadAll returns every stored account. A store that does not exist yet
	// yields an empty book.
	LoadAll(ctx context.Context) (*account.Book, error)
	// SaveAll replaces the stored ledger with book.
	SaveAll(ctx context.Context, book *account.Book) error
}

type fileAccountRepository struct {
	path string
}

// NewFileAccountRepository stores accounts as CSV rows in path.
func NewFileAccountRepository(path string) AccountRepository {
	return &fileAccountRepository{path: path}
}

func (r *fileAccountRepository) LoadAll(ctx context.Context) (book *account.Book, err error) {
	defer observe("file", "load_all", time.Now(), &err)

	f, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return account.NewBook(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open accounts file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return account.NewBook(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts header: %w", err)
	}
	index, err := headerIndex(header)
	if err != nil {
		return nil, fmt.Errorf("invalid accounts file %s: %w", r.path, err)
	}

	book = account.NewBook()
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read account row: %w", err)
		}

		rec, err := recordFromRow(index, row)
		if err != nil {
			return nil, fmt.Errorf("failed to parse account row: %w", err)
		}
		acc, err := rec.toAccount()
		if err != nil {
			return nil, fmt.Errorf("failed to load account: %w", err)
		}
		book.Put(acc)
	}

	return book, nil
}

func (r *fileAccountRepository) SaveAll(ctx context.Context, book *account.Book) (err error) {
	defer observe("file", "save_all", time.Now(), &err)

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// Write to a temp file and rename so a failed write never truncates the store
	tmp := r.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create accounts file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writeAccounts(writer, book); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close accounts file: %w", err)
	}

	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace accounts file: %w", err)
	}
	return nil
}

func writeAccounts(w *csv.Writer, book *account.Book) error {
	if err := w.Write(accountColumns); err != nil {
		return fmt.Errorf("failed to write accounts header: %w", err)
	}
	for _, acc := range book.Accounts() {
		row, err := newAccountRecord(acc).row()
		if err != nil {
			return err
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write account %d: %w", acc.AccountNumber, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush accounts file: %w", err)
	}
	return nil
}

func observe(backend, operation string, start time.Time, err *error) {
	metrics.RecordPersistence(backend, operation, *err, time.Since(start).Seconds())
}
