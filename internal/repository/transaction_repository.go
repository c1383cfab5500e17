package repository

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/darisadam/gdbank-ledger/internal/domain/ledger"
)

// TransactionLogRepository is the append-only audit trail of ledger operations.
type TransactionLogRepository interface {
	Append(ctx context.Context, entry ledger.Entry) error
	// ReadByAccount returns raw lines for the account in the order they were written.
	ReadByAccount(ctx context.Context, accountNumber int64) ([]string, error)
}

type fileTransactionLogRepository struct {
	path string
}

// NewFileTransactionLogRepository appends log lines to the text file at path.
func NewFileTransactionLogRepository(path string) TransactionLogRepository {
	return &fileTransactionLogRepository{path: path}
}

func (r *fileTransactionLogRepository) Append(ctx context.Context, entry ledger.Entry) (err error) {
	defer observe("file", "append", time.Now(), &err)

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open transaction log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(entry.Line() + "\n"); err != nil {
		return fmt.Errorf("failed to append transaction log: %w", err)
	}
	return nil
}

func (r *fileTransactionLogRepository) ReadByAccount(ctx context.Context, accountNumber int64) (lines []string, err error) {
	defer observe("file", "read_by_account", time.Now(), &err)

	f, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open transaction log: %w", err)
	}
	defer f.Close()

	lines = []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if ledger.MatchesAccount(line, accountNumber) {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transaction log: %w", err)
	}

	return lines, nil
}

// WriteAccountLog writes lines to transactions_<number>.log in dir and returns the file path.
func WriteAccountLog(dir string, accountNumber int64, lines []string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("transactions_%d.log", accountNumber))
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write account log: %w", err)
	}
	return path, nil
}
