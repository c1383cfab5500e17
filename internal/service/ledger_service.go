package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/darisadam/gdbank-ledger/internal/domain/account"
	"github.com/darisadam/gdbank-ledger/internal/domain/ledger"
	"github.com/darisadam/gdbank-ledger/internal/pkg/logger"
	"github.com/darisadam/gdbank-ledger/internal/pkg/metrics"
	"github.com/darisadam/gdbank-ledger/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	MsgAccountCreated   = "Account created successfully"
	MsgAccountClosed    = "Account closed successfully"
	MsgAccountReopened  = "Account reopened successfully"
	MsgAccountRenamed   = "Account holder renamed successfully"
	MsgTransferred      = "Transfer successful"
	MsgAllDeleted       = "All accounts deleted"
	MsgAccountsExported = "Accounts exported successfully."
	MsgMinimumKept      = "Minimum balance maintained."
)

var hundred = decimal.NewFromInt(100)

type LedgerService interface {
	CreateAccount(ctx context.Context, req *account.CreateAccountRequest) (*account.Account, error)
	Authorize(ctx context.Context, accountNumber int64, pin string) error
	Deposit(ctx context.Context, req *ledger.DepositRequest) (*ledger.TransactionResponse, error)
	Withdraw(ctx context.Context, req *ledger.WithdrawalRequest) (*ledger.TransactionResponse, error)
	Transfer(ctx context.Context, req *ledger.TransferRequest) (*ledger.TransferResponse, error)
	BalanceInquiry(ctx context.Context, accountNumber int64, pin string) (*account.BalanceResponse, error)
	CloseAccount(ctx context.Context, accountNumber int64, pin string) (string, error)
	ReopenAccount(ctx context.Context, accountNumber int64) (string, error)
	RenameAccountHolder(ctx context.Context, accountNumber int64, newName string) (string, error)
	UpgradeAccountType(ctx context.Context, accountNumber int64, newType string) (string, error)

	SearchByName(name string) []*account.Account
	SearchByAccountNumber(accountNumber int64) (*account.Account, error)
	ListAccounts() []*account.Account
	ListActive() []*account.Account
	ListInactive() []*account.Account
	CountActive() int
	TopNByBalance(n int) []*account.Account
	AverageBalance() decimal.Decimal
	YoungestHolder() (*account.Account, error)
	OldestHolder() (*account.Account, error)
	SimpleInterest(accountNumber int64, rate, years decimal.Decimal) (*account.InterestResponse, error)
	CheckMinimumBalance(accountNumber int64) (*account.MinimumBalanceResponse, error)
	CheckDailyLimit(accountNumber int64) (*account.DailyLimitResponse, error)
	TransactionHistory(ctx context.Context, accountNumber int64) (*ledger.TransactionHistoryResponse, error)
	WriteTransactionLog(ctx context.Context, accountNumber int64) (string, error)

	DeleteAllAccounts(ctx context.Context) (string, error)
	ExportAccounts(ctx context.Context) (string, error)
	ImportAccounts(ctx context.Context) (string, error)
}

// Options tunes a LedgerService. Zero values fall back to defaults.
type Options struct {
	StartAccountNumber int64
	PINHashCost        int
	// LogDir receives per-account transaction log files.
	LogDir string
	// Backend labels persistence logs.
	Backend string
}

type ledgerService struct {
	accountRepo repository.AccountRepository
	txnLog      repository.TransactionLogRepository
	exportRepo  repository.AccountRepository
	clock       TimeProvider

	mu         sync.Mutex
	book       *account.Book
	nextNumber int64
	pinCost    int
	logDir     string
	backend    string
}

// NewLedgerService loads the stored ledger and returns a service owning it.
func NewLedgerService(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	txnLog repository.TransactionLogRepository,
	exportRepo repository.AccountRepository,
	clock TimeProvider,
	opts Options,
) (LedgerService, error) {
	book, err := accountRepo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	start := opts.StartAccountNumber
	if start <= 0 {
		start = 1001
	}
	if clock == nil {
		clock = NewTimeProvider()
	}

	s := &ledgerService{
		accountRepo: accountRepo,
		txnLog:      txnLog,
		exportRepo:  exportRepo,
		clock:       clock,
		book:        book,
		nextNumber:  start,
		pinCost:     opts.PINHashCost,
		logDir:      opts.LogDir,
		backend:     opts.Backend,
	}
	if book.Len() > 0 {
		s.nextNumber = book.MaxNumber() + 1
	}
	s.refreshAccountMetrics()

	logger.Info("Ledger loaded",
		zap.Int("accounts", book.Len()),
		zap.Int64("next_account_number", s.nextNumber),
		zap.String("backend", s.backend),
	)
	return s, nil
}

func (s *ledgerService) CreateAccount(ctx context.Context, req *account.CreateAccountRequest) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, s.reject(ledger.OperationCreate, 0, account.NewValidationError("name", "Name cannot be empty"))
	}
	if req.Age < 18 {
		return nil, s.reject(ledger.OperationCreate, 0, account.NewValidationError("age", "Age must be 18 or above"))
	}
	accountType, err := account.ParseAccountType(req.AccountType)
	if err != nil {
		return nil, s.reject(ledger.OperationCreate, 0, err)
	}
	floor := account.MinBalance(accountType)
	if req.InitialDeposit.LessThan(floor) {
		return nil, s.reject(ledger.OperationCreate, 0, account.NewValidationError("initial_deposit",
			fmt.Sprintf("Initial deposit must be at least %s", floor)))
	}

	acc := &account.Account{
		AccountNumber: s.nextNumber,
		Name:          name,
		Age:           req.Age,
		AccountType:   accountType,
		Balance:       req.InitialDeposit,
		Status:        account.AccountStatusActive,
		DailyTotal:    decimal.Zero,
	}
	if err := acc.SetPIN(req.PIN, s.pinCost); err != nil {
		return nil, s.reject(ledger.OperationCreate, 0, err)
	}

	s.book.Put(acc)
	s.nextNumber++

	deposit := req.InitialDeposit
	s.record(ctx, ledger.NewEntry(s.clock.Now(), acc.AccountNumber, ledger.OperationCreate, &deposit, acc.Balance))
	s.persist(ctx, ledger.OperationCreate)

	metrics.RecordOperation(string(ledger.OperationCreate))
	logger.Info("Account created",
		zap.Int64("account_number", acc.AccountNumber),
		zap.String("account_type", string(acc.AccountType)),
	)
	return acc.Clone(), nil
}

func (s *ledgerService) Authorize(ctx context.Context, accountNumber int64, pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.authorize(accountNumber, pin)
	return err
}

func (s *ledgerService) Deposit(ctx context.Context, req *ledger.DepositRequest) (*ledger.TransactionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op := ledger.OperationDeposit
	acc, err := s.authorizeActive(req.AccountNumber, req.PIN)
	if err != nil {
		return nil, s.reject(op, req.AccountNumber, err)
	}

	now := s.clock.Now()
	msg, err := acc.Deposit(req.Amount, now)
	if err != nil {
		return nil, s.reject(op, req.AccountNumber, err)
	}

	amount := req.Amount
	s.record(ctx, ledger.NewEntry(now, acc.AccountNumber, op, &amount, acc.Balance))
	s.persist(ctx, op)

	metrics.RecordTransaction(string(op), req.Amount.InexactFloat64())
	logger.Info("Deposit completed",
		zap.Int64("account_number", acc.AccountNumber),
		zap.String("amount", req.Amount.String()),
	)
	return &ledger.TransactionResponse{
		Success:       true,
		Message:       msg,
		AccountNumber: acc.AccountNumber,
		Balance:       acc.Balance,
	}, nil
}

func (s *ledgerService) Withdraw(ctx context.Context, req *ledger.WithdrawalRequest) (*ledger.TransactionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op := ledger.OperationWithdraw
	acc, err := s.authorizeActive(req.AccountNumber, req.PIN)
	if err != nil {
		return nil, s.reject(op, req.AccountNumber, err)
	}

	now := s.clock.Now()
	msg, err := acc.Withdraw(req.Amount, now)
	if err != nil {
		return nil, s.reject(op, req.AccountNumber, err)
	}

	amount := req.Amount
	s.record(ctx, ledger.NewEntry(now, acc.AccountNumber, op, &amount, acc.Balance))
	s.persist(ctx, op)

	metrics.RecordTransaction(string(op), req.Amount.InexactFloat64())
	logger.Info("Withdrawal completed",
		zap.Int64("account_number", acc.AccountNumber),
		zap.String("amount", req.Amount.String()),
	)
	return &ledger.TransactionResponse{
		Success:       true,
		Message:       msg,
		AccountNumber: acc.AccountNumber,
		Balance:       acc.Balance,
	}, nil
}

// Transfer moves money between two active accounts. Both legs are validated
// before either is applied, so a rejected transfer changes nothing.
func (s *ledgerService) Transfer(ctx context.Context, req *ledger.TransferRequest) (*ledger.TransferResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op := ledger.OperationTransferOut

	if req.FromAccount == req.ToAccount {
		return nil, s.reject(op, req.FromAccount,
			account.NewValidationError("to_account", "Cannot transfer to the same account"))
	}

	from, ok := s.book.Get(req.FromAccount)
	if !ok {
		return nil, s.reject(op, req.FromAccount, account.NotFoundError(req.FromAccount))
	}
	to, ok := s.book.Get(req.ToAccount)
	if !ok {
		return nil, s.reject(op, req.FromAccount, account.NotFoundError(req.ToAccount))
	}
	if !s.checkPIN(from, req.PIN) {
		return nil, s.reject(op, req.FromAccount, account.InvalidPinError())
	}
	if !from.IsActive() || !to.IsActive() {
		return nil, s.reject(op, req.FromAccount, account.InactiveError())
	}

	now := s.clock.Now()
	if err := from.CheckWithdraw(req.Amount, now); err != nil {
		return nil, s.reject(op, req.FromAccount, err)
	}
	if err := to.CheckDeposit(req.Amount, now); err != nil {
		return nil, s.reject(op, req.FromAccount, err)
	}

	if _, err := from.Withdraw(req.Amount, now); err != nil {
		return nil, s.reject(op, req.FromAccount, err)
	}
	if _, err := to.Deposit(req.Amount, now); err != nil {
		// unreachable once CheckDeposit has passed
		logger.Error("Transfer credit failed after debit",
			zap.Int64("from_account", from.AccountNumber),
			zap.Int64("to_account", to.AccountNumber),
			zap.Error(err),
		)
		return nil, s.reject(op, req.FromAccount, err)
	}

	amount := req.Amount
	s.record(ctx, ledger.NewEntry(now, from.AccountNumber, ledger.OperationTransferOut, &amount, from.Balance))
	s.record(ctx, ledger.NewEntry(now, to.AccountNumber, ledger.OperationTransferIn, &amount, to.Balance))
	s.persist(ctx, op)

	metrics.RecordTransaction("TRANSFER", req.Amount.InexactFloat64())
	logger.Info("Transfer completed",
		zap.Int64("from_account", from.AccountNumber),
		zap.Int64("to_account", to.AccountNumber),
		zap.String("amount", req.Amount.String()),
	)
	return &ledger.TransferResponse{
		Success:     true,
		Message:     MsgTransferred,
		FromAccount: from.AccountNumber,
		FromBalance: from.Balance,
		ToAccount:   to.AccountNumber,
		ToBalance:   to.Balance,
	}, nil
}

func (s *ledgerService) BalanceInquiry(ctx context.Context, accountNumber int64, pin string) (*account.BalanceResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.authorize(accountNumber, pin)
	if err != nil {
		return nil, err
	}
	return &account.BalanceResponse{
		AccountNumber: acc.AccountNumber,
		Balance:       acc.Balance,
		Message:       fmt.Sprintf("Balance: %s", acc.Balance.StringFixed(2)),
	}, nil
}

func (s *ledgerService) CloseAccount(ctx context.Context, accountNumber int64, pin string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op := ledger.OperationClose
	acc, err := s.authorizeActive(accountNumber, pin)
	if err != nil {
		return "", s.reject(op, accountNumber, err)
	}

	acc.Status = account.AccountStatusInactive
	s.record(ctx, ledger.NewEntry(s.clock.Now(), acc.AccountNumber, op, nil, acc.Balance))
	s.persist(ctx, op)

	metrics.RecordOperation(string(op))
	logger.Info("Account closed", zap.Int64("account_number", accountNumber))
	return MsgAccountClosed, nil
}

// ReopenAccount needs no PIN.
func (s *ledgerService) ReopenAccount(ctx context.Context, accountNumber int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op := ledger.OperationReopen
	acc, ok := s.book.Get(accountNumber)
	if !ok {
		return "", s.reject(op, accountNumber, account.NotFoundError(accountNumber))
	}
	if acc.IsActive() {
		return "", s.reject(op, accountNumber, account.AlreadyActiveError())
	}

	acc.Status = account.AccountStatusActive
	s.record(ctx, ledger.NewEntry(s.clock.Now(), acc.AccountNumber, op, nil, acc.Balance))
	s.persist(ctx, op)

	metrics.RecordOperation(string(op))
	logger.Info("Account reopened", zap.Int64("account_number", accountNumber))
	return MsgAccountReopened, nil
}

func (s *ledgerService) RenameAccountHolder(ctx context.Context, accountNumber int64, newName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op := ledger.OperationRename
	acc, ok := s.book.Get(accountNumber)
	if !ok {
		return "", s.reject(op, accountNumber, account.NotFoundError(accountNumber))
	}
	if !acc.IsActive() {
		return "", s.reject(op, accountNumber, account.InactiveError())
	}
	name := strings.TrimSpace(newName)
	if name == "" {
		return "", s.reject(op, accountNumber, account.NewValidationError("name", "Name cannot be empty"))
	}

	acc.Name = name
	s.record(ctx, ledger.NewEntry(s.clock.Now(), acc.AccountNumber, op, nil, acc.Balance))
	s.persist(ctx, op)

	metrics.RecordOperation(string(op))
	logger.Info("Account holder renamed", zap.Int64("account_number", accountNumber))
	return MsgAccountRenamed, nil
}

// UpgradeAccountType switches the account type. The new floor is not checked
// against the current balance.
func (s *ledgerService) UpgradeAccountType(ctx context.Context, accountNumber int64, newType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op := ledger.OperationUpgradeType
	acc, ok := s.book.Get(accountNumber)
	if !ok {
		return "", s.reject(op, accountNumber, account.NotFoundError(accountNumber))
	}
	accountType, err := account.ParseAccountType(newType)
	if err != nil {
		return "", s.reject(op, accountNumber, err)
	}

	acc.AccountType = accountType
	s.record(ctx, ledger.NewEntry(s.clock.Now(), acc.AccountNumber, op, nil, acc.Balance))
	s.persist(ctx, op)

	metrics.RecordOperation(string(op))
	logger.Info("Account type upgraded",
		zap.Int64("account_number", accountNumber),
		zap.String("account_type", string(accountType)),
	)
	return fmt.Sprintf("Account type upgraded to %s", accountType), nil
}

func (s *ledgerService) SearchByName(name string) []*account.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := strings.ToLower(strings.TrimSpace(name))
	return s.filter(func(acc *account.Account) bool {
		return strings.ToLower(acc.Name) == target
	})
}

func (s *ledgerService) SearchByAccountNumber(accountNumber int64) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.book.Get(accountNumber)
	if !ok {
		return nil, account.NotFoundError(accountNumber)
	}
	return acc.Clone(), nil
}

func (s *ledgerService) ListAccounts() []*account.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filter(func(*account.Account) bool { return true })
}

func (s *ledgerService) ListActive() []*account.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filter((*account.Account).IsActive)
}

func (s *ledgerService) ListInactive() []*account.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filter(func(acc *account.Account) bool { return !acc.IsActive() })
}

func (s *ledgerService) CountActive() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, acc := range s.book.Accounts() {
		if acc.IsActive() {
			count++
		}
	}
	return count
}

// TopNByBalance orders by balance descending; equal balances keep book order.
func (s *ledgerService) TopNByBalance(n int) []*account.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 {
		return []*account.Account{}
	}

	accounts := s.filter(func(*account.Account) bool { return true })
	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].Balance.GreaterThan(accounts[j].Balance)
	})
	if n < len(accounts) {
		accounts = accounts[:n]
	}
	return accounts
}

func (s *ledgerService) AverageBalance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.book.Len() == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, acc := range s.book.Accounts() {
		total = total.Add(acc.Balance)
	}
	return total.Div(decimal.NewFromInt(int64(s.book.Len())))
}

// YoungestHolder returns the first account with the lowest age.
func (s *ledgerService) YoungestHolder() (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var youngest *account.Account
	for _, acc := range s.book.Accounts() {
		if youngest == nil || acc.Age < youngest.Age {
			youngest = acc
		}
	}
	if youngest == nil {
		return nil, account.NoAccountsError()
	}
	return youngest.Clone(), nil
}

// OldestHolder returns the last account with the highest age.
func (s *ledgerService) OldestHolder() (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var oldest *account.Account
	for _, acc := range s.book.Accounts() {
		if oldest == nil || acc.Age >= oldest.Age {
			oldest = acc
		}
	}
	if oldest == nil {
		return nil, account.NoAccountsError()
	}
	return oldest.Clone(), nil
}

func (s *ledgerService) SimpleInterest(accountNumber int64, rate, years decimal.Decimal) (*account.InterestResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.book.Get(accountNumber)
	if !ok {
		return nil, account.NotFoundError(accountNumber)
	}

	interest := acc.Balance.Mul(rate).Mul(years).Div(hundred)
	return &account.InterestResponse{
		AccountNumber: accountNumber,
		Principal:     acc.Balance,
		Rate:          rate,
		Years:         years,
		Interest:      interest,
		Message:       fmt.Sprintf("Simple Interest for %s years at %s%%: %s", years, rate, interest.StringFixed(2)),
	}, nil
}

func (s *ledgerService) CheckMinimumBalance(accountNumber int64) (*account.MinimumBalanceResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.book.Get(accountNumber)
	if !ok {
		return nil, account.NotFoundError(accountNumber)
	}

	floor := account.MinBalance(acc.AccountType)
	resp := &account.MinimumBalanceResponse{
		AccountNumber: accountNumber,
		Balance:       acc.Balance,
		Minimum:       floor,
		Maintained:    acc.MeetsMinimumBalance(),
		Message:       MsgMinimumKept,
	}
	if !resp.Maintained {
		resp.Message = fmt.Sprintf("Balance below minimum required: %s", floor)
	}
	return resp, nil
}

func (s *ledgerService) CheckDailyLimit(accountNumber int64) (*account.DailyLimitResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.book.Get(accountNumber)
	if !ok {
		return nil, account.NotFoundError(accountNumber)
	}

	now := s.clock.Now()
	return &account.DailyLimitResponse{
		AccountNumber: accountNumber,
		Date:          now.Format(account.DateLayout),
		Used:          acc.DailyUsed(now),
		Remaining:     acc.DailyRemaining(now),
		Limit:         account.DailyLimit,
	}, nil
}

func (s *ledgerService) TransactionHistory(ctx context.Context, accountNumber int64) (*ledger.TransactionHistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.book.Has(accountNumber) {
		return nil, account.NotFoundError(accountNumber)
	}

	records, err := s.txnLog.ReadByAccount(ctx, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction history: %w", err)
	}
	return &ledger.TransactionHistoryResponse{
		AccountNumber: accountNumber,
		Records:       records,
		Total:         len(records),
	}, nil
}

func (s *ledgerService) WriteTransactionLog(ctx context.Context, accountNumber int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.book.Has(accountNumber) {
		return "", account.NotFoundError(accountNumber)
	}

	records, err := s.txnLog.ReadByAccount(ctx, accountNumber)
	if err != nil {
		return "", fmt.Errorf("failed to read transaction history: %w", err)
	}
	path, err := repository.WriteAccountLog(s.logDir, accountNumber, records)
	if err != nil {
		return "", err
	}

	logger.Info("Transaction log written",
		zap.Int64("account_number", accountNumber),
		zap.String("path", path),
		zap.Int("records", len(records)),
	)
	return fmt.Sprintf("Transaction log written to %s", path), nil
}

// DeleteAllAccounts empties the ledger. Issued numbers are not reused.
func (s *ledgerService) DeleteAllAccounts(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := s.book.Len()
	s.book.Clear()
	s.persist(ctx, "DELETE_ALL")

	metrics.RecordOperation("DELETE_ALL")
	logger.Warn("All accounts deleted", zap.Int("deleted", deleted))
	return MsgAllDeleted, nil
}

func (s *ledgerService) ExportAccounts(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.exportRepo.SaveAll(ctx, s.book); err != nil {
		metrics.RecordOperationError("EXPORT", account.ErrorType(err))
		logger.Error("Failed to export accounts", zap.Error(err))
		return "", fmt.Errorf("failed to export accounts: %w", err)
	}

	metrics.RecordOperation("EXPORT")
	logger.Info("Accounts exported", zap.Int("accounts", s.book.Len()))
	return MsgAccountsExported, nil
}

// ImportAccounts merges exported accounts whose numbers are not already in use.
func (s *ledgerService) ImportAccounts(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	imported, err := s.exportRepo.LoadAll(ctx)
	if err != nil {
		metrics.RecordOperationError("IMPORT", account.ErrorType(err))
		logger.Error("Failed to import accounts", zap.Error(err))
		return "", fmt.Errorf("failed to import accounts: %w", err)
	}

	added := 0
	for _, acc := range imported.Accounts() {
		if s.book.Has(acc.AccountNumber) {
			continue
		}
		s.book.Put(acc)
		added++
	}
	s.advanceCounter()
	s.persist(ctx, "IMPORT")

	metrics.RecordOperation("IMPORT")
	logger.Info("Accounts imported",
		zap.Int("added", added),
		zap.Int("skipped", imported.Len()-added),
	)
	return fmt.Sprintf("Accounts imported successfully. %d added, %d skipped.", added, imported.Len()-added), nil
}

// authorize looks the account up and checks its PIN.
func (s *ledgerService) authorize(accountNumber int64, pin string) (*account.Account, error) {
	acc, ok := s.book.Get(accountNumber)
	if !ok {
		return nil, account.NotFoundError(accountNumber)
	}
	if !s.checkPIN(acc, pin) {
		return nil, account.InvalidPinError()
	}
	return acc, nil
}

func (s *ledgerService) authorizeActive(accountNumber int64, pin string) (*account.Account, error) {
	acc, err := s.authorize(accountNumber, pin)
	if err != nil {
		return nil, err
	}
	if !acc.IsActive() {
		return nil, account.InactiveError()
	}
	return acc, nil
}

func (s *ledgerService) checkPIN(acc *account.Account, pin string) bool {
	ok := acc.VerifyPIN(pin)
	metrics.RecordPinCheck(ok)
	if !ok {
		logger.Warn("PIN check failed", zap.Int64("account_number", acc.AccountNumber))
	}
	return ok
}

func (s *ledgerService) reject(op ledger.Operation, accountNumber int64, err error) error {
	metrics.RecordOperationError(string(op), account.ErrorType(err))
	logger.Warn("Operation rejected",
		zap.String("operation", string(op)),
		zap.Int64("account_number", accountNumber),
		zap.Error(err),
	)
	return err
}

// record appends to the transaction log. A failed append is logged and the
// operation still stands.
func (s *ledgerService) record(ctx context.Context, entry ledger.Entry) {
	if err := s.txnLog.Append(ctx, entry); err != nil {
		logger.Error("Failed to append transaction log",
			zap.String("event_id", entry.EventID.String()),
			zap.Int64("account_number", entry.AccountNumber),
			zap.String("operation", string(entry.Operation)),
			zap.Error(err),
		)
	}
}

// persist writes the whole book. The in-memory change is kept on failure.
func (s *ledgerService) persist(ctx context.Context, op ledger.Operation) {
	if err := s.accountRepo.SaveAll(ctx, s.book); err != nil {
		logger.Error("Failed to persist accounts",
			zap.String("operation", string(op)),
			zap.String("backend", s.backend),
			zap.Error(err),
		)
	}
	s.refreshAccountMetrics()
}

func (s *ledgerService) filter(keep func(*account.Account) bool) []*account.Account {
	out := []*account.Account{}
	for _, acc := range s.book.Accounts() {
		if keep(acc) {
			out = append(out, acc.Clone())
		}
	}
	return out
}

// advanceCounter moves the next number past every held account. It never
// moves backwards.
func (s *ledgerService) advanceCounter() {
	if next := s.book.MaxNumber() + 1; next > s.nextNumber {
		s.nextNumber = next
	}
}

func (s *ledgerService) refreshAccountMetrics() {
	counts := make(map[[2]string]int)
	for _, t := range account.AccountTypes() {
		for _, st := range []account.AccountStatus{account.AccountStatusActive, account.AccountStatusInactive} {
			counts[[2]string{string(t), string(st)}] = 0
		}
	}
	for _, acc := range s.book.Accounts() {
		counts[[2]string{string(acc.AccountType), string(acc.Status)}]++
	}
	for key, n := range counts {
		metrics.UpdateAccountMetrics(key[0], key[1], n)
	}
}
