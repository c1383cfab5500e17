package handlers

import (
	"context"

	"github.com/darisadam/gdbank-ledger/internal/domain/account"
	"github.com/darisadam/gdbank-ledger/internal/domain/ledger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockLedgerService is a mock implementation of service.LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) CreateAccount(ctx context.Context, req *account.CreateAccountRequest) (*account.Account, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockLedgerService) Authorize(ctx context.Context, accountNumber int64, pin string) error {
	args := m.Called(ctx, accountNumber, pin)
	return args.Error(0)
}

func (m *MockLedgerService) Deposit(ctx context.Context, req *ledger.DepositRequest) (*ledger.TransactionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.TransactionResponse), args.Error(1)
}

func (m *MockLedgerService) Withdraw(ctx context.Context, req *ledger.WithdrawalRequest) (*ledger.TransactionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.TransactionResponse), args.Error(1)
}

func (m *MockLedgerService) Transfer(ctx context.Context, req *ledger.TransferRequest) (*ledger.TransferResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.TransferResponse), args.Error(1)
}

func (m *MockLedgerService) BalanceInquiry(ctx context.Context, accountNumber int64, pin string) (*account.BalanceResponse, error) {
	args := m.Called(ctx, accountNumber, pin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.BalanceResponse), args.Error(1)
}

func (m *MockLedgerService) CloseAccount(ctx context.Context, accountNumber int64, pin string) (string, error) {
	args := m.Called(ctx, accountNumber, pin)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerService) ReopenAccount(ctx context.Context, accountNumber int64) (string, error) {
	args := m.Called(ctx, accountNumber)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerService) RenameAccountHolder(ctx context.Context, accountNumber int64, newName string) (string, error) {
	args := m.Called(ctx, accountNumber, newName)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerService) UpgradeAccountType(ctx context.Context, accountNumber int64, newType string) (string, error) {
	args := m.Called(ctx, accountNumber, newType)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerService) SearchByName(name string) []*account.Account {
	args := m.Called(name)
	return args.Get(0).([]*account.Account)
}

func (m *MockLedgerService) SearchByAccountNumber(accountNumber int64) (*account.Account, error) {
	args := m.Called(accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockLedgerService) ListAccounts() []*account.Account {
	args := m.Called()
	return args.Get(0).([]*account.Account)
}

func (m *MockLedgerService) ListActive() []*account.Account {
	args := m.Called()
	return args.Get(0).([]*account.Account)
}

func (m *MockLedgerService) ListInactive() []*account.Account {
	args := m.Called()
	return args.Get(0).([]*account.Account)
}

func (m *MockLedgerService) CountActive() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockLedgerService) TopNByBalance(n int) []*account.Account {
	args := m.Called(n)
	return args.Get(0).([]*account.Account)
}

func (m *MockLedgerService) AverageBalance() decimal.Decimal {
	args := m.Called()
	return args.Get(0).(decimal.Decimal)
}

func (m *MockLedgerService) YoungestHolder() (*account.Account, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockLedgerService) OldestHolder() (*account.Account, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockLedgerService) SimpleInterest(accountNumber int64, rate, years decimal.Decimal) (*account.InterestResponse, error) {
	args := m.Called(accountNumber, rate, years)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.InterestResponse), args.Error(1)
}

func (m *MockLedgerService) CheckMinimumBalance(accountNumber int64) (*account.MinimumBalanceResponse, error) {
	args := m.Called(accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.MinimumBalanceResponse), args.Error(1)
}

func (m *MockLedgerService) CheckDailyLimit(accountNumber int64) (*account.DailyLimitResponse, error) {
	args := m.Called(accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.DailyLimitResponse), args.Error(1)
}

func (m *MockLedgerService) TransactionHistory(ctx context.Context, accountNumber int64) (*ledger.TransactionHistoryResponse, error) {
	args := m.Called(ctx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.TransactionHistoryResponse), args.Error(1)
}

func (m *MockLedgerService) WriteTransactionLog(ctx context.Context, accountNumber int64) (string, error) {
	args := m.Called(ctx, accountNumber)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerService) DeleteAllAccounts(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerService) ExportAccounts(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerService) ImportAccounts(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}
