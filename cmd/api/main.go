package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/darisadam/gdbank-ledger/internal/api"
	"github.com/darisadam/gdbank-ledger/internal/api/middleware"
	"github.com/darisadam/gdbank-ledger/internal/config"
	"github.com/darisadam/gdbank-ledger/internal/pkg/ddos"
	"github.com/darisadam/gdbank-ledger/internal/pkg/logger"
	"github.com/darisadam/gdbank-ledger/internal/pkg/metrics"
	"github.com/darisadam/gdbank-ledger/internal/repository"
	"github.com/darisadam/gdbank-ledger/internal/service"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type stores struct {
	accounts repository.AccountRepository
	txnLog   repository.TransactionLogRepository
	export   repository.AccountRepository
	ready    map[string]api.ReadyCheck
	closers  []func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Env)
	defer func() {
		_ = logger.Sync()
	}()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		logger.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))
	}

	st, err := openStores(ctx, cfg, redisClient)
	if err != nil {
		logger.Fatal("Failed to open store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer func() {
		for _, closeFn := range st.closers {
			_ = closeFn()
		}
	}()

	ledgerService, err := service.NewLedgerService(ctx, st.accounts, st.txnLog, st.export, service.NewTimeProvider(), service.Options{
		StartAccountNumber: cfg.StartAccountNumber,
		PINHashCost:        cfg.PINHashCost,
		LogDir:             cfg.DataDir,
		Backend:            cfg.StoreBackend,
	})
	if err != nil {
		logger.Fatal("Failed to load ledger", zap.Error(err))
	}

	metrics.SetSystemInfo(api.Version, cfg.StoreBackend, runtime.Version())

	var protection *ddos.Protection
	if redisClient != nil {
		protection = ddos.NewProtection(redisClient, middleware.MaintenanceKey, ddos.DefaultThresholds)
		go protection.Monitor(ctx, 10*time.Second)
	}

	router := api.NewRouter(ledgerService, api.RouterOptions{
		AllowedOrigins:         cfg.CORSAllowedOrigins,
		Redis:                  redisClient,
		MaintenanceBypassToken: cfg.MaintenanceBypassToken,
		RateLimitEnabled:       cfg.RateLimitEnabled,
		Protection:             protection,
		ReadyChecks:            st.ready,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("port", cfg.Port),
		zap.String("backend", cfg.StoreBackend),
		zap.String("env", cfg.Env),
	)

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func openStores(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (*stores, error) {
	st := &stores{ready: map[string]api.ReadyCheck{}}
	if redisClient != nil {
		st.ready["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		st.closers = append(st.closers, redisClient.Close)
	}

	switch cfg.StoreBackend {
	case config.BackendRedis:
		st.accounts = repository.NewRedisAccountRepository(redisClient, "main")
		st.export = repository.NewRedisAccountRepository(redisClient, "export")
		st.txnLog = repository.NewRedisTransactionLogRepository(redisClient)

	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)

		st.accounts = repository.NewPostgresAccountRepository(db, "accounts")
		st.export = repository.NewPostgresAccountRepository(db, "accounts_export")
		st.txnLog = repository.NewPostgresTransactionLogRepository(db)
		st.ready["postgres"] = db.PingContext
		st.closers = append(st.closers, db.Close)

	default:
		st.accounts = repository.NewFileAccountRepository(cfg.AccountsFile())
		st.export = repository.NewFileAccountRepository(cfg.ExportFile())
		st.txnLog = repository.NewFileTransactionLogRepository(cfg.TransactionsFile())
	}

	return st, nil
}
