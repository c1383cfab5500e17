package api

import (
	"context"
	"net/http"
	"time"

	"github.com/darisadam/gdbank-ledger/internal/api/handlers"
	"github.com/darisadam/gdbank-ledger/internal/api/middleware"
	"github.com/darisadam/gdbank-ledger/internal/pkg/ddos"
	"github.com/darisadam/gdbank-ledger/internal/pkg/ratelimit"
	"github.com/darisadam/gdbank-ledger/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const (
	ServiceName = "GlobalDigital Ledger API"
	Version     = "1.0.0"
)

// ReadyCheck reports whether a backing store is reachable.
type ReadyCheck func(ctx context.Context) error

type RouterOptions struct {
	AllowedOrigins []string
	// Redis enables maintenance mode, rate limiting and flood protection.
	// Leave nil to run without them.
	Redis                  *redis.Client
	MaintenanceBypassToken string
	RateLimitEnabled       bool
	// Protection is the flood guard shared with the traffic monitor.
	Protection  *ddos.Protection
	ReadyChecks map[string]ReadyCheck
}

func NewRouter(ledgerService service.LedgerService, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(opts.AllowedOrigins...))

	var limiter *ratelimit.RateLimiter
	if opts.Redis != nil {
		router.Use(middleware.MaintenanceMiddleware(opts.Redis, opts.MaintenanceBypassToken))
		if opts.Protection != nil {
			router.Use(middleware.DDoSMiddleware(opts.Protection))
		}
		if opts.RateLimitEnabled {
			limiter = ratelimit.NewRateLimiter(opts.Redis)
			router.Use(middleware.RateLimitMiddleware(limiter))
			router.Use(middleware.SuspiciousActivityMiddleware(limiter))
		}
	}

	registerOpsRoutes(router, opts.ReadyChecks)

	accountHandler := handlers.NewAccountHandler(ledgerService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService)
	reportHandler := handlers.NewReportHandler(ledgerService)
	adminHandler := handlers.NewAdminHandler(ledgerService)

	v1 := router.Group("/api/v1")
	{
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", accountHandler.CreateAccount)
			accounts.GET("", accountHandler.ListAccounts)
			accounts.DELETE("", adminHandler.DeleteAllAccounts)

			account := accounts.Group("/:number")
			if limiter != nil {
				account.Use(middleware.AccountRateLimitMiddleware(limiter))
			}
			account.GET("", accountHandler.GetAccount)
			account.GET("/balance", accountHandler.GetBalance)
			account.POST("/close", accountHandler.CloseAccount)
			account.POST("/reopen", accountHandler.ReopenAccount)
			account.PATCH("/name", accountHandler.RenameAccountHolder)
			account.PATCH("/type", accountHandler.UpgradeAccountType)
			account.GET("/transactions", accountHandler.GetTransactionHistory)
			account.POST("/transactions/log", accountHandler.WriteTransactionLog)
			account.GET("/minimum-balance", accountHandler.CheckMinimumBalance)
			account.GET("/daily-limit", accountHandler.CheckDailyLimit)
			account.GET("/interest", accountHandler.SimpleInterest)
		}

		transactions := v1.Group("/transactions")
		{
			transactions.POST("/deposit", transactionHandler.Deposit)
			transactions.POST("/withdraw", transactionHandler.Withdraw)
			transactions.POST("/transfer", transactionHandler.Transfer)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/active-count", reportHandler.ActiveCount)
			reports.GET("/top", reportHandler.TopByBalance)
			reports.GET("/average-balance", reportHandler.AverageBalance)
			reports.GET("/youngest", reportHandler.Youngest)
			reports.GET("/oldest", reportHandler.Oldest)
		}

		admin := v1.Group("/admin")
		{
			admin.POST("/export", adminHandler.ExportAccounts)
			admin.POST("/import", adminHandler.ImportAccounts)
		}
	}

	return router
}

func registerOpsRoutes(router *gin.Engine, checks map[string]ReadyCheck) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		failed := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"checks": failed,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
		})
	})

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": ServiceName,
			"version": Version,
			"status":  "operational",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
