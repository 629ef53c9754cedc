package router

import (
	"net/http"

	"receipt-ledger/internal/config"
	"receipt-ledger/internal/database"
	"receipt-ledger/internal/events"
	"receipt-ledger/internal/handler"
	"receipt-ledger/internal/logger"
	"receipt-ledger/internal/middleware"
	"receipt-ledger/internal/receiptparser"
	"receipt-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Deps are the collaborators built in main and shared by all handlers.
type Deps struct {
	DB        *gorm.DB
	Logger    zerolog.Logger
	Parser    receiptparser.Parser
	Publisher events.Publisher
}

// SetupRouter configures the gin engine and every API route.
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(deps.Logger), middleware.Recovery())

	db := deps.DB
	r.GET("/healthz", func(c *gin.Context) {
		if err := database.Ping(c.Request.Context(), db); err != nil {
			logger.FromContext(c.Request.Context()).Error().Err(err).Msg("health check")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	paging := service.Paging{Default: cfg.App.PageSize, Max: cfg.App.MaxPageSize}
	receipts := service.NewReceiptService(db, deps.Publisher, paging)
	transactions := service.NewTransactionService(db, paging)
	reports := service.NewReportService(db)
	currencies := service.NewCurrencyService(db)

	// ====== API ======
	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(db, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret, db),
		middleware.AuditMiddleware(db, cfg.Security.EncryptionKey),
	)

	protected.GET("/me", handler.GetMe)
	protected.POST("/profile", handler.UpdateProfile(db))
	protected.POST("/profile/password", handler.ChangePassword(db, cfg.Security.BcryptCost))

	receiptHandler := handler.NewReceiptHandler(receipts, deps.Parser, cfg.ReceiptParser.MaxUploadMB)
	protected.GET("/receipts", receiptHandler.ListReceipts)
	protected.POST("/receipts", receiptHandler.CreateReceipt)
	protected.POST("/receipts/parse", receiptHandler.ParseReceipt)
	protected.POST("/receipts/parse/sample", receiptHandler.ParseSample)
	protected.GET("/receipts/:id", receiptHandler.GetReceipt)
	protected.PUT("/receipts/:id", receiptHandler.UpdateReceipt)
	protected.DELETE("/receipts/:id", receiptHandler.DeleteReceipt)

	transactionHandler := handler.NewTransactionHandler(transactions)
	protected.GET("/transactions", transactionHandler.ListTransactions)
	protected.POST("/transactions", transactionHandler.CreateTransaction)
	protected.DELETE("/transactions/:id", transactionHandler.DeleteTransaction)

	reportHandler := handler.NewReportHandler(reports)
	protected.GET("/report/expense/months/summary", reportHandler.ExpenseSummary)
	protected.GET("/report/income/months/summary", reportHandler.IncomeSummary)
	protected.GET("/report/transactions", reportHandler.Transactions)

	currencyHandler := handler.NewCurrencyHandler(currencies)
	protected.GET("/currencies", currencyHandler.ListCurrencies)
	protected.GET("/currencies/convert", currencyHandler.Convert)
	protected.GET("/currencies/:id", currencyHandler.GetCurrency)

	exportHandler := handler.NewExportHandler(reports)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	backupHandler := handler.NewBackupHandler(db, cfg.Security.EncryptionKey, cfg.Backup.Dir)
	protected.POST("/backups", backupHandler.CreateBackup)
	protected.GET("/backups", backupHandler.ListBackups)
	protected.GET("/backups/:id/download", backupHandler.DownloadBackup)
	protected.POST("/backups/:id/restore", backupHandler.RestoreBackup)
	protected.DELETE("/backups/:id", backupHandler.DeleteBackup)

	logHandler := handler.NewLogHandler(db, cfg.Security.EncryptionKey)
	protected.GET("/logs", logHandler.ListLogs)
	protected.GET("/history", logHandler.ListReceiptHistory)

	return r
}
