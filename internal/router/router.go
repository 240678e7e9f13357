package router

import (
	"net/http"
	"time"

	"kos-manager/internal/config"
	"kos-manager/internal/handler"
	"kos-manager/internal/middleware"
	"kos-manager/internal/notify"
	"kos-manager/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options carries the collaborators that differ between production and tests.
type Options struct {
	Notifier service.Notifier
	Clock    service.Clock
}

// SetupRouter configures the Gin engine with middleware and all API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB, log *zap.Logger, opts Options) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	if log == nil {
		log = zap.NewNop()
	}
	handler.RegisterValidation()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	if len(cfg.Server.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	clock := opts.Clock
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(log)
	}
	money := handler.Money(cfg.App.CurrencySymbol)

	authSvc := &service.AuthService{
		DB:          db,
		JWTSecret:   cfg.JWT.Secret,
		Issuer:      cfg.JWT.Issuer,
		TokenTTL:    time.Duration(cfg.JWT.ExpireHours) * time.Hour,
		RememberTTL: time.Duration(cfg.JWT.RememberDays) * 24 * time.Hour,
		BcryptCost:  cfg.Security.BcryptCost,
		Clock:       clock,
	}
	roomSvc := &service.RoomService{DB: db}
	tenantSvc := &service.TenantService{DB: db, Clock: clock}
	paymentSvc := &service.PaymentService{DB: db, Clock: clock}
	expenseSvc := &service.ExpenseService{DB: db}
	reportSvc := &service.ReportService{DB: db}
	reminderSvc := &service.ReminderService{
		Payments:    paymentSvc,
		Notifier:    notifier,
		DaysAhead:   cfg.Reminder.DaysAhead,
		Concurrency: cfg.Reminder.Concurrency,
		Log:         log,
	}
	backupSvc := &service.BackupService{
		DB:         db,
		EncryptKey: cfg.Security.EncryptionKey,
		Dir:        cfg.Backup.Dir,
		Clock:      clock,
	}

	// ====== API ======
	api := r.Group("/api")

	// 登录/注册接口（不需要鉴权）
	authHandler := handler.NewAuthHandler(authSvc, cfg.Server.Mode == gin.ReleaseMode)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// 需要登录才能访问的接口
	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(authSvc),
		middleware.AuditMiddleware(db, log),
	)

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/me", handler.GetMe)
	protected.POST("/profile/password", handler.ChangePassword(authSvc))

	dashboardHandler := handler.NewDashboardHandler(paymentSvc, reportSvc, clock, money)
	protected.GET("/dashboard", dashboardHandler.Show)
	protected.GET("/dashboard/revenue-data", dashboardHandler.RevenueData)

	roomHandler := handler.NewRoomHandler(roomSvc, money)
	protected.GET("/rooms", roomHandler.List)
	protected.POST("/rooms", roomHandler.Create)
	protected.GET("/rooms/:id", roomHandler.Show)
	protected.PUT("/rooms/:id", roomHandler.Update)
	protected.DELETE("/rooms/:id", roomHandler.Delete)

	tenantHandler := handler.NewTenantHandler(tenantSvc, money)
	protected.GET("/tenants", tenantHandler.List)
	protected.POST("/tenants", tenantHandler.Create)
	protected.GET("/tenants/active", tenantHandler.Active)
	protected.GET("/tenants/:id", tenantHandler.Show)
	protected.PUT("/tenants/:id", tenantHandler.Update)
	protected.DELETE("/tenants/:id", tenantHandler.Delete)
	protected.POST("/tenants/:id/deactivate", tenantHandler.Deactivate)

	paymentHandler := handler.NewPaymentHandler(paymentSvc, reminderSvc, clock, money)
	protected.GET("/payments", paymentHandler.List)
	protected.POST("/payments", paymentHandler.Create)
	protected.GET("/payments/:id", paymentHandler.Show)
	protected.PUT("/payments/:id", paymentHandler.Update)
	protected.DELETE("/payments/:id", paymentHandler.Delete)
	protected.POST("/payments/:id/mark-paid", paymentHandler.MarkPaid)
	protected.POST("/payments/:id/remind", paymentHandler.Remind)

	expenseHandler := handler.NewExpenseHandler(expenseSvc, money)
	protected.GET("/expenses", expenseHandler.List)
	protected.POST("/expenses", expenseHandler.Create)
	protected.PUT("/expenses/:id", expenseHandler.Update)
	protected.DELETE("/expenses/:id", expenseHandler.Delete)

	reportHandler := handler.NewReportHandler(reportSvc, clock, money)
	protected.GET("/reports/financial", reportHandler.Financial)
	protected.GET("/reports/financial.xlsx", reportHandler.FinancialXLSX)

	exportHandler := handler.NewExportHandler(paymentSvc, clock)
	protected.GET("/export/payments.csv", exportHandler.PaymentsCSV)
	protected.GET("/export/payments.xlsx", exportHandler.PaymentsXLSX)

	backupHandler := handler.NewBackupHandler(backupSvc)
	protected.POST("/backups", backupHandler.CreateBackup)
	protected.GET("/backups", backupHandler.ListBackups)
	protected.GET("/backups/:id/download", backupHandler.DownloadBackup)
	protected.POST("/backups/:id/restore", backupHandler.RestoreBackup)
	protected.DELETE("/backups/:id", backupHandler.DeleteBackup)

	logHandler := handler.NewLogHandler(db)
	protected.GET("/activity", logHandler.ListLogs)

	return r
}
