package main

import (
	"context"
	"fmt"
	"log"

	common_api "supplier-portal/internal/common/api"
	"supplier-portal/internal/config"
	"supplier-portal/internal/database"
	"supplier-portal/internal/features/account"
	"supplier-portal/internal/features/auth"
	cron_feature "supplier-portal/internal/features/cron"
	"supplier-portal/internal/features/email"
	"supplier-portal/internal/features/email_template"
	"supplier-portal/internal/features/invoice"
	"supplier-portal/internal/features/item"
	"supplier-portal/internal/features/message"
	"supplier-portal/internal/features/notification"
	"supplier-portal/internal/features/purchase_order"
	"supplier-portal/internal/features/sync"
	"supplier-portal/internal/features/system"
	"supplier-portal/internal/features/teams"
	"supplier-portal/internal/kv"
	"supplier-portal/internal/logger"
	"supplier-portal/internal/metrics"
	"supplier-portal/internal/middleware"
	"supplier-portal/internal/netsuite"
	"supplier-portal/internal/session"

	_ "supplier-portal/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(logger *zap.Logger, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(logger))
	app.Use(m.Middleware())
	app.Use(middleware.CORSMiddleware())

	return app
}

// NewKVStore picks Redis when it is configured and an in-process store otherwise.
func NewKVStore(rdb *redis.Client) kv.Store {
	if rdb == nil {
		return kv.NewMemoryStore()
	}
	return kv.NewRedisStore(rdb, "portal:")
}

func NewSessionStore(store kv.Store) session.Store {
	return session.NewKVStore(store)
}

func NewTokenIssuer(cfg *config.Config) *session.TokenIssuer {
	return session.NewTokenIssuer(cfg.JWTSecret, cfg.AppId)
}

func NewOTPStore(cfg *config.Config, store kv.Store) *auth.OTPStore {
	return auth.NewOTPStore(store, cfg.Auth.OTPTTL)
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, logger *zap.Logger) {
	logger.Info("Registering routes", zap.Int("count", len(routes)))
	for _, route := range routes {
		logger.Debug("Setting up route", zap.String("api", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// Migrate creates or updates every table the portal owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&account.Account{},
		&account.AccountProfile{},
		&account.User{},
		&account.AccountUser{},
		&item.Item{},
		&item.Subscription{},
		&purchase_order.PurchaseOrder{},
		&purchase_order.LineItem{},
		&invoice.Invoice{},
		&message.Conversation{},
		&message.Message{},
		&sync.SyncLog{},
		&email_template.EmailTemplate{},
		&email.EmailLog{},
	)
}

// SeedTemplates makes sure every template the portal sends exists.
func SeedTemplates(lc fx.Lifecycle, templates email_template.EmailTemplateService, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := templates.SeedDefaults(ctx); err != nil {
				logger.Error("Failed to seed email templates", zap.Error(err))
			}
			return nil
		},
	})
}

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				logger.Info("HTTP server listening", zap.String("addr", port))
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

func StartScheduler(lc fx.Lifecycle, cronService cron_feature.CronService) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return cronService.InitializeScheduler(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return cronService.StopScheduler()
		},
	})
}

// StopSyncJobs waits for manually triggered background syncs on shutdown.
func StopSyncJobs(lc fx.Lifecycle, syncService sync.SyncService) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return syncService.Shutdown(ctx)
		},
	})
}

// @title           Supplier Portal API
// @version         1.0
// @description     Vendor, dealer and staff portal kept in sync with NetSuite.

// @contact.name    Portal Support

// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Storage
			database.NewMongo,
			database.NewDatabase,
			database.NewRedis,
			NewKVStore,
			NewSessionStore,
			NewTokenIssuer,
			NewOTPStore,

			metrics.NewMetrics,
			middleware.NewAuth,
			NewFiberServer,
			netsuite.NewClient,
			teams.NewNotifier,

			// Repositories
			account.NewAccountRepository,
			account.NewUserRepository,
			item.NewItemRepository,
			item.NewSubscriptionRepository,
			purchase_order.NewPurchaseOrderRepository,
			invoice.NewInvoiceRepository,
			message.NewMessageRepository,
			email.NewEmailRepository,
			email_template.NewEmailTemplateRepository,
			sync.NewTxBeginner,
			sync.NewSyncLogRepository,

			// Services
			email.NewEmailService,
			email_template.NewEmailTemplateService,
			notification.NewExpressionChecker,
			notification.NewTrigger,
			account.NewAccountService,
			item.NewItemService,
			purchase_order.NewPurchaseOrderService,
			invoice.NewInvoiceService,
			message.NewHub,
			message.NewMessageService,
			auth.NewAuthService,
			sync.NewLocker,
			sync.NewSyncService,
			cron_feature.NewCronService,

			// Controllers
			auth.NewAuthController,
			account.NewAccountController,
			item.NewItemController,
			purchase_order.NewPurchaseOrderController,
			invoice.NewInvoiceController,
			message.NewMessageController,
			email_template.NewEmailTemplateController,
			sync.NewSyncController,
			cron_feature.NewCronController,

			// Routes
			AsRoute(auth.NewAuthApi),
			AsRoute(account.NewAccountApi),
			AsRoute(item.NewItemApi),
			AsRoute(purchase_order.NewPurchaseOrderApi),
			AsRoute(invoice.NewInvoiceApi),
			AsRoute(message.NewMessageApi),
			AsRoute(email_template.NewEmailTemplateApi),
			AsRoute(sync.NewSyncApi),
			AsRoute(cron_feature.NewCronApi),
			AsRoute(metrics.NewMetricsApi),
			AsRoute(system.NewSystemApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			Migrate,
			SeedTemplates,
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			StartScheduler,
			StopSyncJobs,
		),
	)

	app.Run()
}
