// Command sync runs one NetSuite sync (or all of them) and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"supplier-portal/internal/config"
	"supplier-portal/internal/database"
	"supplier-portal/internal/features/email"
	"supplier-portal/internal/features/email_template"
	"supplier-portal/internal/features/notification"
	"supplier-portal/internal/features/sync"
	"supplier-portal/internal/features/teams"
	"supplier-portal/internal/logger"
	"supplier-portal/internal/metrics"
	"supplier-portal/internal/netsuite"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

type options struct {
	syncType string
	timeout  time.Duration
}

func run(lc fx.Lifecycle, shutdowner fx.Shutdowner, opts options, svc sync.SyncService, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
				defer cancel()

				code := 0
				var results []sync.Result
				var err error
				if opts.syncType == "all" {
					results, err = svc.RunAll(ctx, "cli")
				} else {
					var res *sync.Result
					res, err = svc.Run(ctx, sync.Type(opts.syncType), "cli")
					if res != nil {
						results = append(results, *res)
					}
				}
				for _, res := range results {
					logger.Info("Sync finished",
						zap.String("type", string(res.Type)),
						zap.String("status", string(res.Status)),
						zap.Int("created", res.Totals.Created),
						zap.Int("updated", res.Totals.Updated),
						zap.Int("failed", res.Totals.Failed),
					)
					if res.Status != sync.StatusSuccess {
						code = 1
					}
				}
				if err != nil {
					logger.Error("Sync failed", zap.Error(err))
					code = 1
				}
				_ = shutdowner.Shutdown(fx.ExitCode(code))
			}()
			return nil
		},
	})
}

func main() {
	var opts options
	flag.StringVar(&opts.syncType, "type", "all", "vendors|dealers|buyers|purchase_orders|items|all")
	flag.DurationVar(&opts.timeout, "timeout", time.Hour, "abort the run after this long")
	flag.Parse()

	if opts.syncType != "all" && !sync.Type(opts.syncType).Valid() {
		fmt.Fprintf(os.Stderr, "unknown sync type %q\n", opts.syncType)
		os.Exit(2)
	}

	app := fx.New(
		fx.Supply(opts),
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewMongo,
			database.NewDatabase,
			database.NewRedis,
			metrics.NewMetrics,
			netsuite.NewClient,
			teams.NewNotifier,
			email.NewEmailRepository,
			email.NewEmailService,
			email_template.NewEmailTemplateRepository,
			email_template.NewEmailTemplateService,
			notification.NewTrigger,
			sync.NewTxBeginner,
			sync.NewSyncLogRepository,
			sync.NewLocker,
			sync.NewSyncService,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(run),
	)

	app.Run()
}
