package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/app"
	"github.com/mamadbah2/stockroom/internal/config"
	"github.com/mamadbah2/stockroom/internal/metrics"
	"github.com/mamadbah2/stockroom/internal/repository/mongodb"
	"github.com/mamadbah2/stockroom/internal/repository/sheets"
	"github.com/mamadbah2/stockroom/internal/scheduler"
	"github.com/mamadbah2/stockroom/internal/server/handlers"
	"github.com/mamadbah2/stockroom/internal/server/router"
	alertsvc "github.com/mamadbah2/stockroom/internal/service/alerts"
	commandsvc "github.com/mamadbah2/stockroom/internal/service/commands"
	reportingsvc "github.com/mamadbah2/stockroom/internal/service/reporting"
	"github.com/mamadbah2/stockroom/pkg/clients/webhook"
	"github.com/mamadbah2/stockroom/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	workspace, err := app.Open(cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to load data files", zap.Error(err))
	}
	var mu sync.Mutex

	m := metrics.New(cfg.Metrics)
	m.ObserveStats(workspace.Inventory.Stats())

	var sheetsRepo sheets.Repository
	var exporter *sheets.Exporter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter = sheets.NewExporter(sheetsRepo)
		baseLogger.Info("sheets export enabled")
	} else {
		baseLogger.Warn("sheets credentials missing, sheet export disabled")
	}

	var archive scheduler.ReportArchive
	if cfg.MongoDB.URI != "" {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		archive = mongoRepo
	} else {
		baseLogger.Warn("mongodb uri missing, report archive disabled")
	}

	var transports []alertsvc.Transport
	if cfg.Alerts.WebhookURL != "" {
		transports = append(transports, alertsvc.WebhookTransport{Client: webhook.NewClient(cfg.Alerts)})
	}
	notifier := alertsvc.NewNotifier(baseLogger.Named("svc.alerts"), transports...)

	var journal commandsvc.SalesJournal
	if exporter != nil {
		journal = exporter
	}
	commandDispatcher := commandsvc.NewService(workspace.Inventory, journal, baseLogger.Named("svc.commands"))
	reportingSvc := reportingsvc.NewService(workspace.Inventory, sheetsRepo, cfg.Analytics.DeadStockDays, baseLogger.Named("svc.reporting"))

	h := handlers.New(&mu, workspace.Inventory, workspace.Suppliers, handlers.Options{
		Dispatcher: commandDispatcher,
		Metrics:    m,
		Analytics:  cfg.Analytics,
		Persist:    workspace.Save,
	}, baseLogger.Named("handlers"))
	engine := router.New(h, m, baseLogger.Named("router"))

	jobs := &scheduler.Jobs{
		Lock:         &mu,
		Inventory:    workspace.Inventory,
		Store:        workspace.Store,
		Notifier:     notifier,
		Reports:      reportingSvc,
		Archive:      archive,
		Metrics:      m,
		Logger:       baseLogger.Named("jobs"),
		Save:         workspace.Save,
		Files:        workspace.Files(),
		ExpiryWindow: time.Duration(cfg.Alerts.ExpiryWindowDays) * 24 * time.Hour,
	}
	if exporter != nil {
		jobs.Exporter = exporter
	}

	sched, err := scheduler.NewScheduler(cfg.Scheduler, jobs, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}

	mu.Lock()
	defer mu.Unlock()
	if err := workspace.Save(); err != nil {
		baseLogger.Error("final save failed", zap.Error(err))
	}
}
