package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/senyabanana/rfq-service/internal/audit"
	"github.com/senyabanana/rfq-service/internal/db"
	"github.com/senyabanana/rfq-service/internal/handlers"
	"github.com/senyabanana/rfq-service/internal/logger"
	"github.com/senyabanana/rfq-service/internal/notify"
	"github.com/senyabanana/rfq-service/internal/repository"
	"github.com/senyabanana/rfq-service/internal/router"
	"github.com/senyabanana/rfq-service/internal/router/config"
	"github.com/senyabanana/rfq-service/internal/services"
	"github.com/senyabanana/rfq-service/internal/storage"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	logg, err := logger.New(cfg.IsDev())
	if err != nil {
		log.Fatal("cannot init logger:", err)
	}
	defer func() { _ = logg.Sync() }()

	if cfg.PostgresConn == "" {
		cfg.PostgresConn = db.ConnString(cfg)
	}
	runDBMigration(cfg.MigrationURL, cfg.PostgresConn, logg)

	dbPool, err := db.InitDb(context.Background(), cfg)
	if err != nil {
		logg.Fatal("error initializing database", zap.Error(err))
	}
	defer dbPool.Close()

	notifiers := notify.Multi{notify.NewLogNotifier(logg)}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		producer := notify.NewKafkaNotifier(brokers, cfg.KafkaTopic)
		defer producer.Close()
		notifiers = append(notifiers, producer)
		logg.Info("kafka notifications enabled", zap.Strings("brokers", brokers), zap.String("topic", cfg.KafkaTopic))
	}
	if cfg.ChatWebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(cfg.ChatWebhookURL))
		logg.Info("chat webhook notifications enabled")
	}
	dispatcher := notify.NewDispatcher(notifiers, 1024, 4, 10*time.Second, logg)

	var receipts storage.URLResolver
	if cfg.StorageBaseURL != "" {
		receipts = storage.NewSigner(cfg.StorageBaseURL, cfg.StorageSigningKey)
		if cfg.RedisAddr != "" {
			redisClient, err := storage.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logg)
			if err != nil {
				logg.Fatal("failed to create redis client", zap.Error(err))
			}
			defer redisClient.Close()
			receipts = storage.NewCachedResolver(receipts, redisClient, logg)
			logg.Info("receipt url cache enabled")
		}
	}

	opts := services.Options{
		Store:            repository.NewStore(dbPool),
		Notifier:         dispatcher,
		Audit:            audit.NewPostgresRecorder(dbPool, logg),
		Log:              logg,
		CheckConsistency: cfg.ConsistencyCheck,
	}

	evaluationService := services.NewEvaluationService(opts)
	solicitationService := services.NewSolicitationService(opts, evaluationService)
	quoteService := services.NewQuoteService(opts)
	awardService := services.NewAwardService(opts)
	fulfillmentService := services.NewFulfillmentService(opts)
	reportService := services.NewReportService(opts, receipts, cfg.ReceiptURLTTL)

	routes := router.InitRoutes(router.Handlers{
		Solicitations: handlers.NewSolicitationHandler(solicitationService, evaluationService, logg, cfg.RequestTimeout),
		Quotes:        handlers.NewQuoteHandler(quoteService, logg, cfg.RequestTimeout),
		Awards:        handlers.NewAwardHandler(awardService, logg, cfg.RequestTimeout),
		Fulfillment:   handlers.NewFulfillmentHandler(fulfillmentService, logg, cfg.RequestTimeout),
		Reports:       handlers.NewReportHandler(reportService, logg, cfg.RequestTimeout),
	}, logg)

	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()
	scheduler := services.NewScheduler(solicitationService, evaluationService, cfg.SchedulerInterval, logg)
	scheduler.Start(schedulerCtx)

	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           routes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logg.Info("server is listening", zap.String("addr", cfg.ServerAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logg.Info("shutting down server")

	scheduler.Stop()
	schedulerCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logg.Error("graceful shutdown failed", zap.Error(err))
	}
	dispatcher.Close()
	logg.Info("server stopped")
}

func runDBMigration(migrationURL string, dbSource string, logg *zap.Logger) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		logg.Fatal("cannot create a new migrate instance", zap.Error(err))
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		logg.Fatal("failed to run migrate up", zap.Error(err))
	}
	logg.Info("db migrated successfully")
}
