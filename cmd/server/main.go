package main

import (
	"context"
	"database/sql"
	"flag"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yuzvak/resale-backoffice/internal/application/commands"
	"github.com/yuzvak/resale-backoffice/internal/application/ports"
	"github.com/yuzvak/resale-backoffice/internal/application/use_cases"
	"github.com/yuzvak/resale-backoffice/internal/config"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/http/handlers"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/http/server"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/locking"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/messaging"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/monitoring"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/observability"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/persistence/postgres"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/persistence/redis"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/persistence/sqlstore"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/scheduler"
	"github.com/yuzvak/resale-backoffice/internal/pkg/clock"
	"github.com/yuzvak/resale-backoffice/internal/pkg/generator"
	"github.com/yuzvak/resale-backoffice/internal/pkg/logger"
	"github.com/yuzvak/resale-backoffice/migrations"
)

const dbMetricsInterval = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to a JSON configuration file")
	flag.Parse()

	cfg, configErr := config.LoadConfig(*configPath)
	if configErr != nil {
		logger.NewLogger().Fatal("Failed to load configuration", "error", configErr)
	}

	log := logger.NewLoggerWithLevel(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting resale back-office", "driver", cfg.Database.Driver)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatal("Failed to set up tracing", "error", err)
	}

	store, db, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open database", "error", err)
	}
	defer db.Close()

	monitoring.NewDBMetricsCollector(db).StartCollecting(ctx, dbMetricsInterval)

	var (
		locker      ports.LedgerLocker = locking.NewLocalLocker(cfg.Redis.LockWait.Duration)
		redisPinger handlers.Pinger
	)
	if cfg.Redis.Enabled {
		redisConn, err := redis.NewConnection(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", "error", err)
		}
		defer redisConn.Close()

		locker = locking.Chain{
			locker,
			redis.NewLedgerLock(redisConn, cfg.Redis.LockTTL.Duration, cfg.Redis.LockWait.Duration, log),
		}
		redisPinger = redisConn
	}

	var publisher interface {
		ports.EventPublisher
		Close() error
	} = messaging.NewNoopPublisher(log)
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = messaging.NewKafkaPublisher(cfg.Kafka, log)
	}
	defer publisher.Close()

	clk := clock.NewRealClock()
	ids := generator.NewCodeGenerator()

	inventoryUseCase := use_cases.NewInventoryUseCase(store, clk, ids, log, cfg.Inventory.MaxIntakeQuantity)
	ledgerUseCase := use_cases.NewLedgerUseCase(store, locker, clk, ids, log)
	confirmUseCase := use_cases.NewConfirmationUseCase(store, locker, publisher, clk, ids, log, cfg.Ledger.ConfirmAttempts)
	queryUseCase := use_cases.NewQueryUseCase(store, inventoryUseCase)

	buyHandler := handlers.NewBuyHandler(
		commands.NewIntakeHandler(inventoryUseCase, publisher, log),
		commands.NewUpdateItemHandler(inventoryUseCase, log),
		inventoryUseCase,
		queryUseCase,
		log,
	)
	sellHandler := handlers.NewSellHandler(
		commands.NewLedgerHandler(ledgerUseCase, confirmUseCase, log),
		ledgerUseCase,
		queryUseCase,
		log,
	)
	healthHandler := handlers.NewHealthHandler(store, redisPinger, log)

	httpServer := server.NewServer(cfg, buyHandler, sellHandler, healthHandler, log)

	stockReporter := scheduler.NewStockReporter(queryUseCase, log, cfg.Ledger.StockReportInterval.Duration)
	go stockReporter.Start(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-sigChan

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		log.Info("Shutting down server...")
		stockReporter.Stop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown error", "error", err)
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error("Tracer shutdown error", "error", err)
		}
		stop()
	}()

	log.Info("Server starting", "address", cfg.Server.Addr())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server failed", "error", err)
	}

	<-shutdownDone
	log.Info("Server stopped")
}

// openStore connects the configured engine and brings its schema up to date.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (ports.Store, *sql.DB, error) {
	if cfg.Database.IsPostgres() {
		conn, err := postgres.NewConnection(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}

		var schema fs.FS = os.DirFS(cfg.Database.MigrationsPath)
		if cfg.Database.MigrationsPath == "" {
			if schema, err = fs.Sub(migrations.Postgres, "postgres"); err != nil {
				conn.Close()
				return nil, nil, err
			}
		}
		if err := postgres.RunMigrations(ctx, conn.GetDB(), schema, log); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return postgres.NewStore(conn), conn.GetDB(), nil
	}

	db, err := sqlstore.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	store, err := sqlstore.NewStore(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, db.DB, nil
}
