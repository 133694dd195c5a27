package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/event-seat-reservation/internal/clock"
	"github.com/iliyamo/event-seat-reservation/internal/config"
	"github.com/iliyamo/event-seat-reservation/internal/database"
	"github.com/iliyamo/event-seat-reservation/internal/handler"
	"github.com/iliyamo/event-seat-reservation/internal/middleware"
	"github.com/iliyamo/event-seat-reservation/internal/obs"
	"github.com/iliyamo/event-seat-reservation/internal/queue"
	"github.com/iliyamo/event-seat-reservation/internal/repository"
	"github.com/iliyamo/event-seat-reservation/internal/router"
	"github.com/iliyamo/event-seat-reservation/internal/service"
)

// seatStore is everything the services need from a backend.
type seatStore interface {
	service.SeatStore
	service.LedgerStore
	service.EventStore
	service.ProvisionStore
}

func main() {
	started := time.Now()
	_ = godotenv.Load() // .env is optional
	cfg := config.Load()
	logger := obs.InitLogger(cfg.Env)
	logger.Info("service_starting", "env", cfg.Env, "backend", cfg.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store
	var (
		store seatStore
		db    *sql.DB
	)
	switch cfg.Backend {
	case config.BackendMySQL:
		var err error
		db, err = database.Open(ctx, database.Options{
			User:     cfg.DBUser,
			Pass:     cfg.DBPass,
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			Name:     cfg.DBName,
			MaxConns: cfg.DBMaxConns,
		})
		if err != nil {
			logger.Error("db_connect_failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if cfg.DBMigrate {
			if err := database.Migrate(ctx, db); err != nil {
				logger.Error("db_migrate_failed", "err", err)
				os.Exit(1)
			}
		}
		store = repository.NewMySQLStore(db)
	default:
		logger.Warn("using in-memory store; state is lost on restart")
		store = repository.NewMemoryStore()
	}

	// Optional infrastructure: Redis and RabbitMQ degrade to no-ops.
	rdb := config.NewRedisClient(ctx, cfg.Redis, logger)
	if rdb != nil {
		defer rdb.Close()
	}
	publisher := queue.NewPublisher(cfg.RabbitMQURL, logger)
	defer publisher.Close()

	// Background workers; waited for before the deferred closes run.
	var workers sync.WaitGroup
	if publisher.Enabled() {
		consumer := &queue.Consumer{URL: cfg.RabbitMQURL, LogPath: cfg.ActivityLogPath, Logger: logger}
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("activity_consumer_stopped", "err", err)
			}
		}()
	}

	// Services
	clk := clock.NewSystem()
	ledger := service.NewLedger(store)
	locks := service.NewLockManager(store, store, ledger, clk,
		service.WithLockTTL(cfg.SeatLockTTL),
		service.WithActivityPublisher(publisher),
		service.WithLogger(logger),
	)
	sweeper := service.NewSweeper(locks, cfg.SweepInterval)
	workers.Add(1)
	go func() {
		defer workers.Done()
		sweeper.Run(ctx)
	}()

	// HTTP
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.AccessLog(logger))

	deps := router.Deps{
		JWTSecret:   cfg.JWTSecret,
		Events:      handler.NewEventHandler(service.NewEventService(store, clk)),
		Seats:       handler.NewSeatHandler(locks, service.NewProvisioner(store, store, clk)),
		Reservation: handler.NewReservationHandler(ledger),
		Redis:       rdb,
		RateLimit:   cfg.RateLimit,
		Cache:       cfg.Cache,
		Logger:      logger,
	}
	if db != nil {
		deps.DB = db
	}
	router.RegisterRoutes(e, deps)

	addr := ":" + cfg.Port
	go func() {
		logger.Info("http_listen", "addr", addr, "lock_ttl", locks.TTL().String())
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown_signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_error", "err", err)
	}
	workers.Wait()
	logger.Info("service_stopped", "uptime", time.Since(started).Round(time.Second).String())
}
