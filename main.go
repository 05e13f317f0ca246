package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-reservation/internal/api"
	"ms-reservation/internal/auth"
	"ms-reservation/internal/cancellation"
	"ms-reservation/internal/config"
	"ms-reservation/internal/database/migrations"
	"ms-reservation/internal/fare"
	"ms-reservation/internal/holds"
	"ms-reservation/internal/logger"
	"ms-reservation/internal/noshow"
	"ms-reservation/internal/notify"
	"ms-reservation/internal/overbooking"
	"ms-reservation/internal/quicksale"
	"ms-reservation/internal/scheduler"
	"ms-reservation/internal/seatlock"
	"ms-reservation/internal/segment"
	"ms-reservation/internal/settings"
	"ms-reservation/internal/tickets"
	"ms-reservation/internal/tickets/boardingpass"
	"ms-reservation/internal/trips"
)

func verifyConnections(ctx context.Context, cfg *config.Config, log *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			log.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.PingContext(ctx)
		if err == nil {
			break
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	log.Info("DATABASE", "PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting reservation service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	bunDB, redisClient := verifyConnections(ctx, cfg, log)
	defer bunDB.Close()
	defer redisClient.Close()

	migrationRunner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := migrationRunner.MigrateUp(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
	}
	log.Info("DATABASE", "Schema migrations applied")

	var dispatcher notify.Dispatcher = notify.Noop{}
	if cfg.Kafka.Enabled {
		producer := notify.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics, log)
		defer producer.Close()
		dispatcher = producer
		log.Info("KAFKA", fmt.Sprintf("Kafka producer initialized for brokers %v", cfg.Kafka.Brokers))
	} else {
		log.Warn("KAFKA", "Kafka disabled, ticket events will not be published")
	}

	settingsStore := settings.NewStore(bunDB)
	segmentChecker := segment.NewChecker(segment.NewStore(bunDB))
	locker := seatlock.New(redisClient, cfg.Holds.LockTTL)
	fareLookup := fare.NewLookup(bunDB, settingsStore)
	resolver := cancellation.NewResolver(settingsStore)

	tripService := trips.NewService(trips.NewStore(bunDB), settingsStore, log)
	ticketService := tickets.NewService(
		tickets.NewStore(bunDB), tripService, segmentChecker, fareLookup,
		locker, resolver, dispatcher, log,
	)
	holdService := holds.NewService(
		holds.NewStore(bunDB), tripService, segmentChecker, fareLookup,
		locker, settingsStore, dispatcher, log,
	)
	holdService.TxTimeout = cfg.Holds.TxTimeout
	overbookingService := overbooking.NewService(
		overbooking.NewStore(bunDB), tripService, ticketService, settingsStore, log,
	)
	quickSaleService := quicksale.NewService(
		tripService, segmentChecker, ticketService, fareLookup, settingsStore, log,
	)
	reconciler := noshow.NewReconciler(tripService, ticketService, settingsStore, log)

	runner := scheduler.NewRunner(log)
	runner.Register(scheduler.Task{
		Name:  "hold-expiry",
		Every: cfg.Scheduler.HoldExpiryInterval,
		Run: func(ctx context.Context, now time.Time) error {
			_, err := holdService.ExpireStale(ctx, now)
			return err
		},
	})
	runner.Register(scheduler.Task{
		Name:  "hold-cleanup",
		Every: cfg.Scheduler.HoldCleanupInterval,
		Run: func(ctx context.Context, now time.Time) error {
			_, err := holdService.PurgeStale(ctx, now)
			return err
		},
	})
	runner.Register(scheduler.Task{
		Name:  "trip-status",
		Every: cfg.Scheduler.TripStatusInterval,
		Run: func(ctx context.Context, now time.Time) error {
			_, err := tripService.AdvanceStatuses(ctx, now)
			return err
		},
	})
	runner.Register(scheduler.Task{
		Name:  "no-show",
		Every: cfg.Scheduler.NoShowInterval,
		Run: func(ctx context.Context, now time.Time) error {
			_, err := reconciler.Sweep(ctx, now)
			return err
		},
	})
	runner.Register(scheduler.Task{
		Name:  "overbooking-expiry",
		Every: cfg.Scheduler.TripStatusInterval,
		Run: func(ctx context.Context, now time.Time) error {
			_, err := overbookingService.ExpireStale(ctx, now)
			return err
		},
	})
	runner.Start(ctx)

	handler := &api.Handler{
		Holds:       holdService,
		Tickets:     ticketService,
		Trips:       tripService,
		Overbooking: overbookingService,
		QuickSale:   quickSaleService,
		Segments:    segmentChecker,
		Settings:    settingsStore,
		QR:          boardingpass.NewQRGenerator(os.Getenv("QR_SECRET_KEY")),
		PDF:         boardingpass.NewPDFGenerator(os.Getenv("BOARDING_PASS_FONT")),
		Logger:      log,
	}

	revocations := auth.NewRedisRevocationStore(redisClient)
	router := handler.Routes(auth.Middleware(cfg.Auth.JWTSecret, revocations))

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Reservation service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	runner.Stop()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	}
	log.Info("APP", "Shutdown complete")
}
