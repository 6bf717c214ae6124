package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	mongoadapter "github.com/stayloop/stayloop-server/internal/adapters/mongo"
	"github.com/stayloop/stayloop-server/internal/adapters/pg"
	"github.com/stayloop/stayloop-server/internal/clock"
	"github.com/stayloop/stayloop-server/internal/config"
	"github.com/stayloop/stayloop-server/internal/observability"
	"github.com/stayloop/stayloop-server/internal/outbox"
	"github.com/stayloop/stayloop-server/internal/payments"
	"github.com/stayloop/stayloop-server/internal/services"
	"github.com/stayloop/stayloop-server/internal/sweep"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The sweeper runs the deferred checks: referral discount finalization
// after the settlement window and expiry of pending reservations nobody
// answered.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdown, err := observability.SetupOTel(context.Background(), cfg, "stayloop-sweeper")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdown()

	logger := observability.NewLogger()
	clk := clock.NewRealClock()

	adminID, err := uuid.Parse(cfg.AdminUserID)
	if err != nil {
		log.Fatalf("invalid ADMIN_USER_ID: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	repo := pg.NewRepository(pool)

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	store := mongoadapter.NewStore(mongoClient.Database(cfg.MongoDatabase), logger)

	reservationRepo := mongoadapter.NewReservationRepository(store)
	discountRepo := mongoadapter.NewDiscountRepository(store)
	earningsRepo := mongoadapter.NewEarningsRepository(store)
	audit := mongoadapter.NewAuditLogger(store, logger)

	enqueuer := outbox.NewPGEnqueuer(repo)
	gateway := payments.NewClient(cfg.GatewayURL, cfg.GatewayAPIKey, logger)
	reservationSvc := services.NewReservationService(reservationRepo, repo, enqueuer, audit, gateway, clk, logger, adminID, cfg.ReservationTTL)
	discountSvc := services.NewDiscountService(reservationRepo, discountRepo, earningsRepo, enqueuer, clk, logger)

	sweeper := sweep.NewSweeper(repo, discountSvc, reservationSvc, reservationRepo, clk, logger, cfg.SweepInterval, cfg.ReservationTTL)

	ctx, cancel := context.WithCancel(context.Background())
	go sweeper.Run(ctx)
	logger.Info("sweeper started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
	cancel()
}
