package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	redisclient "github.com/redis/go-redis/v9"
	mongoadapter "github.com/stayloop/stayloop-server/internal/adapters/mongo"
	"github.com/stayloop/stayloop-server/internal/adapters/pg"
	redisadapter "github.com/stayloop/stayloop-server/internal/adapters/redis"
	"github.com/stayloop/stayloop-server/internal/auth"
	"github.com/stayloop/stayloop-server/internal/checkout"
	"github.com/stayloop/stayloop-server/internal/clock"
	"github.com/stayloop/stayloop-server/internal/config"
	httphandler "github.com/stayloop/stayloop-server/internal/http"
	"github.com/stayloop/stayloop-server/internal/observability"
	"github.com/stayloop/stayloop-server/internal/outbox"
	"github.com/stayloop/stayloop-server/internal/payments"
	"github.com/stayloop/stayloop-server/internal/ratelimit"
	"github.com/stayloop/stayloop-server/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdown, err := observability.SetupOTel(context.Background(), cfg, "stayloop-api")
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
	bookingRepo := mongoadapter.NewBookingRepository(store)
	listingRepo := mongoadapter.NewListingRepository(store)
	notificationRepo := mongoadapter.NewNotificationRepository(store)
	methodRepo := mongoadapter.NewPaymentMethodRepository(store)
	discountRepo := mongoadapter.NewDiscountRepository(store)
	teamRepo := mongoadapter.NewTeamRepository(store)
	audit := mongoadapter.NewAuditLogger(store, logger)

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	cache := redisadapter.NewCache(redisClient)
	idemp := redisadapter.NewIdempotency(redisClient)
	drafts := redisadapter.NewDraftStore(redisClient, cfg.DraftTTL)
	rl := ratelimit.NewRateLimiter(cache)

	enqueuer := outbox.NewPGEnqueuer(repo)
	gateway := payments.NewClient(cfg.GatewayURL, cfg.GatewayAPIKey, logger)

	reservationSvc := services.NewReservationService(reservationRepo, repo, enqueuer, audit, gateway, clk, logger, adminID, cfg.ReservationTTL)
	bookingSvc := services.NewBookingService(bookingRepo, teamRepo, enqueuer, audit, clk, logger, adminID)
	methodSvc := services.NewPaymentMethodService(methodRepo, clk)
	notificationSvc := services.NewNotificationService(notificationRepo)
	orchestrator := checkout.NewOrchestrator(drafts, listingRepo, reservationSvc, discountRepo, gateway, cache, clk, logger, cfg.ReturnURL, cfg.CallbackURL)

	verifier := auth.NewVerifier(cfg.JWTSecret)
	handlers := httphandler.NewHandlers(cfg, orchestrator, reservationSvc, bookingSvc, methodSvc, notificationSvc, gateway, idemp, cache, repo, logger)
	router := httphandler.SetupRouter(handlers, logger, verifier, rl)

	srv := &http.Server{
		Addr:    ":8080",
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()
	logger.Info("api listening on :8080")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown: ", err)
	}
	logger.Info("server exiting")
}
