package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	mongoadapter "github.com/stayloop/stayloop-server/internal/adapters/mongo"
	"github.com/stayloop/stayloop-server/internal/adapters/pg"
	"github.com/stayloop/stayloop-server/internal/adapters/rabbit"
	"github.com/stayloop/stayloop-server/internal/config"
	"github.com/stayloop/stayloop-server/internal/observability"
	"github.com/stayloop/stayloop-server/internal/outbox"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// The notifier turns outbox intents into stored notifications and
// delivery events, and runs the delivery consumer that would hand them to
// push or email providers.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdown, err := observability.SetupOTel(context.Background(), cfg, "stayloop-notifier")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdown()

	logger := observability.NewLogger()

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
	notificationRepo := mongoadapter.NewNotificationRepository(store)

	rabbitConn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer rabbitConn.Close()
	publisher, err := rabbit.NewPublisher(rabbitConn)
	if err != nil {
		log.Fatalf("failed to create publisher: %v", err)
	}
	consumer, err := rabbit.NewConsumer(rabbitConn, "notification-delivery", "notification.*")
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}

	dispatcher := outbox.NewDispatcher(repo, notificationRepo, publisher, logger, cfg.OutboxInterval)

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		dispatcher.Run(ctx)
		return nil
	})
	g.Go(func() error {
		return deliver(ctx, consumer, logger)
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
	cancel()
	if err := g.Wait(); err != nil {
		log.Fatalf("notifier stopped: %v", err)
	}
}

// deliver is the fan-out edge. Providers plug in here; today each
// delivery is acknowledged after logging, which keeps the queue drained in
// environments without a push provider configured.
func deliver(ctx context.Context, consumer *rabbit.Consumer, logger observability.Logger) error {
	deliveries, err := consumer.Consume(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			logger.WithField("routing_key", d.RoutingKey).
				WithField("message_id", d.MessageId).
				Info("notification delivered")
			if err := d.Ack(false); err != nil {
				logger.WithError(err).Error("ack delivery")
			}
		}
	}
}
