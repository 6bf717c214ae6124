package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	PostgresDSN   string
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	RabbitURL     string
	JWTSecret     string
	AdminUserID   string

	GatewayURL    string
	GatewayAPIKey string
	ReturnURL     string
	CallbackURL   string

	DraftTTL       time.Duration
	ReservationTTL time.Duration
	SweepInterval  time.Duration
	OutboxInterval time.Duration
	OTLPEndpoint   string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getEnv("MONGO_DATABASE", "stayloop"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RabbitURL:     os.Getenv("RABBIT_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminUserID:   os.Getenv("ADMIN_USER_ID"),

		GatewayURL:    os.Getenv("PAYMENT_GATEWAY_URL"),
		GatewayAPIKey: os.Getenv("PAYMENT_GATEWAY_API_KEY"),
		ReturnURL:     os.Getenv("PAYMENT_RETURN_URL"),
		CallbackURL:   os.Getenv("PAYMENT_CALLBACK_URL"),

		DraftTTL:       getDuration("DRAFT_TTL", 72*time.Hour),
		ReservationTTL: getDuration("RESERVATION_TTL", 48*time.Hour),
		SweepInterval:  getDuration("SWEEP_INTERVAL", time.Minute),
		OutboxInterval: getDuration("OUTBOX_INTERVAL", 5*time.Second),
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	d, _ := time.ParseDuration(os.Getenv(key))
	if d == 0 {
		return def
	}
	return d
}
