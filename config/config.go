package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"cancellation-service/internal/pkg/database"

	"go.uber.org/zap"
)

type Config struct {
	Port string
	DB   DB

	Redis Redis

	KafkaBrokers []string
	KafkaTopic   string

	Gateway Gateway

	AuthIntrospectURL string

	Sweeper Sweeper
}

type DB struct {
	database.Config
}

type Redis struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	LockTTL  time.Duration
}

type Gateway struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

type Sweeper struct {
	Interval time.Duration
	// AutoApproveAfterMinutes — сколько отмена ждёт решения контрагента
	AutoApproveAfterMinutes int
	// RefundMaxRetries ограничивает только автоматические повторы свипера
	RefundMaxRetries int
	// ResumeApprovedAfterMinutes — возраст approved-записи, после которого
	// свипер доводит её до completed
	ResumeApprovedAfterMinutes int
	// ProcessingLease — лизинг processing-статуса; по истечении свипер
	// возвращает возврат в failed
	ProcessingLease time.Duration
}

func Load(log *zap.Logger) *Config {
	return &Config{
		Port: getEnv("APP_PORT", log),
		DB: DB{
			Config: database.Config{
				Host:     getEnv("DB_HOST", log),
				Port:     getEnv("DB_PORT", log),
				User:     getEnv("DB_USER", log),
				Password: getEnv("DB_PASSWORD", log),
				Name:     getEnv("DB_NAME", log),
				SSLMode:  getEnv("DB_SSLMODE", log),
			},
		},
		Redis: Redis{
			Enabled:  os.Getenv("REDIS_ENABLED") == "true",
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       atoiDefault(os.Getenv("REDIS_DB"), 0),
			LockTTL:  time.Duration(atoiDefault(os.Getenv("CANCEL_LOCK_TTL_SECONDS"), 30)) * time.Second,
		},
		KafkaBrokers: splitAndTrim(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   os.Getenv("KAFKA_TOPIC_CANCELLATION"),
		Gateway: Gateway{
			BaseURL:   getEnv("PG_BASE_URL", log),
			SecretKey: getEnv("PG_SECRET_KEY", log),
			Timeout:   time.Duration(atoiDefault(os.Getenv("PG_TIMEOUT_SECONDS"), 10)) * time.Second,
		},
		AuthIntrospectURL: getEnv("AUTH_INTROSPECT_URL", log),
		Sweeper: Sweeper{
			Interval:                time.Duration(atoiDefault(os.Getenv("SWEEP_INTERVAL_SECONDS"), 60)) * time.Second,
			AutoApproveAfterMinutes: atoiDefault(os.Getenv("AUTO_APPROVE_AFTER_MINUTES"), 30),
			RefundMaxRetries:        atoiDefault(os.Getenv("REFUND_MAX_RETRIES"), 5),

			ResumeApprovedAfterMinutes: atoiDefault(os.Getenv("RESUME_APPROVED_AFTER_MINUTES"), 5),
			ProcessingLease:            time.Duration(atoiDefault(os.Getenv("REFUND_PROCESSING_LEASE_MINUTES"), 15)) * time.Minute,
		},
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("Обязательная переменная окружения не установлена", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
