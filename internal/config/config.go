package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                string
	DBUrl               string
	AppEnv              string
	KafkaBrokers        []string
	KafkaBookingTopic   string
	BookingTTL          time.Duration
	PlatformFeePercent  float64
	ExpirySweepInterval time.Duration
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	dbURL := getEnv("DB_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DB_URL is required")
	}

	feePercent := getEnvFloat("PLATFORM_FEE_PERCENT", 20)
	if feePercent < 0 || feePercent >= 100 {
		return nil, fmt.Errorf("PLATFORM_FEE_PERCENT must be in [0, 100)")
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		DBUrl:               dbURL,
		AppEnv:              normalizeEnv(getEnv("APP_ENV", "production")),
		KafkaBrokers:        splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaBookingTopic:   getEnv("KAFKA_BOOKING_TOPIC", "booking-events"),
		BookingTTL:          time.Duration(getEnvInt("BOOKING_TTL_HOURS", 24)) * time.Hour,
		PlatformFeePercent:  feePercent,
		ExpirySweepInterval: getEnvDuration("EXPIRY_SWEEP_INTERVAL", 5*time.Minute),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
