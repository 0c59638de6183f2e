// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server process needs to wire itself.
type Config struct {
	Addr string

	DatabaseURL string
	RedisURL    string

	KafkaBrokers         []string
	KafkaTaskTopic       string
	KafkaCompletionTopic string
	KafkaConsumerGroup   string

	// PendingMaxAge bounds how long a PENDING record may wait for the
	// worker before reads treat it as failed.
	PendingMaxAge time.Duration

	// SuccessMaxAge bounds how long a SUCCEEDED record stays fresh.
	SuccessMaxAge time.Duration

	// EvaluationCacheTTL bounds the Redis result cache.
	EvaluationCacheTTL time.Duration
}

// FromEnv reads the process environment, falling back to development
// defaults.
func FromEnv() Config {
	return Config{
		Addr:                 envString("CORPCHECK_ADDR", ":8080"),
		DatabaseURL:          envString("DATABASE_URL", ""),
		RedisURL:             envString("REDIS_URL", ""),
		KafkaBrokers:         envList("KAFKA_BROKERS", "localhost:9092"),
		KafkaTaskTopic:       envString("KAFKA_TASK_TOPIC", "corpcheck.tree-build"),
		KafkaCompletionTopic: envString("KAFKA_COMPLETION_TOPIC", "corpcheck.tree-build.completed"),
		KafkaConsumerGroup:   envString("KAFKA_CONSUMER_GROUP", "corpcheck-server"),
		PendingMaxAge:        envMinutes("PENDING_MAX_MINUTES", 10),
		SuccessMaxAge:        24 * time.Hour * time.Duration(envInt("SUCCESS_MAX_DAYS", 30)),
		EvaluationCacheTTL:   envMinutes("CACHE_TTL_MINUTES", 60),
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envMinutes(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Minute
}

func envList(key, fallback string) []string {
	raw := envString(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
