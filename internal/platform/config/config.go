package config

import (
	"os"
	"strings"
	"time"
)

// Config captures process-level configuration. Values come from the
// environment so main stays lean.
type Config struct {
	Addr          string
	DatabaseURL   string
	RedisURL      string
	KafkaBrokers  []string
	AuditTopic    string
	JWTSigningKey string
	TokenTTL      time.Duration
}

// FromEnv builds a Config from environment variables, applying development
// defaults where a value is absent.
func FromEnv() Config {
	addr := os.Getenv("LIFEFLOW_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	tokenTTL := 7 * 24 * time.Hour
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			tokenTTL = d
		}
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = strings.Split(v, ",")
	}

	auditTopic := os.Getenv("AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "lifeflow.audit"
	}

	return Config{
		Addr:          addr,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		KafkaBrokers:  brokers,
		AuditTopic:    auditTopic,
		JWTSigningKey: jwtSigningKey,
		TokenTTL:      tokenTTL,
	}
}
