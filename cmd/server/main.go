package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	donationhandler "lifeflow/internal/donation/handler"
	"lifeflow/internal/donation/models"
	donationservice "lifeflow/internal/donation/service"
	"lifeflow/internal/donation/store/request"
	fundinghandler "lifeflow/internal/funding/handler"
	fundingservice "lifeflow/internal/funding/service"
	"lifeflow/internal/funding/store/fund"
	identityhandler "lifeflow/internal/identity/handler"
	identityservice "lifeflow/internal/identity/service"
	"lifeflow/internal/identity/store/account"
	"lifeflow/internal/identity/store/revocation"
	"lifeflow/internal/identity/token"
	"lifeflow/internal/platform/audit"
	"lifeflow/internal/platform/config"
	"lifeflow/internal/platform/httpserver"
	"lifeflow/internal/platform/logger"
	"lifeflow/internal/platform/metrics"
	"lifeflow/internal/platform/middleware"
	"lifeflow/internal/platform/postgres"
	"lifeflow/internal/platform/redis"
)

// requestCounts adapts the request store to the identity dashboard without
// creating a service cycle.
type requestCounts struct {
	store request.Store
}

func (c requestCounts) CountAll(ctx context.Context) (int64, error) {
	return c.store.Count(ctx, models.Filter{})
}

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Stores: Postgres when configured, in-memory otherwise so the service
	// still runs for local development.
	var (
		accounts account.Store = account.NewInMemory()
		requests request.Store = request.NewInMemory()
		funds    fund.Store    = fund.NewInMemory()
	)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres connect failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
		accounts = account.NewPostgres(pool)
		requests = request.NewPostgres(pool)
		funds = fund.NewPostgres(pool)
		log.Info("using postgres storage")
	} else {
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}

	var revocations revocation.Store = revocation.NewInMemory()
	redisClient, err := redis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		revocations = revocation.NewRedis(redisClient)
		log.Info("using redis revocation store")
	}

	var publisher audit.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := audit.NewKafkaPublisher(cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			log.Error("kafka connect failed", "error", err)
			os.Exit(1)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := kafka.Close(flushCtx); err != nil {
				log.Error("audit flush failed", "error", err)
			}
		}()
		publisher = kafka
		log.Info("audit events publishing to kafka", "topic", cfg.AuditTopic)
	}

	tokens := token.New(cfg.JWTSigningKey, cfg.TokenTTL)

	fundingSvc, err := fundingservice.New(funds,
		fundingservice.WithLogger(log),
		fundingservice.WithAuditPublisher(publisher),
	)
	if err != nil {
		log.Error("funding service init failed", "error", err)
		os.Exit(1)
	}

	identitySvc, err := identityservice.New(accounts, revocations, tokens,
		identityservice.WithLogger(log),
		identityservice.WithAuditPublisher(publisher),
		identityservice.WithStatsSources(requestCounts{store: requests}, fundingSvc),
	)
	if err != nil {
		log.Error("identity service init failed", "error", err)
		os.Exit(1)
	}

	donationSvc, err := donationservice.New(requests, identitySvc,
		donationservice.WithLogger(log),
		donationservice.WithAuditPublisher(publisher),
		donationservice.WithMetrics(m),
	)
	if err != nil {
		log.Error("donation service init failed", "error", err)
		os.Exit(1)
	}

	auth := middleware.RequireAuth(tokens, revocations, m.AuthFailures, log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log, m))

	router.Route("/api", func(r chi.Router) {
		identityhandler.New(identitySvc, log, auth).Register(r)
		donationhandler.New(donationSvc, log, auth).Register(r)
		fundinghandler.New(fundingSvc, log, auth).Register(r)
	})

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting lifeflow", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
