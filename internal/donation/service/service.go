// Package service implements the donation request lifecycle. Every operation
// re-reads the caller's account before consulting the authorization table, so
// a block or role change applies immediately regardless of token age.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks AccountLoader

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"lifeflow/internal/donation/store/request"
	identity "lifeflow/internal/identity/models"
	"lifeflow/internal/platform/audit"
	"lifeflow/internal/platform/metrics"
)

// AccountLoader resolves the account behind an authenticated email. The
// donation context never reads the account store directly.
type AccountLoader interface {
	LoadAccount(ctx context.Context, email string) (*identity.Account, error)
}

type Service struct {
	requests  request.Store
	accounts  AccountLoader
	metrics   *metrics.Metrics
	publisher audit.Publisher
	logger    *slog.Logger
	tracer    trace.Tracer
	clock     func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func New(requests request.Store, accounts AccountLoader, opts ...Option) (*Service, error) {
	if requests == nil {
		return nil, fmt.Errorf("request store is required")
	}
	if accounts == nil {
		return nil, fmt.Errorf("account loader is required")
	}

	svc := &Service{
		requests: requests,
		accounts: accounts,
		tracer:   otel.Tracer("lifeflow/donation"),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *Service) logAudit(ctx context.Context, kind audit.EventKind, actor string, attrs ...any) {
	audit.Log(ctx, s.logger, s.publisher, kind, actor, attrs...)
}
