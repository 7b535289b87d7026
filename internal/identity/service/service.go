// Package service implements identity resolution and account management.
// Session tokens prove identity only; every authorization decision re-reads
// the account so role and block status reflect current truth.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lifeflow/internal/identity/models"
	"lifeflow/internal/identity/store/account"
	"lifeflow/internal/identity/store/revocation"
	"lifeflow/internal/identity/token"
	"lifeflow/internal/platform/audit"
	id "lifeflow/pkg/domain"
	dErrors "lifeflow/pkg/domain-errors"
	"lifeflow/pkg/platform/sentinel"
)

// RequestCounter and FundingTotaler supply cross-context numbers for the
// dashboard without coupling this package to their stores.
type RequestCounter interface {
	CountAll(ctx context.Context) (int64, error)
}

type FundingTotaler interface {
	Total(ctx context.Context) (int64, error)
}

type Service struct {
	accounts    account.Store
	revocations revocation.Store
	tokens      *token.Service
	requests    RequestCounter
	funding     FundingTotaler
	publisher   audit.Publisher
	logger      *slog.Logger
	clock       func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithStatsSources(requests RequestCounter, funding FundingTotaler) Option {
	return func(s *Service) {
		s.requests = requests
		s.funding = funding
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func New(accounts account.Store, revocations revocation.Store, tokens *token.Service, opts ...Option) (*Service, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account store is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token service is required")
	}

	svc := &Service{
		accounts:    accounts,
		revocations: revocations,
		tokens:      tokens,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// TokenTTL exposes the session lifetime so the transport layer can align
// cookie expiry with token expiry.
func (s *Service) TokenTTL() time.Duration { return s.tokens.TTL() }

// Resolve validates a session credential and returns the identity claim. It
// performs no account lookup; see LoadAccount for the separate, explicit
// trust step.
func (s *Service) Resolve(credential string) (id.Claim, string, error) {
	if credential == "" {
		return id.Claim{}, "", dErrors.New(dErrors.CodeUnauthorized, "missing credentials")
	}
	return s.tokens.Verify(credential)
}

// LoadAccount fetches the account behind a claim. The lookup is
// case-insensitive because provisioning and token issuance may disagree on
// casing.
func (s *Service) LoadAccount(ctx context.Context, email string) (*models.Account, error) {
	acct, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return acct, nil
}

func (s *Service) logAudit(ctx context.Context, kind audit.EventKind, actor string, attrs ...any) {
	audit.Log(ctx, s.logger, s.publisher, kind, actor, attrs...)
}
