// Package service records and reports funding contributions.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lifeflow/internal/funding/models"
	"lifeflow/internal/funding/store/fund"
	"lifeflow/internal/platform/audit"
	id "lifeflow/pkg/domain"
	dErrors "lifeflow/pkg/domain-errors"
)

type Service struct {
	funds     fund.Store
	publisher audit.Publisher
	logger    *slog.Logger
	clock     func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func New(funds fund.Store, opts ...Option) (*Service, error) {
	if funds == nil {
		return nil, fmt.Errorf("fund store is required")
	}

	svc := &Service{funds: funds, clock: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// RecordInput carries the caller-supplied fields of a contribution. Name and
// email come from the resolved account.
type RecordInput struct {
	Amount        int64
	TransactionID string
}

// Record stores a contribution attributed to the authenticated caller.
func (s *Service) Record(ctx context.Context, claim id.Claim, in RecordInput) (*models.Fund, error) {
	f := &models.Fund{
		ID:            id.NewFundingID(),
		UserName:      claim.Name,
		UserEmail:     id.NormalizeEmail(claim.Email),
		Amount:        in.Amount,
		TransactionID: in.TransactionID,
		FundingDate:   s.clock(),
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := s.funds.Insert(ctx, f); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record funding")
	}

	audit.Log(ctx, s.logger, s.publisher, audit.EventFundingRecorded, f.UserEmail,
		"funding_id", f.ID.String(), "amount", f.Amount)
	return f, nil
}

// List returns contributions newest first.
func (s *Service) List(ctx context.Context, page models.Page) ([]*models.Fund, error) {
	out, err := s.funds.List(ctx, page)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list funding")
	}
	return out, nil
}

// Total reports the sum of all contributions. It backs the public stats
// endpoint in the identity context.
func (s *Service) Total(ctx context.Context) (int64, error) {
	total, err := s.funds.Total(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to total funding")
	}
	return total, nil
}
