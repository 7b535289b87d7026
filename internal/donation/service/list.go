package service

import (
	"context"

	"lifeflow/internal/donation/models"
	identity "lifeflow/internal/identity/models"
	id "lifeflow/pkg/domain"
	dErrors "lifeflow/pkg/domain-errors"
)

// ListPending returns the open feed of requests still waiting for a donor,
// newest first. This is the public browse surface.
func (s *Service) ListPending(ctx context.Context, page models.Page) ([]*models.DonationRequest, error) {
	return s.list(ctx, models.Filter{Status: models.StatusPending}, page)
}

// ListMine returns the caller's own requests regardless of status.
func (s *Service) ListMine(ctx context.Context, claim id.Claim, page models.Page) ([]*models.DonationRequest, error) {
	return s.list(ctx, models.Filter{RequesterEmail: claim.Email}, page)
}

// ListAll returns every request matching the filter. Dashboard surface:
// volunteers and admins only.
func (s *Service) ListAll(ctx context.Context, claim id.Claim, filter models.Filter, page models.Page) ([]*models.DonationRequest, error) {
	acct, err := s.accounts.LoadAccount(ctx, claim.Email)
	if err != nil {
		return nil, err
	}
	if acct.Role != identity.RoleVolunteer && acct.Role != identity.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "not authorized to list all requests")
	}
	return s.list(ctx, filter, page)
}

// Recent returns the newest requests for the landing page, capped at limit.
func (s *Service) Recent(ctx context.Context, limit int) ([]*models.DonationRequest, error) {
	if limit <= 0 {
		limit = 3
	}
	return s.list(ctx, models.Filter{}, models.Page{Number: 1, Size: limit})
}

// CountAll reports the total number of requests. It backs the public stats
// endpoint in the identity context.
func (s *Service) CountAll(ctx context.Context) (int64, error) {
	count, err := s.requests.Count(ctx, models.Filter{})
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count requests")
	}
	return count, nil
}

// CountMine reports how many requests the caller has opened.
func (s *Service) CountMine(ctx context.Context, claim id.Claim) (int64, error) {
	count, err := s.requests.Count(ctx, models.Filter{RequesterEmail: claim.Email})
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count requests")
	}
	return count, nil
}

func (s *Service) list(ctx context.Context, filter models.Filter, page models.Page) ([]*models.DonationRequest, error) {
	out, err := s.requests.List(ctx, filter, page)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list requests")
	}
	return out, nil
}
