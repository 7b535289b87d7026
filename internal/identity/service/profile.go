package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"lifeflow/internal/identity/models"
	id "lifeflow/pkg/domain"
	dErrors "lifeflow/pkg/domain-errors"
	"lifeflow/pkg/platform/sentinel"
)

// Profile returns the account behind the claim.
func (s *Service) Profile(ctx context.Context, claim id.Claim) (*models.Account, error) {
	return s.LoadAccount(ctx, claim.Email)
}

// UpdateProfile overwrites the caller's editable profile fields.
func (s *Service) UpdateProfile(ctx context.Context, claim id.Claim, patch models.ProfilePatch) error {
	if patch.Name == "" || patch.BloodGroup == "" || patch.District == "" || patch.Upazila == "" {
		return dErrors.New(dErrors.CodeBadRequest, "all fields are required")
	}
	if err := s.accounts.UpdateProfile(ctx, claim.Email, patch, s.clock()); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update profile")
	}
	return nil
}

// SearchDonors lists active accounts matching the filter. Public: recipients
// need to find donors without logging in.
func (s *Service) SearchDonors(ctx context.Context, filter models.DonorFilter) ([]*models.Account, error) {
	donors, err := s.accounts.SearchDonors(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search donors")
	}
	return donors, nil
}

// Stats is the dashboard summary for volunteers and admins.
type Stats struct {
	TotalDonors   int64 `json:"totalDonors"`
	TotalRequests int64 `json:"totalRequests"`
	TotalFunding  int64 `json:"totalFunding"`
}

// DashboardStats gathers the three dashboard numbers concurrently. Volunteer
// or admin role required.
func (s *Service) DashboardStats(ctx context.Context, claim id.Claim) (*Stats, error) {
	caller, err := s.LoadAccount(ctx, claim.Email)
	if err != nil {
		return nil, err
	}
	if caller.Role != models.RoleAdmin && caller.Role != models.RoleVolunteer {
		return nil, dErrors.New(dErrors.CodeForbidden, "volunteer or admin only")
	}

	stats := &Stats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.accounts.CountActiveDonors(gctx)
		stats.TotalDonors = n
		return err
	})
	if s.requests != nil {
		g.Go(func() error {
			n, err := s.requests.CountAll(gctx)
			stats.TotalRequests = n
			return err
		})
	}
	if s.funding != nil {
		g.Go(func() error {
			n, err := s.funding.Total(gctx)
			stats.TotalFunding = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to gather stats")
	}
	return stats, nil
}
