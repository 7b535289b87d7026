package service

import (
	"context"
	"errors"

	"lifeflow/internal/identity/models"
	"lifeflow/internal/platform/audit"
	id "lifeflow/pkg/domain"
	dErrors "lifeflow/pkg/domain-errors"
	"lifeflow/pkg/platform/sentinel"
)

func (s *Service) requireAdmin(ctx context.Context, claim id.Claim) (*models.Account, error) {
	caller, err := s.LoadAccount(ctx, claim.Email)
	if err != nil {
		return nil, err
	}
	if caller.Role != models.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "admin only")
	}
	return caller, nil
}

// ListAccounts returns accounts for the admin dashboard, optionally filtered
// by status.
func (s *Service) ListAccounts(ctx context.Context, claim id.Claim, filter models.AccountFilter) ([]*models.Account, error) {
	if _, err := s.requireAdmin(ctx, claim); err != nil {
		return nil, err
	}
	accounts, err := s.accounts.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list accounts")
	}
	return accounts, nil
}

// SetAccountStatus blocks or unblocks an account. Admin only, and an admin
// may never change their own status: the self-block guard compares the target
// account's email against the caller's before applying.
func (s *Service) SetAccountStatus(ctx context.Context, claim id.Claim, targetID id.AccountID, status models.AccountStatus) error {
	caller, err := s.requireAdmin(ctx, claim)
	if err != nil {
		return err
	}

	target, err := s.accounts.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}

	if id.SameEmail(target.Email, caller.Email) {
		return dErrors.New(dErrors.CodeBadRequest, "you cannot change your own status")
	}

	if err := s.accounts.SetStatus(ctx, targetID, status, s.clock()); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update status")
	}

	s.logAudit(ctx, audit.EventUserStatusChanged, caller.Email,
		"target", target.Email,
		"status", string(status),
	)
	return nil
}

// SetAccountRole changes an account's role. Admin only.
func (s *Service) SetAccountRole(ctx context.Context, claim id.Claim, targetID id.AccountID, role models.Role) error {
	caller, err := s.requireAdmin(ctx, claim)
	if err != nil {
		return err
	}

	if err := s.accounts.SetRole(ctx, targetID, role, s.clock()); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update role")
	}

	s.logAudit(ctx, audit.EventUserRoleChanged, caller.Email,
		"target_id", targetID.String(),
		"role", string(role),
	)
	return nil
}
