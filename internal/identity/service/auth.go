package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"golang.org/x/crypto/bcrypt"

	"lifeflow/internal/identity/models"
	"lifeflow/internal/platform/audit"
	id "lifeflow/pkg/domain"
	dErrors "lifeflow/pkg/domain-errors"
	"lifeflow/pkg/platform/sentinel"
)

// RegisterInput carries the self-registration payload.
type RegisterInput struct {
	Email      string
	Name       string
	Avatar     string
	BloodGroup string
	District   string
	Upazila    string
	Password   string
}

func (in RegisterInput) validate() error {
	if in.Email == "" || in.Name == "" || in.BloodGroup == "" || in.District == "" || in.Upazila == "" || in.Password == "" {
		return dErrors.New(dErrors.CodeBadRequest, "all fields are required")
	}
	if len(in.Password) < 6 {
		return dErrors.New(dErrors.CodeBadRequest, "password must be at least 6 characters")
	}
	return nil
}

// Register creates an account with role donor and status active, then issues
// a session token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.Account, string, error) {
	if err := in.validate(); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	avatar := in.Avatar
	if avatar == "" {
		avatar = fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=dc2626&color=fff", url.QueryEscape(in.Name))
	}

	now := s.clock()
	acct := &models.Account{
		ID:           id.NewAccountID(),
		Email:        id.NormalizeEmail(in.Email),
		Name:         in.Name,
		Avatar:       avatar,
		BloodGroup:   in.BloodGroup,
		District:     in.District,
		Upazila:      in.Upazila,
		PasswordHash: hash,
		Role:         models.RoleDonor,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accounts.Create(ctx, acct); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return nil, "", dErrors.New(dErrors.CodeConflict, "an account already exists with this email")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	signed, err := s.tokens.Issue(id.Claim{Email: acct.Email, Name: acct.Name})
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.logAudit(ctx, audit.EventUserRegistered, acct.Email, "account_id", acct.ID.String())
	return acct, signed, nil
}

// Login verifies credentials and issues a session token. Blocked accounts
// cannot log in. Device, when known, enriches the audit trail only.
func (s *Service) Login(ctx context.Context, email, password, device string) (*models.Account, string, error) {
	if email == "" || password == "" {
		return nil, "", dErrors.New(dErrors.CodeBadRequest, "email and password are required")
	}

	acct, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, "", dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}

	if bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)) != nil {
		return nil, "", dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}

	if acct.IsBlocked() {
		return nil, "", dErrors.New(dErrors.CodeForbidden, "account has been blocked")
	}

	signed, err := s.tokens.Issue(id.Claim{Email: acct.Email, Name: acct.Name})
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.logAudit(ctx, audit.EventUserLoggedIn, acct.Email, "device", device)
	return acct, signed, nil
}

// Logout puts the token's JTI on the denylist until the token would have
// expired anyway.
func (s *Service) Logout(ctx context.Context, claim id.Claim, jti string) error {
	if jti == "" || s.revocations == nil {
		return nil
	}
	if err := s.revocations.Revoke(ctx, jti, s.tokens.TTL()); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}
	s.logAudit(ctx, audit.EventUserLoggedOut, claim.Email)
	return nil
}
