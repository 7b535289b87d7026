// Package account persists identity records. Implementations return sentinel
// errors; the service layer translates them into domain errors.
package account

import (
	"context"
	"time"

	"lifeflow/internal/identity/models"
	id "lifeflow/pkg/domain"
)

// Store is the account persistence contract. Email lookups are
// case-insensitive: the stored email is normalized and callers may pass any
// casing.
type Store interface {
	Create(ctx context.Context, account *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error)
	List(ctx context.Context, filter models.AccountFilter) ([]*models.Account, error)
	SearchDonors(ctx context.Context, filter models.DonorFilter) ([]*models.Account, error)
	UpdateProfile(ctx context.Context, email string, patch models.ProfilePatch, now time.Time) error
	SetStatus(ctx context.Context, accountID id.AccountID, status models.AccountStatus, now time.Time) error
	SetRole(ctx context.Context, accountID id.AccountID, role models.Role, now time.Time) error
	CountActiveDonors(ctx context.Context) (int64, error)
}
