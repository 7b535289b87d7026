// Package fund persists funding contributions.
package fund

import (
	"context"

	"lifeflow/internal/funding/models"
)

// Store is the funding persistence contract.
type Store interface {
	Insert(ctx context.Context, f *models.Fund) error
	// List returns contributions newest first.
	List(ctx context.Context, page models.Page) ([]*models.Fund, error)
	Total(ctx context.Context) (int64, error)
}
