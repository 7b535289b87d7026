// Package request persists donation requests. The one operation with a
// concurrency contract is ClaimForDonation: it must be a single conditional
// update keyed on the current status so two donors cannot both win a pending
// request.
package request

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"time"

	"lifeflow/internal/donation/models"
	id "lifeflow/pkg/domain"
)

// Store is the donation request persistence contract.
type Store interface {
	Insert(ctx context.Context, req *models.DonationRequest) error
	FindByID(ctx context.Context, requestID id.RequestID) (*models.DonationRequest, error)
	// UpdateDetails overwrites descriptive fields only; status and donor info
	// are untouched.
	UpdateDetails(ctx context.Context, requestID id.RequestID, details models.Details, now time.Time) error
	UpdateStatus(ctx context.Context, requestID id.RequestID, status models.DonationStatus, now time.Time) error
	// ClaimForDonation is a compare-and-set: it moves the request from
	// pending to inprogress and attaches the donor in one conditional write.
	// Returns false without modifying anything when the request is no longer
	// pending.
	ClaimForDonation(ctx context.Context, requestID id.RequestID, donor models.DonorInfo, now time.Time) (bool, error)
	Delete(ctx context.Context, requestID id.RequestID) error
	List(ctx context.Context, filter models.Filter, page models.Page) ([]*models.DonationRequest, error)
	Count(ctx context.Context, filter models.Filter) (int64, error)
}
