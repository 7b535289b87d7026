// Package models defines the funding contribution record.
package models

import (
	"time"

	id "lifeflow/pkg/domain"
	dErrors "lifeflow/pkg/domain-errors"
)

// Fund is one recorded contribution. Amount is in the smallest currency unit.
// TransactionID references the external payment; the payment flow itself
// lives outside this service.
type Fund struct {
	ID            id.FundingID
	UserName      string
	UserEmail     string
	Amount        int64
	TransactionID string
	FundingDate   time.Time
}

// Validate checks the fields supplied by the caller.
func (f *Fund) Validate() error {
	if f.Amount <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "amount must be positive")
	}
	if f.TransactionID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "transaction id is required")
	}
	return nil
}

// Page is 1-based pagination.
type Page struct {
	Number int
	Size   int
}

// Offset converts the page to a skip count.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}
