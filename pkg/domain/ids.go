// Package domain holds primitives shared across bounded contexts: typed
// identifiers and the session claim.
package domain

import (
	"github.com/google/uuid"

	dErrors "lifeflow/pkg/domain-errors"
)

// Typed IDs prevent cross-entity assignment at compile time.
type (
	AccountID uuid.UUID
	RequestID uuid.UUID
	FundingID uuid.UUID
)

func (id AccountID) String() string { return uuid.UUID(id).String() }
func (id AccountID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id RequestID) String() string { return uuid.UUID(id).String() }
func (id RequestID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id FundingID) String() string { return uuid.UUID(id).String() }
func (id FundingID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// NewRequestID mints a fresh donation request identifier.
func NewRequestID() RequestID { return RequestID(uuid.New()) }

// NewAccountID mints a fresh account identifier.
func NewAccountID() AccountID { return AccountID(uuid.New()) }

// NewFundingID mints a fresh funding record identifier.
func NewFundingID() FundingID { return FundingID(uuid.New()) }

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "id is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "id must not be nil")
	}
	return u, nil
}

// ParseAccountID validates a string as an account identifier.
func ParseAccountID(s string) (AccountID, error) {
	u, err := parseUUID(s)
	return AccountID(u), err
}

// ParseRequestID validates a string as a donation request identifier.
func ParseRequestID(s string) (RequestID, error) {
	u, err := parseUUID(s)
	return RequestID(u), err
}

// ParseFundingID validates a string as a funding record identifier.
func ParseFundingID(s string) (FundingID, error) {
	u, err := parseUUID(s)
	return FundingID(u), err
}
