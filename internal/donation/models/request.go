package models

import (
	"time"

	id "lifeflow/pkg/domain"
	dErrors "lifeflow/pkg/domain-errors"
)

// DonationStatus is the lifecycle state of a request.
//
// pending -> inprogress happens only through the donor claim (a conditional
// update). Every other movement goes through SetStatus, which is deliberately
// permissive: done and canceled are conventionally terminal but nothing
// stops an admin from reopening one.
type DonationStatus string

const (
	StatusPending    DonationStatus = "pending"
	StatusInProgress DonationStatus = "inprogress"
	StatusDone       DonationStatus = "done"
	StatusCanceled   DonationStatus = "canceled"
)

// ParseDonationStatus validates a status string from a trust boundary.
func ParseDonationStatus(s string) (DonationStatus, error) {
	switch DonationStatus(s) {
	case StatusPending, StatusInProgress, StatusDone, StatusCanceled:
		return DonationStatus(s), nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid status")
	}
}

// DonorInfo identifies the donor who claimed a request. Set exactly once by
// the winning claim; a later cancel keeps it as history.
type DonorInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DonationRequest is the central record of the system. RequesterEmail and
// RequesterName are stamped from the resolved account at creation and never
// change; descriptive fields are editable; DonationStatus and DonorInfo move
// only through the lifecycle operations.
type DonationRequest struct {
	ID                id.RequestID
	RequesterEmail    string
	RequesterName     string
	RecipientName     string
	RecipientDistrict string
	RecipientUpazila  string
	HospitalName      string
	FullAddress       string
	BloodGroup        string
	DonationDate      string
	DonationTime      string
	RequestMessage    string
	DonationStatus    DonationStatus
	DonorInfo         *DonorInfo
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsOwner reports whether the given email belongs to the requester, compared
// case-insensitively.
func (r *DonationRequest) IsOwner(email string) bool {
	return id.SameEmail(r.RequesterEmail, email)
}

// Details carries the editable descriptive fields, used for both creation
// and edits.
type Details struct {
	RecipientName     string
	RecipientDistrict string
	RecipientUpazila  string
	HospitalName      string
	FullAddress       string
	BloodGroup        string
	DonationDate      string
	DonationTime      string
	RequestMessage    string
}

// Validate enforces the required descriptive fields. RequestMessage is
// optional.
func (d Details) Validate() error {
	required := []string{
		d.RecipientName, d.RecipientDistrict, d.RecipientUpazila,
		d.HospitalName, d.FullAddress, d.BloodGroup, d.DonationDate, d.DonationTime,
	}
	for _, v := range required {
		if v == "" {
			return dErrors.New(dErrors.CodeBadRequest, "missing required field")
		}
	}
	return nil
}

// Filter narrows request listings. Zero-value fields match all.
type Filter struct {
	Status         DonationStatus
	RequesterEmail string
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
