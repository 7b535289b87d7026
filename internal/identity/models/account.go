package models

import (
	"time"

	id "lifeflow/pkg/domain"
	dErrors "lifeflow/pkg/domain-errors"
)

// Role is an account's authorization role. Every account starts as a donor;
// only an admin promotes.
type Role string

const (
	RoleDonor     Role = "donor"
	RoleVolunteer Role = "volunteer"
	RoleAdmin     Role = "admin"
)

// ParseRole validates a role string from a trust boundary.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleDonor, RoleVolunteer, RoleAdmin:
		return Role(s), nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid role")
	}
}

// AccountStatus is an account's block state.
type AccountStatus string

const (
	StatusActive  AccountStatus = "active"
	StatusBlocked AccountStatus = "blocked"
)

// ParseAccountStatus validates a status string from a trust boundary.
func ParseAccountStatus(s string) (AccountStatus, error) {
	switch AccountStatus(s) {
	case StatusActive, StatusBlocked:
		return AccountStatus(s), nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid status")
	}
}

// Account is the stored identity record. Email is persisted normalized
// (lowercase) and is the unique key; role and status are mutable by admins
// only and are always re-read at decision time rather than trusted from a
// session token.
type Account struct {
	ID           id.AccountID
	Email        string
	Name         string
	Avatar       string
	BloodGroup   string
	District     string
	Upazila      string
	PasswordHash []byte
	Role         Role
	Status       AccountStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsBlocked reports whether the account has been blocked by an admin.
func (a *Account) IsBlocked() bool { return a.Status == StatusBlocked }

// DonorFilter narrows donor search results. Zero-value fields match all.
type DonorFilter struct {
	BloodGroup string
	District   string
	Upazila    string
}

// AccountFilter narrows admin account listings.
type AccountFilter struct {
	Status AccountStatus
}

// ProfilePatch carries the self-service editable profile fields. Email, role,
// and status are not editable by the account holder.
type ProfilePatch struct {
	Name       string
	Avatar     string
	BloodGroup string
	District   string
	Upazila    string
}
