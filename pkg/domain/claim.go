package domain

import "strings"

// Claim is the verified identity derived from a session token. It carries
// identity only, never role or block status: those are mutable account facts
// and are re-fetched at decision time so long-lived tokens cannot outrun an
// admin's block or demotion.
type Claim struct {
	Email string
	Name  string
}

// NormalizeEmail lowercases and trims an address. Account provisioning and
// token issuance may disagree on casing, so every email comparison in the
// system goes through this first.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SameEmail reports whether two addresses identify the same account.
func SameEmail(a, b string) bool {
	return NormalizeEmail(a) == NormalizeEmail(b)
}
