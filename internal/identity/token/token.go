// Package token issues and verifies session tokens. Verification is purely
// structural and cryptographic; it never consults the account store, so a
// valid token proves identity only, not current permission.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "lifeflow/pkg/domain"
	dErrors "lifeflow/pkg/domain-errors"
)

// Claims is the JWT payload. Only identity fields are embedded; role and
// block status are mutable account facts and deliberately excluded.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Service signs and verifies HS256 session tokens.
type Service struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

func New(signingKey string, ttl time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     "lifeflow",
		ttl:        ttl,
	}
}

// TTL returns the configured token lifetime. Logout uses it as the upper
// bound for how long a revoked JTI must stay on the denylist.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue signs a session token for the given identity.
func (s *Service) Issue(claim id.Claim) (string, error) {
	now := time.Now()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: id.NormalizeEmail(claim.Email),
		Name:  claim.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return newToken.SignedString(s.signingKey)
}

// Verify validates the token signature and expiry and returns the embedded
// claim plus the token's JTI for revocation checks.
func (s *Service) Verify(tokenString string) (id.Claim, string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return id.Claim{}, "", dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return id.Claim{}, "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return id.Claim{}, "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return id.Claim{}, "", dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return id.Claim{Email: claims.Email, Name: claims.Name}, claims.ID, nil
}
