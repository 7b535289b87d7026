package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	id "lifeflow/pkg/domain"
	dErrors "lifeflow/pkg/domain-errors"
	"lifeflow/pkg/platform/httputil"
)

// TokenVerifier validates a session token structurally and cryptographically.
// It must not consult the account store: a valid signature only proves who
// claims to be acting, not that they are still permitted to act.
type TokenVerifier interface {
	Verify(tokenString string) (id.Claim, string, error)
}

// RevocationChecker reports whether a token's JTI was revoked at logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthFailureCounter lets the middleware record rejected credentials without
// depending on the metrics package directly.
type AuthFailureCounter interface {
	Inc()
}

type contextKeyClaim struct{}
type contextKeyTokenID struct{}

// GetClaim retrieves the verified session claim set by RequireAuth.
func GetClaim(ctx context.Context) (id.Claim, bool) {
	claim, ok := ctx.Value(contextKeyClaim{}).(id.Claim)
	return claim, ok
}

// GetTokenID retrieves the JTI of the presented token.
func GetTokenID(ctx context.Context) string {
	jti, _ := ctx.Value(contextKeyTokenID{}).(string)
	return jti
}

// WithClaim injects a claim directly, for handler tests that bypass the
// middleware chain.
func WithClaim(ctx context.Context, claim id.Claim) context.Context {
	return context.WithValue(ctx, contextKeyClaim{}, claim)
}

// RequireAuth verifies the session token from the Authorization header or the
// "token" cookie, rejects revoked tokens, and stores the claim in the request
// context. Role and block status are deliberately not resolved here; services
// re-fetch the account at decision time.
func RequireAuth(verifier TokenVerifier, revocations RevocationChecker, failures AuthFailureCounter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString := bearerToken(r)
			if tokenString == "" {
				if c, err := r.Cookie("token"); err == nil {
					tokenString = c.Value
				}
			}
			if tokenString == "" {
				if failures != nil {
					failures.Inc()
				}
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claim, jti, err := verifier.Verify(tokenString)
			if err != nil {
				if failures != nil {
					failures.Inc()
				}
				logger.WarnContext(ctx, "rejected session token",
					"request_id", GetRequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			if revocations != nil {
				revoked, err := revocations.IsRevoked(ctx, jti)
				if err != nil {
					logger.ErrorContext(ctx, "revocation check failed",
						"request_id", GetRequestID(ctx),
						"error", err,
					)
					httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "revocation check failed"))
					return
				}
				if revoked {
					if failures != nil {
						failures.Inc()
					}
					httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked"))
					return
				}
			}

			ctx = context.WithValue(ctx, contextKeyClaim{}, claim)
			ctx = context.WithValue(ctx, contextKeyTokenID{}, jti)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), prefix); ok {
		return after
	}
	return ""
}
