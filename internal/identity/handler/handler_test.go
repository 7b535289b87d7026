package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"lifeflow/internal/identity/models"
	"lifeflow/internal/identity/service"
	"lifeflow/internal/identity/store/account"
	"lifeflow/internal/identity/store/revocation"
	"lifeflow/internal/identity/token"
	"lifeflow/internal/platform/middleware"
)

// The identity handler is tested through the full stack: real token service,
// real stores, real auth middleware. Only the database is in memory.

type staticCounter struct{}

func (staticCounter) Inc() {}

type IdentityHandlerSuite struct {
	suite.Suite
	router   chi.Router
	accounts *account.InMemory
	service  *service.Service
}

func TestIdentityHandlerSuite(t *testing.T) {
	suite.Run(t, new(IdentityHandlerSuite))
}

func (s *IdentityHandlerSuite) SetupTest() {
	s.accounts = account.NewInMemory()
	revocations := revocation.NewInMemory()
	tokens := token.New("test-signing-key", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc, err := service.New(s.accounts, revocations, tokens, service.WithLogger(logger))
	s.Require().NoError(err)
	s.service = svc

	auth := middleware.RequireAuth(tokens, revocations, staticCounter{}, logger)
	h := New(svc, logger, auth)
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *IdentityHandlerSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *IdentityHandlerSuite) registerBody(email string) map[string]string {
	return map[string]string{
		"email":      email,
		"name":       "Rahim",
		"bloodGroup": "A+",
		"district":   "Dhaka",
		"upazila":    "Gulshan",
		"password":   "secret123",
	}
}

func (s *IdentityHandlerSuite) register(email string) string {
	rec := s.do(http.MethodPost, "/auth/register", "", s.registerBody(email))
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Require().NotEmpty(body.Token)
	return body.Token
}

func (s *IdentityHandlerSuite) TestRegisterLoginMe() {
	token := s.register("rahim@example.com")

	rec := s.do(http.MethodGet, "/auth/me", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var me map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &me))
	s.Equal("rahim@example.com", me["email"])
	s.Equal("donor", me["role"])
	s.Equal("active", me["status"])
	s.NotContains(rec.Body.String(), "password")

	// Duplicate registration conflicts, case-insensitively.
	rec = s.do(http.MethodPost, "/auth/register", "", s.registerBody("RAHIM@example.com"))
	s.Equal(http.StatusConflict, rec.Code)

	// Fresh login works and sets the session cookie.
	rec = s.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email": "rahim@example.com", "password": "secret123",
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	s.Require().NotEmpty(cookies)
	s.Equal("token", cookies[0].Name)
	s.True(cookies[0].HttpOnly)

	rec = s.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email": "rahim@example.com", "password": "wrong",
	})
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *IdentityHandlerSuite) TestLogoutRevokesToken() {
	token := s.register("rahim@example.com")

	rec := s.do(http.MethodPost, "/auth/logout", token, nil)
	s.Require().Equal(http.StatusNoContent, rec.Code)

	// The same token no longer passes the middleware.
	rec = s.do(http.MethodGet, "/auth/me", token, nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *IdentityHandlerSuite) TestProfileUpdate() {
	token := s.register("rahim@example.com")

	rec := s.do(http.MethodPatch, "/users/profile", token, map[string]string{
		"name": "Rahim Updated", "bloodGroup": "B+", "district": "Khulna", "upazila": "Sadar",
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var updated map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &updated))
	s.Equal("Rahim Updated", updated["name"])
	s.Equal("B+", updated["bloodGroup"])
	// Email never changes through the profile.
	s.Equal("rahim@example.com", updated["email"])
}

func (s *IdentityHandlerSuite) TestDonorSearchIsPublic() {
	s.register("rahim@example.com")

	rec := s.do(http.MethodGet, "/search/donors?bloodGroup=A%2B&district=Dhaka", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var donors []map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &donors))
	s.Len(donors, 1)
}

func (s *IdentityHandlerSuite) TestAdminAccountManagement() {
	adminToken := s.register("admin@example.com")
	s.promote("admin@example.com")
	donorToken := s.register("donor@example.com")

	s.Run("listing is admin only", func() {
		rec := s.do(http.MethodGet, "/users", donorToken, nil)
		s.Equal(http.StatusForbidden, rec.Code)

		rec = s.do(http.MethodGet, "/users", adminToken, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var accounts []map[string]any
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &accounts))
		s.Len(accounts, 2)
	})

	s.Run("blocking takes effect on the next login", func() {
		targetID := s.accountID("donor@example.com")
		rec := s.do(http.MethodPatch, "/users/"+targetID+"/status", adminToken,
			map[string]string{"status": "blocked"})
		s.Require().Equal(http.StatusNoContent, rec.Code, rec.Body.String())

		rec = s.do(http.MethodPost, "/auth/login", "", map[string]string{
			"email": "donor@example.com", "password": "secret123",
		})
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("admins cannot block themselves", func() {
		selfID := s.accountID("admin@example.com")
		rec := s.do(http.MethodPatch, "/users/"+selfID+"/status", adminToken,
			map[string]string{"status": "blocked"})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("role changes apply", func() {
		targetID := s.accountID("donor@example.com")
		rec := s.do(http.MethodPatch, "/users/"+targetID+"/role", adminToken,
			map[string]string{"role": "volunteer"})
		s.Equal(http.StatusNoContent, rec.Code)

		rec = s.do(http.MethodPatch, "/users/"+targetID+"/role", adminToken,
			map[string]string{"role": "superuser"})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *IdentityHandlerSuite) TestStatsRequireElevatedRole() {
	donorToken := s.register("donor@example.com")
	rec := s.do(http.MethodGet, "/users/stats", donorToken, nil)
	s.Equal(http.StatusForbidden, rec.Code)

	volunteerToken := s.register("volunteer@example.com")
	s.setRole("volunteer@example.com", "volunteer")
	rec = s.do(http.MethodGet, "/users/stats", volunteerToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var stats map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &stats))
	s.Contains(stats, "totalDonors")
}

// promote flips an account to admin directly in the store; there is no
// bootstrap admin endpoint.
func (s *IdentityHandlerSuite) promote(email string) {
	s.setRole(email, "admin")
}

func (s *IdentityHandlerSuite) setRole(email, role string) {
	acct, err := s.accounts.FindByEmail(context.Background(), email)
	s.Require().NoError(err)
	s.Require().NoError(s.accounts.SetRole(context.Background(), acct.ID, models.Role(role), time.Now()))
}

func (s *IdentityHandlerSuite) accountID(email string) string {
	acct, err := s.accounts.FindByEmail(context.Background(), email)
	s.Require().NoError(err)
	return acct.ID.String()
}
