// Package handler exposes registration, sessions, profiles, donor search,
// and admin account management over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mssola/useragent"

	"lifeflow/internal/identity/models"
	"lifeflow/internal/identity/service"
	"lifeflow/internal/platform/middleware"
	id "lifeflow/pkg/domain"
	dErrors "lifeflow/pkg/domain-errors"
	"lifeflow/pkg/platform/httputil"
)

// Service defines the identity operations the handler needs.
type Service interface {
	Register(ctx context.Context, in service.RegisterInput) (*models.Account, string, error)
	Login(ctx context.Context, email, password, device string) (*models.Account, string, error)
	Logout(ctx context.Context, claim id.Claim, jti string) error
	Profile(ctx context.Context, claim id.Claim) (*models.Account, error)
	UpdateProfile(ctx context.Context, claim id.Claim, patch models.ProfilePatch) error
	SearchDonors(ctx context.Context, filter models.DonorFilter) ([]*models.Account, error)
	DashboardStats(ctx context.Context, claim id.Claim) (*service.Stats, error)
	ListAccounts(ctx context.Context, claim id.Claim, filter models.AccountFilter) ([]*models.Account, error)
	SetAccountStatus(ctx context.Context, claim id.Claim, targetID id.AccountID, status models.AccountStatus) error
	SetAccountRole(ctx context.Context, claim id.Claim, targetID id.AccountID, role models.Role) error
	TokenTTL() time.Duration
}

type Handler struct {
	service Service
	logger  *slog.Logger
	auth    func(http.Handler) http.Handler
}

func New(service Service, logger *slog.Logger, auth func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, logger: logger, auth: auth}
}

// Register mounts the identity routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(h.auth)
			r.Post("/logout", h.handleLogout)
			r.Get("/me", h.handleMe)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(h.auth)
		r.Get("/", h.handleListAccounts)
		r.Get("/stats", h.handleStats)
		r.Get("/profile", h.handleMe)
		r.Patch("/profile", h.handleUpdateProfile)
		r.Patch("/{id}/status", h.handleSetStatus)
		r.Patch("/{id}/role", h.handleSetRole)
	})

	r.Get("/search/donors", h.handleSearchDonors)
}

type accountResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Avatar     string    `json:"avatar,omitempty"`
	BloodGroup string    `json:"bloodGroup,omitempty"`
	District   string    `json:"district,omitempty"`
	Upazila    string    `json:"upazila,omitempty"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toResponse(acct *models.Account) accountResponse {
	return accountResponse{
		ID:         acct.ID.String(),
		Email:      acct.Email,
		Name:       acct.Name,
		Avatar:     acct.Avatar,
		BloodGroup: acct.BloodGroup,
		District:   acct.District,
		Upazila:    acct.Upazila,
		Role:       string(acct.Role),
		Status:     string(acct.Status),
		CreatedAt:  acct.CreatedAt,
	}
}

func toResponses(accts []*models.Account) []accountResponse {
	out := make([]accountResponse, 0, len(accts))
	for _, acct := range accts {
		out = append(out, toResponse(acct))
	}
	return out
}

type sessionResponse struct {
	Token   string          `json:"token"`
	Account accountResponse `json:"user"`
}

// setSessionCookie mirrors the token in an HttpOnly cookie so browser clients
// need no token handling of their own.
func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.service.TokenTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Email      string `json:"email"`
		Name       string `json:"name"`
		Avatar     string `json:"avatar"`
		BloodGroup string `json:"bloodGroup"`
		District   string `json:"district"`
		Upazila    string `json:"upazila"`
		Password   string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	acct, token, err := h.service.Register(ctx, service.RegisterInput{
		Email:      body.Email,
		Name:       body.Name,
		Avatar:     body.Avatar,
		BloodGroup: body.BloodGroup,
		District:   body.District,
		Upazila:    body.Upazila,
		Password:   body.Password,
	})
	if err != nil {
		h.logError(ctx, "registration failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.setSessionCookie(w, token)
	httputil.WriteJSON(w, http.StatusCreated, sessionResponse{Token: token, Account: toResponse(acct)})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	acct, token, err := h.service.Login(ctx, body.Email, body.Password, deviceFrom(r))
	if err != nil {
		h.logError(ctx, "login failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.setSessionCookie(w, token)
	httputil.WriteJSON(w, http.StatusOK, sessionResponse{Token: token, Account: toResponse(acct)})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claim, _ := middleware.GetClaim(ctx)

	if err := h.service.Logout(ctx, claim, middleware.GetTokenID(ctx)); err != nil {
		h.logError(ctx, "logout failed", err)
		httputil.WriteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: "token", Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claim, ok := middleware.GetClaim(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing credentials"))
		return
	}

	acct, err := h.service.Profile(ctx, claim)
	if err != nil {
		h.logError(ctx, "profile load failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(acct))
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claim, ok := middleware.GetClaim(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing credentials"))
		return
	}

	var body struct {
		Name       string `json:"name"`
		Avatar     string `json:"avatar"`
		BloodGroup string `json:"bloodGroup"`
		District   string `json:"district"`
		Upazila    string `json:"upazila"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	err := h.service.UpdateProfile(ctx, claim, models.ProfilePatch{
		Name:       body.Name,
		Avatar:     body.Avatar,
		BloodGroup: body.BloodGroup,
		District:   body.District,
		Upazila:    body.Upazila,
	})
	if err != nil {
		h.logError(ctx, "profile update failed", err)
		httputil.WriteError(w, err)
		return
	}

	acct, err := h.service.Profile(ctx, claim)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(acct))
}

func (h *Handler) handleSearchDonors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	donors, err := h.service.SearchDonors(r.Context(), models.DonorFilter{
		BloodGroup: q.Get("bloodGroup"),
		District:   q.Get("district"),
		Upazila:    q.Get("upazila"),
	})
	if err != nil {
		h.logError(r.Context(), "donor search failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(donors))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claim, ok := middleware.GetClaim(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing credentials"))
		return
	}

	stats, err := h.service.DashboardStats(ctx, claim)
	if err != nil {
		h.logError(ctx, "stats failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claim, ok := middleware.GetClaim(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing credentials"))
		return
	}

	var filter models.AccountFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := models.ParseAccountStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.Status = status
	}

	accounts, err := h.service.ListAccounts(ctx, claim, filter)
	if err != nil {
		h.logError(ctx, "account listing failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(accounts))
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claim, ok := middleware.GetClaim(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing credentials"))
		return
	}
	targetID, err := id.ParseAccountID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	status, err := models.ParseAccountStatus(body.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.SetAccountStatus(ctx, claim, targetID, status); err != nil {
		h.logError(ctx, "status change failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claim, ok := middleware.GetClaim(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing credentials"))
		return
	}
	targetID, err := id.ParseAccountID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	role, err := models.ParseRole(body.Role)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.SetAccountRole(ctx, claim, targetID, role); err != nil {
		h.logError(ctx, "role change failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	if dErrors.Load(err).Code == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
	}
}

// deviceFrom condenses the User-Agent into a short device label for the
// login audit event.
func deviceFrom(r *http.Request) string {
	ua := useragent.New(r.UserAgent())
	name, version := ua.Browser()
	if name == "" {
		return ""
	}
	device := name + " " + version
	if os := ua.OS(); os != "" {
		device += " (" + os + ")"
	}
	return device
}
