// Package handler exposes the donation request lifecycle over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"lifeflow/internal/donation/models"
	"lifeflow/internal/platform/middleware"
	id "lifeflow/pkg/domain"
	dErrors "lifeflow/pkg/domain-errors"
	"lifeflow/pkg/platform/httputil"
)

// Service defines the lifecycle operations the handler needs.
type Service interface {
	Create(ctx context.Context, claim id.Claim, details models.Details) (*models.DonationRequest, error)
	Get(ctx context.Context, requestID id.RequestID) (*models.DonationRequest, error)
	Edit(ctx context.Context, claim id.Claim, requestID id.RequestID, details models.Details) (*models.DonationRequest, error)
	Donate(ctx context.Context, claim id.Claim, requestID id.RequestID) (*models.DonationRequest, error)
	SetStatus(ctx context.Context, claim id.Claim, requestID id.RequestID, status string) (*models.DonationRequest, error)
	Delete(ctx context.Context, claim id.Claim, requestID id.RequestID) error
	ListPending(ctx context.Context, page models.Page) ([]*models.DonationRequest, error)
	ListMine(ctx context.Context, claim id.Claim, page models.Page) ([]*models.DonationRequest, error)
	ListAll(ctx context.Context, claim id.Claim, filter models.Filter, page models.Page) ([]*models.DonationRequest, error)
	Recent(ctx context.Context, limit int) ([]*models.DonationRequest, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
	auth    func(http.Handler) http.Handler
}

// New creates the donation request handler. auth is the session middleware;
// the handler applies it to every route that acts on behalf of a caller.
func New(service Service, logger *slog.Logger, auth func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, logger: logger, auth: auth}
}

// Register mounts the donation request routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/donation-requests", func(r chi.Router) {
		// Browse surfaces stay public so visitors can see open requests
		// before signing up.
		r.Get("/pending", h.handleListPending)
		r.Get("/recent", h.handleRecent)

		r.Group(func(r chi.Router) {
			r.Use(h.auth)
			r.Post("/", h.handleCreate)
			r.Get("/", h.handleListAll)
			r.Get("/my-requests", h.handleListMine)
			r.Get("/{id}", h.handleGet)
			r.Patch("/{id}", h.handleEdit)
			r.Patch("/{id}/status", h.handleSetStatus)
			r.Post("/{id}/donate", h.handleDonate)
			r.Delete("/{id}", h.handleDelete)
		})
	})
}

type detailsRequest struct {
	RecipientName     string `json:"recipientName"`
	RecipientDistrict string `json:"recipientDistrict"`
	RecipientUpazila  string `json:"recipientUpazila"`
	HospitalName      string `json:"hospitalName"`
	FullAddress       string `json:"fullAddress"`
	BloodGroup        string `json:"bloodGroup"`
	DonationDate      string `json:"donationDate"`
	DonationTime      string `json:"donationTime"`
	RequestMessage    string `json:"requestMessage"`
}

func (d detailsRequest) toDetails() models.Details {
	return models.Details{
		RecipientName:     d.RecipientName,
		RecipientDistrict: d.RecipientDistrict,
		RecipientUpazila:  d.RecipientUpazila,
		HospitalName:      d.HospitalName,
		FullAddress:       d.FullAddress,
		BloodGroup:        d.BloodGroup,
		DonationDate:      d.DonationDate,
		DonationTime:      d.DonationTime,
		RequestMessage:    d.RequestMessage,
	}
}

type requestResponse struct {
	ID                string            `json:"id"`
	RequesterName     string            `json:"requesterName"`
	RequesterEmail    string            `json:"requesterEmail"`
	RecipientName     string            `json:"recipientName"`
	RecipientDistrict string            `json:"recipientDistrict"`
	RecipientUpazila  string            `json:"recipientUpazila"`
	HospitalName      string            `json:"hospitalName"`
	FullAddress       string            `json:"fullAddress"`
	BloodGroup        string            `json:"bloodGroup"`
	DonationDate      string            `json:"donationDate"`
	DonationTime      string            `json:"donationTime"`
	RequestMessage    string            `json:"requestMessage,omitempty"`
	DonationStatus    string            `json:"donationStatus"`
	DonorInfo         *models.DonorInfo `json:"donorInfo,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

func toResponse(req *models.DonationRequest) requestResponse {
	return requestResponse{
		ID:                req.ID.String(),
		RequesterName:     req.RequesterName,
		RequesterEmail:    req.RequesterEmail,
		RecipientName:     req.RecipientName,
		RecipientDistrict: req.RecipientDistrict,
		RecipientUpazila:  req.RecipientUpazila,
		HospitalName:      req.HospitalName,
		FullAddress:       req.FullAddress,
		BloodGroup:        req.BloodGroup,
		DonationDate:      req.DonationDate,
		DonationTime:      req.DonationTime,
		RequestMessage:    req.RequestMessage,
		DonationStatus:    string(req.DonationStatus),
		DonorInfo:         req.DonorInfo,
		CreatedAt:         req.CreatedAt,
		UpdatedAt:         req.UpdatedAt,
	}
}

func toResponses(reqs []*models.DonationRequest) []requestResponse {
	out := make([]requestResponse, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, toResponse(req))
	}
	return out
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claim, ok := middleware.GetClaim(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing credentials"))
		return
	}

	var body detailsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	req, err := h.service.Create(ctx, claim, body.toDetails())
	if err != nil {
		h.logError(ctx, "create request failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(req))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID, err := id.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, err := h.service.Get(r.Context(), requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(req))
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claim, ok := middleware.GetClaim(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing credentials"))
		return
	}
	requestID, err := id.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var body detailsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	req, err := h.service.Edit(ctx, claim, requestID, body.toDetails())
	if err != nil {
		h.logError(ctx, "edit request failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(req))
}

func (h *Handler) handleDonate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claim, ok := middleware.GetClaim(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing credentials"))
		return
	}
	requestID, err := id.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, err := h.service.Donate(ctx, claim, requestID)
	if err != nil {
		h.logError(ctx, "donate failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(req))
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claim, ok := middleware.GetClaim(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing credentials"))
		return
	}
	requestID, err := id.ParseRequestID(chi.URLParam(r, "id"))
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

	req, err := h.service.SetStatus(ctx, claim, requestID, body.Status)
	if err != nil {
		h.logError(ctx, "status change failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(req))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claim, ok := middleware.GetClaim(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing credentials"))
		return
	}
	requestID, err := id.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(ctx, claim, requestID); err != nil {
		h.logError(ctx, "delete request failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListPending(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.service.ListPending(r.Context(), pageFromQuery(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(reqs))
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	reqs, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(reqs))
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claim, ok := middleware.GetClaim(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing credentials"))
		return
	}

	reqs, err := h.service.ListMine(ctx, claim, pageFromQuery(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(reqs))
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claim, ok := middleware.GetClaim(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing credentials"))
		return
	}

	var filter models.Filter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := models.ParseDonationStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.Status = status
	}

	reqs, err := h.service.ListAll(ctx, claim, filter, pageFromQuery(r))
	if err != nil {
		h.logError(ctx, "list requests failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(reqs))
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	if dErrors.Load(err).Code == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
	}
}

func pageFromQuery(r *http.Request) models.Page {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	return models.Page{Number: page, Size: size}
}
