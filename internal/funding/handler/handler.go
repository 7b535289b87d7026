// Package handler exposes funding contributions over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"lifeflow/internal/funding/models"
	"lifeflow/internal/funding/service"
	"lifeflow/internal/platform/middleware"
	id "lifeflow/pkg/domain"
	dErrors "lifeflow/pkg/domain-errors"
	"lifeflow/pkg/platform/httputil"
)

// Service defines the funding operations the handler needs.
type Service interface {
	Record(ctx context.Context, claim id.Claim, in service.RecordInput) (*models.Fund, error)
	List(ctx context.Context, page models.Page) ([]*models.Fund, error)
	Total(ctx context.Context) (int64, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
	auth    func(http.Handler) http.Handler
}

func New(service Service, logger *slog.Logger, auth func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, logger: logger, auth: auth}
}

// Register mounts the funding routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/funding", func(r chi.Router) {
		r.Get("/total", h.handleTotal)

		r.Group(func(r chi.Router) {
			r.Use(h.auth)
			r.Get("/", h.handleList)
			r.Post("/", h.handleRecord)
		})
	})
}

type fundResponse struct {
	ID            string    `json:"id"`
	UserName      string    `json:"userName"`
	UserEmail     string    `json:"userEmail"`
	Amount        int64     `json:"amount"`
	TransactionID string    `json:"transactionId"`
	FundingDate   time.Time `json:"fundingDate"`
}

func toResponse(f *models.Fund) fundResponse {
	return fundResponse{
		ID:            f.ID.String(),
		UserName:      f.UserName,
		UserEmail:     f.UserEmail,
		Amount:        f.Amount,
		TransactionID: f.TransactionID,
		FundingDate:   f.FundingDate,
	}
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claim, ok := middleware.GetClaim(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing credentials"))
		return
	}

	var body struct {
		Amount        int64  `json:"amount"`
		TransactionID string `json:"transactionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	f, err := h.service.Record(ctx, claim, service.RecordInput{
		Amount:        body.Amount,
		TransactionID: body.TransactionID,
	})
	if err != nil {
		if dErrors.Load(err).Code == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "record funding failed",
				"request_id", middleware.GetRequestID(ctx),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(f))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))

	funds, err := h.service.List(r.Context(), models.Page{Number: page, Size: size})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]fundResponse, 0, len(funds))
	for _, f := range funds {
		out = append(out, toResponse(f))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleTotal(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.Total(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int64{"total": total})
}
