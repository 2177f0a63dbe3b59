package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trafix/internal/http/shared"
	"trafix/internal/violation/models"
	"trafix/internal/violation/store"
	id "trafix/pkg/domain"
	dErrors "trafix/pkg/domain-errors"
)

// Service defines the violation operations the handler needs.
type Service interface {
	Begin(ctx context.Context, req *models.Request) error
	Complete(ctx context.Context, req *models.Request, code string) (*models.Record, error)
	Get(ctx context.Context, violationID id.ViolationID) (*models.Record, error)
	List(ctx context.Context, filter store.Filter) ([]*models.Record, error)
	Cancel(ctx context.Context, violationID id.ViolationID) (*models.Record, error)
	ConfirmPayment(ctx context.Context, violationID id.ViolationID, payment models.PaymentStatus) (*models.Record, error)
}

// Handler exposes the two-phase violation recording flow plus record
// administration.
type Handler struct {
	violations Service
	logger     *slog.Logger
}

func New(violations Service, logger *slog.Logger) *Handler {
	return &Handler{violations: violations, logger: logger}
}

// Register mounts the violation routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/violations", func(r chi.Router) {
		r.Post("/", h.handleRecord)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Post("/{id}/cancel", h.handleCancel)
		r.Post("/{id}/payment", h.handlePayment)
	})
}

// recordRequest is the payload for both phases. isVerificationStep
// discriminates: false (or absent) starts verification, true completes it.
type recordRequest struct {
	models.Request
	VerificationCode   string `json:"verificationCode,omitempty"`
	IsVerificationStep bool   `json:"isVerificationStep,omitempty"`
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if !req.IsVerificationStep {
		if err := h.violations.Begin(r.Context(), &req.Request); err != nil {
			shared.WriteError(w, err)
			return
		}
		shared.WriteVerificationRequired(w, "verification code sent")
		return
	}

	record, err := h.violations.Complete(r.Context(), &req.Request, req.VerificationCode)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusCreated, "violation recorded", record)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := store.Filter{
		Licence:       id.LicenceNumber(r.URL.Query().Get("licenceNumber")),
		OfficerNumber: id.OfficerNumber(r.URL.Query().Get("policeNumber")),
	}
	records, err := h.violations.List(r.Context(), filter)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusOK, "violations", records)
}

func (h *Handler) violationID(r *http.Request) (id.ViolationID, error) {
	violationID, err := id.ParseViolationID(chi.URLParam(r, "id"))
	if err != nil {
		return id.ViolationID{}, dErrors.New(dErrors.CodeBadRequest, "invalid violation id")
	}
	return violationID, nil
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	violationID, err := h.violationID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	record, err := h.violations.Get(r.Context(), violationID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusOK, "violation", record)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	violationID, err := h.violationID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	record, err := h.violations.Cancel(r.Context(), violationID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusOK, "violation cancelled", record)
}

type paymentRequest struct {
	PaymentStatus string `json:"paymentStatus"`
}

func (h *Handler) handlePayment(w http.ResponseWriter, r *http.Request) {
	violationID, err := h.violationID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	payment, err := models.ParsePaymentStatus(req.PaymentStatus)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	record, err := h.violations.ConfirmPayment(r.Context(), violationID, payment)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusOK, "payment status updated", record)
}
