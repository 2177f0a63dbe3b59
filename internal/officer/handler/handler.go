package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trafix/internal/http/shared"
	officerModel "trafix/internal/officer/models"
	id "trafix/pkg/domain"
	dErrors "trafix/pkg/domain-errors"
)

// Service defines the officer operations the handler needs.
type Service interface {
	Register(ctx context.Context, number id.OfficerNumber, fullName, phone, station, rank string) (*officerModel.Officer, error)
	Get(ctx context.Context, number id.OfficerNumber) (*officerModel.Officer, error)
	List(ctx context.Context) ([]*officerModel.Officer, error)
	Update(ctx context.Context, officer *officerModel.Officer) (*officerModel.Officer, error)
	Delete(ctx context.Context, number id.OfficerNumber) error
}

// Handler exposes officer administration.
type Handler struct {
	officers Service
	logger   *slog.Logger
}

func New(officers Service, logger *slog.Logger) *Handler {
	return &Handler{officers: officers, logger: logger}
}

// Register mounts the officer routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/officers", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{number}", h.handleGet)
		r.Put("/{number}", h.handleUpdate)
		r.Delete("/{number}", h.handleDelete)
	})
}

type createRequest struct {
	OfficerNumber string `json:"officerNumber"`
	FullName      string `json:"fullName"`
	Phone         string `json:"phone"`
	Station       string `json:"station"`
	Rank          string `json:"rank"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	officer, err := h.officers.Register(r.Context(), id.OfficerNumber(req.OfficerNumber), req.FullName, req.Phone, req.Station, req.Rank)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusCreated, "officer registered", officer)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	officers, err := h.officers.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusOK, "officers", officers)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	number := id.OfficerNumber(chi.URLParam(r, "number"))
	officer, err := h.officers.Get(r.Context(), number)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusOK, "officer", officer)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	officer := &officerModel.Officer{
		OfficerNumber: id.OfficerNumber(chi.URLParam(r, "number")),
		FullName:      req.FullName,
		Phone:         req.Phone,
		Station:       req.Station,
		Rank:          req.Rank,
	}
	updated, err := h.officers.Update(r.Context(), officer)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusOK, "officer updated", updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	number := id.OfficerNumber(chi.URLParam(r, "number"))
	if err := h.officers.Delete(r.Context(), number); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteMessage(w, http.StatusOK, "officer deleted")
}
