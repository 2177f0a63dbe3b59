package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	holderModel "trafix/internal/holder/models"
	"trafix/internal/http/shared"
	id "trafix/pkg/domain"
	dErrors "trafix/pkg/domain-errors"
)

// Service defines the holder operations the handler needs.
type Service interface {
	Register(ctx context.Context, licence id.LicenceNumber, fullName, phone, address string) (*holderModel.Holder, error)
	Get(ctx context.Context, licence id.LicenceNumber) (*holderModel.Holder, error)
	List(ctx context.Context) ([]*holderModel.Holder, error)
	Update(ctx context.Context, holder *holderModel.Holder) (*holderModel.Holder, error)
	Delete(ctx context.Context, licence id.LicenceNumber) error
}

// Handler exposes licence holder administration.
type Handler struct {
	holders Service
	logger  *slog.Logger
}

func New(holders Service, logger *slog.Logger) *Handler {
	return &Handler{holders: holders, logger: logger}
}

// Register mounts the holder routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/holders", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{licence}", h.handleGet)
		r.Put("/{licence}", h.handleUpdate)
		r.Delete("/{licence}", h.handleDelete)
	})
}

type createRequest struct {
	LicenceNumber string `json:"licenceNumber"`
	FullName      string `json:"fullName"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	holder, err := h.holders.Register(r.Context(), id.LicenceNumber(req.LicenceNumber), req.FullName, req.Phone, req.Address)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusCreated, "licence holder registered", holder)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	holders, err := h.holders.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusOK, "licence holders", holders)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	licence := id.LicenceNumber(chi.URLParam(r, "licence"))
	holder, err := h.holders.Get(r.Context(), licence)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusOK, "licence holder", holder)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	holder := &holderModel.Holder{
		Licence:  id.LicenceNumber(chi.URLParam(r, "licence")),
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
	}
	updated, err := h.holders.Update(r.Context(), holder)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusOK, "licence holder updated", updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	licence := id.LicenceNumber(chi.URLParam(r, "licence"))
	if err := h.holders.Delete(r.Context(), licence); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteMessage(w, http.StatusOK, "licence holder deleted")
}
