package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trafix/internal/http/shared"
	ruleModel "trafix/internal/rule/models"
	id "trafix/pkg/domain"
	dErrors "trafix/pkg/domain-errors"
)

// Service defines the rule operations the handler needs.
type Service interface {
	Create(ctx context.Context, section, provision string, fine int64, points int) (*ruleModel.Rule, error)
	Get(ctx context.Context, ruleID id.RuleID) (*ruleModel.Rule, error)
	List(ctx context.Context) ([]*ruleModel.Rule, error)
	Update(ctx context.Context, rule *ruleModel.Rule) (*ruleModel.Rule, error)
	Delete(ctx context.Context, ruleID id.RuleID) error
}

// Handler exposes traffic rule administration.
type Handler struct {
	rules  Service
	logger *slog.Logger
}

func New(rules Service, logger *slog.Logger) *Handler {
	return &Handler{rules: rules, logger: logger}
}

// Register mounts the rule routes. Reads are open to any authenticated
// caller (officers pick rules when recording); writes pass adminOnly.
func (h *Handler) Register(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Route("/rules", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.With(adminOnly).Post("/", h.handleCreate)
		r.With(adminOnly).Put("/{id}", h.handleUpdate)
		r.With(adminOnly).Delete("/{id}", h.handleDelete)
	})
}

type ruleRequest struct {
	Section   string `json:"section"`
	Provision string `json:"provision"`
	Fine      int64  `json:"fine"`
	Points    int    `json:"points"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	rule, err := h.rules.Create(r.Context(), req.Section, req.Provision, req.Fine, req.Points)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusCreated, "rule created", rule)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusOK, "rules", rules)
}

func (h *Handler) ruleID(r *http.Request) (id.RuleID, error) {
	ruleID, err := id.ParseRuleID(chi.URLParam(r, "id"))
	if err != nil {
		return id.RuleID{}, dErrors.New(dErrors.CodeBadRequest, "invalid rule id")
	}
	return ruleID, nil
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ruleID, err := h.ruleID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	rule, err := h.rules.Get(r.Context(), ruleID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusOK, "rule", rule)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ruleID, err := h.ruleID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	updated, err := h.rules.Update(r.Context(), &ruleModel.Rule{
		ID:        ruleID,
		Section:   req.Section,
		Provision: req.Provision,
		Fine:      req.Fine,
		Points:    req.Points,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusOK, "rule updated", updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ruleID, err := h.ruleID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.rules.Delete(r.Context(), ruleID); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteMessage(w, http.StatusOK, "rule deleted")
}
