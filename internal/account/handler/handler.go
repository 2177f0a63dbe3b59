package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	accountModel "trafix/internal/account/models"
	"trafix/internal/http/shared"
	id "trafix/pkg/domain"
	dErrors "trafix/pkg/domain-errors"
)

// Service defines the account operations the handler needs.
type Service interface {
	Signup(ctx context.Context, email, fullName, password string, role accountModel.Role) (*accountModel.Account, error)
	Login(ctx context.Context, email, password, userAgent string) (string, *accountModel.Account, error)
	Approve(ctx context.Context, accountID id.AccountID) (*accountModel.Account, error)
	Reject(ctx context.Context, accountID id.AccountID) (*accountModel.Account, error)
	List(ctx context.Context) ([]*accountModel.Account, error)
}

// Handler exposes signup, login and the admin approval workflow.
type Handler struct {
	accounts Service
	logger   *slog.Logger
}

func New(accounts Service, logger *slog.Logger) *Handler {
	return &Handler{accounts: accounts, logger: logger}
}

// RegisterPublic mounts the unauthenticated auth routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.handleSignup)
		r.Post("/login", h.handleLogin)
	})
}

// RegisterAdmin mounts the account administration routes. Callers gate these
// behind RequireAuth + RequireRole(admin).
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/{id}/approve", h.handleApprove)
		r.Post("/{id}/reject", h.handleReject)
	})
}

type signupRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	role, err := accountModel.ParseRole(req.Role)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	account, err := h.accounts.Signup(r.Context(), req.Email, req.FullName, req.Password, role)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusCreated, "account created, awaiting approval", account)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string                `json:"accessToken"`
	Account     *accountModel.Account `json:"account"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	accessToken, account, err := h.accounts.Login(r.Context(), req.Email, req.Password, r.UserAgent())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusOK, "login successful", loginResponse{
		AccessToken: accessToken,
		Account:     account,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusOK, "accounts", accounts)
}

func (h *Handler) accountID(r *http.Request) (id.AccountID, error) {
	accountID, err := id.ParseAccountID(chi.URLParam(r, "id"))
	if err != nil {
		return id.AccountID{}, dErrors.New(dErrors.CodeBadRequest, "invalid account id")
	}
	return accountID, nil
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	accountID, err := h.accountID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	account, err := h.accounts.Approve(r.Context(), accountID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusOK, "account approved", account)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	accountID, err := h.accountID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	account, err := h.accounts.Reject(r.Context(), accountID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteData(w, http.StatusOK, "account rejected", account)
}
