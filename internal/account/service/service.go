// Package service owns backoffice account lifecycle: signup, admin approval
// and login.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"trafix/internal/account/device"
	"trafix/internal/account/models"
	"trafix/internal/account/store"
	id "trafix/pkg/domain"
	dErrors "trafix/pkg/domain-errors"
	"trafix/pkg/platform/sentinel"
)

// TokenIssuer signs an access token for an approved account.
type TokenIssuer interface {
	Issue(account *models.Account) (string, error)
}

// Auditor receives account events.
type Auditor interface {
	Emit(ctx context.Context, kind, actor, subject string, detail map[string]any)
}

type Service struct {
	store   store.AccountStore
	tokens  TokenIssuer
	auditor Auditor
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

func New(accountStore store.AccountStore, tokens TokenIssuer, opts ...Option) (*Service, error) {
	if accountStore == nil {
		return nil, fmt.Errorf("account store is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token issuer is required")
	}
	svc := &Service{store: accountStore, tokens: tokens, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Signup registers a pending account. An admin must approve it before login
// succeeds.
func (s *Service) Signup(ctx context.Context, email, fullName, password string, role models.Role) (*models.Account, error) {
	if len(password) < 8 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	account := models.New(email, fullName, hash, role, time.Now())
	if err := account.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	if s.auditor != nil {
		s.auditor.Emit(ctx, "account_signup", account.Email, account.ID.String(),
			map[string]any{"role": string(role)})
	}
	return account, nil
}

// Login checks credentials and approval state, then issues an access token.
// The userAgent is parsed into a device label for the audit trail.
func (s *Service) Login(ctx context.Context, email, password, userAgent string) (string, *models.Account, error) {
	account, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Same message as a wrong password so probes learn nothing.
			return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}

	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "login rejected", "email", email, "reason", "bad_credentials")
		return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}

	switch account.Status {
	case models.StatusApproved:
	case models.StatusPending:
		return "", nil, dErrors.New(dErrors.CodeForbidden, "account is awaiting approval")
	default:
		return "", nil, dErrors.New(dErrors.CodeForbidden, "account has been rejected")
	}

	accessToken, err := s.tokens.Issue(account)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	if s.auditor != nil {
		s.auditor.Emit(ctx, "login", account.Email, account.ID.String(),
			map[string]any{"device": device.ParseUserAgent(userAgent)})
	}
	s.logger.InfoContext(ctx, "login succeeded", "account_id", account.ID.String())
	return accessToken, account, nil
}

// Approve moves a pending account to approved.
func (s *Service) Approve(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	return s.setStatus(ctx, accountID, models.StatusApproved, "account_approved")
}

// Reject moves a pending account to rejected.
func (s *Service) Reject(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	return s.setStatus(ctx, accountID, models.StatusRejected, "account_rejected")
}

func (s *Service) setStatus(ctx context.Context, accountID id.AccountID, status models.Status, event string) (*models.Account, error) {
	account, err := s.store.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if account.Status != models.StatusPending {
		return nil, dErrors.New(dErrors.CodeConflict, "account is not pending")
	}
	if err := s.store.SetStatus(ctx, accountID, status); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update account status")
	}

	if s.auditor != nil {
		s.auditor.Emit(ctx, event, "", accountID.String(), nil)
	}
	return s.store.GetByID(ctx, accountID)
}

func (s *Service) List(ctx context.Context) ([]*models.Account, error) {
	accounts, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list accounts")
	}
	return accounts, nil
}
