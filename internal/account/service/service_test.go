package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"trafix/internal/account/models"
	"trafix/internal/account/store/memory"
	"trafix/internal/account/token"
	id "trafix/pkg/domain"
	dErrors "trafix/pkg/domain-errors"
)

type AccountServiceSuite struct {
	suite.Suite
	svc    *Service
	tokens *token.Service
	ctx    context.Context
}

func (s *AccountServiceSuite) SetupTest() {
	tokens, err := token.NewService("test-signing-key")
	s.Require().NoError(err)
	s.tokens = tokens

	svc, err := New(memory.New(), tokens)
	s.Require().NoError(err)
	s.svc = svc
	s.ctx = context.Background()
}

func TestAccountServiceSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceSuite))
}

func (s *AccountServiceSuite) signup(email string) *models.Account {
	account, err := s.svc.Signup(s.ctx, email, "Dina Mostafa", "correct-horse", models.RoleOfficer)
	s.Require().NoError(err)
	return account
}

func (s *AccountServiceSuite) TestSignup() {
	s.Run("creates a pending account", func() {
		account := s.signup("dina@example.com")
		s.Equal(models.StatusPending, account.Status)
		s.NotEmpty(account.PasswordHash)
	})

	s.Run("rejects duplicate email", func() {
		s.signup("dup@example.com")
		_, err := s.svc.Signup(s.ctx, "dup@example.com", "Other", "correct-horse", models.RoleOfficer)
		s.Require().Error(err)
		s.Equal(dErrors.CodeConflict, dErrors.CodeOf(err))
	})

	s.Run("rejects short password", func() {
		_, err := s.svc.Signup(s.ctx, "short@example.com", "Dina", "tiny", models.RoleOfficer)
		s.Require().Error(err)
		s.Equal(dErrors.CodeBadRequest, dErrors.CodeOf(err))
	})

	s.Run("rejects invalid email", func() {
		_, err := s.svc.Signup(s.ctx, "not-an-email", "Dina", "correct-horse", models.RoleOfficer)
		s.Require().Error(err)
		s.Equal(dErrors.CodeBadRequest, dErrors.CodeOf(err))
	})
}

func (s *AccountServiceSuite) TestLoginRequiresApproval() {
	account := s.signup("pending@example.com")

	_, _, err := s.svc.Login(s.ctx, "pending@example.com", "correct-horse", "")
	s.Require().Error(err)
	s.Equal(dErrors.CodeForbidden, dErrors.CodeOf(err))

	_, err = s.svc.Approve(s.ctx, account.ID)
	s.Require().NoError(err)

	accessToken, logged, err := s.svc.Login(s.ctx, "pending@example.com", "correct-horse", "Mozilla/5.0")
	s.Require().NoError(err)
	s.Equal(account.ID, logged.ID)

	claims, err := s.tokens.ValidateToken(accessToken)
	s.Require().NoError(err)
	s.Equal(account.ID.String(), claims.AccountID)
	s.Equal(string(models.RoleOfficer), claims.Role)
}

func (s *AccountServiceSuite) TestLoginRejectsBadCredentials() {
	account := s.signup("creds@example.com")
	_, err := s.svc.Approve(s.ctx, account.ID)
	s.Require().NoError(err)

	_, _, err = s.svc.Login(s.ctx, "creds@example.com", "wrong-password", "")
	s.Require().Error(err)
	s.Equal(dErrors.CodeUnauthorized, dErrors.CodeOf(err))
	s.Equal("invalid email or password", dErrors.MessageOf(err))

	_, _, err = s.svc.Login(s.ctx, "nobody@example.com", "correct-horse", "")
	s.Require().Error(err)
	s.Equal(dErrors.CodeUnauthorized, dErrors.CodeOf(err))
	s.Equal("invalid email or password", dErrors.MessageOf(err), "unknown email reads like a bad password")
}

func (s *AccountServiceSuite) TestApprovalWorkflow() {
	account := s.signup("flow@example.com")

	rejected, err := s.svc.Reject(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, rejected.Status)

	_, err = s.svc.Approve(s.ctx, account.ID)
	s.Require().Error(err)
	s.Equal(dErrors.CodeConflict, dErrors.CodeOf(err), "only pending accounts transition")

	_, _, err = s.svc.Login(s.ctx, "flow@example.com", "correct-horse", "")
	s.Require().Error(err)
	s.Equal(dErrors.CodeForbidden, dErrors.CodeOf(err))

	_, err = s.svc.Approve(s.ctx, id.NewAccountID())
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}
