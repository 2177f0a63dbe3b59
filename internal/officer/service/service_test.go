package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"trafix/internal/officer/models"
	"trafix/internal/officer/store/memory"
	dErrors "trafix/pkg/domain-errors"
)

type OfficerServiceSuite struct {
	suite.Suite
	svc *Service
	ctx context.Context
}

func (s *OfficerServiceSuite) SetupTest() {
	svc, err := New(memory.New())
	s.Require().NoError(err)
	s.svc = svc
	s.ctx = context.Background()
}

func TestOfficerServiceSuite(t *testing.T) {
	suite.Run(t, new(OfficerServiceSuite))
}

func (s *OfficerServiceSuite) TestRegister() {
	s.Run("registers with zero merit points", func() {
		officer, err := s.svc.Register(s.ctx, "OFF-501", "Karim Nader", "+20 111 222 3344", "Giza Traffic", "Lieutenant")
		s.Require().NoError(err)
		s.Zero(officer.Points)
		s.Equal("+201112223344", officer.Phone)
	})

	s.Run("rejects duplicate number with conflict code", func() {
		_, err := s.svc.Register(s.ctx, "OFF-502", "Karim Nader", "+201112223344", "Giza Traffic", "Lieutenant")
		s.Require().NoError(err)
		_, err = s.svc.Register(s.ctx, "OFF-502", "Someone Else", "+201119998877", "Cairo Traffic", "Captain")
		s.Require().Error(err)
		s.Equal(dErrors.CodeConflict, dErrors.CodeOf(err))
	})

	s.Run("rejects invalid phone", func() {
		_, err := s.svc.Register(s.ctx, "OFF-503", "Karim Nader", "99", "Giza Traffic", "Lieutenant")
		s.Require().Error(err)
		s.Equal(dErrors.CodeBadRequest, dErrors.CodeOf(err))
	})
}

func (s *OfficerServiceSuite) TestUpdatePreservesMerit() {
	registered, err := s.svc.Register(s.ctx, "OFF-601", "Karim Nader", "+201112223344", "Giza Traffic", "Lieutenant")
	s.Require().NoError(err)

	updated, err := s.svc.Update(s.ctx, &models.Officer{
		OfficerNumber: registered.OfficerNumber,
		FullName:      "Karim N. Fouad",
		Phone:         "+201112220000",
		Station:       "Cairo Traffic",
		Rank:          "Captain",
	})
	s.Require().NoError(err)
	s.Equal("Captain", updated.Rank)
	s.Zero(updated.Points)
}

func (s *OfficerServiceSuite) TestGetAndDelete() {
	_, err := s.svc.Get(s.ctx, "OFF-MISSING")
	s.Require().Error(err)
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))

	_, err = s.svc.Register(s.ctx, "OFF-701", "Karim Nader", "+201112223344", "Giza Traffic", "Lieutenant")
	s.Require().NoError(err)
	s.Require().NoError(s.svc.Delete(s.ctx, "OFF-701"))

	err = s.svc.Delete(s.ctx, "OFF-701")
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}
