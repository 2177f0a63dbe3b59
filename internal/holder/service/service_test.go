package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"trafix/internal/holder/models"
	"trafix/internal/holder/store/memory"
	id "trafix/pkg/domain"
	dErrors "trafix/pkg/domain-errors"
)

type HolderServiceSuite struct {
	suite.Suite
	svc *Service
	ctx context.Context
}

func (s *HolderServiceSuite) SetupTest() {
	svc, err := New(memory.New())
	s.Require().NoError(err)
	s.svc = svc
	s.ctx = context.Background()
}

func TestHolderServiceSuite(t *testing.T) {
	suite.Run(t, new(HolderServiceSuite))
}

func (s *HolderServiceSuite) TestRegister() {
	s.Run("registers with default points", func() {
		holder, err := s.svc.Register(s.ctx, "DL-1001", "Amira Soliman", "+20 100 123 4567", "5 Tahrir Sq")
		s.Require().NoError(err)
		s.Equal(models.DefaultPoints, holder.Points)
		s.Equal("+201001234567", holder.Phone)
	})

	s.Run("rejects duplicate licence with conflict code", func() {
		_, err := s.svc.Register(s.ctx, "DL-1002", "Amira Soliman", "+201001234567", "")
		s.Require().NoError(err)
		_, err = s.svc.Register(s.ctx, "DL-1002", "Someone Else", "+201009999999", "")
		s.Require().Error(err)
		s.Equal(dErrors.CodeConflict, dErrors.CodeOf(err))
	})

	s.Run("rejects invalid phone", func() {
		_, err := s.svc.Register(s.ctx, "DL-1003", "Amira Soliman", "12", "")
		s.Require().Error(err)
		s.Equal(dErrors.CodeBadRequest, dErrors.CodeOf(err))
	})

	s.Run("rejects missing name", func() {
		_, err := s.svc.Register(s.ctx, "DL-1004", "", "+201001234567", "")
		s.Require().Error(err)
		s.Equal(dErrors.CodeBadRequest, dErrors.CodeOf(err))
	})
}

func (s *HolderServiceSuite) TestGet() {
	_, err := s.svc.Get(s.ctx, "DL-MISSING")
	s.Require().Error(err)
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func (s *HolderServiceSuite) TestUpdate() {
	registered, err := s.svc.Register(s.ctx, "DL-2001", "Amira Soliman", "+201001234567", "5 Tahrir Sq")
	s.Require().NoError(err)

	updated, err := s.svc.Update(s.ctx, &models.Holder{
		Licence:  registered.Licence,
		FullName: "Amira S. Hassan",
		Phone:    "+20 100 765 4321",
		Address:  "9 Corniche Rd",
	})
	s.Require().NoError(err)
	s.Equal("Amira S. Hassan", updated.FullName)
	s.Equal("+201007654321", updated.Phone)
	s.Equal(models.DefaultPoints, updated.Points)
	s.Equal(registered.CreatedAt.Unix(), updated.CreatedAt.Unix())
}

func (s *HolderServiceSuite) TestDelete() {
	_, err := s.svc.Register(s.ctx, "DL-3001", "Amira Soliman", "+201001234567", "")
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Delete(s.ctx, "DL-3001"))

	err = s.svc.Delete(s.ctx, "DL-3001")
	s.Require().Error(err)
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))

	_, err = s.svc.Get(s.ctx, id.LicenceNumber("DL-3001"))
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}
