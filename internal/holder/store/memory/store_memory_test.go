package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"trafix/internal/holder/models"
	id "trafix/pkg/domain"
	"trafix/pkg/platform/sentinel"
)

type HolderStoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func (s *HolderStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
}

func TestHolderStoreSuite(t *testing.T) {
	suite.Run(t, new(HolderStoreSuite))
}

func (s *HolderStoreSuite) newHolder(licence string) *models.Holder {
	return models.New(id.LicenceNumber(licence), "Jordan Fahmy", "+201001234567", "12 Nile St, Cairo", time.Now())
}

func (s *HolderStoreSuite) TestCreateAndGet() {
	s.Run("creates and finds holder by licence", func() {
		holder := s.newHolder("DL-1001")
		s.Require().NoError(s.store.Create(s.ctx, holder))

		found, err := s.store.GetByLicence(s.ctx, holder.Licence)
		s.Require().NoError(err)
		s.Equal(holder.FullName, found.FullName)
		s.Equal(models.DefaultPoints, found.Points)
	})

	s.Run("returns ErrNotFound for unknown licence", func() {
		_, err := s.store.GetByLicence(s.ctx, id.LicenceNumber("DL-MISSING"))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects duplicate licence", func() {
		holder := s.newHolder("DL-1002")
		s.Require().NoError(s.store.Create(s.ctx, holder))
		err := s.store.Create(s.ctx, s.newHolder("DL-1002"))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *HolderStoreSuite) TestUpdatePreservesPoints() {
	holder := s.newHolder("DL-2001")
	s.Require().NoError(s.store.Create(s.ctx, holder))
	s.Require().NoError(s.store.AdjustPoints(s.ctx, holder.Licence, -3))

	holder.FullName = "Jordan F. Updated"
	holder.Points = 0 // callers never control the balance through Update
	s.Require().NoError(s.store.Update(s.ctx, holder))

	found, err := s.store.GetByLicence(s.ctx, holder.Licence)
	s.Require().NoError(err)
	s.Equal("Jordan F. Updated", found.FullName)
	s.Equal(models.DefaultPoints-3, found.Points)
}

func (s *HolderStoreSuite) TestAdjustPoints() {
	s.Run("applies positive and negative deltas", func() {
		holder := s.newHolder("DL-3001")
		s.Require().NoError(s.store.Create(s.ctx, holder))

		s.Require().NoError(s.store.AdjustPoints(s.ctx, holder.Licence, -6))
		s.Require().NoError(s.store.AdjustPoints(s.ctx, holder.Licence, 2))

		found, err := s.store.GetByLicence(s.ctx, holder.Licence)
		s.Require().NoError(err)
		s.Equal(models.DefaultPoints-4, found.Points)
	})

	s.Run("returns ErrNotFound for unknown licence", func() {
		err := s.store.AdjustPoints(s.ctx, id.LicenceNumber("DL-MISSING"), -1)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *HolderStoreSuite) TestListAndDelete() {
	s.Require().NoError(s.store.Create(s.ctx, s.newHolder("DL-B")))
	s.Require().NoError(s.store.Create(s.ctx, s.newHolder("DL-A")))

	holders, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(holders, 2)
	s.Equal(id.LicenceNumber("DL-A"), holders[0].Licence)

	s.Require().NoError(s.store.Delete(s.ctx, id.LicenceNumber("DL-A")))
	s.Require().ErrorIs(s.store.Delete(s.ctx, id.LicenceNumber("DL-A")), sentinel.ErrNotFound)

	holders, err = s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Len(holders, 1)
}
