package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"trafix/internal/rule/models"
	"trafix/internal/rule/store/memory"
	id "trafix/pkg/domain"
	dErrors "trafix/pkg/domain-errors"
)

type RuleServiceSuite struct {
	suite.Suite
	svc *Service
	ctx context.Context
}

func (s *RuleServiceSuite) SetupTest() {
	svc, err := New(memory.New())
	s.Require().NoError(err)
	s.svc = svc
	s.ctx = context.Background()
}

func TestRuleServiceSuite(t *testing.T) {
	suite.Run(t, new(RuleServiceSuite))
}

func (s *RuleServiceSuite) TestCreate() {
	s.Run("creates a rule", func() {
		rule, err := s.svc.Create(s.ctx, "74-B", "Exceeding the speed limit by more than 30 km/h", 50000, 6)
		s.Require().NoError(err)
		s.False(rule.ID.IsNil())
		s.Equal(6, rule.Points)
	})

	s.Run("rejects missing section", func() {
		_, err := s.svc.Create(s.ctx, "", "Provision", 100, 1)
		s.Require().Error(err)
		s.Equal(dErrors.CodeBadRequest, dErrors.CodeOf(err))
	})

	s.Run("rejects negative fine", func() {
		_, err := s.svc.Create(s.ctx, "74-C", "Provision", -1, 1)
		s.Require().Error(err)
		s.Equal(dErrors.CodeBadRequest, dErrors.CodeOf(err))
	})

	s.Run("rejects out-of-range points", func() {
		_, err := s.svc.Create(s.ctx, "74-D", "Provision", 100, 13)
		s.Require().Error(err)
		s.Equal(dErrors.CodeBadRequest, dErrors.CodeOf(err))
	})
}

func (s *RuleServiceSuite) TestUpdateAndGet() {
	created, err := s.svc.Create(s.ctx, "12-A", "Running a red light", 30000, 4)
	s.Require().NoError(err)

	updated, err := s.svc.Update(s.ctx, &models.Rule{
		ID:        created.ID,
		Section:   "12-A",
		Provision: "Running a red light at a controlled crossing",
		Fine:      35000,
		Points:    5,
	})
	s.Require().NoError(err)
	s.Equal(int64(35000), updated.Fine)
	s.Equal(5, updated.Points)

	_, err = s.svc.Get(s.ctx, id.NewRuleID())
	s.Require().Error(err)
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func (s *RuleServiceSuite) TestDelete() {
	created, err := s.svc.Create(s.ctx, "9-F", "Parking in a no-stop zone", 5000, 1)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Delete(s.ctx, created.ID))

	err = s.svc.Delete(s.ctx, created.ID)
	s.Require().Error(err)
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}
