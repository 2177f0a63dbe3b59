package verification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	challengememory "trafix/internal/verification/store/memory"
	id "trafix/pkg/domain"
	"trafix/pkg/platform/sentinel"
)

const (
	testLicence = id.LicenceNumber("LIC-001")
	testPhone   = "5551234567"
)

type ServiceSuite struct {
	suite.Suite
	store   *challengememory.Store
	service *Service
	now     time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = challengememory.New()
	s.now = time.Now()

	var err error
	s.service, err = New(s.store, WithClock(func() time.Time { return s.now }))
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil)
		s.Error(err)
		s.Contains(err.Error(), "challenge store is required")
	})
}

func (s *ServiceSuite) TestIssueThenVerify() {
	ctx := context.Background()

	code, err := s.service.Issue(ctx, testLicence, testPhone)
	s.Require().NoError(err)
	s.Len(code, 6)

	s.Run("correct code within TTL succeeds exactly once", func() {
		s.NoError(s.service.Verify(ctx, testLicence, testPhone, code))

		err := s.service.Verify(ctx, testLicence, testPhone, code)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ServiceSuite) TestVerify_Mismatch() {
	ctx := context.Background()

	code, err := s.service.Issue(ctx, testLicence, testPhone)
	s.Require().NoError(err)

	err = s.service.Verify(ctx, testLicence, testPhone, "000000")
	if code == "000000" {
		s.T().Skip("drew the one colliding code")
	}
	s.ErrorIs(err, sentinel.ErrMismatch)

	// A wrong guess must not burn the real code.
	s.NoError(s.service.Verify(ctx, testLicence, testPhone, code))
}

func (s *ServiceSuite) TestVerify_Expired() {
	ctx := context.Background()

	code, err := s.service.Issue(ctx, testLicence, testPhone)
	s.Require().NoError(err)

	s.now = s.now.Add(DefaultTTL + time.Second)

	err = s.service.Verify(ctx, testLicence, testPhone, code)
	s.ErrorIs(err, sentinel.ErrExpired)
}

func (s *ServiceSuite) TestIssue_OverwritesPriorCode() {
	ctx := context.Background()

	first, err := s.service.Issue(ctx, testLicence, testPhone)
	s.Require().NoError(err)
	second, err := s.service.Issue(ctx, testLicence, testPhone)
	s.Require().NoError(err)

	if first != second {
		err = s.service.Verify(ctx, testLicence, testPhone, first)
		s.ErrorIs(err, sentinel.ErrMismatch)
	}
	s.NoError(s.service.Verify(ctx, testLicence, testPhone, second))
}

func (s *ServiceSuite) TestCancel() {
	ctx := context.Background()

	code, err := s.service.Issue(ctx, testLicence, testPhone)
	s.Require().NoError(err)

	s.NoError(s.service.Cancel(ctx, testLicence, testPhone))

	err = s.service.Verify(ctx, testLicence, testPhone, code)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := generateCode()
		if err != nil {
			t.Fatalf("generate code: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q is not 6 digits", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains non-digit", code)
			}
		}
	}
}
