package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	holderModel "trafix/internal/holder/models"
	holderMemory "trafix/internal/holder/store/memory"
	"trafix/internal/http/shared"
	"trafix/internal/notify/mocks"
	officerModel "trafix/internal/officer/models"
	officerMemory "trafix/internal/officer/store/memory"
	ruleModel "trafix/internal/rule/models"
	ruleMemory "trafix/internal/rule/store/memory"
	"trafix/internal/verification"
	challengeMemory "trafix/internal/verification/store/memory"
	violationService "trafix/internal/violation/service"
	violationMemory "trafix/internal/violation/store/memory"
	id "trafix/pkg/domain"
	"trafix/pkg/platform/tx"
	"trafix/pkg/testutil"
)

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

type ViolationHandlerSuite struct {
	suite.Suite
	ctx        context.Context
	ctrl       *gomock.Controller
	dispatcher *mocks.MockDispatcher
	router     chi.Router
	rule       *ruleModel.Rule
	sentCode   string
}

func (s *ViolationHandlerSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.dispatcher = mocks.NewMockDispatcher(s.ctrl)
	s.sentCode = ""

	holders := holderMemory.New()
	officers := officerMemory.New()
	rules := ruleMemory.New()

	s.Require().NoError(holders.Create(s.ctx,
		holderModel.New("LIC-001", "Amira Soliman", "+201001234567", "5 Tahrir Sq", time.Now())))
	s.Require().NoError(officers.Create(s.ctx,
		officerModel.New("OFF-100", "Karim Nader", "+201112223344", "Giza Traffic", "Lieutenant", time.Now())))
	s.rule = ruleModel.New("74-B", "Exceeding the speed limit", 50000, 3, time.Now())
	s.Require().NoError(rules.Create(s.ctx, s.rule))

	verifier, err := verification.New(challengeMemory.New())
	s.Require().NoError(err)

	svc, err := violationService.New(violationService.Deps{
		Violations: violationMemory.New(),
		Holders:    holders,
		Officers:   officers,
		Rules:      rules,
		Verifier:   verifier,
		Dispatcher: s.dispatcher,
		Runner:     tx.NewLockRunner(),
	})
	s.Require().NoError(err)

	s.router = chi.NewRouter()
	New(svc, slog.Default()).Register(s.router)
}

func (s *ViolationHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestViolationHandlerSuite(t *testing.T) {
	suite.Run(t, new(ViolationHandlerSuite))
}

func (s *ViolationHandlerSuite) expectDispatch() {
	s.dispatcher.EXPECT().
		Send(gomock.Any(), "+201001234567", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, message string) error {
			match := codePattern.FindStringSubmatch(message)
			s.Require().NotNil(match)
			s.sentCode = match[1]
			return nil
		})
}

func (s *ViolationHandlerSuite) phaseOneBody() map[string]any {
	return map[string]any{
		"licenceNumber":    "LIC-001",
		"policeNumber":     "OFF-100",
		"phoneNumber":      "+201001234567",
		"vehicleNumber":    "abc-123",
		"placeOfViolation": "Ring Road, Giza",
		"ruleId":           s.rule.ID.String(),
	}
}

func (s *ViolationHandlerSuite) post(body any) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, testutil.NewJSONRequest(s.T(), http.MethodPost, "/violations", body))
	return rec
}

func (s *ViolationHandlerSuite) TestTwoPhaseRecording() {
	s.expectDispatch()
	rec := s.post(s.phaseOneBody())
	s.Require().Equal(http.StatusOK, rec.Code)

	var env shared.Envelope
	testutil.DecodeJSON(s.T(), rec, &env)
	s.True(env.Success)
	s.True(env.RequiresVerification)

	body := s.phaseOneBody()
	body["isVerificationStep"] = true
	body["verificationCode"] = s.sentCode
	rec = s.post(body)
	s.Require().Equal(http.StatusCreated, rec.Code)

	env = shared.Envelope{}
	testutil.DecodeJSON(s.T(), rec, &env)
	s.True(env.Success)
	s.False(env.RequiresVerification)
	data, ok := env.Data.(map[string]any)
	s.Require().True(ok)
	s.Equal("active", data["status"])
	s.Equal("ABC-123", data["vehicleNumber"])
	s.Equal(float64(3), data["rulePoints"])
}

func (s *ViolationHandlerSuite) TestMissingFieldsShortCircuit() {
	body := s.phaseOneBody()
	delete(body, "placeOfViolation")
	rec := s.post(body)
	s.Require().Equal(http.StatusBadRequest, rec.Code)

	var env shared.Envelope
	testutil.DecodeJSON(s.T(), rec, &env)
	s.False(env.Success)
	s.Equal("place of violation is required", env.Message)
}

func (s *ViolationHandlerSuite) TestMalformedBody() {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/violations", "{not json"))
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ViolationHandlerSuite) TestWrongCodeRejected() {
	s.expectDispatch()
	s.Require().Equal(http.StatusOK, s.post(s.phaseOneBody()).Code)

	wrong := "000000"
	if wrong == s.sentCode {
		wrong = "000001"
	}
	body := s.phaseOneBody()
	body["isVerificationStep"] = true
	body["verificationCode"] = wrong
	rec := s.post(body)
	s.Require().Equal(http.StatusUnauthorized, rec.Code)

	var env shared.Envelope
	testutil.DecodeJSON(s.T(), rec, &env)
	s.Equal("invalid or expired code", env.Message)
}

func (s *ViolationHandlerSuite) TestUnknownLicence() {
	body := s.phaseOneBody()
	body["licenceNumber"] = "UNKNOWN"
	rec := s.post(body)
	s.Require().Equal(http.StatusNotFound, rec.Code)
}

func (s *ViolationHandlerSuite) recordViolation() string {
	s.expectDispatch()
	s.Require().Equal(http.StatusOK, s.post(s.phaseOneBody()).Code)

	body := s.phaseOneBody()
	body["isVerificationStep"] = true
	body["verificationCode"] = s.sentCode
	rec := s.post(body)
	s.Require().Equal(http.StatusCreated, rec.Code)

	var env shared.Envelope
	testutil.DecodeJSON(s.T(), rec, &env)
	data, ok := env.Data.(map[string]any)
	s.Require().True(ok)
	recordID, ok := data["id"].(string)
	s.Require().True(ok)
	return recordID
}

func (s *ViolationHandlerSuite) TestListGetCancelAndPayment() {
	recordID := s.recordViolation()

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, testutil.NewJSONRequest(s.T(), http.MethodGet, "/violations?licenceNumber=LIC-001", nil))
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, testutil.NewJSONRequest(s.T(), http.MethodGet, "/violations/"+recordID, nil))
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, testutil.NewJSONRequest(s.T(), http.MethodPost, "/violations/"+recordID+"/payment",
		map[string]any{"paymentStatus": "paid"}))
	s.Require().Equal(http.StatusOK, rec.Code)
	var env shared.Envelope
	testutil.DecodeJSON(s.T(), rec, &env)
	data, ok := env.Data.(map[string]any)
	s.Require().True(ok)
	s.Equal("paid", data["paymentStatus"])

	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, testutil.NewJSONRequest(s.T(), http.MethodPost, "/violations/"+recordID+"/cancel", nil))
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, testutil.NewJSONRequest(s.T(), http.MethodPost, "/violations/"+recordID+"/cancel", nil))
	s.Equal(http.StatusConflict, rec.Code, "double cancel")

	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, testutil.NewJSONRequest(s.T(), http.MethodGet, "/violations/"+id.NewViolationID().String(), nil))
	s.Equal(http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, testutil.NewJSONRequest(s.T(), http.MethodGet, "/violations/not-a-uuid", nil))
	s.Equal(http.StatusBadRequest, rec.Code)
}
