// Package service orchestrates the two-phase violation recording flow: a
// phone-verification gate followed by an atomic record insert with a point
// transfer from the licence holder to the recording officer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	holderModel "trafix/internal/holder/models"
	holderStore "trafix/internal/holder/store"
	"trafix/internal/notify"
	officerStore "trafix/internal/officer/store"
	ruleStore "trafix/internal/rule/store"
	"trafix/internal/violation/metrics"
	"trafix/internal/violation/models"
	"trafix/internal/violation/store"
	id "trafix/pkg/domain"
	dErrors "trafix/pkg/domain-errors"
	"trafix/pkg/platform/sentinel"
	"trafix/pkg/platform/tx"
)

// Verifier issues and consumes one-time codes bound to a (licence, phone) key.
type Verifier interface {
	Issue(ctx context.Context, licence id.LicenceNumber, phone string) (string, error)
	Verify(ctx context.Context, licence id.LicenceNumber, phone, code string) error
	Cancel(ctx context.Context, licence id.LicenceNumber, phone string) error
}

// Auditor receives workflow events. Implementations must not block the
// request path.
type Auditor interface {
	Emit(ctx context.Context, kind, actor, subject string, detail map[string]any)
}

// Service implements the verified state transition that records violations.
type Service struct {
	violations store.ViolationStore
	holders    holderStore.HolderStore
	officers   officerStore.OfficerStore
	rules      ruleStore.RuleStore
	verifier   Verifier
	dispatcher notify.Dispatcher
	runner     tx.Runner
	auditor    Auditor
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

// WithClock injects the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

type Deps struct {
	Violations store.ViolationStore
	Holders    holderStore.HolderStore
	Officers   officerStore.OfficerStore
	Rules      ruleStore.RuleStore
	Verifier   Verifier
	Dispatcher notify.Dispatcher
	Runner     tx.Runner
}

func New(deps Deps, opts ...Option) (*Service, error) {
	switch {
	case deps.Violations == nil:
		return nil, fmt.Errorf("violation store is required")
	case deps.Holders == nil:
		return nil, fmt.Errorf("holder store is required")
	case deps.Officers == nil:
		return nil, fmt.Errorf("officer store is required")
	case deps.Rules == nil:
		return nil, fmt.Errorf("rule store is required")
	case deps.Verifier == nil:
		return nil, fmt.Errorf("verifier is required")
	case deps.Dispatcher == nil:
		return nil, fmt.Errorf("dispatcher is required")
	case deps.Runner == nil:
		return nil, fmt.Errorf("tx runner is required")
	}
	svc := &Service{
		violations: deps.Violations,
		holders:    deps.Holders,
		officers:   deps.Officers,
		rules:      deps.Rules,
		verifier:   deps.Verifier,
		dispatcher: deps.Dispatcher,
		runner:     deps.Runner,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Begin runs phase one: confirm the licence holder exists, issue a challenge
// for (licence, phone) and dispatch it over SMS. A dispatch failure rolls the
// challenge back so a stale code cannot linger.
func (s *Service) Begin(ctx context.Context, req *models.Request) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		s.countBeginFailure("validation")
		return err
	}

	if _, err := s.holders.GetByLicence(ctx, req.Licence); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.countBeginFailure("holder_not_found")
			return dErrors.Wrap(err, dErrors.CodeNotFound, "licence holder not found")
		}
		s.countBeginFailure("lookup")
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load licence holder")
	}

	code, err := s.verifier.Issue(ctx, req.Licence, req.Phone)
	if err != nil {
		s.countBeginFailure("issue")
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue verification code")
	}

	message := fmt.Sprintf("Your violation verification code is %s. It expires in 5 minutes.", code)
	if err := s.dispatcher.Send(ctx, req.Phone, message); err != nil {
		if cancelErr := s.verifier.Cancel(ctx, req.Licence, req.Phone); cancelErr != nil {
			s.logger.ErrorContext(ctx, "failed to roll back challenge after dispatch failure",
				"licence", req.Licence.String(), "error", cancelErr)
		}
		s.countBeginFailure("delivery")
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to deliver verification code")
	}

	s.logger.InfoContext(ctx, "verification code dispatched", "licence", req.Licence.String())
	return nil
}

// Complete runs phase two: consume the challenge, then atomically record the
// violation and move the rule's points from holder to officer. The entity
// lookups happen inside the transaction so nothing deleted between phases can
// slip through.
func (s *Service) Complete(ctx context.Context, req *models.Request, suppliedCode string) (*models.Record, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		s.countCompleteFailure("validation")
		return nil, err
	}
	if suppliedCode == "" {
		s.countCompleteFailure("validation")
		return nil, dErrors.New(dErrors.CodeBadRequest, "verification code is required")
	}

	if err := s.verifier.Verify(ctx, req.Licence, req.Phone, suppliedCode); err != nil {
		s.logger.WarnContext(ctx, "verification failed",
			"licence", req.Licence.String(), "reason", verifyFailureReason(err))
		s.countCompleteFailure("verification")
		if s.auditor != nil {
			s.auditor.Emit(ctx, "verification_failed", req.OfficerNumber.String(),
				req.Licence.String(), map[string]any{"reason": verifyFailureReason(err)})
		}
		// One generic message for all verification sub-cases so the response
		// does not leak whether a live code exists for the key.
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid or expired code")
	}

	var record *models.Record
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		holder, err := s.holders.GetByLicence(ctx, req.Licence)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Wrap(err, dErrors.CodeNotFound, "licence holder not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load licence holder")
		}
		officer, err := s.officers.GetByNumber(ctx, req.OfficerNumber)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Wrap(err, dErrors.CodeNotFound, "officer not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load officer")
		}
		rule, err := s.rules.GetByID(ctx, req.RuleID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Wrap(err, dErrors.CodeNotFound, "rule not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load rule")
		}

		// Point moves first, record insert last: each applied write registers
		// its reversal so a partial failure in the memory deployment unwinds
		// instead of leaving the conservation invariant broken.
		if err := s.holders.AdjustPoints(ctx, holder.Licence, -rule.Points); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deduct holder points")
		}
		tx.OnRollback(ctx, func(ctx context.Context) error {
			return s.holders.AdjustPoints(ctx, holder.Licence, rule.Points)
		})
		if err := s.officers.AdjustPoints(ctx, officer.OfficerNumber, rule.Points); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to credit officer points")
		}
		tx.OnRollback(ctx, func(ctx context.Context) error {
			return s.officers.AdjustPoints(ctx, officer.OfficerNumber, -rule.Points)
		})
		record = s.buildRecord(req, holder, officer.FullName, rule.Section, rule.Provision, rule.Fine, rule.Points)
		if err := s.violations.Create(ctx, record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record violation")
		}
		return nil
	})
	if err != nil {
		s.countCompleteFailure("transition")
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.Recorded.Inc()
		s.metrics.PointsTransferred.Add(float64(record.RulePoints))
	}
	if s.auditor != nil {
		s.auditor.Emit(ctx, "violation_recorded", record.OfficerNumber.String(),
			record.Licence.String(), map[string]any{
				"violation_id": record.ID.String(),
				"rule_id":      record.RuleID.String(),
				"points":       record.RulePoints,
			})
	}
	s.logger.InfoContext(ctx, "violation recorded",
		"violation_id", record.ID.String(),
		"licence", record.Licence.String(),
		"officer", record.OfficerNumber.String(),
		"points", record.RulePoints,
	)
	return record, nil
}

func (s *Service) buildRecord(req *models.Request, holder *holderModel.Holder, officerName, section, provision string, fine int64, points int) *models.Record {
	now := s.now()
	return &models.Record{
		ID:            id.NewViolationID(),
		Licence:       req.Licence,
		HolderName:    holder.FullName,
		OfficerNumber: req.OfficerNumber,
		OfficerName:   officerName,
		Phone:         req.Phone,
		VehicleNumber: req.VehicleNumber,
		Location:      req.Location,
		RuleID:        req.RuleID,
		RuleSection:   section,
		RuleProvision: provision,
		RuleFine:      fine,
		RulePoints:    points,
		Notes:         req.Notes,
		OccurredAt:    now,
		Status:        models.StatusActive,
		PaymentStatus: models.PaymentUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (s *Service) Get(ctx context.Context, violationID id.ViolationID) (*models.Record, error) {
	record, err := s.violations.GetByID(ctx, violationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "violation not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load violation")
	}
	return record, nil
}

func (s *Service) List(ctx context.Context, filter store.Filter) ([]*models.Record, error) {
	records, err := s.violations.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list violations")
	}
	return records, nil
}

// Cancel transitions an active record to cancelled and reverses its point
// transfer in the same unit of work, keeping the conservation invariant true
// over active records.
func (s *Service) Cancel(ctx context.Context, violationID id.ViolationID) (*models.Record, error) {
	var record *models.Record
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		record, err = s.violations.GetByID(ctx, violationID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Wrap(err, dErrors.CodeNotFound, "violation not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load violation")
		}
		if record.Status != models.StatusActive {
			return dErrors.New(dErrors.CodeConflict, "violation is not active")
		}
		// Reverse the transfer before the status flip; the guarded update
		// stays last so it never needs unwinding and concurrent cancels still
		// race on a single winner.
		if err := s.holders.AdjustPoints(ctx, record.Licence, record.RulePoints); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to restore holder points")
		}
		tx.OnRollback(ctx, func(ctx context.Context) error {
			return s.holders.AdjustPoints(ctx, record.Licence, -record.RulePoints)
		})
		if err := s.officers.AdjustPoints(ctx, record.OfficerNumber, -record.RulePoints); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke officer points")
		}
		tx.OnRollback(ctx, func(ctx context.Context) error {
			return s.officers.AdjustPoints(ctx, record.OfficerNumber, record.RulePoints)
		})
		if err := s.violations.SetStatus(ctx, violationID, models.StatusCancelled); err != nil {
			if errors.Is(err, sentinel.ErrInvalidState) {
				return dErrors.Wrap(err, dErrors.CodeConflict, "violation is not active")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to cancel violation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.auditor != nil {
		s.auditor.Emit(ctx, "violation_cancelled", record.OfficerNumber.String(),
			record.Licence.String(), map[string]any{"violation_id": violationID.String()})
	}
	return s.Get(ctx, violationID)
}

// ConfirmPayment records the settlement state reported by the external
// payment processor.
func (s *Service) ConfirmPayment(ctx context.Context, violationID id.ViolationID, payment models.PaymentStatus) (*models.Record, error) {
	if err := s.violations.SetPaymentStatus(ctx, violationID, payment); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "violation not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update payment status")
	}
	if s.auditor != nil {
		s.auditor.Emit(ctx, "payment_updated", "", violationID.String(),
			map[string]any{"payment_status": string(payment)})
	}
	return s.Get(ctx, violationID)
}

func (s *Service) countBeginFailure(reason string) {
	if s.metrics != nil {
		s.metrics.BeginFailures.WithLabelValues(reason).Inc()
	}
}

func (s *Service) countCompleteFailure(reason string) {
	if s.metrics != nil {
		s.metrics.CompleteFailures.WithLabelValues(reason).Inc()
	}
}

func verifyFailureReason(err error) string {
	switch {
	case errors.Is(err, sentinel.ErrExpired):
		return "expired"
	case errors.Is(err, sentinel.ErrMismatch):
		return "mismatch"
	case errors.Is(err, sentinel.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
