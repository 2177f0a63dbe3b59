package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"trafix/internal/officer/models"
	"trafix/internal/officer/store"
	id "trafix/pkg/domain"
	dErrors "trafix/pkg/domain-errors"
	"trafix/pkg/phone"
	"trafix/pkg/platform/sentinel"
)

// Service owns officer administration.
type Service struct {
	store  store.OfficerStore
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(officerStore store.OfficerStore, opts ...Option) (*Service, error) {
	if officerStore == nil {
		return nil, fmt.Errorf("officer store is required")
	}
	svc := &Service{store: officerStore, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *Service) Register(ctx context.Context, number id.OfficerNumber, fullName, phoneNumber, station, rank string) (*models.Officer, error) {
	officer := models.New(number, fullName, phoneNumber, station, rank, time.Now())
	if err := officer.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, officer); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "officer number already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register officer")
	}
	return officer, nil
}

func (s *Service) Get(ctx context.Context, number id.OfficerNumber) (*models.Officer, error) {
	officer, err := s.store.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "officer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load officer")
	}
	return officer, nil
}

func (s *Service) List(ctx context.Context) ([]*models.Officer, error) {
	officers, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list officers")
	}
	return officers, nil
}

func (s *Service) Update(ctx context.Context, officer *models.Officer) (*models.Officer, error) {
	officer.Phone = phone.Normalize(officer.Phone)
	if err := officer.Validate(); err != nil {
		return nil, err
	}
	officer.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, officer); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "officer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update officer")
	}
	return s.Get(ctx, officer.OfficerNumber)
}

func (s *Service) Delete(ctx context.Context, number id.OfficerNumber) error {
	if err := s.store.Delete(ctx, number); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "officer not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete officer")
	}
	s.logger.InfoContext(ctx, "officer deleted", "officer_number", number.String())
	return nil
}
