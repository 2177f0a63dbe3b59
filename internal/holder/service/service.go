package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"trafix/internal/holder/models"
	"trafix/internal/holder/store"
	id "trafix/pkg/domain"
	dErrors "trafix/pkg/domain-errors"
	"trafix/pkg/phone"
	"trafix/pkg/platform/sentinel"
)

// Service owns licence holder administration.
type Service struct {
	store  store.HolderStore
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(holderStore store.HolderStore, opts ...Option) (*Service, error) {
	if holderStore == nil {
		return nil, fmt.Errorf("holder store is required")
	}
	svc := &Service{store: holderStore, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *Service) Register(ctx context.Context, licence id.LicenceNumber, fullName, phone, address string) (*models.Holder, error) {
	holder := models.New(licence, fullName, phone, address, time.Now())
	if err := holder.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, holder); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "licence number already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register licence holder")
	}
	return holder, nil
}

func (s *Service) Get(ctx context.Context, licence id.LicenceNumber) (*models.Holder, error) {
	holder, err := s.store.GetByLicence(ctx, licence)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "licence holder not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load licence holder")
	}
	return holder, nil
}

func (s *Service) List(ctx context.Context) ([]*models.Holder, error) {
	holders, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list licence holders")
	}
	return holders, nil
}

// Update replaces the mutable fields (name, phone, address). Points are not
// updatable here; they move only with violations.
func (s *Service) Update(ctx context.Context, holder *models.Holder) (*models.Holder, error) {
	holder.Phone = phone.Normalize(holder.Phone)
	if err := holder.Validate(); err != nil {
		return nil, err
	}
	holder.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, holder); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "licence holder not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update licence holder")
	}
	return s.Get(ctx, holder.Licence)
}

func (s *Service) Delete(ctx context.Context, licence id.LicenceNumber) error {
	if err := s.store.Delete(ctx, licence); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "licence holder not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete licence holder")
	}
	s.logger.InfoContext(ctx, "licence holder deleted", "licence", licence.String())
	return nil
}
