// Package audit captures structured events from the domain services. Events
// land in a store first (transactional outbox when backed by postgres); a
// worker drains the outbox to Kafka when brokers are configured.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event is one audited action. Kind names the action (violation_recorded,
// login, account_approved, ...), Subject names what it happened to.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	Kind      string         `json:"kind"`
	Actor     string         `json:"actor,omitempty"`
	Subject   string         `json:"subject"`
	Detail    map[string]any `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Store persists events and exposes the unpublished backlog to the worker.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)

	// NextBatch returns up to limit unpublished events, oldest first.
	NextBatch(ctx context.Context, limit int) ([]Event, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

// Publisher is the write side handed to domain services. Emit never fails the
// caller; a failed append is logged and dropped.
type Publisher struct {
	store  Store
	logger *slog.Logger
}

func NewPublisher(store Store, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{store: store, logger: logger}
}

func (p *Publisher) Emit(ctx context.Context, kind, actor, subject string, detail map[string]any) {
	event := Event{
		ID:        uuid.New(),
		Kind:      kind,
		Actor:     actor,
		Subject:   subject,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "failed to append audit event",
			"kind", kind, "subject", subject, "error", err)
	}
}

// List returns the audit trail for one subject.
func (p *Publisher) List(ctx context.Context, subject string) ([]Event, error) {
	return p.store.ListBySubject(ctx, subject)
}
