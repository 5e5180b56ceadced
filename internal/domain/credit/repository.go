package credit

import (
	"context"

	"github.com/google/uuid"
)

// ScoreRepository defines the interface for credit score persistence
type ScoreRepository interface {
	// FindByUser finds a user's credit score
	FindByUser(ctx context.Context, userID uuid.UUID) (*CreditScore, error)

	// Create persists a new credit score. Returns shared.ErrAlreadyExists when
	// the user already has one: a score is never created twice per user.
	Create(ctx context.Context, s *CreditScore) error

	// SaveWithLock updates with optimistic locking (version check); returns
	// shared.ErrConcurrencyConflict when the version moved underneath
	SaveWithLock(ctx context.Context, s *CreditScore) error
}

// EventRepository defines the interface for the append-only credit event log
type EventRepository interface {
	// Create appends an audit entry
	Create(ctx context.Context, e *CreditEvent) error

	// ListByUser lists a user's credit events, newest first
	ListByUser(ctx context.Context, userID uuid.UUID, filter CreditEventFilter) ([]CreditEvent, int64, error)

	// ListAllByUser lists every event for a user oldest first, for score replay
	ListAllByUser(ctx context.Context, userID uuid.UUID) ([]CreditEvent, error)
}
