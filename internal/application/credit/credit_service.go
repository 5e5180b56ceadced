package credit

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/credit"
	"github.com/halo/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// maxSaveRetries bounds optimistic-lock retries when concurrent events touch
// the same user's score.
const maxSaveRetries = 3

// CreditService handles credit score derivation and history
type CreditService struct {
	scoreRepo credit.ScoreRepository
	eventRepo credit.EventRepository
	policy    credit.PointsPolicy
	logger    *zap.Logger
}

// NewCreditService creates a new CreditService
func NewCreditService(
	scoreRepo credit.ScoreRepository,
	eventRepo credit.EventRepository,
	policy credit.PointsPolicy,
	logger *zap.Logger,
) *CreditService {
	return &CreditService{
		scoreRepo: scoreRepo,
		eventRepo: eventRepo,
		policy:    policy,
		logger:    logger,
	}
}

// EnsureScore returns the user's score, initializing it at the base value on
// first touch. Safe under concurrent first touches: losing the create race
// falls back to the winner's row.
func (s *CreditService) EnsureScore(ctx context.Context, userID uuid.UUID) (*credit.CreditScore, error) {
	score, err := s.scoreRepo.FindByUser(ctx, userID)
	if err == nil {
		return score, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	score, err = credit.NewCreditScore(userID)
	if err != nil {
		return nil, err
	}
	if err := s.scoreRepo.Create(ctx, score); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return s.scoreRepo.FindByUser(ctx, userID)
		}
		return nil, err
	}
	return score, nil
}

// RecordPayment applies a contribution to the user's score. withFee
// distinguishes a payment past the grace window from one merely late.
func (s *CreditService) RecordPayment(ctx context.Context, userID, circleID uuid.UUID, onTime, withFee bool) error {
	return s.mutate(ctx, userID, func(score *credit.CreditScore) *credit.CreditEvent {
		return score.RecordPayment(onTime, withFee, circleID, s.policy)
	})
}

// RecordMissedPayment applies the missed-payment penalty. Only ever invoked
// by an explicit external trigger: a missed period is never inferred from the
// mere absence of a contribution.
func (s *CreditService) RecordMissedPayment(ctx context.Context, userID, circleID uuid.UUID, period int) error {
	return s.mutate(ctx, userID, func(score *credit.CreditScore) *credit.CreditEvent {
		return score.RecordMissedPayment(circleID, period, s.policy)
	})
}

// RecordCircleCompletion applies the completion bonus
func (s *CreditService) RecordCircleCompletion(ctx context.Context, userID, circleID uuid.UUID) error {
	return s.mutate(ctx, userID, func(score *credit.CreditScore) *credit.CreditEvent {
		return score.RecordCircleCompletion(circleID, s.policy)
	})
}

// mutate loads the score, applies one change, and persists score and audit
// event, retrying on optimistic-lock conflicts with a fresh read each time.
func (s *CreditService) mutate(ctx context.Context, userID uuid.UUID, change func(*credit.CreditScore) *credit.CreditEvent) error {
	var lastErr error
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		score, err := s.EnsureScore(ctx, userID)
		if err != nil {
			return err
		}

		event := change(score)
		if err := s.scoreRepo.SaveWithLock(ctx, score); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				lastErr = err
				continue
			}
			return err
		}

		if err := s.eventRepo.Create(ctx, event); err != nil {
			// The score moved but the audit entry failed; surface it so the
			// caller's idempotency layer can retry the whole mutation.
			s.logger.Error("credit event append failed after score update",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			return err
		}
		return nil
	}
	return lastErr
}

// GetScore returns the user's credit standing, initializing on first touch
func (s *CreditService) GetScore(ctx context.Context, userID uuid.UUID) (*ScoreResponse, error) {
	score, err := s.EnsureScore(ctx, userID)
	if err != nil {
		return nil, err
	}
	response := ToScoreResponse(score)
	return &response, nil
}

// GetHistory lists the user's credit events, newest first
func (s *CreditService) GetHistory(ctx context.Context, userID uuid.UUID, filter HistoryFilter) (shared.Paginated[EventResponse], error) {
	domainFilter := credit.CreditEventFilter{
		Filter:    shared.DefaultFilter(),
		EventType: filter.EventType,
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	events, total, err := s.eventRepo.ListByUser(ctx, userID, domainFilter)
	if err != nil {
		return shared.Paginated[EventResponse]{}, err
	}

	items := make([]EventResponse, 0, len(events))
	for i := range events {
		items = append(items, ToEventResponse(&events[i]))
	}
	return shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize), nil
}

// ReplayScore recomputes the user's score from the event log. Used as a
// consistency check: the log is the source of truth.
func (s *CreditService) ReplayScore(ctx context.Context, userID uuid.UUID) (int, error) {
	events, err := s.eventRepo.ListAllByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return credit.ReplayScore(events), nil
}
