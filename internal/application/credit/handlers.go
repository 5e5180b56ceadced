package credit

import (
	"context"
	"fmt"

	"github.com/halo/backend/internal/domain/circle"
	"github.com/halo/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ContributionRecordedHandler translates contribution events into credit
// mutations. Idempotent via the store: redelivered events are skipped.
type ContributionRecordedHandler struct {
	creditService *CreditService
	idempotency   shared.IdempotencyStore
	config        shared.IdempotencyConfig
	logger        *zap.Logger
}

// NewContributionRecordedHandler creates a new handler for contribution events
func NewContributionRecordedHandler(
	creditService *CreditService,
	idempotency shared.IdempotencyStore,
	config shared.IdempotencyConfig,
	logger *zap.Logger,
) *ContributionRecordedHandler {
	return &ContributionRecordedHandler{
		creditService: creditService,
		idempotency:   idempotency,
		config:        config,
		logger:        logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ContributionRecordedHandler) EventTypes() []string {
	return []string{circle.EventTypeContributionRecorded}
}

// Handle applies one contribution to the payer's credit score
func (h *ContributionRecordedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	recorded, ok := event.(*circle.ContributionRecordedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", circle.EventTypeContributionRecorded),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			circle.EventTypeContributionRecorded, event.EventType())
	}

	key := "credit:contribution:" + recorded.EventID().String()
	fresh, err := h.markOnce(ctx, key)
	if err != nil {
		return err
	}
	if !fresh {
		h.logger.Debug("contribution event already processed, skipping",
			zap.String("event_id", recorded.EventID().String()),
		)
		return nil
	}

	withFee := recorded.LateFee > 0
	if err := h.creditService.RecordPayment(ctx, recorded.UserID, recorded.CircleID, recorded.OnTime, withFee); err != nil {
		h.logger.Error("failed to apply contribution to credit score",
			zap.String("user_id", recorded.UserID.String()),
			zap.String("circle_id", recorded.CircleID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// markOnce marks the key processed, reporting whether this delivery is the
// first. Without a store every delivery counts as first.
func (h *ContributionRecordedHandler) markOnce(ctx context.Context, key string) (bool, error) {
	return markOnce(ctx, h.idempotency, h.config, key)
}

// CircleCompletedHandler awards the completion bonus to every member of a
// completed circle. Idempotent per (event, handled once).
type CircleCompletedHandler struct {
	creditService  *CreditService
	membershipRepo circle.MembershipRepository
	idempotency    shared.IdempotencyStore
	config         shared.IdempotencyConfig
	logger         *zap.Logger
}

// NewCircleCompletedHandler creates a new handler for circle completion events
func NewCircleCompletedHandler(
	creditService *CreditService,
	membershipRepo circle.MembershipRepository,
	idempotency shared.IdempotencyStore,
	config shared.IdempotencyConfig,
	logger *zap.Logger,
) *CircleCompletedHandler {
	return &CircleCompletedHandler{
		creditService:  creditService,
		membershipRepo: membershipRepo,
		idempotency:    idempotency,
		config:         config,
		logger:         logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *CircleCompletedHandler) EventTypes() []string {
	return []string{circle.EventTypeCircleCompleted}
}

// Handle awards the completion bonus to each membership of the circle
func (h *CircleCompletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	completed, ok := event.(*circle.CircleCompletedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", circle.EventTypeCircleCompleted),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			circle.EventTypeCircleCompleted, event.EventType())
	}

	key := "credit:completion:" + completed.EventID().String()
	fresh, err := markOnce(ctx, h.idempotency, h.config, key)
	if err != nil {
		return err
	}
	if !fresh {
		h.logger.Debug("completion event already processed, skipping",
			zap.String("event_id", completed.EventID().String()),
		)
		return nil
	}

	memberships, err := h.membershipRepo.ListByCircle(ctx, completed.CircleID)
	if err != nil {
		return fmt.Errorf("failed to list memberships for completed circle: %w", err)
	}

	for i := range memberships {
		m := &memberships[i]
		if err := h.creditService.RecordCircleCompletion(ctx, m.UserID, completed.CircleID); err != nil {
			h.logger.Error("failed to award completion bonus",
				zap.String("user_id", m.UserID.String()),
				zap.String("circle_id", completed.CircleID.String()),
				zap.Error(err),
			)
			return err
		}
	}

	h.logger.Info("completion bonus awarded",
		zap.String("circle_id", completed.CircleID.String()),
		zap.Int("members", len(memberships)),
	)
	return nil
}

// markOnce marks key processed in the store, reporting whether this was the
// first delivery. A nil or disabled store treats every delivery as first.
func markOnce(ctx context.Context, store shared.IdempotencyStore, cfg shared.IdempotencyConfig, key string) (bool, error) {
	if store == nil || !cfg.Enabled {
		return true, nil
	}
	return store.MarkProcessed(ctx, key, cfg.TTL)
}
