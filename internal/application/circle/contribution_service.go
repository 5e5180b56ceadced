package circle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/circle"
	"github.com/halo/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ContributionService handles the contribution ledger and the payout engine.
// Recording the final contribution of a period triggers that period's payout
// and either advances the circle or completes it.
type ContributionService struct {
	circleRepo       circle.Repository
	membershipRepo   circle.MembershipRepository
	contributionRepo circle.ContributionRepository
	payoutRepo       circle.PayoutRepository
	transferBuilder  circle.TransferBuilder
	eventPublisher   shared.EventPublisher
	idempotency      shared.IdempotencyStore
	idempotencyTTL   time.Duration
	locks            *circleLocks
	transfers        sync.WaitGroup
	logger           *zap.Logger
}

// NewContributionService creates a new ContributionService
func NewContributionService(
	circleRepo circle.Repository,
	membershipRepo circle.MembershipRepository,
	contributionRepo circle.ContributionRepository,
	payoutRepo circle.PayoutRepository,
	logger *zap.Logger,
) *ContributionService {
	return &ContributionService{
		circleRepo:       circleRepo,
		membershipRepo:   membershipRepo,
		contributionRepo: contributionRepo,
		payoutRepo:       payoutRepo,
		locks:            newCircleLocks(),
		logger:           logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ContributionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables a fast-path duplicate check for client retries.
// The ledger's unique index stays the authority; the store only short-circuits
// the common retry before touching the database.
func (s *ContributionService) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	if !cfg.Enabled {
		return
	}
	s.idempotency = store
	s.idempotencyTTL = cfg.TTL
}

// SetTransferBuilder sets the settlement gateway used to build payout
// transfers. Optional: without it payouts stay pending until settled
// externally.
func (s *ContributionService) SetTransferBuilder(builder circle.TransferBuilder) {
	s.transferBuilder = builder
}

// RecordContribution records a member's payment for the circle's current
// period. At most one contribution is ever accepted per (circle, user,
// period); the ledger's unique index backs this across processes. When this
// payment is the period's last, the payout record is created before the call
// returns; the settlement transfer itself is built off the request path.
func (s *ContributionService) RecordContribution(ctx context.Context, userID, circleID uuid.UUID, req RecordContributionRequest) (*ContributionResponse, error) {
	unlock := s.locks.Lock(circleID.String())
	defer unlock()

	c, err := s.circleRepo.FindByID(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if !c.IsActive() {
		return nil, circle.ErrCircleNotActive
	}

	membership, err := s.membershipRepo.FindByCircleAndUser(ctx, circleID, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, circle.ErrNotMember
		}
		return nil, err
	}

	// The per-period contribution amount is fixed at creation
	if req.Amount != c.ContributionAmount {
		return nil, shared.NewDomainError("INVALID_AMOUNT",
			"Contribution amount must equal the circle's fixed amount")
	}

	idemKey := contributionKey(circleID, userID, c.Period())
	if s.idempotency != nil {
		processed, err := s.idempotency.IsProcessed(ctx, idemKey)
		if err != nil {
			s.logger.Warn("idempotency lookup failed, falling through to the ledger", zap.Error(err))
		} else if processed {
			return nil, circle.ErrDuplicateContribution
		}
	}

	contribution, err := circle.NewContribution(c, membership, req.Amount, nowFn(), req.TransactionHash)
	if err != nil {
		return nil, err
	}

	if err := s.contributionRepo.Create(ctx, contribution); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, circle.ErrDuplicateContribution
		}
		return nil, err
	}

	if s.idempotency != nil {
		if _, err := s.idempotency.MarkProcessed(ctx, idemKey, s.idempotencyTTL); err != nil {
			s.logger.Warn("failed to mark contribution processed", zap.Error(err))
		}
	}

	s.publish(ctx, circle.NewContributionRecordedEvent(contribution))

	if err := s.settlePeriodIfFunded(ctx, c); err != nil {
		return nil, err
	}

	response := ToContributionResponse(contribution)
	return &response, nil
}

// settlePeriodIfFunded pays out the current period once every member has
// contributed, then advances the circle or completes it after the final
// period. The (circle, period) unique index on payouts makes the payout
// exactly-once even across processes.
func (s *ContributionService) settlePeriodIfFunded(ctx context.Context, c *circle.Circle) error {
	period := c.Period()

	count, err := s.contributionRepo.CountForPeriod(ctx, c.ID, period)
	if err != nil {
		return err
	}
	if int(count) < c.TotalMembers {
		return nil
	}

	recipient, err := s.membershipRepo.FindByCircleAndPosition(ctx, c.ID, period)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// A funded period with no position holder means the membership
			// records are corrupt; halt rather than guess a recipient.
			s.logger.Error("no membership holds the payout position",
				zap.String("circle_id", c.ID.String()),
				zap.Int("period", period),
			)
			return circle.ErrNoRecipient
		}
		return err
	}

	payout, err := circle.NewPayout(c, recipient, period)
	if err != nil {
		return err
	}
	if err := s.payoutRepo.Create(ctx, payout); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// Another process already paid this period out
			return nil
		}
		return err
	}

	now := nowFn()
	recipient.MarkPayoutReceived(now)
	if err := s.membershipRepo.Save(ctx, recipient); err != nil {
		return err
	}

	s.publish(ctx, circle.NewPayoutCreatedEvent(payout))
	s.dispatchTransfer(ctx, c, payout)

	if period >= c.TotalMembers {
		return s.completeCircle(ctx, c, now)
	}

	if err := c.AdvancePeriod(now); err != nil {
		return err
	}
	return s.circleRepo.SaveWithLock(ctx, c)
}

// completeCircle transitions the circle and all its memberships to completed
func (s *ContributionService) completeCircle(ctx context.Context, c *circle.Circle, now time.Time) error {
	if err := c.Complete(now); err != nil {
		return err
	}
	if err := s.circleRepo.SaveWithLock(ctx, c); err != nil {
		return err
	}
	if err := s.membershipRepo.MarkAllCompleted(ctx, c.ID); err != nil {
		return err
	}
	s.publish(ctx, c.GetDomainEvents()...)
	c.ClearDomainEvents()
	return nil
}

// contributionKey is the idempotency key for one member's period payment
func contributionKey(circleID, userID uuid.UUID, period int) string {
	return fmt.Sprintf("contribution:%s:%s:%d", circleID, userID, period)
}

// publish publishes events, logging failures without failing the operation
func (s *ContributionService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish domain events", zap.Error(err))
	}
}

// dispatchTransfer hands the payout to the settlement gateway on its own
// goroutine. Gateway latency must never extend the circle-scoped critical
// section, so only the values the build needs are captured and the request
// context is detached from the caller's cancellation.
func (s *ContributionService) dispatchTransfer(ctx context.Context, c *circle.Circle, payout *circle.Payout) {
	if s.transferBuilder == nil {
		return
	}
	circleID, token := c.ID, c.ContributionToken
	detached := context.WithoutCancel(ctx)
	s.transfers.Add(1)
	go func() {
		defer s.transfers.Done()
		s.buildTransfer(detached, circleID, token, payout)
	}()
}

// WaitForSettlements blocks until every dispatched transfer build has
// finished. Called on shutdown so in-flight settlements are not dropped.
func (s *ContributionService) WaitForSettlements() {
	s.transfers.Wait()
}

// buildTransfer asks the settlement gateway for the payout transfer. This is
// fire-and-forget: on failure the payout stays pending for a later retry and
// the accounting state is never rolled back.
func (s *ContributionService) buildTransfer(ctx context.Context, circleID uuid.UUID, token string, payout *circle.Payout) {
	handle, err := s.transferBuilder.BuildTransfer(ctx, circleID, payout.RecipientUserID, token, payout.Amount)
	if err != nil {
		s.logger.Warn("payout transfer build failed, payout stays pending",
			zap.String("circle_id", circleID.String()),
			zap.String("payout_id", payout.ID.String()),
			zap.Error(err),
		)
		return
	}
	if err := payout.MarkCompleted(handle.Hash, nowFn()); err != nil {
		return
	}
	if err := s.payoutRepo.Save(ctx, payout); err != nil {
		s.logger.Error("failed to persist payout settlement",
			zap.String("payout_id", payout.ID.String()),
			zap.Error(err),
		)
	}
}

// GetLedger lists a circle's contributions, newest first
func (s *ContributionService) GetLedger(ctx context.Context, circleID uuid.UUID) ([]ContributionResponse, error) {
	if _, err := s.circleRepo.FindByID(ctx, circleID); err != nil {
		return nil, err
	}
	contributions, err := s.contributionRepo.ListByCircle(ctx, circleID)
	if err != nil {
		return nil, err
	}
	items := make([]ContributionResponse, 0, len(contributions))
	for i := range contributions {
		items = append(items, ToContributionResponse(&contributions[i]))
	}
	return items, nil
}

// GetPayouts lists a circle's payouts ordered by period
func (s *ContributionService) GetPayouts(ctx context.Context, circleID uuid.UUID) ([]PayoutResponse, error) {
	if _, err := s.circleRepo.FindByID(ctx, circleID); err != nil {
		return nil, err
	}
	payouts, err := s.payoutRepo.ListByCircle(ctx, circleID)
	if err != nil {
		return nil, err
	}
	items := make([]PayoutResponse, 0, len(payouts))
	for i := range payouts {
		items = append(items, ToPayoutResponse(&payouts[i]))
	}
	return items, nil
}
