package circle

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/circle"
	"github.com/halo/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// maxInviteCodeRetries bounds retries when a generated invite code collides
// with an existing circle.
const maxInviteCodeRetries = 5

// CircleService handles circle lifecycle and membership operations
type CircleService struct {
	circleRepo     circle.Repository
	membershipRepo circle.MembershipRepository
	identityGate   circle.IdentityGate
	custody        circle.AssetCustody
	eventPublisher shared.EventPublisher
	policy         circle.Policy
	locks          *circleLocks
	logger         *zap.Logger
}

// NewCircleService creates a new CircleService
func NewCircleService(
	circleRepo circle.Repository,
	membershipRepo circle.MembershipRepository,
	identityGate circle.IdentityGate,
	policy circle.Policy,
	logger *zap.Logger,
) *CircleService {
	return &CircleService{
		circleRepo:     circleRepo,
		membershipRepo: membershipRepo,
		identityGate:   identityGate,
		policy:         policy,
		locks:          newCircleLocks(),
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *CircleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetAssetCustody sets the custody gateway used for the balance soft-check
// on circle creation. Optional: without it the check is skipped.
func (s *CircleService) SetAssetCustody(custody circle.AssetCustody) {
	s.custody = custody
}

// CreateCircle creates a circle in forming status with the organizer holding
// payout position 1.
func (s *CircleService) CreateCircle(ctx context.Context, organizerID uuid.UUID, req CreateCircleRequest) (*CircleResponse, error) {
	if err := s.checkIdentity(ctx, organizerID); err != nil {
		return nil, err
	}
	if err := s.checkActiveCircleCap(ctx, organizerID); err != nil {
		return nil, err
	}
	if err := s.checkBalance(ctx, organizerID, req); err != nil {
		return nil, err
	}

	c, err := s.createWithFreshInviteCode(ctx, organizerID, req)
	if err != nil {
		return nil, err
	}

	// The organizer always holds position 1
	membership, err := circle.NewMembership(c.ID, organizerID, 1, c.TotalMembers)
	if err != nil {
		return nil, err
	}
	if err := s.membershipRepo.Create(ctx, membership); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, c)

	response := ToCircleResponse(c, 1)
	return &response, nil
}

// createWithFreshInviteCode builds and persists the circle, regenerating the
// invite code when it collides with an existing circle.
func (s *CircleService) createWithFreshInviteCode(ctx context.Context, organizerID uuid.UUID, req CreateCircleRequest) (*circle.Circle, error) {
	for attempt := 0; attempt < maxInviteCodeRetries; attempt++ {
		code, err := circle.GenerateInviteCode()
		if err != nil {
			return nil, err
		}

		c, err := circle.NewCircle(
			organizerID,
			req.Name,
			req.ContributionAmount,
			req.ContributionToken,
			req.TotalMembers,
			req.StartDate,
			code,
			s.policy,
		)
		if err != nil {
			return nil, err
		}

		err = s.circleRepo.Create(ctx, c)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return nil, err
		}
		s.logger.Warn("invite code collision, regenerating",
			zap.String("invite_code", code),
			zap.Int("attempt", attempt+1),
		)
	}
	return nil, shared.NewDomainError("INVITE_CODE_EXHAUSTED", "Could not generate a unique invite code")
}

// GetByID retrieves a circle by ID
func (s *CircleService) GetByID(ctx context.Context, circleID uuid.UUID) (*CircleResponse, error) {
	c, err := s.circleRepo.FindByID(ctx, circleID)
	if err != nil {
		return nil, err
	}
	count, err := s.membershipRepo.CountByCircle(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	response := ToCircleResponse(c, int(count))
	return &response, nil
}

// GetByInviteCode retrieves a circle by its invite code
func (s *CircleService) GetByInviteCode(ctx context.Context, code string) (*CircleResponse, error) {
	if err := circle.ValidateInviteCode(code); err != nil {
		return nil, err
	}
	c, err := s.circleRepo.FindByInviteCode(ctx, code)
	if err != nil {
		return nil, err
	}
	count, err := s.membershipRepo.CountByCircle(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	response := ToCircleResponse(c, int(count))
	return &response, nil
}

// ListForUser lists circles the user belongs to
func (s *CircleService) ListForUser(ctx context.Context, userID uuid.UUID, filter CircleListFilter) (shared.Paginated[CircleResponse], error) {
	domainFilter := circle.CircleFilter{
		Filter: shared.DefaultFilter(),
		Status: filter.Status,
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	circles, total, err := s.circleRepo.FindAllForUser(ctx, userID, domainFilter)
	if err != nil {
		return shared.Paginated[CircleResponse]{}, err
	}

	items := make([]CircleResponse, 0, len(circles))
	for i := range circles {
		count, err := s.membershipRepo.CountByCircle(ctx, circles[i].ID)
		if err != nil {
			return shared.Paginated[CircleResponse]{}, err
		}
		items = append(items, ToCircleResponse(&circles[i], int(count)))
	}

	return shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize), nil
}

// GetMembers lists a circle's memberships ordered by payout position
func (s *CircleService) GetMembers(ctx context.Context, circleID uuid.UUID) ([]MembershipResponse, error) {
	if _, err := s.circleRepo.FindByID(ctx, circleID); err != nil {
		return nil, err
	}
	memberships, err := s.membershipRepo.ListByCircle(ctx, circleID)
	if err != nil {
		return nil, err
	}
	items := make([]MembershipResponse, 0, len(memberships))
	for i := range memberships {
		items = append(items, ToMembershipResponse(&memberships[i]))
	}
	return items, nil
}

// JoinCircle takes the next free seat in a forming circle. An invite code is
// optional; when supplied it must match the circle's. Joins for the same
// circle are serialized in-process; the unique indexes on (circle, user) and
// (circle, position) remain the cross-process authority. Filling the last
// seat activates the circle.
func (s *CircleService) JoinCircle(ctx context.Context, userID, circleID uuid.UUID, inviteCode string) (*JoinCircleResponse, error) {
	if inviteCode != "" {
		if err := circle.ValidateInviteCode(inviteCode); err != nil {
			return nil, err
		}
	}
	if err := s.checkIdentity(ctx, userID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(circleID.String())
	defer unlock()

	c, err := s.circleRepo.FindByID(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if inviteCode != "" && c.InviteCode != inviteCode {
		return nil, shared.NewDomainError("INVALID_INVITE_CODE", "Invite code does not match this circle")
	}
	if !c.IsForming() {
		// An active circle has no free seats by construction
		if c.IsActive() {
			return nil, circle.ErrCircleFull
		}
		return nil, circle.ErrNotForming
	}

	existing, err := s.membershipRepo.FindByCircleAndUser(ctx, c.ID, userID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, circle.ErrAlreadyMember
	}

	if err := s.checkActiveCircleCap(ctx, userID); err != nil {
		return nil, err
	}

	count, err := s.membershipRepo.CountByCircle(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if c.IsFullAt(int(count)) {
		return nil, circle.ErrCircleFull
	}

	// Seats are assigned in join order and never reshuffled
	position := int(count) + 1
	membership, err := circle.NewMembership(c.ID, userID, position, c.TotalMembers)
	if err != nil {
		return nil, err
	}
	if err := s.membershipRepo.Create(ctx, membership); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// Lost a cross-process race on the seat or the user slot
			return nil, shared.ErrConcurrencyConflict
		}
		return nil, err
	}

	memberCount := position
	c.AddDomainEvent(circle.NewMemberJoinedEvent(c, membership, memberCount))

	if c.IsFullAt(memberCount) {
		if err := c.Activate(nowFn()); err != nil {
			return nil, err
		}
		if err := s.circleRepo.SaveWithLock(ctx, c); err != nil {
			return nil, err
		}
	}

	s.publishEvents(ctx, c)

	return &JoinCircleResponse{
		Circle:     ToCircleResponse(c, memberCount),
		Membership: ToMembershipResponse(membership),
	}, nil
}

// CancelCircle cancels a forming circle. Only the organizer may cancel.
func (s *CircleService) CancelCircle(ctx context.Context, userID, circleID uuid.UUID, req CancelCircleRequest) (*CircleResponse, error) {
	unlock := s.locks.Lock(circleID.String())
	defer unlock()

	c, err := s.circleRepo.FindByID(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if c.OrganizerID != userID {
		return nil, shared.ErrForbidden
	}
	if err := c.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.circleRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, c)

	count, err := s.membershipRepo.CountByCircle(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	response := ToCircleResponse(c, int(count))
	return &response, nil
}

// checkIdentity requires a verified identity from the gate. The gate also
// surfaces sybil collisions on the user's uniqueness token.
func (s *CircleService) checkIdentity(ctx context.Context, userID uuid.UUID) error {
	verified, err := s.identityGate.IsVerified(ctx, userID)
	if err != nil {
		return err
	}
	if !verified {
		return circle.ErrIdentityNotVerified
	}
	if _, err := s.identityGate.UniqueToken(ctx, userID); err != nil {
		return err
	}
	return nil
}

// checkActiveCircleCap enforces the per-user cap on forming/active circles
func (s *CircleService) checkActiveCircleCap(ctx context.Context, userID uuid.UUID) error {
	count, err := s.circleRepo.CountActiveForUser(ctx, userID)
	if err != nil {
		return err
	}
	if count >= int64(s.policy.MaxActiveCircles) {
		return circle.ErrTooManyActiveCircles
	}
	return nil
}

// checkBalance pre-checks the organizer's balance against one contribution.
// A gateway failure only logs a warning and never blocks creation: the
// settlement layer re-validates on transfer anyway.
func (s *CircleService) checkBalance(ctx context.Context, organizerID uuid.UUID, req CreateCircleRequest) error {
	if s.custody == nil || req.WalletID == "" {
		return nil
	}
	balance, err := s.custody.BalanceOf(ctx, req.WalletID, req.ContributionToken)
	if err != nil {
		s.logger.Warn("balance pre-check unavailable, continuing",
			zap.String("wallet_id", req.WalletID),
			zap.Error(err),
		)
		return nil
	}
	if balance < req.ContributionAmount {
		s.logger.Info("organizer balance below one contribution",
			zap.String("organizer_id", organizerID.String()),
			zap.Int64("balance", balance),
			zap.Int64("contribution_amount", req.ContributionAmount),
		)
		return circle.ErrInsufficientBalance
	}
	return nil
}

// publishEvents publishes and clears the aggregate's pending events
func (s *CircleService) publishEvents(ctx context.Context, c *circle.Circle) {
	if s.eventPublisher == nil {
		return
	}
	events := c.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish domain events",
			zap.String("circle_id", c.ID.String()),
			zap.Error(err),
		)
	}
	c.ClearDomainEvents()
}
