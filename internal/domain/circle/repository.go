package circle

import (
	"context"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/shared"
)

// CircleFilter defines filtering options for circle queries
type CircleFilter struct {
	shared.Filter
	Status      *Status    // Filter by lifecycle status
	OrganizerID *uuid.UUID // Filter by organizer
}

// Repository defines the interface for circle persistence
type Repository interface {
	// FindByID finds a circle by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Circle, error)

	// FindByInviteCode finds a circle by its invite code
	FindByInviteCode(ctx context.Context, code string) (*Circle, error)

	// FindAllForUser finds circles the user is a member of
	FindAllForUser(ctx context.Context, userID uuid.UUID, filter CircleFilter) ([]Circle, int64, error)

	// CountActiveForUser counts forming/active circles the user belongs to
	CountActiveForUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// Create persists a new circle. Returns shared.ErrAlreadyExists when the
	// invite code collides with an existing circle.
	Create(ctx context.Context, c *Circle) error

	// Save updates an existing circle
	Save(ctx context.Context, c *Circle) error

	// SaveWithLock updates with optimistic locking (version check); returns
	// shared.ErrConcurrencyConflict when the version moved underneath
	SaveWithLock(ctx context.Context, c *Circle) error
}

// MembershipRepository defines the interface for membership persistence
type MembershipRepository interface {
	// FindByID finds a membership by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Membership, error)

	// FindByCircleAndUser finds the user's membership in a circle
	FindByCircleAndUser(ctx context.Context, circleID, userID uuid.UUID) (*Membership, error)

	// FindByCircleAndPosition finds the membership holding a payout position
	FindByCircleAndPosition(ctx context.Context, circleID uuid.UUID, position int) (*Membership, error)

	// ListByCircle lists all memberships of a circle ordered by payout position
	ListByCircle(ctx context.Context, circleID uuid.UUID) ([]Membership, error)

	// CountByCircle counts memberships of a circle
	CountByCircle(ctx context.Context, circleID uuid.UUID) (int64, error)

	// Create persists a new membership. Returns shared.ErrAlreadyExists when
	// the (circle, user) or (circle, position) pair already exists.
	Create(ctx context.Context, m *Membership) error

	// Save updates an existing membership
	Save(ctx context.Context, m *Membership) error

	// MarkAllCompleted marks every membership of the circle as completed
	MarkAllCompleted(ctx context.Context, circleID uuid.UUID) error
}

// ContributionRepository defines the interface for the contribution ledger.
// The ledger is append-only; there is no update operation.
type ContributionRepository interface {
	// FindByCircleUserPeriod finds the contribution for (circle, user, period)
	FindByCircleUserPeriod(ctx context.Context, circleID, userID uuid.UUID, period int) (*Contribution, error)

	// CountForPeriod counts paid/late contributions for (circle, period)
	CountForPeriod(ctx context.Context, circleID uuid.UUID, period int) (int64, error)

	// ListByCircle lists contributions for a circle, newest first
	ListByCircle(ctx context.Context, circleID uuid.UUID) ([]Contribution, error)

	// ListByCirclePeriod lists contributions for one period of a circle
	ListByCirclePeriod(ctx context.Context, circleID uuid.UUID, period int) ([]Contribution, error)

	// Create persists a new contribution. Returns shared.ErrAlreadyExists when
	// a contribution already exists for (circle, user, period); this backs the
	// ledger's exactly-once guarantee.
	Create(ctx context.Context, c *Contribution) error
}

// PayoutRepository defines the interface for payout persistence
type PayoutRepository interface {
	// FindByCircleAndPeriod finds the payout for (circle, period)
	FindByCircleAndPeriod(ctx context.Context, circleID uuid.UUID, period int) (*Payout, error)

	// ListByCircle lists payouts for a circle ordered by period
	ListByCircle(ctx context.Context, circleID uuid.UUID) ([]Payout, error)

	// Create persists a new payout. Returns shared.ErrAlreadyExists when a
	// payout already exists for (circle, period).
	Create(ctx context.Context, p *Payout) error

	// Save updates an existing payout
	Save(ctx context.Context, p *Payout) error
}
