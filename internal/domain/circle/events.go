package circle

import (
	"time"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/shared"
)

// Event type names for the circle aggregate
const (
	EventTypeCircleCreated        = "CircleCreated"
	EventTypeMemberJoined         = "MemberJoined"
	EventTypeCircleActivated      = "CircleActivated"
	EventTypeContributionRecorded = "ContributionRecorded"
	EventTypePayoutCreated        = "PayoutCreated"
	EventTypeCircleCompleted      = "CircleCompleted"
	EventTypeCircleCancelled      = "CircleCancelled"
)

const aggregateTypeCircle = "Circle"

// CircleCreatedEvent is raised when a new circle is created in forming status
type CircleCreatedEvent struct {
	shared.BaseDomainEvent
	CircleID           uuid.UUID `json:"circle_id"`
	Name               string    `json:"name"`
	OrganizerID        uuid.UUID `json:"organizer_id"`
	ContributionAmount int64     `json:"contribution_amount"`
	TotalMembers       int       `json:"total_members"`
	InviteCode         string    `json:"invite_code"`
}

// EventType returns the event type name
func (e *CircleCreatedEvent) EventType() string { return EventTypeCircleCreated }

// NewCircleCreatedEvent creates a new CircleCreatedEvent
func NewCircleCreatedEvent(c *Circle) *CircleCreatedEvent {
	return &CircleCreatedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeCircleCreated, aggregateTypeCircle, c.ID),
		CircleID:           c.ID,
		Name:               c.Name,
		OrganizerID:        c.OrganizerID,
		ContributionAmount: c.ContributionAmount,
		TotalMembers:       c.TotalMembers,
		InviteCode:         c.InviteCode,
	}
}

// MemberJoinedEvent is raised when a member takes a seat in a forming circle
type MemberJoinedEvent struct {
	shared.BaseDomainEvent
	CircleID       uuid.UUID `json:"circle_id"`
	MembershipID   uuid.UUID `json:"membership_id"`
	UserID         uuid.UUID `json:"user_id"`
	PayoutPosition int       `json:"payout_position"`
	MemberCount    int       `json:"member_count"`
}

// EventType returns the event type name
func (e *MemberJoinedEvent) EventType() string { return EventTypeMemberJoined }

// NewMemberJoinedEvent creates a new MemberJoinedEvent
func NewMemberJoinedEvent(c *Circle, m *Membership, memberCount int) *MemberJoinedEvent {
	return &MemberJoinedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberJoined, aggregateTypeCircle, c.ID),
		CircleID:        c.ID,
		MembershipID:    m.ID,
		UserID:          m.UserID,
		PayoutPosition:  m.PayoutPosition,
		MemberCount:     memberCount,
	}
}

// CircleActivatedEvent is raised when all seats fill and the first period starts
type CircleActivatedEvent struct {
	shared.BaseDomainEvent
	CircleID    uuid.UUID `json:"circle_id"`
	Name        string    `json:"name"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

// EventType returns the event type name
func (e *CircleActivatedEvent) EventType() string { return EventTypeCircleActivated }

// NewCircleActivatedEvent creates a new CircleActivatedEvent
func NewCircleActivatedEvent(c *Circle) *CircleActivatedEvent {
	return &CircleActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCircleActivated, aggregateTypeCircle, c.ID),
		CircleID:        c.ID,
		Name:            c.Name,
		PeriodStart:     *c.PeriodStart,
		PeriodEnd:       *c.PeriodEnd,
	}
}

// ContributionRecordedEvent is raised when a member's payment is recorded
type ContributionRecordedEvent struct {
	shared.BaseDomainEvent
	CircleID       uuid.UUID `json:"circle_id"`
	ContributionID uuid.UUID `json:"contribution_id"`
	UserID         uuid.UUID `json:"user_id"`
	Period         int       `json:"period"`
	Amount         int64     `json:"amount"`
	OnTime         bool      `json:"on_time"`
	LateFee        int64     `json:"late_fee"`
}

// EventType returns the event type name
func (e *ContributionRecordedEvent) EventType() string { return EventTypeContributionRecorded }

// NewContributionRecordedEvent creates a new ContributionRecordedEvent
func NewContributionRecordedEvent(ct *Contribution) *ContributionRecordedEvent {
	return &ContributionRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContributionRecorded, aggregateTypeCircle, ct.CircleID),
		CircleID:        ct.CircleID,
		ContributionID:  ct.ID,
		UserID:          ct.UserID,
		Period:          ct.Period,
		Amount:          ct.Amount,
		OnTime:          ct.OnTime,
		LateFee:         ct.LateFee,
	}
}

// PayoutCreatedEvent is raised when a period's pooled amount is paid out
type PayoutCreatedEvent struct {
	shared.BaseDomainEvent
	CircleID        uuid.UUID `json:"circle_id"`
	PayoutID        uuid.UUID `json:"payout_id"`
	RecipientUserID uuid.UUID `json:"recipient_user_id"`
	Period          int       `json:"period"`
	Amount          int64     `json:"amount"`
}

// EventType returns the event type name
func (e *PayoutCreatedEvent) EventType() string { return EventTypePayoutCreated }

// NewPayoutCreatedEvent creates a new PayoutCreatedEvent
func NewPayoutCreatedEvent(p *Payout) *PayoutCreatedEvent {
	return &PayoutCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayoutCreated, aggregateTypeCircle, p.CircleID),
		CircleID:        p.CircleID,
		PayoutID:        p.ID,
		RecipientUserID: p.RecipientUserID,
		Period:          p.Period,
		Amount:          p.Amount,
	}
}

// CircleCompletedEvent is raised after the final period's payout
type CircleCompletedEvent struct {
	shared.BaseDomainEvent
	CircleID    uuid.UUID `json:"circle_id"`
	Name        string    `json:"name"`
	CompletedAt time.Time `json:"completed_at"`
}

// EventType returns the event type name
func (e *CircleCompletedEvent) EventType() string { return EventTypeCircleCompleted }

// NewCircleCompletedEvent creates a new CircleCompletedEvent
func NewCircleCompletedEvent(c *Circle) *CircleCompletedEvent {
	completedAt := time.Now()
	if c.CompletedAt != nil {
		completedAt = *c.CompletedAt
	}
	return &CircleCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCircleCompleted, aggregateTypeCircle, c.ID),
		CircleID:        c.ID,
		Name:            c.Name,
		CompletedAt:     completedAt,
	}
}

// CircleCancelledEvent is raised when a forming circle is cancelled
type CircleCancelledEvent struct {
	shared.BaseDomainEvent
	CircleID uuid.UUID `json:"circle_id"`
	Name     string    `json:"name"`
	Reason   string    `json:"reason"`
}

// EventType returns the event type name
func (e *CircleCancelledEvent) EventType() string { return EventTypeCircleCancelled }

// NewCircleCancelledEvent creates a new CircleCancelledEvent
func NewCircleCancelledEvent(c *Circle) *CircleCancelledEvent {
	return &CircleCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCircleCancelled, aggregateTypeCircle, c.ID),
		CircleID:        c.ID,
		Name:            c.Name,
		Reason:          c.CancelReason,
	}
}
