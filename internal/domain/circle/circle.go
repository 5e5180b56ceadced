package circle

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/shared"
)

// Status represents the lifecycle status of a circle
type Status string

const (
	StatusForming   Status = "forming"   // Accepting members, not yet started
	StatusActive    Status = "active"    // All seats filled, contribution periods running
	StatusCompleted Status = "completed" // Final period paid out
	StatusCancelled Status = "cancelled" // Cancelled before activation
)

// IsValid checks if the status is a valid circle Status
func (s Status) IsValid() bool {
	switch s {
	case StatusForming, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if the circle is in a terminal state
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// statusTransitions is the explicit transition table for the circle state machine.
// Any transition not listed here is rejected.
var statusTransitions = map[Status][]Status{
	StatusForming:   {StatusActive, StatusCancelled},
	StatusActive:    {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransitionTo checks whether the transition from s to target is allowed
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Policy bounds for circle creation. Values are configurable; defaults match
// the protocol parameters (amounts in stroops, 7 decimal places).
type Policy struct {
	MinContributionAmount int64         // Minimum per-period contribution
	MaxContributionAmount int64         // Maximum per-period contribution
	MinStartLead          time.Duration // Minimum lead time before the start date
	MaxActiveCircles      int           // Per-user cap on forming/active memberships
	DefaultPeriodLength   time.Duration // Contribution period length
	DefaultGracePeriod    time.Duration // Grace window after period end
	DefaultLateFeePercent int           // Fee percent applied past the grace window
}

// DefaultPolicy returns the standard creation policy: $10-$500 contributions,
// monthly periods with a 7-day grace window and a 5% late fee.
func DefaultPolicy() Policy {
	return Policy{
		MinContributionAmount: 100_000_000,   // $10
		MaxContributionAmount: 5_000_000_000, // $500
		MinStartLead:          3 * 24 * time.Hour,
		MaxActiveCircles:      3,
		DefaultPeriodLength:   30 * 24 * time.Hour,
		DefaultGracePeriod:    7 * 24 * time.Hour,
		DefaultLateFeePercent: 5,
	}
}

// Member count bounds for any circle
const (
	MinMembers = 3
	MaxMembers = 10
)

// Name length bounds
const (
	minNameLength = 3
	maxNameLength = 30
)

// Circle represents a rotating savings pool aggregate root.
// A fixed group of members contributes a fixed amount each period; exactly one
// member receives the pooled amount per period, rotating through all members.
type Circle struct {
	shared.BaseAggregateRoot
	Name               string        `json:"name" gorm:"size:64;not null"`
	OrganizerID        uuid.UUID     `json:"organizer_id" gorm:"type:uuid;not null;index"`
	ContributionAmount int64         `json:"contribution_amount" gorm:"not null"` // Stroops per member per period
	ContributionToken  string        `json:"contribution_token" gorm:"size:32;not null"` // Asset identifier for contributions
	TotalMembers       int           `json:"total_members" gorm:"not null"`
	Status             Status        `json:"status" gorm:"size:16;not null;index"`
	CurrentPeriod      *int          `json:"current_period"` // 1-based; set iff status == active
	PeriodStart        *time.Time    `json:"period_start"`
	PeriodEnd          *time.Time    `json:"period_end"`
	PeriodLength       time.Duration `json:"period_length" gorm:"not null"`
	GracePeriod        time.Duration `json:"grace_period" gorm:"not null"`
	LateFeePercent     int           `json:"late_fee_percent" gorm:"not null"`
	InviteCode         string        `json:"invite_code" gorm:"size:8;not null;uniqueIndex"`
	StartDate          time.Time     `json:"start_date" gorm:"not null"`
	StartedAt          *time.Time    `json:"started_at"`
	CompletedAt        *time.Time    `json:"completed_at"`
	CancelledAt        *time.Time    `json:"cancelled_at"`
	CancelReason       string        `json:"cancel_reason" gorm:"size:256"`
}

// TableName returns the table name for GORM
func (Circle) TableName() string {
	return "circles"
}

// NewCircle creates a new circle in forming status with the organizer assigned.
// Timing parameters fall back to the policy defaults when zero.
func NewCircle(
	organizerID uuid.UUID,
	name string,
	contributionAmount int64,
	contributionToken string,
	totalMembers int,
	startDate time.Time,
	inviteCode string,
	policy Policy,
) (*Circle, error) {
	if organizerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZER", "Organizer ID cannot be empty")
	}
	if len(name) < minNameLength || len(name) > maxNameLength {
		return nil, shared.NewDomainError("INVALID_NAME",
			fmt.Sprintf("Circle name must be between %d and %d characters", minNameLength, maxNameLength))
	}
	if totalMembers < MinMembers || totalMembers > MaxMembers {
		return nil, shared.NewDomainError("INVALID_MEMBER_COUNT",
			fmt.Sprintf("Circle must have between %d and %d members", MinMembers, MaxMembers))
	}
	if contributionAmount < policy.MinContributionAmount || contributionAmount > policy.MaxContributionAmount {
		return nil, shared.NewDomainError("INVALID_AMOUNT",
			fmt.Sprintf("Contribution amount must be between %d and %d stroops",
				policy.MinContributionAmount, policy.MaxContributionAmount))
	}
	if startDate.Before(time.Now().Add(policy.MinStartLead)) {
		return nil, shared.NewDomainError("INVALID_START_DATE",
			fmt.Sprintf("Start date must be at least %s in the future", policy.MinStartLead))
	}
	if err := ValidateInviteCode(inviteCode); err != nil {
		return nil, err
	}
	if policy.DefaultLateFeePercent < 0 || policy.DefaultLateFeePercent > 50 {
		return nil, shared.NewDomainError("INVALID_LATE_FEE", "Late fee percent must be between 0 and 50")
	}

	c := &Circle{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		Name:               name,
		OrganizerID:        organizerID,
		ContributionAmount: contributionAmount,
		ContributionToken:  contributionToken,
		TotalMembers:       totalMembers,
		Status:             StatusForming,
		PeriodLength:       policy.DefaultPeriodLength,
		GracePeriod:        policy.DefaultGracePeriod,
		LateFeePercent:     policy.DefaultLateFeePercent,
		InviteCode:         inviteCode,
		StartDate:          startDate,
	}

	c.AddDomainEvent(NewCircleCreatedEvent(c))

	return c, nil
}

// PayoutAmount returns the pooled amount paid to the period's recipient
func (c *Circle) PayoutAmount() int64 {
	return c.ContributionAmount * int64(c.TotalMembers)
}

// GraceEnd returns the end of the grace window for the current period.
// Returns nil while the circle is not active.
func (c *Circle) GraceEnd() *time.Time {
	if c.PeriodEnd == nil {
		return nil
	}
	t := c.PeriodEnd.Add(c.GracePeriod)
	return &t
}

// Activate transitions the circle from forming to active once all seats are
// filled. Sets the first period window starting at now.
func (c *Circle) Activate(now time.Time) error {
	if !c.Status.CanTransitionTo(StatusActive) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot activate circle in %s status", c.Status))
	}

	period := 1
	end := now.Add(c.PeriodLength)

	c.Status = StatusActive
	c.CurrentPeriod = &period
	c.PeriodStart = &now
	c.PeriodEnd = &end
	c.StartedAt = &now
	c.UpdatedAt = now
	c.IncrementVersion()

	c.AddDomainEvent(NewCircleActivatedEvent(c))

	return nil
}

// AdvancePeriod moves an active circle to the next contribution period.
// The caller is responsible for having paid out the current period first.
func (c *Circle) AdvancePeriod(now time.Time) error {
	if c.Status != StatusActive || c.CurrentPeriod == nil {
		return shared.NewDomainError("INVALID_STATE", "Cannot advance period for a circle that is not active")
	}
	if *c.CurrentPeriod >= c.TotalMembers {
		return shared.NewDomainError("INVALID_STATE", "Final period reached; circle must be completed instead")
	}

	next := *c.CurrentPeriod + 1
	end := now.Add(c.PeriodLength)

	c.CurrentPeriod = &next
	c.PeriodStart = &now
	c.PeriodEnd = &end
	c.UpdatedAt = now
	c.IncrementVersion()

	return nil
}

// Complete transitions an active circle to completed after the final period's
// payout. Clears the current period: it is defined only while active.
func (c *Circle) Complete(now time.Time) error {
	if !c.Status.CanTransitionTo(StatusCompleted) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot complete circle in %s status", c.Status))
	}

	c.Status = StatusCompleted
	c.CurrentPeriod = nil
	c.PeriodStart = nil
	c.PeriodEnd = nil
	c.CompletedAt = &now
	c.UpdatedAt = now
	c.IncrementVersion()

	c.AddDomainEvent(NewCircleCompletedEvent(c))

	return nil
}

// Cancel cancels a circle that has not yet activated
func (c *Circle) Cancel(reason string) error {
	if !c.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel circle in %s status", c.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	c.Status = StatusCancelled
	c.CancelledAt = &now
	c.CancelReason = reason
	c.UpdatedAt = now
	c.IncrementVersion()

	c.AddDomainEvent(NewCircleCancelledEvent(c))

	return nil
}

// IsForming returns true if the circle is still accepting members
func (c *Circle) IsForming() bool {
	return c.Status == StatusForming
}

// IsActive returns true if contribution periods are running
func (c *Circle) IsActive() bool {
	return c.Status == StatusActive
}

// IsFullAt returns true when memberCount fills every seat
func (c *Circle) IsFullAt(memberCount int) bool {
	return memberCount >= c.TotalMembers
}

// Period returns the current period number, or 0 while not active
func (c *Circle) Period() int {
	if c.CurrentPeriod == nil {
		return 0
	}
	return *c.CurrentPeriod
}
