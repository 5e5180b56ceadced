package circle

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/shared"
)

// MemberStatus represents the status of a membership
type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "active"
	MemberStatusCompleted MemberStatus = "completed"
)

// IsValid checks if the status is a valid MemberStatus
func (s MemberStatus) IsValid() bool {
	return s == MemberStatusActive || s == MemberStatusCompleted
}

// Membership represents one member's seat in a circle.
// The payout position is assigned in join order and never reshuffled; the
// organizer always holds position 1.
type Membership struct {
	shared.BaseEntity
	CircleID          uuid.UUID    `json:"circle_id" gorm:"type:uuid;not null;uniqueIndex:idx_membership_circle_user,priority:1;uniqueIndex:idx_membership_circle_position,priority:1"`
	UserID            uuid.UUID    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_membership_circle_user,priority:2;index"`
	PayoutPosition    int          `json:"payout_position" gorm:"not null;uniqueIndex:idx_membership_circle_position,priority:2"` // 1..totalMembers, unique within the circle
	HasReceivedPayout bool         `json:"has_received_payout" gorm:"not null"`
	PayoutReceivedAt  *time.Time   `json:"payout_received_at"`
	Status            MemberStatus `json:"status" gorm:"size:16;not null"`
	JoinedAt          time.Time    `json:"joined_at" gorm:"not null"`
}

// TableName returns the table name for GORM
func (Membership) TableName() string {
	return "circle_memberships"
}

// NewMembership creates a membership with the given payout position
func NewMembership(circleID, userID uuid.UUID, payoutPosition, totalMembers int) (*Membership, error) {
	if circleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CIRCLE", "Circle ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if payoutPosition < 1 || payoutPosition > totalMembers {
		return nil, shared.NewDomainError("INVALID_POSITION",
			fmt.Sprintf("Payout position must be between 1 and %d", totalMembers))
	}

	now := time.Now()
	return &Membership{
		BaseEntity:     shared.NewBaseEntity(),
		CircleID:       circleID,
		UserID:         userID,
		PayoutPosition: payoutPosition,
		Status:         MemberStatusActive,
		JoinedAt:       now,
	}, nil
}

// MarkPayoutReceived records that this member has received their payout.
// Idempotent: calling it twice is a no-op, so retries are always safe.
func (m *Membership) MarkPayoutReceived(now time.Time) {
	if m.HasReceivedPayout {
		return
	}
	m.HasReceivedPayout = true
	m.PayoutReceivedAt = &now
	m.UpdatedAt = now
}

// Complete marks the membership as completed when its circle completes
func (m *Membership) Complete(now time.Time) {
	m.Status = MemberStatusCompleted
	m.UpdatedAt = now
}
