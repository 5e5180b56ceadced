package circle

import (
	"time"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/shared"
)

// PayoutStatus represents the settlement status of a payout
type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "pending"   // Recorded, value transfer not yet confirmed
	PayoutStatusCompleted PayoutStatus = "completed" // On-chain transfer confirmed
)

// IsValid checks if the status is a valid PayoutStatus
func (s PayoutStatus) IsValid() bool {
	return s == PayoutStatusPending || s == PayoutStatusCompleted
}

// Payout records the pooled amount paid to one member for one period.
// Exactly one payout exists per (circle, period).
type Payout struct {
	shared.BaseEntity
	CircleID              uuid.UUID    `json:"circle_id" gorm:"type:uuid;not null;uniqueIndex:idx_payout_circle_period,priority:1"`
	RecipientMembershipID uuid.UUID    `json:"recipient_membership_id" gorm:"type:uuid;not null"`
	RecipientUserID       uuid.UUID    `json:"recipient_user_id" gorm:"type:uuid;not null;index"`
	Period                int          `json:"period" gorm:"not null;uniqueIndex:idx_payout_circle_period,priority:2"`
	Amount                int64        `json:"amount" gorm:"not null"`
	Status                PayoutStatus `json:"status" gorm:"size:16;not null"`
	TransactionHash       string       `json:"transaction_hash" gorm:"size:64"`
	CompletedAt           *time.Time   `json:"completed_at"`
}

// TableName returns the table name for GORM
func (Payout) TableName() string {
	return "payouts"
}

// NewPayout creates a pending payout for the given period's recipient
func NewPayout(c *Circle, recipient *Membership, period int) (*Payout, error) {
	if recipient == nil {
		return nil, ErrNoRecipient
	}
	if recipient.PayoutPosition != period {
		return nil, shared.NewDomainError("INVALID_RECIPIENT",
			"Recipient payout position does not match the period")
	}

	return &Payout{
		BaseEntity:            shared.NewBaseEntity(),
		CircleID:              c.ID,
		RecipientMembershipID: recipient.ID,
		RecipientUserID:       recipient.UserID,
		Period:                period,
		Amount:                c.PayoutAmount(),
		Status:                PayoutStatusPending,
	}, nil
}

// MarkCompleted records the confirmed on-chain transfer for this payout
func (p *Payout) MarkCompleted(transactionHash string, now time.Time) error {
	if p.Status == PayoutStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Payout is already completed")
	}
	p.Status = PayoutStatusCompleted
	p.TransactionHash = transactionHash
	p.CompletedAt = &now
	p.UpdatedAt = now
	return nil
}
