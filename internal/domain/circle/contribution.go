package circle

import (
	"time"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/shared"
)

// ContributionStatus represents the payment status of a contribution
type ContributionStatus string

const (
	ContributionStatusPaid ContributionStatus = "paid" // Received before the period end
	ContributionStatusLate ContributionStatus = "late" // Received after the period end
)

// IsValid checks if the status is a valid ContributionStatus
func (s ContributionStatus) IsValid() bool {
	return s == ContributionStatusPaid || s == ContributionStatusLate
}

// PaymentClassification is the result of classifying a payment against the
// period's due date and grace window.
type PaymentClassification struct {
	Status  ContributionStatus
	OnTime  bool
	LateFee int64
}

// ClassifyPayment classifies a payment made at paidAt against the period end
// and grace window:
//   - paidAt <= periodEnd: on time, no fee
//   - periodEnd < paidAt <= graceEnd: late, no fee
//   - paidAt > graceEnd: late, fee = floor(amount * lateFeePercent / 100)
//
// Payments past the grace window are still accepted; missed-payment handling
// requires an explicit external trigger and is never inferred here.
func ClassifyPayment(paidAt, periodEnd, graceEnd time.Time, amount int64, lateFeePercent int) PaymentClassification {
	if !paidAt.After(periodEnd) {
		return PaymentClassification{Status: ContributionStatusPaid, OnTime: true}
	}
	if !paidAt.After(graceEnd) {
		return PaymentClassification{Status: ContributionStatusLate, OnTime: false}
	}
	return PaymentClassification{
		Status:  ContributionStatusLate,
		OnTime:  false,
		LateFee: amount * int64(lateFeePercent) / 100,
	}
}

// Contribution records one member's payment for one period. The ledger is
// append-only: at most one contribution exists per (circle, user, period) and
// a record is never mutated after creation.
type Contribution struct {
	shared.BaseEntity
	CircleID        uuid.UUID          `json:"circle_id" gorm:"type:uuid;not null;uniqueIndex:idx_contribution_circle_user_period,priority:1"`
	UserID          uuid.UUID          `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_contribution_circle_user_period,priority:2;index"`
	MembershipID    uuid.UUID          `json:"membership_id" gorm:"type:uuid;not null"`
	Period          int                `json:"period" gorm:"not null;uniqueIndex:idx_contribution_circle_user_period,priority:3"`
	Amount          int64              `json:"amount" gorm:"not null"`
	LateFee         int64              `json:"late_fee" gorm:"not null"`
	Status          ContributionStatus `json:"status" gorm:"size:16;not null"`
	OnTime          bool               `json:"on_time" gorm:"not null"`
	DueDate         time.Time          `json:"due_date" gorm:"not null"`
	PaidAt          time.Time          `json:"paid_at" gorm:"not null"`
	TransactionHash string             `json:"transaction_hash" gorm:"size:64"` // Confirmed on-chain transfer, if any
}

// TableName returns the table name for GORM
func (Contribution) TableName() string {
	return "contributions"
}

// NewContribution creates a contribution record for the circle's current
// period, classified against the period end and grace window.
func NewContribution(
	c *Circle,
	membership *Membership,
	amount int64,
	paidAt time.Time,
	transactionHash string,
) (*Contribution, error) {
	if !c.IsActive() || c.PeriodEnd == nil {
		return nil, ErrCircleNotActive
	}
	if membership == nil || membership.CircleID != c.ID {
		return nil, ErrNotMember
	}
	if amount <= 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Contribution amount must be positive")
	}

	class := ClassifyPayment(paidAt, *c.PeriodEnd, *c.GraceEnd(), c.ContributionAmount, c.LateFeePercent)

	return &Contribution{
		BaseEntity:      shared.NewBaseEntity(),
		CircleID:        c.ID,
		UserID:          membership.UserID,
		MembershipID:    membership.ID,
		Period:          c.Period(),
		Amount:          amount,
		LateFee:         class.LateFee,
		Status:          class.Status,
		OnTime:          class.OnTime,
		DueDate:         *c.PeriodEnd,
		PaidAt:          paidAt,
		TransactionHash: transactionHash,
	}, nil
}
