package credit

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/shared"
)

// Score bounds. Every score stays within [BaseScore, MaxScore].
const (
	BaseScore = 300
	MaxScore  = 850
)

// Tier is a named band of the numeric credit score
type Tier string

const (
	TierBuilding  Tier = "building"  // 300-449
	TierFair      Tier = "fair"      // 450-599
	TierGood      Tier = "good"      // 600-749
	TierExcellent Tier = "excellent" // 750-850
)

// IsValid checks if the tier is a valid Tier
func (t Tier) IsValid() bool {
	switch t {
	case TierBuilding, TierFair, TierGood, TierExcellent:
		return true
	}
	return false
}

// TierForScore maps a score to its tier. Boundaries are inclusive on the
// lower end of each band.
func TierForScore(score int) Tier {
	switch {
	case score < 450:
		return TierBuilding
	case score < 600:
		return TierFair
	case score < 750:
		return TierGood
	default:
		return TierExcellent
	}
}

// OnTimeRate returns the rounded on-time percentage. A user with no payment
// history scores 100: absence of history is not held against them.
func OnTimeRate(total, onTime int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(onTime) / float64(total) * 100))
}

// ClampScore bounds a score to [BaseScore, MaxScore]
func ClampScore(score int) int {
	if score < BaseScore {
		return BaseScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// PointsPolicy is the tunable table of score deltas per event kind.
// Results are clamped to [BaseScore, MaxScore] after each application.
type PointsPolicy struct {
	OnTimePayment    int // Contribution received before the period end
	LateWithinGrace  int // Late but inside the grace window (no fee)
	LateWithFee      int // Late past the grace window (fee charged)
	MissedPayment    int // Explicitly recorded missed payment
	CircleCompletion int // Bonus when a circle completes
}

// DefaultPointsPolicy returns the standard scoring policy
func DefaultPointsPolicy() PointsPolicy {
	return PointsPolicy{
		OnTimePayment:    10,
		LateWithinGrace:  0,
		LateWithFee:      -5,
		MissedPayment:    -30,
		CircleCompletion: 25,
	}
}

// CreditScore is the per-user credit standing aggregate root. Created once
// per user; every contribution and circle completion mutates it through the
// policy table and appends exactly one CreditEvent.
type CreditScore struct {
	shared.BaseAggregateRoot
	UserID           uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	Score            int       `json:"score" gorm:"not null"`
	Tier             Tier      `json:"tier" gorm:"size:16;not null"`
	TotalPayments    int       `json:"total_payments" gorm:"not null"`
	OnTimePayments   int       `json:"on_time_payments" gorm:"not null"`
	LatePayments     int       `json:"late_payments" gorm:"not null"`
	MissedPayments   int       `json:"missed_payments" gorm:"not null"`
	CirclesCompleted int       `json:"circles_completed" gorm:"not null"`
}

// TableName returns the table name for GORM
func (CreditScore) TableName() string {
	return "credit_scores"
}

// NewCreditScore initializes a user's score at the base value
func NewCreditScore(userID uuid.UUID) (*CreditScore, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	return &CreditScore{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Score:             BaseScore,
		Tier:              TierBuilding,
	}, nil
}

// RecordPayment applies a contribution to the score. withFee distinguishes a
// payment past the grace window from one merely late within it.
func (s *CreditScore) RecordPayment(onTime, withFee bool, circleID uuid.UUID, policy PointsPolicy) *CreditEvent {
	var (
		points    int
		eventType EventType
		desc      string
	)
	switch {
	case onTime:
		points = policy.OnTimePayment
		eventType = EventPaymentOnTime
		desc = "On-time contribution"
	case withFee:
		points = policy.LateWithFee
		eventType = EventPaymentLate
		desc = "Late contribution (past grace window)"
	default:
		points = policy.LateWithinGrace
		eventType = EventPaymentLate
		desc = "Late contribution (within grace window)"
	}

	s.TotalPayments++
	if onTime {
		s.OnTimePayments++
	} else {
		s.LatePayments++
	}

	return s.apply(points, eventType, &circleID, desc)
}

// RecordMissedPayment applies a missed-payment penalty. Missed payments are
// only ever recorded by an explicit external trigger, never inferred from the
// absence of a contribution.
func (s *CreditScore) RecordMissedPayment(circleID uuid.UUID, period int, policy PointsPolicy) *CreditEvent {
	s.TotalPayments++
	s.MissedPayments++
	return s.apply(policy.MissedPayment, EventPaymentMissed, &circleID,
		fmt.Sprintf("Missed contribution for period %d", period))
}

// RecordCircleCompletion applies the completion bonus
func (s *CreditScore) RecordCircleCompletion(circleID uuid.UUID, policy PointsPolicy) *CreditEvent {
	s.CirclesCompleted++
	return s.apply(policy.CircleCompletion, EventCircleCompleted, &circleID, "Circle completed")
}

// OnTimeRate returns the user's rounded on-time percentage
func (s *CreditScore) OnTimeRate() int {
	return OnTimeRate(s.TotalPayments, s.OnTimePayments)
}

// apply mutates the score by points, clamps it, recomputes the tier, and
// returns the audit event recording the change.
func (s *CreditScore) apply(points int, eventType EventType, circleID *uuid.UUID, description string) *CreditEvent {
	before := s.Score
	s.Score = ClampScore(s.Score + points)
	s.Tier = TierForScore(s.Score)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	// The event records the effective change so that replaying the log
	// reproduces the clamped score exactly.
	return NewCreditEvent(s.UserID, eventType, s.Score-before, s.Score, circleID, description)
}

// ReplayScore reconstructs a score from its event log: initial base score plus
// every recorded points change, clamped after each step. The log is the
// source of truth for the current score.
func ReplayScore(events []CreditEvent) int {
	score := BaseScore
	for _, e := range events {
		score = ClampScore(score + e.PointsChange)
	}
	return score
}
