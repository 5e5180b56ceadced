package credit

import (
	"time"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/shared"
)

// EventType classifies score-affecting actions
type EventType string

const (
	EventPaymentOnTime   EventType = "payment_ontime"
	EventPaymentLate     EventType = "payment_late"
	EventPaymentMissed   EventType = "payment_missed"
	EventCircleCompleted EventType = "circle_completed"
)

// IsValid checks if the event type is a valid EventType
func (t EventType) IsValid() bool {
	switch t {
	case EventPaymentOnTime, EventPaymentLate, EventPaymentMissed, EventCircleCompleted:
		return true
	}
	return false
}

// CreditEvent is an append-only audit log entry for one score change.
// Never mutated or deleted after creation.
type CreditEvent struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	UserID       uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index:idx_credit_event_user_created,priority:1"`
	EventType    EventType  `json:"event_type" gorm:"size:32;not null"`
	PointsChange int        `json:"points_change" gorm:"not null"` // Effective (post-clamp) delta
	ScoreAfter   int        `json:"score_after" gorm:"not null"`
	CircleID     *uuid.UUID `json:"circle_id,omitempty" gorm:"type:uuid;index"`
	Description  string     `json:"description" gorm:"size:256"`
	CreatedAt    time.Time  `json:"created_at" gorm:"not null;index:idx_credit_event_user_created,priority:2"`
}

// TableName returns the table name for GORM
func (CreditEvent) TableName() string {
	return "credit_events"
}

// NewCreditEvent creates an audit entry for a score change
func NewCreditEvent(userID uuid.UUID, eventType EventType, pointsChange, scoreAfter int, circleID *uuid.UUID, description string) *CreditEvent {
	return &CreditEvent{
		ID:           uuid.New(),
		UserID:       userID,
		EventType:    eventType,
		PointsChange: pointsChange,
		ScoreAfter:   scoreAfter,
		CircleID:     circleID,
		Description:  description,
		CreatedAt:    time.Now(),
	}
}

// CreditEventFilter defines filtering options for credit event queries
type CreditEventFilter struct {
	shared.Filter
	EventType *EventType
}
