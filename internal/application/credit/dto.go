package credit

import (
	"time"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/credit"
)

// ScoreResponse represents a user's credit standing in API responses
type ScoreResponse struct {
	UserID           uuid.UUID `json:"user_id"`
	Score            int       `json:"score"`
	Tier             string    `json:"tier"`
	OnTimeRate       int       `json:"on_time_rate"`
	TotalPayments    int       `json:"total_payments"`
	OnTimePayments   int       `json:"on_time_payments"`
	LatePayments     int       `json:"late_payments"`
	MissedPayments   int       `json:"missed_payments"`
	CirclesCompleted int       `json:"circles_completed"`
}

// ToScoreResponse converts a credit score aggregate to its API representation
func ToScoreResponse(s *credit.CreditScore) ScoreResponse {
	return ScoreResponse{
		UserID:           s.UserID,
		Score:            s.Score,
		Tier:             string(s.Tier),
		OnTimeRate:       s.OnTimeRate(),
		TotalPayments:    s.TotalPayments,
		OnTimePayments:   s.OnTimePayments,
		LatePayments:     s.LatePayments,
		MissedPayments:   s.MissedPayments,
		CirclesCompleted: s.CirclesCompleted,
	}
}

// HistoryFilter represents filter options for credit history queries
type HistoryFilter struct {
	EventType *credit.EventType `form:"event_type" binding:"omitempty,oneof=payment_ontime payment_late payment_missed circle_completed"`
	Page      int               `form:"page" binding:"omitempty,min=1"`
	PageSize  int               `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// EventResponse represents one credit event in API responses
type EventResponse struct {
	ID           uuid.UUID  `json:"id"`
	EventType    string     `json:"event_type"`
	PointsChange int        `json:"points_change"`
	ScoreAfter   int        `json:"score_after"`
	CircleID     *uuid.UUID `json:"circle_id,omitempty"`
	Description  string     `json:"description"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToEventResponse converts a credit event to its API representation
func ToEventResponse(e *credit.CreditEvent) EventResponse {
	return EventResponse{
		ID:           e.ID,
		EventType:    string(e.EventType),
		PointsChange: e.PointsChange,
		ScoreAfter:   e.ScoreAfter,
		CircleID:     e.CircleID,
		Description:  e.Description,
		CreatedAt:    e.CreatedAt,
	}
}
