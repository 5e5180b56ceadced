package circle

import (
	"time"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/circle"
)

// ==================== Circle DTOs ====================

// CreateCircleRequest represents a request to create a circle
type CreateCircleRequest struct {
	Name               string    `json:"name" binding:"required,min=3,max=30"`
	ContributionAmount int64     `json:"contribution_amount" binding:"required,gt=0"`
	ContributionToken  string    `json:"contribution_token" binding:"required"`
	TotalMembers       int       `json:"total_members" binding:"required,min=3,max=10"`
	StartDate          time.Time `json:"start_date" binding:"required"`
	WalletID           string    `json:"wallet_id"`
}

// JoinCircleRequest optionally carries the invite code the caller looked the
// circle up with. The code is a lookup credential, not a join requirement.
type JoinCircleRequest struct {
	InviteCode string `json:"invite_code" binding:"omitempty,len=8"`
}

// CancelCircleRequest represents a request to cancel a forming circle
type CancelCircleRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// CircleListFilter represents filter options for circle list queries
type CircleListFilter struct {
	Status   *circle.Status `form:"status" binding:"omitempty,oneof=forming active completed cancelled"`
	Page     int            `form:"page" binding:"omitempty,min=1"`
	PageSize int            `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CircleResponse represents a circle in API responses
type CircleResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	OrganizerID        uuid.UUID  `json:"organizer_id"`
	ContributionAmount int64      `json:"contribution_amount"`
	ContributionToken  string     `json:"contribution_token"`
	PayoutAmount       int64      `json:"payout_amount"`
	TotalMembers       int        `json:"total_members"`
	MemberCount        int        `json:"member_count"`
	Status             string     `json:"status"`
	CurrentPeriod      *int       `json:"current_period,omitempty"`
	PeriodStart        *time.Time `json:"period_start,omitempty"`
	PeriodEnd          *time.Time `json:"period_end,omitempty"`
	GraceEnd           *time.Time `json:"grace_end,omitempty"`
	LateFeePercent     int        `json:"late_fee_percent"`
	InviteCode         string     `json:"invite_code"`
	StartDate          time.Time  `json:"start_date"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancelReason       string     `json:"cancel_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// ToCircleResponse converts a circle aggregate to its API representation
func ToCircleResponse(c *circle.Circle, memberCount int) CircleResponse {
	return CircleResponse{
		ID:                 c.ID,
		Name:               c.Name,
		OrganizerID:        c.OrganizerID,
		ContributionAmount: c.ContributionAmount,
		ContributionToken:  c.ContributionToken,
		PayoutAmount:       c.PayoutAmount(),
		TotalMembers:       c.TotalMembers,
		MemberCount:        memberCount,
		Status:             c.Status.String(),
		CurrentPeriod:      c.CurrentPeriod,
		PeriodStart:        c.PeriodStart,
		PeriodEnd:          c.PeriodEnd,
		GraceEnd:           c.GraceEnd(),
		LateFeePercent:     c.LateFeePercent,
		InviteCode:         c.InviteCode,
		StartDate:          c.StartDate,
		StartedAt:          c.StartedAt,
		CompletedAt:        c.CompletedAt,
		CancelledAt:        c.CancelledAt,
		CancelReason:       c.CancelReason,
		CreatedAt:          c.CreatedAt,
	}
}

// ==================== Membership DTOs ====================

// MembershipResponse represents a membership in API responses
type MembershipResponse struct {
	ID                uuid.UUID  `json:"id"`
	CircleID          uuid.UUID  `json:"circle_id"`
	UserID            uuid.UUID  `json:"user_id"`
	PayoutPosition    int        `json:"payout_position"`
	HasReceivedPayout bool       `json:"has_received_payout"`
	PayoutReceivedAt  *time.Time `json:"payout_received_at,omitempty"`
	Status            string     `json:"status"`
	JoinedAt          time.Time  `json:"joined_at"`
}

// ToMembershipResponse converts a membership to its API representation
func ToMembershipResponse(m *circle.Membership) MembershipResponse {
	return MembershipResponse{
		ID:                m.ID,
		CircleID:          m.CircleID,
		UserID:            m.UserID,
		PayoutPosition:    m.PayoutPosition,
		HasReceivedPayout: m.HasReceivedPayout,
		PayoutReceivedAt:  m.PayoutReceivedAt,
		Status:            string(m.Status),
		JoinedAt:          m.JoinedAt,
	}
}

// JoinCircleResponse is returned when a member takes a seat
type JoinCircleResponse struct {
	Circle     CircleResponse     `json:"circle"`
	Membership MembershipResponse `json:"membership"`
}

// ==================== Contribution DTOs ====================

// RecordContributionRequest represents a member's payment for the current period
type RecordContributionRequest struct {
	Amount          int64  `json:"amount" binding:"required,gt=0"`
	TransactionHash string `json:"transaction_hash"`
}

// ContributionResponse represents a ledger entry in API responses
type ContributionResponse struct {
	ID              uuid.UUID `json:"id"`
	CircleID        uuid.UUID `json:"circle_id"`
	UserID          uuid.UUID `json:"user_id"`
	Period          int       `json:"period"`
	Amount          int64     `json:"amount"`
	LateFee         int64     `json:"late_fee"`
	Status          string    `json:"status"`
	OnTime          bool      `json:"on_time"`
	DueDate         time.Time `json:"due_date"`
	PaidAt          time.Time `json:"paid_at"`
	TransactionHash string    `json:"transaction_hash,omitempty"`
}

// ToContributionResponse converts a contribution to its API representation
func ToContributionResponse(c *circle.Contribution) ContributionResponse {
	return ContributionResponse{
		ID:              c.ID,
		CircleID:        c.CircleID,
		UserID:          c.UserID,
		Period:          c.Period,
		Amount:          c.Amount,
		LateFee:         c.LateFee,
		Status:          string(c.Status),
		OnTime:          c.OnTime,
		DueDate:         c.DueDate,
		PaidAt:          c.PaidAt,
		TransactionHash: c.TransactionHash,
	}
}

// ==================== Payout DTOs ====================

// PayoutResponse represents a payout in API responses
type PayoutResponse struct {
	ID              uuid.UUID  `json:"id"`
	CircleID        uuid.UUID  `json:"circle_id"`
	RecipientUserID uuid.UUID  `json:"recipient_user_id"`
	Period          int        `json:"period"`
	Amount          int64      `json:"amount"`
	Status          string     `json:"status"`
	TransactionHash string     `json:"transaction_hash,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// ToPayoutResponse converts a payout to its API representation
func ToPayoutResponse(p *circle.Payout) PayoutResponse {
	return PayoutResponse{
		ID:              p.ID,
		CircleID:        p.CircleID,
		RecipientUserID: p.RecipientUserID,
		Period:          p.Period,
		Amount:          p.Amount,
		Status:          string(p.Status),
		TransactionHash: p.TransactionHash,
		CompletedAt:     p.CompletedAt,
	}
}
