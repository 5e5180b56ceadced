package handler

import (
	"github.com/gin-gonic/gin"

	circleapp "github.com/halo/backend/internal/application/circle"
)

// CircleHandler handles circle lifecycle and ledger API endpoints
type CircleHandler struct {
	BaseHandler
	circleService       *circleapp.CircleService
	contributionService *circleapp.ContributionService
}

// NewCircleHandler creates a new CircleHandler
func NewCircleHandler(circleService *circleapp.CircleService, contributionService *circleapp.ContributionService) *CircleHandler {
	return &CircleHandler{
		circleService:       circleService,
		contributionService: contributionService,
	}
}

// RegisterRoutes registers circle routes on the API group
func (h *CircleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	circles := rg.Group("/circles")
	{
		circles.POST("", h.Create)
		circles.GET("", h.List)
		circles.GET("/:id", h.Get)
		circles.GET("/:id/members", h.ListMembers)
		circles.POST("/:id/join", h.Join)
		circles.POST("/:id/cancel", h.Cancel)
		circles.POST("/:id/contributions", h.RecordContribution)
		circles.GET("/:id/contributions", h.ListContributions)
		circles.GET("/:id/payouts", h.ListPayouts)
	}
	rg.GET("/invites/:code", h.GetByInviteCode)
}

// Create creates a new savings circle with the caller as organizer
func (h *CircleHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Missing or invalid user identity")
		return
	}

	var req circleapp.CreateCircleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.circleService.CreateCircle(c.Request.Context(), userID, req)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns the circles the caller belongs to
func (h *CircleHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Missing or invalid user identity")
		return
	}

	var filter circleapp.CircleListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.circleService.ListForUser(c.Request.Context(), userID, filter)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get returns a single circle by ID
func (h *CircleHandler) Get(c *gin.Context) {
	circleID, err := getCircleID(c)
	if err != nil {
		h.BadRequest(c, "Invalid circle ID")
		return
	}

	resp, err := h.circleService.GetByID(c.Request.Context(), circleID)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByInviteCode resolves an invite code to its circle
func (h *CircleHandler) GetByInviteCode(c *gin.Context) {
	code := c.Param("code")

	resp, err := h.circleService.GetByInviteCode(c.Request.Context(), code)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListMembers returns the circle roster ordered by payout position
func (h *CircleHandler) ListMembers(c *gin.Context) {
	circleID, err := getCircleID(c)
	if err != nil {
		h.BadRequest(c, "Invalid circle ID")
		return
	}

	members, err := h.circleService.GetMembers(c.Request.Context(), circleID)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, members)
}

// Join takes the next free seat in a forming circle
func (h *CircleHandler) Join(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Missing or invalid user identity")
		return
	}
	circleID, err := getCircleID(c)
	if err != nil {
		h.BadRequest(c, "Invalid circle ID")
		return
	}

	var req circleapp.JoinCircleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.circleService.JoinCircle(c.Request.Context(), userID, circleID, req.InviteCode)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// Cancel cancels a forming circle. Organizer only.
func (h *CircleHandler) Cancel(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Missing or invalid user identity")
		return
	}
	circleID, err := getCircleID(c)
	if err != nil {
		h.BadRequest(c, "Invalid circle ID")
		return
	}

	var req circleapp.CancelCircleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.circleService.CancelCircle(c.Request.Context(), userID, circleID, req)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordContribution records the caller's payment for the current period
func (h *CircleHandler) RecordContribution(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Missing or invalid user identity")
		return
	}
	circleID, err := getCircleID(c)
	if err != nil {
		h.BadRequest(c, "Invalid circle ID")
		return
	}

	var req circleapp.RecordContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.contributionService.RecordContribution(c.Request.Context(), userID, circleID, req)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListContributions returns the circle's contribution ledger, newest first
func (h *CircleHandler) ListContributions(c *gin.Context) {
	circleID, err := getCircleID(c)
	if err != nil {
		h.BadRequest(c, "Invalid circle ID")
		return
	}

	ledger, err := h.contributionService.GetLedger(c.Request.Context(), circleID)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, ledger)
}

// ListPayouts returns the circle's payout history in period order
func (h *CircleHandler) ListPayouts(c *gin.Context) {
	circleID, err := getCircleID(c)
	if err != nil {
		h.BadRequest(c, "Invalid circle ID")
		return
	}

	payouts, err := h.contributionService.GetPayouts(c.Request.Context(), circleID)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, payouts)
}
