package handler

import (
	"github.com/gin-gonic/gin"

	creditapp "github.com/halo/backend/internal/application/credit"
)

// CreditHandler handles credit score API endpoints
type CreditHandler struct {
	BaseHandler
	creditService *creditapp.CreditService
}

// NewCreditHandler creates a new CreditHandler
func NewCreditHandler(creditService *creditapp.CreditService) *CreditHandler {
	return &CreditHandler{creditService: creditService}
}

// RegisterRoutes registers credit routes on the API group
func (h *CreditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	credit := rg.Group("/credit")
	{
		credit.GET("/score", h.GetScore)
		credit.GET("/history", h.GetHistory)
		credit.POST("/replay", h.Replay)
	}
}

// GetScore returns the caller's credit score, initializing it on first read
func (h *CreditHandler) GetScore(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Missing or invalid user identity")
		return
	}

	resp, err := h.creditService.GetScore(c.Request.Context(), userID)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetHistory returns the caller's credit event history, newest first
func (h *CreditHandler) GetHistory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Missing or invalid user identity")
		return
	}

	var filter creditapp.HistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.creditService.GetHistory(c.Request.Context(), userID, filter)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Replay recomputes the caller's score from the full event history and
// returns the recalculated value
func (h *CreditHandler) Replay(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Missing or invalid user identity")
		return
	}

	score, err := h.creditService.ReplayScore(c.Request.Context(), userID)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, gin.H{"score": score})
}
