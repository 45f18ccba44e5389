package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/rentroll/backend/internal/application/billing"
)

// AllocationHandler handles payment allocation endpoints
type AllocationHandler struct {
	BaseHandler
	allocationService *appbilling.AllocationService
}

// NewAllocationHandler creates a new AllocationHandler
func NewAllocationHandler(allocationService *appbilling.AllocationService) *AllocationHandler {
	return &AllocationHandler{allocationService: allocationService}
}

// AllocationRequest represents a request to allocate one account
type AllocationRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
}

// Preview plans an account's allocation without committing anything
func (h *AllocationHandler) Preview(c *gin.Context) {
	var req AllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.allocationService.Preview(c.Request.Context(), uuid.MustParse(req.AccountID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, plan)
}

// Run allocates one account's pooled payments against its open charges
func (h *AllocationHandler) Run(c *gin.Context) {
	var req AllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.allocationService.RunForAccount(c.Request.Context(), uuid.MustParse(req.AccountID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, plan)
}

// RunAll allocates every account. Accounts fail independently; the
// report carries per-account outcomes.
func (h *AllocationHandler) RunAll(c *gin.Context) {
	report, err := h.allocationService.RunAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}
