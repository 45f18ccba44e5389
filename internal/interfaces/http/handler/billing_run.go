package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	appbilling "github.com/rentroll/backend/internal/application/billing"
)

// BillingRunHandler handles the monthly charge generation run
type BillingRunHandler struct {
	BaseHandler
	generationService *appbilling.GenerationService
}

// NewBillingRunHandler creates a new BillingRunHandler
func NewBillingRunHandler(generationService *appbilling.GenerationService) *BillingRunHandler {
	return &BillingRunHandler{generationService: generationService}
}

// BillingRunRequest represents a request to run charge generation
type BillingRunRequest struct {
	StatementDate  string `json:"statement_date" binding:"required"`
	ProcessingDate string `json:"processing_date"`
}

func (r BillingRunRequest) dates() (statement, processing time.Time, err error) {
	statement, err = parseDate(r.StatementDate)
	if err != nil {
		return
	}
	processing = time.Now()
	if r.ProcessingDate != "" {
		processing, err = parseDate(r.ProcessingDate)
	}
	return
}

// Preview computes what a billing run would create without persisting
func (h *BillingRunHandler) Preview(c *gin.Context) {
	var req BillingRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	statement, processing, err := req.dates()
	if err != nil {
		h.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	report, err := h.generationService.Preview(c.Request.Context(), statement, processing)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// Run creates the recurring charges for a statement date
func (h *BillingRunHandler) Run(c *gin.Context) {
	var req BillingRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	statement, processing, err := req.dates()
	if err != nil {
		h.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	report, err := h.generationService.Generate(c.Request.Context(), statement, processing)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, report)
}
