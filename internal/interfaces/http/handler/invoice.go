package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinvoicing "github.com/rentroll/backend/internal/application/invoicing"
)

// InvoiceHandler handles invoice assembly endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *appinvoicing.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *appinvoicing.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// GenerateInvoicesRequest represents a request to run invoice assembly
type GenerateInvoicesRequest struct {
	StatementDate string `json:"statement_date" binding:"required"`
	// Persist saves the invoices; false renders a preview only
	Persist bool `json:"persist"`
	// Regenerate replaces existing invoices instead of failing on them
	Regenerate bool `json:"regenerate"`
}

// MarkDeliveredRequest represents a request to mark an invoice delivered
type MarkDeliveredRequest struct {
	DeliveredOn string `json:"delivered_on"`
}

// Readiness reports whether a statement month is ready to invoice
func (h *InvoiceHandler) Readiness(c *gin.Context) {
	statementDate, err := parseDate(c.Query("statement_date"))
	if err != nil {
		h.BadRequest(c, "Invalid or missing statement_date, expected YYYY-MM-DD")
		return
	}

	report, err := h.invoiceService.CheckReadiness(c.Request.Context(), statementDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// Generate runs invoice assembly over all active accounts
func (h *InvoiceHandler) Generate(c *gin.Context) {
	var req GenerateInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	statementDate, err := parseDate(req.StatementDate)
	if err != nil {
		h.BadRequest(c, "Invalid statement_date, expected YYYY-MM-DD")
		return
	}

	report, err := h.invoiceService.Generate(c.Request.Context(), statementDate, appinvoicing.GenerateOptions{
		Persist:    req.Persist,
		Regenerate: req.Regenerate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if req.Persist {
		h.Created(c, report)
		return
	}
	h.Success(c, report)
}

// GetByID returns one invoice with its frozen snapshot
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.invoiceService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newInvoiceResponse(invoice))
}

// List returns the invoices issued for a statement date
func (h *InvoiceHandler) List(c *gin.Context) {
	statementDate, err := parseDate(c.Query("statement_date"))
	if err != nil {
		h.BadRequest(c, "Invalid or missing statement_date, expected YYYY-MM-DD")
		return
	}

	invoices, err := h.invoiceService.ListByStatementDate(c.Request.Context(), statementDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newInvoiceResponses(invoices))
}

// MarkDelivered records when an invoice went out
func (h *InvoiceHandler) MarkDelivered(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req MarkDeliveredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	deliveredOn := time.Now()
	if req.DeliveredOn != "" {
		deliveredOn, err = parseDate(req.DeliveredOn)
		if err != nil {
			h.BadRequest(c, "Invalid delivered_on, expected YYYY-MM-DD")
			return
		}
	}

	if err := h.invoiceService.MarkDelivered(c.Request.Context(), id, deliveredOn); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
