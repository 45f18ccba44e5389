package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/rentroll/backend/internal/application/billing"
)

// PaymentHandler handles payment ledger endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *appbilling.PaymentService
	recentWindow   time.Duration
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *appbilling.PaymentService, recentWindow time.Duration) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		recentWindow:   recentWindow,
	}
}

// RecordPaymentRequest represents a request to enter a payment
type RecordPaymentRequest struct {
	AccountID     string  `json:"account_id" binding:"required,uuid"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Payer         string  `json:"payer" binding:"max=200"`
	PaymentDated  string  `json:"payment_dated" binding:"required"`
	ReceivedDate  string  `json:"received_date" binding:"required"`
	OverrideToken string  `json:"override_token"`
}

// Record enters a payment into an account's pool
func (h *PaymentHandler) Record(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	accountID := uuid.MustParse(req.AccountID)
	paymentDated, err := parseDate(req.PaymentDated)
	if err != nil {
		h.BadRequest(c, "Invalid payment_dated, expected YYYY-MM-DD")
		return
	}
	receivedDate, err := parseDate(req.ReceivedDate)
	if err != nil {
		h.BadRequest(c, "Invalid received_date, expected YYYY-MM-DD")
		return
	}

	payment, err := h.paymentService.Record(c.Request.Context(), appbilling.RecordPaymentInput{
		AccountID:     accountID,
		Amount:        toDecimal(req.Amount),
		Payer:         req.Payer,
		PaymentDated:  paymentDated,
		ReceivedDate:  receivedDate,
		OverrideToken: req.OverrideToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newPaymentResponse(payment))
}

// List returns an account's payments
func (h *PaymentHandler) List(c *gin.Context) {
	accountID, err := uuid.Parse(c.Query("account_id"))
	if err != nil {
		h.BadRequest(c, "Invalid or missing account_id")
		return
	}

	payments, err := h.paymentService.ListByAccount(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newPaymentResponses(payments))
}

// Recent returns payments received inside the recent window, newest
// first. A since query narrows or widens the window.
func (h *PaymentHandler) Recent(c *gin.Context) {
	since := time.Now().Add(-h.recentWindow)
	if raw := c.Query("since"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			h.BadRequest(c, "Invalid since date, expected YYYY-MM-DD")
			return
		}
		since = parsed
	}

	payments, err := h.paymentService.Recent(c.Request.Context(), since)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newPaymentResponses(payments))
}

// Delete removes a payment, reversing its allocations first
func (h *PaymentHandler) Delete(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	if err := h.paymentService.Delete(c.Request.Context(), paymentID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Balance returns the money an account had on hand as of a date
func (h *PaymentHandler) Balance(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			h.BadRequest(c, "Invalid as_of date, expected YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	balance, err := h.paymentService.AvailableBalance(c.Request.Context(), accountID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"account_id": accountID,
		"as_of":      asOf,
		"available":  balance,
	})
}
