package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/rentroll/backend/internal/application/billing"
	"github.com/rentroll/backend/internal/domain/billing"
)

// ChargeHandler handles one-off charge endpoints
type ChargeHandler struct {
	BaseHandler
	receivableService *appbilling.ReceivableService
}

// NewChargeHandler creates a new ChargeHandler
func NewChargeHandler(receivableService *appbilling.ReceivableService) *ChargeHandler {
	return &ChargeHandler{receivableService: receivableService}
}

// CreateChargeRequest represents a request to enter a one-off charge
type CreateChargeRequest struct {
	AccountID     string  `json:"account_id" binding:"required,uuid"`
	StatementDate string  `json:"statement_date" binding:"required"`
	Category      string  `json:"category" binding:"required,oneof=RENT WATER STORAGE LATE_FEE OTHER"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Description   string  `json:"description" binding:"max=500"`
	OverrideToken string  `json:"override_token"`
}

// Create enters a one-off charge on an account
func (h *ChargeHandler) Create(c *gin.Context) {
	var req CreateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	statementDate, err := parseDate(req.StatementDate)
	if err != nil {
		h.BadRequest(c, "Invalid statement_date, expected YYYY-MM-DD")
		return
	}

	receivable, err := h.receivableService.Create(c.Request.Context(), appbilling.CreateChargeInput{
		AccountID:     uuid.MustParse(req.AccountID),
		StatementDate: statementDate,
		Category:      billing.ChargeCategory(req.Category),
		Amount:        toDecimal(req.Amount),
		Description:   req.Description,
		OverrideToken: req.OverrideToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newChargeResponse(receivable))
}

// List returns charges filtered by account or category; without a
// filter it returns every open charge
func (h *ChargeHandler) List(c *gin.Context) {
	if raw := c.Query("account_id"); raw != "" {
		accountID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid account_id")
			return
		}
		receivables, err := h.receivableService.ListByAccount(c.Request.Context(), accountID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, newChargeResponses(receivables))
		return
	}

	if raw := c.Query("category"); raw != "" {
		receivables, err := h.receivableService.ListByCategory(c.Request.Context(), billing.ChargeCategory(raw))
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, newChargeResponses(receivables))
		return
	}

	receivables, err := h.receivableService.ListUnpaid(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newChargeResponses(receivables))
}
