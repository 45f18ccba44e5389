package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appproperty "github.com/rentroll/backend/internal/application/property"
	"github.com/rentroll/backend/internal/domain/property"
)

// AccountHandler handles billing account lifecycle endpoints
type AccountHandler struct {
	BaseHandler
	accountService *appproperty.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *appproperty.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// OpenAccountRequest represents a request to open an account on a lot
type OpenAccountRequest struct {
	LotID          string  `json:"lot_id" binding:"required,uuid"`
	TenantID       *string `json:"tenant_id" binding:"omitempty,uuid"`
	BillPreference string  `json:"bill_preference" binding:"omitempty,oneof=NO_PREFERENCE NO_PAPER NO_EMAIL"`
}

// CloseAccountRequest represents a request to close an account
type CloseAccountRequest struct {
	ClosedAt string `json:"closed_at"`
}

// RentOverrideRequest represents a request to set or clear a rent override
type RentOverrideRequest struct {
	Rate *float64 `json:"rate" binding:"omitempty,gt=0"`
}

// BillPreferenceRequest represents a request to change delivery preference
type BillPreferenceRequest struct {
	Preference string `json:"preference" binding:"required,oneof=NO_PREFERENCE NO_PAPER NO_EMAIL"`
}

// Open creates a billing account on a lot
func (h *AccountHandler) Open(c *gin.Context) {
	var req OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tenantID, err := parseUUIDPtr(req.TenantID)
	if err != nil {
		h.BadRequest(c, "Invalid tenant_id")
		return
	}

	account, err := h.accountService.Open(c.Request.Context(), appproperty.OpenAccountInput{
		LotID:          uuid.MustParse(req.LotID),
		TenantID:       tenantID,
		BillPreference: property.BillPreference(req.BillPreference),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newAccountResponse(account))
}

// GetByID returns one account
func (h *AccountHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	account, err := h.accountService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newAccountResponse(account))
}

// List returns accounts; closed ones only when include_closed is set
func (h *AccountHandler) List(c *gin.Context) {
	includeClosed := c.Query("include_closed") == "true"

	accounts, err := h.accountService.List(c.Request.Context(), includeClosed)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, newAccountResponse(&accounts[i]))
	}
	h.Success(c, out)
}

// Close ends an account's tenancy
func (h *AccountHandler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var req CloseAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	closedAt := time.Now()
	if req.ClosedAt != "" {
		closedAt, err = parseDate(req.ClosedAt)
		if err != nil {
			h.BadRequest(c, "Invalid closed_at, expected YYYY-MM-DD")
			return
		}
	}

	account, err := h.accountService.Close(c.Request.Context(), id, closedAt)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newAccountResponse(account))
}

// SetRentOverride sets or clears an account's rent override
func (h *AccountHandler) SetRentOverride(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var req RentOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.accountService.SetRentOverride(c.Request.Context(), id, floatPtrToDecimal(req.Rate))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newAccountResponse(account))
}

// SetBillPreference changes how an account's invoices are delivered
func (h *AccountHandler) SetBillPreference(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var req BillPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.accountService.SetBillPreference(c.Request.Context(), id, property.BillPreference(req.Preference))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newAccountResponse(account))
}
