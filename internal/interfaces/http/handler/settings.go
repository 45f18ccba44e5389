package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/rentroll/backend/internal/application/billing"
)

// SettingsHandler handles billing configuration endpoints
type SettingsHandler struct {
	BaseHandler
	settingsService *appbilling.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *appbilling.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// CreateSettingRequest represents a request to add a configuration version
type CreateSettingRequest struct {
	EffectiveAsOf      string  `json:"effective_as_of" binding:"required"`
	RentMonthlyRate    float64 `json:"rent_monthly_rate" binding:"required,gt=0"`
	WaterMonthlyRate   float64 `json:"water_monthly_rate" binding:"gte=0"`
	WaterServiceFee    float64 `json:"water_service_fee" binding:"gte=0"`
	StorageMonthlyRate float64 `json:"storage_monthly_rate" binding:"gte=0"`
	LateFeeRate        float64 `json:"late_fee_rate" binding:"gte=0,lt=1"`
	GraceDays          int     `json:"grace_days" binding:"gte=0,lte=28"`
	DueDay             int     `json:"due_day" binding:"required,min=1,max=28"`
	BusinessName       string  `json:"business_name" binding:"max=200"`
	BusinessAddress    string  `json:"business_address" binding:"max=500"`
	OverrideToken      string  `json:"override_token"`
}

// RaiseRatesRequest represents a request to derive a raised-rate version
type RaiseRatesRequest struct {
	FromDate      string  `json:"from_date" binding:"required"`
	Percent       float64 `json:"percent" binding:"required,gt=0"`
	EffectiveAsOf string  `json:"effective_as_of" binding:"required"`
}

// Create adds a new configuration version
func (h *SettingsHandler) Create(c *gin.Context) {
	var req CreateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	effectiveAsOf, err := parseDate(req.EffectiveAsOf)
	if err != nil {
		h.BadRequest(c, "Invalid effective_as_of date, expected YYYY-MM-DD")
		return
	}

	setting, err := h.settingsService.Create(c.Request.Context(), appbilling.CreateSettingInput{
		EffectiveAsOf:      effectiveAsOf,
		RentMonthlyRate:    toDecimal(req.RentMonthlyRate),
		WaterMonthlyRate:   toDecimal(req.WaterMonthlyRate),
		WaterServiceFee:    toDecimal(req.WaterServiceFee),
		StorageMonthlyRate: toDecimal(req.StorageMonthlyRate),
		LateFeeRate:        toDecimal(req.LateFeeRate),
		GraceDays:          req.GraceDays,
		DueDay:             req.DueDay,
		BusinessName:       req.BusinessName,
		BusinessAddress:    req.BusinessAddress,
		OverrideToken:      req.OverrideToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newSettingResponse(setting))
}

// List returns all configuration versions, newest first
func (h *SettingsHandler) List(c *gin.Context) {
	settings, err := h.settingsService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newSettingResponses(settings))
}

// GetByID returns one configuration version
func (h *SettingsHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid setting ID format")
		return
	}

	setting, err := h.settingsService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newSettingResponse(setting))
}

// Effective returns the configuration version governing a date
func (h *SettingsHandler) Effective(c *gin.Context) {
	date, err := parseDate(c.Query("date"))
	if err != nil {
		h.BadRequest(c, "Invalid or missing date, expected YYYY-MM-DD")
		return
	}

	setting, err := h.settingsService.Resolve(c.Request.Context(), date)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newSettingResponse(setting))
}

// RaiseRates derives a new version with recurring rates raised by a percentage
func (h *SettingsHandler) RaiseRates(c *gin.Context) {
	var req RaiseRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	fromDate, err := parseDate(req.FromDate)
	if err != nil {
		h.BadRequest(c, "Invalid from_date, expected YYYY-MM-DD")
		return
	}
	effectiveAsOf, err := parseDate(req.EffectiveAsOf)
	if err != nil {
		h.BadRequest(c, "Invalid effective_as_of date, expected YYYY-MM-DD")
		return
	}

	setting, err := h.settingsService.RaiseRates(c.Request.Context(), fromDate, toDecimal(req.Percent), effectiveAsOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newSettingResponse(setting))
}
