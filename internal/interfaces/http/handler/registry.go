package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appproperty "github.com/rentroll/backend/internal/application/property"
)

// RegistryHandler handles the property registry: properties, lots,
// water meters and tenants
type RegistryHandler struct {
	BaseHandler
	registryService *appproperty.RegistryService
}

// NewRegistryHandler creates a new RegistryHandler
func NewRegistryHandler(registryService *appproperty.RegistryService) *RegistryHandler {
	return &RegistryHandler{registryService: registryService}
}

// CreatePropertyRequest represents a request to register a property
type CreatePropertyRequest struct {
	Code          string `json:"code" binding:"required,min=1,max=50"`
	StreetAddress string `json:"street_address" binding:"max=200"`
	CityStateZip  string `json:"city_state_zip" binding:"max=200"`
}

// CreateLotRequest represents a request to register a lot
type CreateLotRequest struct {
	Code          string `json:"code" binding:"required,min=1,max=50"`
	PropertyCode  string `json:"property_code" binding:"required,min=1,max=50"`
	StreetAddress string `json:"street_address" binding:"max=200"`
	CityStateZip  string `json:"city_state_zip" binding:"max=200"`
}

// SetLotStorageRequest represents a request to change a lot's storage billing
type SetLotStorageRequest struct {
	Enabled bool `json:"enabled"`
	// Override replaces the configured storage rate for this lot
	Override *float64 `json:"override" binding:"omitempty,gt=0"`
}

// CreateMeterRequest represents a request to register a water meter
type CreateMeterRequest struct {
	MeterNumber int     `json:"meter_number" binding:"required,gt=0"`
	LotID       *string `json:"lot_id" binding:"omitempty,uuid"`
}

// RelinkMeterRequest represents a request to move a meter between lots
type RelinkMeterRequest struct {
	LotID *string `json:"lot_id" binding:"omitempty,uuid"`
}

// CreateTenantRequest represents a request to register a tenant
type CreateTenantRequest struct {
	FirstName string `json:"first_name" binding:"required,min=1,max=100"`
	LastName  string `json:"last_name" binding:"required,min=1,max=100"`
}

// LinkTenantRequest represents a request to link a tenant to an account
type LinkTenantRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
}

// CreateProperty registers a property
func (h *RegistryHandler) CreateProperty(c *gin.Context) {
	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	prop, err := h.registryService.CreateProperty(c.Request.Context(), req.Code, req.StreetAddress, req.CityStateZip)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newPropertyResponse(prop))
}

// ListProperties returns all properties
func (h *RegistryHandler) ListProperties(c *gin.Context) {
	properties, err := h.registryService.ListProperties(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]PropertyResponse, 0, len(properties))
	for i := range properties {
		out = append(out, newPropertyResponse(&properties[i]))
	}
	h.Success(c, out)
}

// CreateLot registers a lot under a property
func (h *RegistryHandler) CreateLot(c *gin.Context) {
	var req CreateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lot, err := h.registryService.CreateLot(c.Request.Context(), req.Code, req.PropertyCode, req.StreetAddress, req.CityStateZip)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newLotResponse(lot))
}

// ListLots returns all lots
func (h *RegistryHandler) ListLots(c *gin.Context) {
	lots, err := h.registryService.ListLots(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]LotResponse, 0, len(lots))
	for i := range lots {
		out = append(out, newLotResponse(&lots[i]))
	}
	h.Success(c, out)
}

// SetLotStorage switches storage billing on or off for a lot
func (h *RegistryHandler) SetLotStorage(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID format")
		return
	}

	var req SetLotStorageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lot, err := h.registryService.SetLotStorage(c.Request.Context(), lotID, req.Enabled, floatPtrToDecimal(req.Override))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newLotResponse(lot))
}

// CreateMeter registers a water meter, optionally linked to a lot
func (h *RegistryHandler) CreateMeter(c *gin.Context) {
	var req CreateMeterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lotID, err := parseUUIDPtr(req.LotID)
	if err != nil {
		h.BadRequest(c, "Invalid lot_id")
		return
	}

	meter, err := h.registryService.CreateMeter(c.Request.Context(), req.MeterNumber, lotID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newMeterResponse(meter))
}

// ListMeters returns all water meters
func (h *RegistryHandler) ListMeters(c *gin.Context) {
	meters, err := h.registryService.ListMeters(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]MeterResponse, 0, len(meters))
	for i := range meters {
		out = append(out, newMeterResponse(&meters[i]))
	}
	h.Success(c, out)
}

// RelinkMeter moves a meter to another lot, or detaches it
func (h *RegistryHandler) RelinkMeter(c *gin.Context) {
	meterID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid meter ID format")
		return
	}

	var req RelinkMeterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lotID, err := parseUUIDPtr(req.LotID)
	if err != nil {
		h.BadRequest(c, "Invalid lot_id")
		return
	}

	meter, err := h.registryService.RelinkMeter(c.Request.Context(), meterID, lotID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newMeterResponse(meter))
}

// CreateTenant registers a tenant
func (h *RegistryHandler) CreateTenant(c *gin.Context) {
	var req CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tenant, err := h.registryService.CreateTenant(c.Request.Context(), req.FirstName, req.LastName)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newTenantResponse(tenant))
}

// ListTenants returns all tenants
func (h *RegistryHandler) ListTenants(c *gin.Context) {
	tenants, err := h.registryService.ListTenants(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]TenantResponse, 0, len(tenants))
	for i := range tenants {
		out = append(out, newTenantResponse(&tenants[i]))
	}
	h.Success(c, out)
}

// LinkTenant points a tenant at a billing account
func (h *RegistryHandler) LinkTenant(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	var req LinkTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tenant, err := h.registryService.LinkTenant(c.Request.Context(), tenantID, uuid.MustParse(req.AccountID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newTenantResponse(tenant))
}
