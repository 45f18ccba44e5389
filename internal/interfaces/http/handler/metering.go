package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appmetering "github.com/rentroll/backend/internal/application/metering"
	csvimport "github.com/rentroll/backend/internal/infrastructure/import"
)

// maxReportErrors caps how many row errors an import response carries
const maxReportErrors = 100

// MeteringHandler handles meter reading endpoints
type MeteringHandler struct {
	BaseHandler
	importService *appmetering.ImportService
}

// NewMeteringHandler creates a new MeteringHandler
func NewMeteringHandler(importService *appmetering.ImportService) *MeteringHandler {
	return &MeteringHandler{importService: importService}
}

// RecordReadingRequest represents a single reading entered by hand
type RecordReadingRequest struct {
	MeterNumber     int    `json:"meter_number" binding:"required,gt=0"`
	PreviousDate    string `json:"previous_date" binding:"required"`
	CurrentDate     string `json:"current_date" binding:"required"`
	PreviousReading int    `json:"previous_reading" binding:"gte=0"`
	CurrentReading  int    `json:"current_reading" binding:"gte=0"`
	StatementDate   string `json:"statement_date" binding:"required"`
}

// ImportReportResponse wraps the parse and import outcomes of one file
type ImportReportResponse struct {
	TotalRows   int                       `json:"total_rows"`
	ParseErrors []csvimport.RowError      `json:"parse_errors,omitempty"`
	Report      *appmetering.ImportReport `json:"report"`
}

// Import ingests a utility meter report CSV for one statement month.
// File-level problems fail the request; row-level problems are
// reported per row and never abort the batch.
func (h *MeteringHandler) Import(c *gin.Context) {
	statementDate, err := parseDate(c.PostForm("statement_date"))
	if err != nil {
		h.BadRequest(c, "Invalid or missing statement_date, expected YYYY-MM-DD")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file upload")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Cannot read uploaded file")
		return
	}
	defer file.Close()

	parsed, err := csvimport.ParseMeterReport(file, maxReportErrors)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	report, err := h.importService.Import(c.Request.Context(), statementDate, parsed.Rows)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ImportReportResponse{
		TotalRows:   parsed.TotalRows,
		ParseErrors: parsed.Errors,
		Report:      report,
	})
}

// Record stores one reading entered by hand
func (h *MeteringHandler) Record(c *gin.Context) {
	var req RecordReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	statementDate, err := parseDate(req.StatementDate)
	if err != nil {
		h.BadRequest(c, "Invalid statement_date, expected YYYY-MM-DD")
		return
	}
	previousDate, err := parseDate(req.PreviousDate)
	if err != nil {
		h.BadRequest(c, "Invalid previous_date, expected YYYY-MM-DD")
		return
	}
	currentDate, err := parseDate(req.CurrentDate)
	if err != nil {
		h.BadRequest(c, "Invalid current_date, expected YYYY-MM-DD")
		return
	}

	reading, err := h.importService.Record(c.Request.Context(), statementDate, appmetering.ImportRow{
		MeterNumber:     req.MeterNumber,
		PreviousDate:    previousDate,
		CurrentDate:     currentDate,
		PreviousReading: req.PreviousReading,
		CurrentReading:  req.CurrentReading,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newReadingResponse(reading))
}

// List returns the readings stored for a statement date
func (h *MeteringHandler) List(c *gin.Context) {
	statementDate, err := parseDate(c.Query("statement_date"))
	if err != nil {
		h.BadRequest(c, "Invalid or missing statement_date, expected YYYY-MM-DD")
		return
	}

	readings, err := h.importService.ListByStatementDate(c.Request.Context(), statementDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]ReadingResponse, 0, len(readings))
	for i := range readings {
		out = append(out, newReadingResponse(&readings[i]))
	}
	h.Success(c, out)
}

// Latest returns a meter's most recent stored reading
func (h *MeteringHandler) Latest(c *gin.Context) {
	meterID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid meter ID format")
		return
	}

	reading, err := h.importService.LatestForMeter(c.Request.Context(), meterID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newReadingResponse(reading))
}
