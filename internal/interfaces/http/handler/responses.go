package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/billing"
	"github.com/rentroll/backend/internal/domain/invoicing"
	"github.com/rentroll/backend/internal/domain/metering"
	"github.com/rentroll/backend/internal/domain/property"
	"github.com/shopspring/decimal"
)

// DuplicateResponse accompanies a 409 from the duplicate guard. The
// caller re-submits the same request with the token to commit anyway.
type DuplicateResponse struct {
	OverrideToken string    `json:"override_token"`
	ExpiresAt     time.Time `json:"expires_at"`
	Matches       int       `json:"matches"`
}

// SettingResponse represents one billing configuration version
type SettingResponse struct {
	ID                 uuid.UUID       `json:"id"`
	EffectiveAsOf      time.Time       `json:"effective_as_of"`
	RentMonthlyRate    decimal.Decimal `json:"rent_monthly_rate"`
	WaterMonthlyRate   decimal.Decimal `json:"water_monthly_rate"`
	WaterServiceFee    decimal.Decimal `json:"water_service_fee"`
	StorageMonthlyRate decimal.Decimal `json:"storage_monthly_rate"`
	LateFeeRate        decimal.Decimal `json:"late_fee_rate"`
	GraceDays          int             `json:"grace_days"`
	DueDay             int             `json:"due_day"`
	BusinessName       string          `json:"business_name,omitempty"`
	BusinessAddress    string          `json:"business_address,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

func newSettingResponse(s *billing.InvoiceSetting) SettingResponse {
	return SettingResponse{
		ID:                 s.ID,
		EffectiveAsOf:      s.EffectiveAsOf,
		RentMonthlyRate:    s.RentMonthlyRate,
		WaterMonthlyRate:   s.WaterMonthlyRate,
		WaterServiceFee:    s.WaterServiceFee,
		StorageMonthlyRate: s.StorageMonthlyRate,
		LateFeeRate:        s.LateFeeRate,
		GraceDays:          s.GraceDays,
		DueDay:             s.DueDay,
		BusinessName:       s.BusinessName,
		BusinessAddress:    s.BusinessAddress,
		CreatedAt:          s.CreatedAt,
	}
}

func newSettingResponses(settings []*billing.InvoiceSetting) []SettingResponse {
	out := make([]SettingResponse, 0, len(settings))
	for _, s := range settings {
		out = append(out, newSettingResponse(s))
	}
	return out
}

// PaymentResponse represents one payment in the ledger
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Amount        decimal.Decimal `json:"amount"`
	AppliedAmount decimal.Decimal `json:"applied_amount"`
	Available     decimal.Decimal `json:"available"`
	Payer         string          `json:"payer,omitempty"`
	PaymentDated  time.Time       `json:"payment_dated"`
	ReceivedDate  time.Time       `json:"received_date"`
	CreatedAt     time.Time       `json:"created_at"`
}

func newPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		AccountID:     p.AccountID,
		Amount:        p.Amount,
		AppliedAmount: p.AppliedAmount,
		Available:     p.Available(),
		Payer:         p.Payer,
		PaymentDated:  p.PaymentDated,
		ReceivedDate:  p.ReceivedDate,
		CreatedAt:     p.CreatedAt,
	}
}

func newPaymentResponses(payments []*billing.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, newPaymentResponse(p))
	}
	return out
}

// ChargeResponse represents one receivable on an account
type ChargeResponse struct {
	ID              uuid.UUID              `json:"id"`
	AccountID       uuid.UUID              `json:"account_id"`
	StatementDate   time.Time              `json:"statement_date"`
	Category        billing.ChargeCategory `json:"category"`
	Amount          decimal.Decimal        `json:"amount"`
	AllocatedAmount decimal.Decimal        `json:"allocated_amount"`
	Outstanding     decimal.Decimal        `json:"outstanding"`
	Paid            bool                   `json:"paid"`
	Description     string                 `json:"description,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

func newChargeResponse(r *billing.Receivable) ChargeResponse {
	return ChargeResponse{
		ID:              r.ID,
		AccountID:       r.AccountID,
		StatementDate:   r.StatementDate,
		Category:        r.Category,
		Amount:          r.Amount,
		AllocatedAmount: r.AllocatedAmount,
		Outstanding:     r.Outstanding(),
		Paid:            r.IsPaid(),
		Description:     r.Description,
		CreatedAt:       r.CreatedAt,
	}
}

func newChargeResponses(receivables []*billing.Receivable) []ChargeResponse {
	out := make([]ChargeResponse, 0, len(receivables))
	for _, r := range receivables {
		out = append(out, newChargeResponse(r))
	}
	return out
}

// InvoiceResponse represents one issued invoice
type InvoiceResponse struct {
	ID            uuid.UUID                 `json:"id"`
	AccountID     uuid.UUID                 `json:"account_id"`
	StatementDate time.Time                 `json:"statement_date"`
	InvoiceDate   time.Time                 `json:"invoice_date"`
	SettingID     uuid.UUID                 `json:"setting_id"`
	AmountDue     decimal.Decimal           `json:"amount_due"`
	DueDate       time.Time                 `json:"due_date"`
	OverdueDate   time.Time                 `json:"overdue_date"`
	Snapshot      invoicing.InvoiceSnapshot `json:"snapshot"`
	DeliveredOn   *time.Time                `json:"delivered_on,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
}

func newInvoiceResponse(inv *invoicing.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		AccountID:     inv.AccountID,
		StatementDate: inv.StatementDate,
		InvoiceDate:   inv.InvoiceDate,
		SettingID:     inv.SettingID,
		AmountDue:     inv.AmountDue,
		DueDate:       inv.DueDate,
		OverdueDate:   inv.OverdueDate,
		Snapshot:      inv.Snapshot,
		DeliveredOn:   inv.DeliveredOn,
		CreatedAt:     inv.CreatedAt,
	}
}

func newInvoiceResponses(invoices []*invoicing.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, newInvoiceResponse(inv))
	}
	return out
}

// ReadingResponse represents one stored meter reading
type ReadingResponse struct {
	ID              uuid.UUID `json:"id"`
	MeterID         uuid.UUID `json:"meter_id"`
	PreviousDate    time.Time `json:"previous_date"`
	CurrentDate     time.Time `json:"current_date"`
	PreviousReading int       `json:"previous_reading"`
	CurrentReading  int       `json:"current_reading"`
	Usage           int       `json:"usage"`
	StatementDate   time.Time `json:"statement_date"`
}

func newReadingResponse(r *metering.MeterReading) ReadingResponse {
	return ReadingResponse{
		ID:              r.ID,
		MeterID:         r.MeterID,
		PreviousDate:    r.PreviousDate,
		CurrentDate:     r.CurrentDate,
		PreviousReading: r.PreviousReading,
		CurrentReading:  r.CurrentReading,
		Usage:           r.Usage(),
		StatementDate:   r.StatementDate,
	}
}

// AccountResponse represents one billing account
type AccountResponse struct {
	ID                 uuid.UUID               `json:"id"`
	LotID              *uuid.UUID              `json:"lot_id,omitempty"`
	HolderID           *uuid.UUID              `json:"holder_id,omitempty"`
	BillPreference     property.BillPreference `json:"bill_preference"`
	RentalRateOverride *decimal.Decimal        `json:"rental_rate_override,omitempty"`
	ClosedAt           *time.Time              `json:"closed_at,omitempty"`
	CreatedAt          time.Time               `json:"created_at"`
}

func newAccountResponse(a *property.Account) AccountResponse {
	return AccountResponse{
		ID:                 a.ID,
		LotID:              a.LotID,
		HolderID:           a.HolderID,
		BillPreference:     a.BillPreference,
		RentalRateOverride: a.RentalRateOverride,
		ClosedAt:           a.ClosedAt,
		CreatedAt:          a.CreatedAt,
	}
}

// PropertyResponse represents one property
type PropertyResponse struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	StreetAddress string    `json:"street_address,omitempty"`
	CityStateZip  string    `json:"city_state_zip,omitempty"`
}

func newPropertyResponse(p *property.Property) PropertyResponse {
	return PropertyResponse{
		ID:            p.ID,
		Code:          p.Code,
		StreetAddress: p.StreetAddress,
		CityStateZip:  p.CityStateZip,
	}
}

// LotResponse represents one lot
type LotResponse struct {
	ID              uuid.UUID        `json:"id"`
	Code            string           `json:"code"`
	PropertyCode    string           `json:"property_code"`
	StreetAddress   string           `json:"street_address,omitempty"`
	CityStateZip    string           `json:"city_state_zip,omitempty"`
	HasStorage      bool             `json:"has_storage"`
	StorageOverride *decimal.Decimal `json:"storage_override,omitempty"`
}

func newLotResponse(l *property.Lot) LotResponse {
	return LotResponse{
		ID:              l.ID,
		Code:            l.Code,
		PropertyCode:    l.PropertyCode,
		StreetAddress:   l.StreetAddress,
		CityStateZip:    l.CityStateZip,
		HasStorage:      l.HasStorage,
		StorageOverride: l.StorageOverride,
	}
}

// MeterResponse represents one water meter
type MeterResponse struct {
	ID          uuid.UUID  `json:"id"`
	MeterNumber int        `json:"meter_number"`
	LotID       *uuid.UUID `json:"lot_id,omitempty"`
}

func newMeterResponse(m *property.WaterMeter) MeterResponse {
	return MeterResponse{
		ID:          m.ID,
		MeterNumber: m.MeterNumber,
		LotID:       m.LotID,
	}
}

// TenantResponse represents one tenant
type TenantResponse struct {
	ID        uuid.UUID  `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	FullName  string     `json:"full_name"`
	AccountID *uuid.UUID `json:"account_id,omitempty"`
}

func newTenantResponse(t *property.Tenant) TenantResponse {
	return TenantResponse{
		ID:        t.ID,
		FirstName: t.FirstName,
		LastName:  t.LastName,
		FullName:  t.FullName(),
		AccountID: t.AccountID,
	}
}
