package property

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BillPreference controls how invoices are delivered to an account holder
type BillPreference string

const (
	BillPreferenceNone    BillPreference = "NO_PREFERENCE"
	BillPreferenceNoPaper BillPreference = "NO_PAPER"
	BillPreferenceNoEmail BillPreference = "NO_EMAIL"
)

// IsValid checks if the bill preference is valid
func (p BillPreference) IsValid() bool {
	switch p {
	case BillPreferenceNone, BillPreferenceNoPaper, BillPreferenceNoEmail:
		return true
	}
	return false
}

// Account is the billing ledger anchor. Receivables, payments and
// invoices all hang off an account. An account is active while it is
// linked to a lot and not closed.
type Account struct {
	shared.BaseAggregateRoot
	LotID              *uuid.UUID
	HolderID           *uuid.UUID
	BillPreference     BillPreference
	RentalRateOverride *decimal.Decimal
	ClosedAt           *time.Time
}

// NewAccount creates a new billing account
func NewAccount(lotID, holderID *uuid.UUID, pref BillPreference) (*Account, error) {
	if pref == "" {
		pref = BillPreferenceNone
	}
	if !pref.IsValid() {
		return nil, shared.NewDomainError("INVALID_BILL_PREFERENCE", "Unknown bill preference: "+string(pref))
	}

	account := &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LotID:             lotID,
		HolderID:          holderID,
		BillPreference:    pref,
	}
	account.AddDomainEvent(NewAccountOpenedEvent(account))
	return account, nil
}

// IsActive reports whether the account participates in billing runs
func (a *Account) IsActive() bool {
	return a.ClosedAt == nil && a.LotID != nil
}

// IsClosed reports whether the account has been closed
func (a *Account) IsClosed() bool {
	return a.ClosedAt != nil
}

// SetRentalRateOverride sets a per-account rent amount that replaces the
// configured monthly rent. Nil reverts to the configured rate.
func (a *Account) SetRentalRateOverride(rate *decimal.Decimal) error {
	if rate != nil && rate.IsNegative() {
		return shared.ErrInvalidAmount
	}
	a.RentalRateOverride = rate
	return nil
}

// SetBillPreference changes the delivery preference
func (a *Account) SetBillPreference(pref BillPreference) error {
	if !pref.IsValid() {
		return shared.NewDomainError("INVALID_BILL_PREFERENCE", "Unknown bill preference: "+string(pref))
	}
	a.BillPreference = pref
	return nil
}

// AssignLot links the account to a lot
func (a *Account) AssignLot(lotID uuid.UUID) error {
	if a.IsClosed() {
		return shared.ErrInvalidState
	}
	a.LotID = &lotID
	return nil
}

// AssignHolder links the account to the tenant who holds it
func (a *Account) AssignHolder(tenantID uuid.UUID) error {
	if a.IsClosed() {
		return shared.ErrInvalidState
	}
	a.HolderID = &tenantID
	return nil
}

// Close ends the account. The lot is released so a new account can take
// it over; history stays attached for reporting.
func (a *Account) Close(at time.Time) error {
	if a.IsClosed() {
		return shared.ErrInvalidState
	}
	a.LotID = nil
	a.ClosedAt = &at
	a.AddDomainEvent(NewAccountClosedEvent(a))
	return nil
}
