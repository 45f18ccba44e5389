package property

import (
	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/shared"
)

// Event types for the property context
const (
	EventTypeAccountOpened = "property.account.opened"
	EventTypeAccountClosed = "property.account.closed"
)

// AccountOpenedEvent is raised when a billing account is created
type AccountOpenedEvent struct {
	shared.BaseDomainEvent
	LotID    *uuid.UUID `json:"lot_id,omitempty"`
	HolderID *uuid.UUID `json:"holder_id,omitempty"`
}

// NewAccountOpenedEvent creates a new account opened event
func NewAccountOpenedEvent(account *Account) *AccountOpenedEvent {
	return &AccountOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountOpened, "Account", account.ID),
		LotID:           account.LotID,
		HolderID:        account.HolderID,
	}
}

// AccountClosedEvent is raised when a billing account is closed
type AccountClosedEvent struct {
	shared.BaseDomainEvent
}

// NewAccountClosedEvent creates a new account closed event
func NewAccountClosedEvent(account *Account) *AccountClosedEvent {
	return &AccountClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountClosed, "Account", account.ID),
	}
}
