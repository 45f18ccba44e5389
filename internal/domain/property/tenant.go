package property

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/shared"
)

// Tenant represents a person renting a lot. A tenant may be linked to
// the account that bills them; unlinked tenants are prospective or past
// occupants kept for record keeping.
type Tenant struct {
	shared.BaseAggregateRoot
	FirstName string
	LastName  string
	AccountID *uuid.UUID
}

// NewTenant creates a new tenant
func NewTenant(firstName, lastName string) (*Tenant, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Tenant first and last name are required")
	}

	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FirstName:         firstName,
		LastName:          lastName,
	}, nil
}

// FullName returns the tenant's display name
func (t *Tenant) FullName() string {
	return t.FirstName + " " + t.LastName
}

// LinkAccount associates the tenant with a billing account
func (t *Tenant) LinkAccount(accountID uuid.UUID) {
	t.AccountID = &accountID
}

// UnlinkAccount removes the association with a billing account
func (t *Tenant) UnlinkAccount() {
	t.AccountID = nil
}
