package billing

import (
	"sort"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PlannedAllocation is one payment-to-receivable application the
// planner proposes
type PlannedAllocation struct {
	PaymentID    uuid.UUID       `json:"payment_id"`
	ReceivableID uuid.UUID       `json:"receivable_id"`
	Category     ChargeCategory  `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
}

// AllocationPlan is the result of planning one account's allocation run
type AllocationPlan struct {
	AccountID                uuid.UUID           `json:"account_id"`
	Entries                  []PlannedAllocation `json:"entries"`
	TotalAllocated           decimal.Decimal     `json:"total_allocated"`
	RemainingCredit          decimal.Decimal     `json:"remaining_credit"`
	FullyPaidReceivables     []uuid.UUID         `json:"fully_paid_receivables"`
	PartiallyPaidReceivables []uuid.UUID         `json:"partially_paid_receivables"`
}

// HasAllocations reports whether the plan proposes any applications
func (p *AllocationPlan) HasAllocations() bool {
	return len(p.Entries) > 0
}

// AllocationPlanner matches an account's pooled payments against its
// open receivables. Charges settle oldest statement date first, and
// within a statement date in category priority order. Payments are
// drawn oldest received first so every allocation row traces to a
// concrete payment. Partial settlement is allowed on both sides.
type AllocationPlanner struct{}

// NewAllocationPlanner creates a new allocation planner
func NewAllocationPlanner() *AllocationPlanner {
	return &AllocationPlanner{}
}

// Plan computes the allocations for one account without mutating the
// inputs. All receivables and payments must belong to the account.
func (ap *AllocationPlanner) Plan(accountID uuid.UUID, receivables []*Receivable, payments []*Payment) (*AllocationPlan, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID is required")
	}
	for _, r := range receivables {
		if r.AccountID != accountID {
			return nil, shared.NewDomainError("ACCOUNT_MISMATCH", "Receivable belongs to a different account")
		}
	}
	for _, p := range payments {
		if p.AccountID != accountID {
			return nil, shared.NewDomainError("ACCOUNT_MISMATCH", "Payment belongs to a different account")
		}
	}

	open := make([]*Receivable, 0, len(receivables))
	for _, r := range receivables {
		if r.Outstanding().IsPositive() {
			open = append(open, r)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		if !open[i].StatementDate.Equal(open[j].StatementDate) {
			return open[i].StatementDate.Before(open[j].StatementDate)
		}
		if open[i].Category.AllocationPriority() != open[j].Category.AllocationPriority() {
			return open[i].Category.AllocationPriority() < open[j].Category.AllocationPriority()
		}
		return open[i].CreatedAt.Before(open[j].CreatedAt)
	})

	funded := make([]*Payment, 0, len(payments))
	for _, p := range payments {
		if p.Available().IsPositive() {
			funded = append(funded, p)
		}
	}
	sort.SliceStable(funded, func(i, j int) bool {
		if !funded[i].ReceivedDate.Equal(funded[j].ReceivedDate) {
			return funded[i].ReceivedDate.Before(funded[j].ReceivedDate)
		}
		return funded[i].CreatedAt.Before(funded[j].CreatedAt)
	})

	plan := &AllocationPlan{
		AccountID:                accountID,
		Entries:                  make([]PlannedAllocation, 0),
		TotalAllocated:           decimal.Zero,
		RemainingCredit:          decimal.Zero,
		FullyPaidReceivables:     make([]uuid.UUID, 0),
		PartiallyPaidReceivables: make([]uuid.UUID, 0),
	}

	// Working copies so planning stays side-effect free
	available := make(map[uuid.UUID]decimal.Decimal, len(funded))
	for _, p := range funded {
		available[p.ID] = p.Available()
	}

	paymentIdx := 0
	for _, r := range open {
		outstanding := r.Outstanding()
		allocatedToThis := decimal.Zero

		for outstanding.IsPositive() && paymentIdx < len(funded) {
			payment := funded[paymentIdx]
			avail := available[payment.ID]
			if !avail.IsPositive() {
				paymentIdx++
				continue
			}

			amount := decimal.Min(outstanding, avail)
			plan.Entries = append(plan.Entries, PlannedAllocation{
				PaymentID:    payment.ID,
				ReceivableID: r.ID,
				Category:     r.Category,
				Amount:       amount,
			})
			plan.TotalAllocated = plan.TotalAllocated.Add(amount)
			available[payment.ID] = avail.Sub(amount)
			outstanding = outstanding.Sub(amount)
			allocatedToThis = allocatedToThis.Add(amount)
		}

		if allocatedToThis.IsPositive() {
			if outstanding.IsZero() {
				plan.FullyPaidReceivables = append(plan.FullyPaidReceivables, r.ID)
			} else {
				plan.PartiallyPaidReceivables = append(plan.PartiallyPaidReceivables, r.ID)
			}
		}
	}

	for _, p := range funded {
		plan.RemainingCredit = plan.RemainingCredit.Add(available[p.ID])
	}

	return plan, nil
}
