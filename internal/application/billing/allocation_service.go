package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/billing"
	"github.com/rentroll/backend/internal/domain/property"
	"github.com/rentroll/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AllocationRunResult reports one account's slice of a batch run
type AllocationRunResult struct {
	AccountID uuid.UUID              `json:"account_id"`
	Plan      *billing.AllocationPlan `json:"plan,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// AllocationRunReport reports a batch allocation run. Accounts fail
// independently; one bad account never rolls back the others.
type AllocationRunReport struct {
	RanAt    time.Time             `json:"ran_at"`
	Accounts []AllocationRunResult `json:"accounts"`
	Failed   int                   `json:"failed"`
}

// AllocationService runs payment allocation. Planning is pure; the
// commit applies one account's plan inside a single transaction.
type AllocationService struct {
	uow         billing.UnitOfWork
	accountRepo property.AccountRepository
	planner     *billing.AllocationPlanner
	eventBus    shared.EventPublisher
	logger      *zap.Logger
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(
	uow billing.UnitOfWork,
	accountRepo property.AccountRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *AllocationService {
	return &AllocationService{
		uow:         uow,
		accountRepo: accountRepo,
		planner:     billing.NewAllocationPlanner(),
		eventBus:    eventBus,
		logger:      logger,
	}
}

// Preview plans an account's allocation without committing anything
func (s *AllocationService) Preview(ctx context.Context, accountID uuid.UUID) (*billing.AllocationPlan, error) {
	var plan *billing.AllocationPlan
	err := s.uow.Execute(ctx, func(repos billing.UnitOfWorkRepos) error {
		var err error
		plan, err = s.plan(ctx, repos, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// RunForAccount plans and commits one account's allocation. The plan
// is computed and applied inside the same transaction so concurrent
// runs cannot double-spend a payment.
func (s *AllocationService) RunForAccount(ctx context.Context, accountID uuid.UUID) (*billing.AllocationPlan, error) {
	if _, err := s.accountRepo.FindByID(ctx, accountID); err != nil {
		return nil, err
	}

	var plan *billing.AllocationPlan
	err := s.uow.Execute(ctx, func(repos billing.UnitOfWorkRepos) error {
		var err error
		plan, err = s.plan(ctx, repos, accountID)
		if err != nil {
			return err
		}
		return s.apply(ctx, repos, plan)
	})
	if err != nil {
		return nil, err
	}

	if s.eventBus != nil && plan.HasAllocations() {
		_ = s.eventBus.Publish(ctx, billing.NewPaymentsAllocatedEvent(plan))
	}

	s.logger.Info("Allocation run committed",
		zap.String("account_id", accountID.String()),
		zap.String("total_allocated", plan.TotalAllocated.StringFixed(2)),
		zap.Int("allocations", len(plan.Entries)))
	return plan, nil
}

// RunAll allocates every active account, each in its own transaction
func (s *AllocationService) RunAll(ctx context.Context) (*AllocationRunReport, error) {
	accounts, err := s.accountRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	report := &AllocationRunReport{
		RanAt:    time.Now(),
		Accounts: make([]AllocationRunResult, 0, len(accounts)),
	}

	for _, account := range accounts {
		result := AllocationRunResult{AccountID: account.ID}
		plan, err := s.RunForAccount(ctx, account.ID)
		if err != nil {
			result.Error = err.Error()
			report.Failed++
			s.logger.Warn("Allocation failed for account",
				zap.String("account_id", account.ID.String()), zap.Error(err))
		} else {
			result.Plan = plan
		}
		report.Accounts = append(report.Accounts, result)
	}

	return report, nil
}

func (s *AllocationService) plan(ctx context.Context, repos billing.UnitOfWorkRepos, accountID uuid.UUID) (*billing.AllocationPlan, error) {
	receivables, err := repos.Receivables().FindOpenByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	payments, err := repos.Payments().FindAvailableByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.planner.Plan(accountID, receivables, payments)
}

func (s *AllocationService) apply(ctx context.Context, repos billing.UnitOfWorkRepos, plan *billing.AllocationPlan) error {
	if !plan.HasAllocations() {
		return nil
	}

	now := time.Now()
	receivables := make(map[uuid.UUID]*billing.Receivable)
	payments := make(map[uuid.UUID]*billing.Payment)

	for _, entry := range plan.Entries {
		receivable, ok := receivables[entry.ReceivableID]
		if !ok {
			var err error
			receivable, err = repos.Receivables().FindByID(ctx, entry.ReceivableID)
			if err != nil {
				return err
			}
			receivables[entry.ReceivableID] = receivable
		}
		payment, ok := payments[entry.PaymentID]
		if !ok {
			var err error
			payment, err = repos.Payments().FindByID(ctx, entry.PaymentID)
			if err != nil {
				return err
			}
			payments[entry.PaymentID] = payment
		}

		if err := receivable.ApplyAllocation(entry.Amount); err != nil {
			return err
		}
		if err := payment.Apply(entry.Amount); err != nil {
			return err
		}

		allocation, err := billing.NewAllocation(entry.PaymentID, entry.ReceivableID, entry.Amount, now)
		if err != nil {
			return err
		}
		if err := repos.Allocations().Save(ctx, allocation); err != nil {
			return err
		}
	}

	for _, receivable := range receivables {
		if err := repos.Receivables().Save(ctx, receivable); err != nil {
			return err
		}
	}
	for _, payment := range payments {
		if err := repos.Payments().Save(ctx, payment); err != nil {
			return err
		}
	}
	return nil
}
