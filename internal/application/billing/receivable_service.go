package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/billing"
	"github.com/rentroll/backend/internal/domain/property"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateChargeInput carries a one-off charge entered by hand
type CreateChargeInput struct {
	AccountID     uuid.UUID
	StatementDate time.Time
	Category      billing.ChargeCategory
	Amount        decimal.Decimal
	Description   string
	// OverrideToken commits a submission the duplicate guard flagged
	OverrideToken string
}

// ReceivableService manages charges outside the monthly billing run
type ReceivableService struct {
	receivableRepo billing.ReceivableRepository
	accountRepo    property.AccountRepository
	confirmations  ConfirmationStore
	guard          *billing.DuplicateGuard[*billing.Receivable]
	logger         *zap.Logger
}

// NewReceivableService creates a new ReceivableService
func NewReceivableService(
	receivableRepo billing.ReceivableRepository,
	accountRepo property.AccountRepository,
	confirmations ConfirmationStore,
	logger *zap.Logger,
) *ReceivableService {
	return &ReceivableService{
		receivableRepo: receivableRepo,
		accountRepo:    accountRepo,
		confirmations:  confirmations,
		guard:          billing.NewDuplicateGuard(billing.ReceivableDuplicateKey),
		logger:         logger,
	}
}

// Create enters a one-off charge. A charge matching an existing one on
// account, statement date, category and amount trips the duplicate
// guard unless the input carries a valid override token.
func (s *ReceivableService) Create(ctx context.Context, input CreateChargeInput) (*billing.Receivable, error) {
	if _, err := s.accountRepo.FindByID(ctx, input.AccountID); err != nil {
		return nil, err
	}

	receivable, err := billing.NewReceivable(input.AccountID, input.StatementDate, input.Category, input.Amount, input.Description)
	if err != nil {
		return nil, err
	}

	if err := s.checkDuplicate(ctx, receivable, input.OverrideToken); err != nil {
		return nil, err
	}

	if err := s.receivableRepo.Save(ctx, receivable); err != nil {
		return nil, err
	}

	s.logger.Info("Charge created",
		zap.String("receivable_id", receivable.ID.String()),
		zap.String("account_id", receivable.AccountID.String()),
		zap.String("category", string(receivable.Category)),
		zap.String("amount", receivable.Amount.StringFixed(2)))
	return receivable, nil
}

// ListUnpaid returns every open charge across all accounts
func (s *ReceivableService) ListUnpaid(ctx context.Context) ([]*billing.Receivable, error) {
	return s.receivableRepo.FindOpen(ctx)
}

// ListByCategory returns all charges of one category
func (s *ReceivableService) ListByCategory(ctx context.Context, category billing.ChargeCategory) ([]*billing.Receivable, error) {
	return s.receivableRepo.FindByCategory(ctx, category)
}

// ListByAccount returns an account's charges
func (s *ReceivableService) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*billing.Receivable, error) {
	return s.receivableRepo.FindByAccount(ctx, accountID)
}

func (s *ReceivableService) checkDuplicate(ctx context.Context, candidate *billing.Receivable, overrideToken string) error {
	key := billing.ReceivableDuplicateKey(candidate)

	if overrideToken != "" {
		token, err := s.confirmations.Take(ctx, overrideToken)
		if err == nil && token.Key == key && !token.IsExpired(time.Now()) {
			return nil
		}
	}

	existing, err := s.receivableRepo.FindByAccount(ctx, candidate.AccountID)
	if err != nil {
		return err
	}
	matches := s.guard.FindMatches(existing, candidate)
	if len(matches) == 0 {
		return nil
	}

	token := billing.NewOverrideToken(key, overrideTokenTTL)
	if err := s.confirmations.Put(ctx, token); err != nil {
		return err
	}
	return &DuplicateError{Token: token, Matches: len(matches)}
}
