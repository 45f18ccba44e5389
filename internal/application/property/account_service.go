package property

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/property"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OpenAccountInput carries the data needed to open a billing account
type OpenAccountInput struct {
	LotID          uuid.UUID
	TenantID       *uuid.UUID
	BillPreference property.BillPreference
}

// AccountService manages the lifecycle of billing accounts
type AccountService struct {
	accountRepo property.AccountRepository
	lotRepo     property.LotRepository
	tenantRepo  property.TenantRepository
	logger      *zap.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo property.AccountRepository, lotRepo property.LotRepository, tenantRepo property.TenantRepository, logger *zap.Logger) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		lotRepo:     lotRepo,
		tenantRepo:  tenantRepo,
		logger:      logger,
	}
}

// Open creates a billing account on a lot. A lot carries at most one
// active account, so the previous tenancy has to be closed first.
func (s *AccountService) Open(ctx context.Context, input OpenAccountInput) (*property.Account, error) {
	lot, err := s.lotRepo.FindByID(ctx, input.LotID)
	if err != nil {
		return nil, err
	}

	active, err := s.accountRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range active {
		if a.LotID != nil && *a.LotID == lot.ID {
			return nil, shared.NewDomainError("LOT_OCCUPIED", "Lot already has an active account")
		}
	}

	account, err := property.NewAccount(&lot.ID, input.TenantID, input.BillPreference)
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	if input.TenantID != nil {
		tenant, err := s.tenantRepo.FindByID(ctx, *input.TenantID)
		if err != nil {
			return nil, err
		}
		tenant.LinkAccount(account.ID)
		if err := s.tenantRepo.Save(ctx, tenant); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Account opened",
		zap.String("account_id", account.ID.String()),
		zap.String("lot_code", lot.Code))
	return account, nil
}

// Close ends an account. The lot is released for the next tenancy;
// open receivables stay on the ledger for collection.
func (s *AccountService) Close(ctx context.Context, accountID uuid.UUID, at time.Time) (*property.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := account.Close(at); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("Account closed", zap.String("account_id", account.ID.String()))
	return account, nil
}

// SetRentOverride sets or clears a per-account rent amount
func (s *AccountService) SetRentOverride(ctx context.Context, accountID uuid.UUID, rate *decimal.Decimal) (*property.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := account.SetRentalRateOverride(rate); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// SetBillPreference changes how invoices reach the account holder
func (s *AccountService) SetBillPreference(ctx context.Context, accountID uuid.UUID, pref property.BillPreference) (*property.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := account.SetBillPreference(pref); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Get returns one account by ID
func (s *AccountService) Get(ctx context.Context, id uuid.UUID) (*property.Account, error) {
	return s.accountRepo.FindByID(ctx, id)
}

// List returns accounts, optionally including closed ones
func (s *AccountService) List(ctx context.Context, includeClosed bool) ([]property.Account, error) {
	return s.accountRepo.FindAll(ctx, includeClosed)
}
