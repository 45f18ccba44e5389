package invoicing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/billing"
	"github.com/rentroll/backend/internal/domain/invoicing"
	"github.com/rentroll/backend/internal/domain/property"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReadinessReport says whether a statement month is ready to invoice:
// the billing run has produced charges and no invoices exist yet
type ReadinessReport struct {
	StatementDate    time.Time `json:"statement_date"`
	ActiveAccounts   int       `json:"active_accounts"`
	RentBilled       int       `json:"rent_billed"`
	WaterBilled      int       `json:"water_billed"`
	StorageBilled    int       `json:"storage_billed"`
	LateFeesBilled   int       `json:"late_fees_billed"`
	ExistingInvoices int       `json:"existing_invoices"`
	Ready            bool      `json:"ready"`
}

// GenerateOptions controls an invoice run
type GenerateOptions struct {
	// Persist saves the invoices; false renders a preview only
	Persist bool
	// Regenerate replaces existing invoices instead of failing on them
	Regenerate bool
}

// AccountInvoiceResult reports one account's slice of an invoice run
type AccountInvoiceResult struct {
	AccountID uuid.UUID                 `json:"account_id"`
	InvoiceID *uuid.UUID                `json:"invoice_id,omitempty"`
	AmountDue decimal.Decimal           `json:"amount_due"`
	Document  *invoicing.RenderedInvoice `json:"-"`
	Error     string                    `json:"error,omitempty"`
}

// InvoiceBatchReport reports an invoice run over all active accounts
type InvoiceBatchReport struct {
	StatementDate time.Time              `json:"statement_date"`
	Persisted     bool                   `json:"persisted"`
	Results       []AccountInvoiceResult `json:"results"`
	TotalIssued   int                    `json:"total_issued"`
	TotalFailed   int                    `json:"total_failed"`
}

// InvoiceService assembles invoice documents from the ledger. An
// invoice freezes a snapshot of the cycle's charges and balances, so
// regenerating is an explicit, destructive choice.
type InvoiceService struct {
	invoiceRepo    invoicing.InvoiceRepository
	receivableRepo billing.ReceivableRepository
	paymentRepo    billing.PaymentRepository
	accountRepo    property.AccountRepository
	lotRepo        property.LotRepository
	meterRepo      property.WaterMeterRepository
	tenantRepo     property.TenantRepository
	settingRepo    billing.InvoiceSettingRepository
	renderer       invoicing.Renderer
	logger         *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo invoicing.InvoiceRepository,
	receivableRepo billing.ReceivableRepository,
	paymentRepo billing.PaymentRepository,
	accountRepo property.AccountRepository,
	lotRepo property.LotRepository,
	meterRepo property.WaterMeterRepository,
	tenantRepo property.TenantRepository,
	settingRepo billing.InvoiceSettingRepository,
	renderer invoicing.Renderer,
	logger *zap.Logger,
) *InvoiceService {
	if renderer == nil {
		renderer = invoicing.NopRenderer{}
	}
	return &InvoiceService{
		invoiceRepo:    invoiceRepo,
		receivableRepo: receivableRepo,
		paymentRepo:    paymentRepo,
		accountRepo:    accountRepo,
		lotRepo:        lotRepo,
		meterRepo:      meterRepo,
		tenantRepo:     tenantRepo,
		settingRepo:    settingRepo,
		renderer:       renderer,
		logger:         logger,
	}
}

// CheckReadiness reports whether the ledger has what an invoice run
// for the statement date needs
func (s *InvoiceService) CheckReadiness(ctx context.Context, statementDate time.Time) (*ReadinessReport, error) {
	accounts, err := s.accountRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReadinessReport{
		StatementDate:  statementDate,
		ActiveAccounts: len(accounts),
	}

	for _, account := range accounts {
		receivables, err := s.receivableRepo.FindByAccountAndStatementDate(ctx, account.ID, statementDate)
		if err != nil {
			return nil, err
		}
		for _, r := range receivables {
			switch r.Category {
			case billing.CategoryRent:
				report.RentBilled++
			case billing.CategoryWater:
				report.WaterBilled++
			case billing.CategoryStorage:
				report.StorageBilled++
			case billing.CategoryLateFee:
				report.LateFeesBilled++
			}
		}

		if _, err := s.invoiceRepo.FindByAccountAndStatementDate(ctx, account.ID, statementDate); err == nil {
			report.ExistingInvoices++
		} else if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	report.Ready = report.ActiveAccounts > 0 &&
		report.RentBilled == report.ActiveAccounts &&
		report.ExistingInvoices == 0
	return report, nil
}

// Generate assembles invoices for every active account. With
// opts.Persist false nothing is stored; with opts.Regenerate false an
// account that already has an invoice for the cycle fails with
// DUPLICATE_INVOICE while the rest proceed.
func (s *InvoiceService) Generate(ctx context.Context, statementDate time.Time, opts GenerateOptions) (*InvoiceBatchReport, error) {
	setting, err := s.settingRepo.FindEffective(ctx, statementDate)
	if err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	report := &InvoiceBatchReport{
		StatementDate: statementDate,
		Persisted:     opts.Persist,
		Results:       make([]AccountInvoiceResult, 0, len(accounts)),
	}

	invoiceDate := time.Now().UTC().Truncate(24 * time.Hour)
	for i := range accounts {
		result := s.generateOne(ctx, &accounts[i], setting, statementDate, invoiceDate, opts)
		if result.Error != "" {
			report.TotalFailed++
		} else {
			report.TotalIssued++
		}
		report.Results = append(report.Results, result)
	}

	s.logger.Info("Invoice run finished",
		zap.Time("statement_date", statementDate),
		zap.Bool("persisted", opts.Persist),
		zap.Int("issued", report.TotalIssued),
		zap.Int("failed", report.TotalFailed))
	return report, nil
}

// Get returns one invoice by ID
func (s *InvoiceService) Get(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, id)
}

// ListByStatementDate returns the invoices issued for a cycle
func (s *InvoiceService) ListByStatementDate(ctx context.Context, statementDate time.Time) ([]*invoicing.Invoice, error) {
	return s.invoiceRepo.FindByStatementDate(ctx, statementDate)
}

// MarkDelivered records when an invoice went out
func (s *InvoiceService) MarkDelivered(ctx context.Context, invoiceID uuid.UUID, on time.Time) error {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if err := invoice.MarkDelivered(on); err != nil {
		return err
	}
	return s.invoiceRepo.Save(ctx, invoice)
}

func (s *InvoiceService) generateOne(ctx context.Context, account *property.Account, setting *billing.InvoiceSetting, statementDate, invoiceDate time.Time, opts GenerateOptions) AccountInvoiceResult {
	result := AccountInvoiceResult{AccountID: account.ID, AmountDue: decimal.Zero}

	existing, err := s.invoiceRepo.FindByAccountAndStatementDate(ctx, account.ID, statementDate)
	var replaced *invoicing.Invoice
	switch {
	case err == nil && !opts.Regenerate:
		result.Error = shared.ErrDuplicateInvoice.Code
		return result
	case err == nil && opts.Regenerate:
		// A delivered invoice is part of the record; it cannot be replaced
		if existing.IsDelivered() {
			result.Error = shared.ErrInvalidState.Code
			return result
		}
		replaced = existing
	case err != nil && !errors.Is(err, shared.ErrNotFound):
		result.Error = err.Error()
		return result
	}

	snapshot, err := s.buildSnapshot(ctx, account, setting, statementDate)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	// A metered lot must have its water usage billed before invoicing
	if account.LotID != nil && !snapshot.HasCategory(billing.CategoryWater) {
		if _, err := s.meterRepo.FindByLotID(ctx, *account.LotID); err == nil {
			result.Error = shared.ErrMissingMeterReading.Code
			return result
		} else if !errors.Is(err, shared.ErrNotFound) {
			result.Error = err.Error()
			return result
		}
	}

	invoice, err := invoicing.NewInvoice(account.ID, setting.ID, statementDate, invoiceDate, *snapshot)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	document, err := s.renderer.Render(ctx, invoice)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Document = document

	if opts.Persist {
		// The stored invoice is removed only after the replacement has
		// been fully built and rendered, so a failed run keeps the old copy
		if replaced != nil {
			if err := s.invoiceRepo.Delete(ctx, replaced.ID); err != nil {
				result.Error = err.Error()
				return result
			}
		}
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			if replaced != nil {
				if restoreErr := s.invoiceRepo.Save(ctx, replaced); restoreErr != nil {
					s.logger.Error("Failed to restore invoice after replace",
						zap.String("invoice_id", replaced.ID.String()),
						zap.Error(restoreErr))
				}
			}
			if errors.Is(err, shared.ErrAlreadyExists) {
				result.Error = shared.ErrDuplicateInvoice.Code
			} else {
				result.Error = err.Error()
			}
			return result
		}
	}

	result.InvoiceID = &invoice.ID
	result.AmountDue = invoice.AmountDue
	return result
}

// buildSnapshot freezes the account's cycle: current charges, the
// previous cycle's billed and paid totals, and any older balance
// carried forward.
func (s *InvoiceService) buildSnapshot(ctx context.Context, account *property.Account, setting *billing.InvoiceSetting, statementDate time.Time) (*invoicing.InvoiceSnapshot, error) {
	snapshot := &invoicing.InvoiceSnapshot{
		BusinessName:    setting.BusinessName,
		BusinessAddress: setting.BusinessAddress,
		DueDate:         setting.DueDate(statementDate),
		OverdueDate:     setting.OverdueDate(statementDate),
	}

	if account.LotID != nil {
		lot, err := s.lotRepo.FindByID(ctx, *account.LotID)
		if err != nil {
			return nil, err
		}
		snapshot.LotCode = lot.Code
		snapshot.LotAddress = lot.StreetAddress
	}

	if tenant, err := s.tenantRepo.FindByAccountID(ctx, account.ID); err == nil {
		snapshot.TenantName = tenant.FullName()
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	current, err := s.receivableRepo.FindByAccountAndStatementDate(ctx, account.ID, statementDate)
	if err != nil {
		return nil, err
	}
	snapshot.Lines = make([]invoicing.InvoiceLine, 0, len(current))
	snapshot.CurrentCharges = decimal.Zero
	for _, r := range current {
		snapshot.Lines = append(snapshot.Lines, invoicing.InvoiceLine{
			Category:    r.Category,
			Description: r.Description,
			Amount:      r.Amount,
		})
		snapshot.CurrentCharges = snapshot.CurrentCharges.Add(r.Amount)
	}

	prior := statementDate.AddDate(0, -1, 0)
	priorReceivables, err := s.receivableRepo.FindByAccountAndStatementDate(ctx, account.ID, prior)
	if err != nil {
		return nil, err
	}
	snapshot.PreviousBilled = decimal.Zero
	for _, r := range priorReceivables {
		snapshot.PreviousBilled = snapshot.PreviousBilled.Add(r.Amount)
	}

	paidInWindow, err := s.paymentRepo.FindByAccountReceivedOnOrBefore(ctx, account.ID, statementDate.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}
	snapshot.PreviousPaid = decimal.Zero
	for _, p := range paidInWindow {
		if !p.ReceivedDate.Before(prior) {
			snapshot.PreviousPaid = snapshot.PreviousPaid.Add(p.Amount)
		}
	}

	// Everything still open from cycles before this one carries forward
	allReceivables, err := s.receivableRepo.FindByAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	snapshot.PreviousBalance = decimal.Zero
	for _, r := range allReceivables {
		if r.StatementDate.Before(statementDate) {
			snapshot.PreviousBalance = snapshot.PreviousBalance.Add(r.Outstanding())
		}
	}

	snapshot.TotalDue = snapshot.CurrentCharges.Add(snapshot.PreviousBalance)
	return snapshot, nil
}
