package billing

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/billing"
	"github.com/rentroll/backend/internal/domain/metering"
	"github.com/rentroll/backend/internal/domain/property"
	"github.com/rentroll/backend/internal/domain/shared"
)

// In-memory fakes shared by the service tests in this package.

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

type fakeAccountRepo struct {
	accounts map[uuid.UUID]*property.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]*property.Account)}
}

func (f *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*property.Account, error) {
	if a, ok := f.accounts[id]; ok {
		return a, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeAccountRepo) FindActive(_ context.Context) ([]property.Account, error) {
	out := make([]property.Account, 0)
	for _, a := range f.accounts {
		if a.IsActive() {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeAccountRepo) FindAll(_ context.Context, includeClosed bool) ([]property.Account, error) {
	out := make([]property.Account, 0)
	for _, a := range f.accounts {
		if includeClosed || !a.IsClosed() {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAccountRepo) Save(_ context.Context, account *property.Account) error {
	f.accounts[account.ID] = account
	return nil
}

type fakeLotRepo struct {
	lots map[uuid.UUID]*property.Lot
}

func newFakeLotRepo() *fakeLotRepo {
	return &fakeLotRepo{lots: make(map[uuid.UUID]*property.Lot)}
}

func (f *fakeLotRepo) FindByID(_ context.Context, id uuid.UUID) (*property.Lot, error) {
	if l, ok := f.lots[id]; ok {
		return l, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeLotRepo) FindByCode(_ context.Context, code string) (*property.Lot, error) {
	for _, l := range f.lots {
		if l.Code == code {
			return l, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeLotRepo) FindAll(_ context.Context) ([]property.Lot, error) {
	out := make([]property.Lot, 0, len(f.lots))
	for _, l := range f.lots {
		out = append(out, *l)
	}
	return out, nil
}

func (f *fakeLotRepo) Save(_ context.Context, lot *property.Lot) error {
	f.lots[lot.ID] = lot
	return nil
}

type fakeMeterRepo struct {
	meters map[uuid.UUID]*property.WaterMeter
}

func newFakeMeterRepo() *fakeMeterRepo {
	return &fakeMeterRepo{meters: make(map[uuid.UUID]*property.WaterMeter)}
}

func (f *fakeMeterRepo) FindByID(_ context.Context, id uuid.UUID) (*property.WaterMeter, error) {
	if m, ok := f.meters[id]; ok {
		return m, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeMeterRepo) FindByMeterNumber(_ context.Context, meterNumber int) (*property.WaterMeter, error) {
	for _, m := range f.meters {
		if m.MeterNumber == meterNumber {
			return m, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeMeterRepo) FindByLotID(_ context.Context, lotID uuid.UUID) (*property.WaterMeter, error) {
	for _, m := range f.meters {
		if m.LotID != nil && *m.LotID == lotID {
			return m, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeMeterRepo) FindAll(_ context.Context) ([]property.WaterMeter, error) {
	out := make([]property.WaterMeter, 0, len(f.meters))
	for _, m := range f.meters {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeMeterRepo) Save(_ context.Context, meter *property.WaterMeter) error {
	f.meters[meter.ID] = meter
	return nil
}

type fakeReadingRepo struct {
	readings map[uuid.UUID]*metering.MeterReading
}

func newFakeReadingRepo() *fakeReadingRepo {
	return &fakeReadingRepo{readings: make(map[uuid.UUID]*metering.MeterReading)}
}

func (f *fakeReadingRepo) FindByID(_ context.Context, id uuid.UUID) (*metering.MeterReading, error) {
	if r, ok := f.readings[id]; ok {
		return r, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeReadingRepo) FindByMeterAndStatementDate(_ context.Context, meterID uuid.UUID, statementDate time.Time) (*metering.MeterReading, error) {
	for _, r := range f.readings {
		if r.MeterID == meterID && r.CoversMonth(statementDate) {
			return r, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeReadingRepo) FindLatestByMeter(_ context.Context, meterID uuid.UUID) (*metering.MeterReading, error) {
	var latest *metering.MeterReading
	for _, r := range f.readings {
		if r.MeterID != meterID {
			continue
		}
		if latest == nil || r.CurrentDate.After(latest.CurrentDate) {
			latest = r
		}
	}
	if latest == nil {
		return nil, shared.ErrNotFound
	}
	return latest, nil
}

func (f *fakeReadingRepo) FindByStatementDate(_ context.Context, statementDate time.Time) ([]metering.MeterReading, error) {
	out := make([]metering.MeterReading, 0)
	for _, r := range f.readings {
		if r.CoversMonth(statementDate) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReadingRepo) Save(_ context.Context, reading *metering.MeterReading) error {
	for _, r := range f.readings {
		if r.MeterID == reading.MeterID && r.CoversMonth(reading.StatementDate) && r.ID != reading.ID {
			return shared.ErrAlreadyExists
		}
	}
	f.readings[reading.ID] = reading
	return nil
}

type fakeReceivableRepo struct {
	receivables map[uuid.UUID]*billing.Receivable
}

func newFakeReceivableRepo() *fakeReceivableRepo {
	return &fakeReceivableRepo{receivables: make(map[uuid.UUID]*billing.Receivable)}
}

func (f *fakeReceivableRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Receivable, error) {
	if r, ok := f.receivables[id]; ok {
		return r, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeReceivableRepo) FindByAccount(_ context.Context, accountID uuid.UUID) ([]*billing.Receivable, error) {
	out := make([]*billing.Receivable, 0)
	for _, r := range f.receivables {
		if r.AccountID == accountID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReceivableRepo) FindOpenByAccount(_ context.Context, accountID uuid.UUID) ([]*billing.Receivable, error) {
	out := make([]*billing.Receivable, 0)
	for _, r := range f.receivables {
		if r.AccountID == accountID && !r.IsPaid() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReceivableRepo) FindOpen(_ context.Context) ([]*billing.Receivable, error) {
	out := make([]*billing.Receivable, 0)
	for _, r := range f.receivables {
		if !r.IsPaid() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReceivableRepo) FindByAccountStatementCategory(_ context.Context, accountID uuid.UUID, statementDate time.Time, category billing.ChargeCategory) (*billing.Receivable, error) {
	for _, r := range f.receivables {
		if r.AccountID == accountID && sameDay(r.StatementDate, statementDate) && r.Category == category {
			return r, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeReceivableRepo) FindByAccountAndStatementDate(_ context.Context, accountID uuid.UUID, statementDate time.Time) ([]*billing.Receivable, error) {
	out := make([]*billing.Receivable, 0)
	for _, r := range f.receivables {
		if r.AccountID == accountID && sameDay(r.StatementDate, statementDate) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReceivableRepo) FindByCategory(_ context.Context, category billing.ChargeCategory) ([]*billing.Receivable, error) {
	out := make([]*billing.Receivable, 0)
	for _, r := range f.receivables {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReceivableRepo) Save(_ context.Context, receivable *billing.Receivable) error {
	if receivable.Category.IsRecurring() {
		for _, r := range f.receivables {
			if r.ID != receivable.ID && r.AccountID == receivable.AccountID &&
				sameDay(r.StatementDate, receivable.StatementDate) && r.Category == receivable.Category {
				return shared.ErrAlreadyExists
			}
		}
	}
	f.receivables[receivable.ID] = receivable
	return nil
}

type fakePaymentRepo struct {
	payments map[uuid.UUID]*billing.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*billing.Payment)}
}

func (f *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Payment, error) {
	if p, ok := f.payments[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakePaymentRepo) FindByAccount(_ context.Context, accountID uuid.UUID) ([]*billing.Payment, error) {
	out := make([]*billing.Payment, 0)
	for _, p := range f.payments {
		if p.AccountID == accountID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) FindAvailableByAccount(_ context.Context, accountID uuid.UUID) ([]*billing.Payment, error) {
	out := make([]*billing.Payment, 0)
	for _, p := range f.payments {
		if p.AccountID == accountID && p.Available().IsPositive() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedDate.Before(out[j].ReceivedDate) })
	return out, nil
}

func (f *fakePaymentRepo) FindReceivedSince(_ context.Context, since time.Time) ([]*billing.Payment, error) {
	out := make([]*billing.Payment, 0)
	for _, p := range f.payments {
		if !p.ReceivedDate.Before(since) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedDate.After(out[j].ReceivedDate) })
	return out, nil
}

func (f *fakePaymentRepo) FindByAccountReceivedOnOrBefore(_ context.Context, accountID uuid.UUID, asOf time.Time) ([]*billing.Payment, error) {
	out := make([]*billing.Payment, 0)
	for _, p := range f.payments {
		if p.AccountID == accountID && !p.ReceivedDate.After(asOf) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) Save(_ context.Context, payment *billing.Payment) error {
	f.payments[payment.ID] = payment
	return nil
}

func (f *fakePaymentRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.payments[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.payments, id)
	return nil
}

type fakeAllocationRepo struct {
	allocations map[uuid.UUID]*billing.Allocation
}

func newFakeAllocationRepo() *fakeAllocationRepo {
	return &fakeAllocationRepo{allocations: make(map[uuid.UUID]*billing.Allocation)}
}

func (f *fakeAllocationRepo) FindByPayment(_ context.Context, paymentID uuid.UUID) ([]*billing.Allocation, error) {
	out := make([]*billing.Allocation, 0)
	for _, a := range f.allocations {
		if a.PaymentID == paymentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAllocationRepo) FindByReceivable(_ context.Context, receivableID uuid.UUID) ([]*billing.Allocation, error) {
	out := make([]*billing.Allocation, 0)
	for _, a := range f.allocations {
		if a.ReceivableID == receivableID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAllocationRepo) FindByReceivables(ctx context.Context, receivableIDs []uuid.UUID) ([]*billing.Allocation, error) {
	out := make([]*billing.Allocation, 0)
	for _, id := range receivableIDs {
		found, _ := f.FindByReceivable(ctx, id)
		out = append(out, found...)
	}
	return out, nil
}

func (f *fakeAllocationRepo) Save(_ context.Context, allocation *billing.Allocation) error {
	f.allocations[allocation.ID] = allocation
	return nil
}

func (f *fakeAllocationRepo) DeleteByPayment(_ context.Context, paymentID uuid.UUID) error {
	for id, a := range f.allocations {
		if a.PaymentID == paymentID {
			delete(f.allocations, id)
		}
	}
	return nil
}

type fakeSettingRepo struct {
	settings map[uuid.UUID]*billing.InvoiceSetting
}

func newFakeSettingRepo() *fakeSettingRepo {
	return &fakeSettingRepo{settings: make(map[uuid.UUID]*billing.InvoiceSetting)}
}

func (f *fakeSettingRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.InvoiceSetting, error) {
	if s, ok := f.settings[id]; ok {
		return s, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeSettingRepo) FindAll(_ context.Context) ([]*billing.InvoiceSetting, error) {
	out := make([]*billing.InvoiceSetting, 0, len(f.settings))
	for _, s := range f.settings {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EffectiveAsOf.After(out[j].EffectiveAsOf) })
	return out, nil
}

func (f *fakeSettingRepo) FindEffective(_ context.Context, statementDate time.Time) (*billing.InvoiceSetting, error) {
	all := make([]*billing.InvoiceSetting, 0, len(f.settings))
	for _, s := range f.settings {
		all = append(all, s)
	}
	return billing.ResolveSetting(all, statementDate)
}

func (f *fakeSettingRepo) Save(_ context.Context, setting *billing.InvoiceSetting) error {
	f.settings[setting.ID] = setting
	return nil
}

// fakeUnitOfWork runs the callback against the same fakes without any
// transactional behavior
type fakeUnitOfWork struct {
	receivables *fakeReceivableRepo
	payments    *fakePaymentRepo
	allocations *fakeAllocationRepo
}

func (f *fakeUnitOfWork) Execute(_ context.Context, fn func(repos billing.UnitOfWorkRepos) error) error {
	return fn(f)
}

func (f *fakeUnitOfWork) Receivables() billing.ReceivableRepository { return f.receivables }
func (f *fakeUnitOfWork) Payments() billing.PaymentRepository       { return f.payments }
func (f *fakeUnitOfWork) Allocations() billing.AllocationRepository { return f.allocations }

// fakeConfirmationStore keeps override tokens in a map
type fakeConfirmationStore struct {
	tokens map[string]billing.OverrideToken
}

func newFakeConfirmationStore() *fakeConfirmationStore {
	return &fakeConfirmationStore{tokens: make(map[string]billing.OverrideToken)}
}

func (f *fakeConfirmationStore) Put(_ context.Context, token billing.OverrideToken) error {
	f.tokens[token.Token] = token
	return nil
}

func (f *fakeConfirmationStore) Take(_ context.Context, token string) (*billing.OverrideToken, error) {
	t, ok := f.tokens[token]
	if !ok {
		return nil, shared.ErrNotFound
	}
	delete(f.tokens, token)
	return &t, nil
}
