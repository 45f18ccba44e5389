package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/billing"
	"github.com/rentroll/backend/internal/domain/property"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordPaymentInput carries a payment being entered into the ledger
type RecordPaymentInput struct {
	AccountID    uuid.UUID
	Amount       decimal.Decimal
	Payer        string
	PaymentDated time.Time
	ReceivedDate time.Time
	// OverrideToken commits a submission the duplicate guard flagged
	OverrideToken string
}

// PaymentService manages the payment side of the ledger
type PaymentService struct {
	uow           billing.UnitOfWork
	paymentRepo   billing.PaymentRepository
	accountRepo   property.AccountRepository
	confirmations ConfirmationStore
	guard         *billing.DuplicateGuard[*billing.Payment]
	eventBus      shared.EventPublisher
	logger        *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	uow billing.UnitOfWork,
	paymentRepo billing.PaymentRepository,
	accountRepo property.AccountRepository,
	confirmations ConfirmationStore,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		uow:           uow,
		paymentRepo:   paymentRepo,
		accountRepo:   accountRepo,
		confirmations: confirmations,
		guard:         billing.NewDuplicateGuard(billing.PaymentDuplicateKey),
		eventBus:      eventBus,
		logger:        logger,
	}
}

// Record enters a payment into the account's pool. A payment matching
// an existing one on account, amount and received date trips the
// duplicate guard unless the input carries a valid override token.
func (s *PaymentService) Record(ctx context.Context, input RecordPaymentInput) (*billing.Payment, error) {
	if _, err := s.accountRepo.FindByID(ctx, input.AccountID); err != nil {
		return nil, err
	}

	payment, err := billing.NewPayment(input.AccountID, input.Amount, input.Payer, input.PaymentDated, input.ReceivedDate)
	if err != nil {
		return nil, err
	}

	if err := s.checkDuplicate(ctx, payment, input.OverrideToken); err != nil {
		return nil, err
	}

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, payment)

	s.logger.Info("Payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("account_id", payment.AccountID.String()),
		zap.String("amount", payment.Amount.StringFixed(2)))
	return payment, nil
}

// AvailableBalance returns the money an account had on hand as of a
// date: payments received on or before it, minus what those payments
// have funded so far.
func (s *PaymentService) AvailableBalance(ctx context.Context, accountID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	payments, err := s.paymentRepo.FindByAccountReceivedOnOrBefore(ctx, accountID, asOf)
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, p := range payments {
		balance = balance.Add(p.Available())
	}
	return balance, nil
}

// Recent returns payments received since the given date, newest first
func (s *PaymentService) Recent(ctx context.Context, since time.Time) ([]*billing.Payment, error) {
	return s.paymentRepo.FindReceivedSince(ctx, since)
}

// ListByAccount returns an account's payments
func (s *PaymentService) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*billing.Payment, error) {
	return s.paymentRepo.FindByAccount(ctx, accountID)
}

// Delete removes a payment. Its allocations are reversed first so the
// receivables they covered reopen; everything happens in one
// transaction.
func (s *PaymentService) Delete(ctx context.Context, paymentID uuid.UUID) error {
	var deleted *billing.Payment
	var reversed decimal.Decimal

	err := s.uow.Execute(ctx, func(repos billing.UnitOfWorkRepos) error {
		payment, err := repos.Payments().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}

		allocations, err := repos.Allocations().FindByPayment(ctx, paymentID)
		if err != nil {
			return err
		}

		reversed = decimal.Zero
		for _, alloc := range allocations {
			receivable, err := repos.Receivables().FindByID(ctx, alloc.ReceivableID)
			if err != nil {
				return err
			}
			if err := receivable.ReverseAllocation(alloc.Amount); err != nil {
				return err
			}
			if err := repos.Receivables().Save(ctx, receivable); err != nil {
				return err
			}
			reversed = reversed.Add(alloc.Amount)
		}

		if err := repos.Allocations().DeleteByPayment(ctx, paymentID); err != nil {
			return err
		}
		if err := repos.Payments().Delete(ctx, paymentID); err != nil {
			return err
		}

		deleted = payment
		return nil
	})
	if err != nil {
		return err
	}

	if s.eventBus != nil && deleted != nil {
		_ = s.eventBus.Publish(ctx, billing.NewPaymentDeletedEvent(deleted, reversed))
	}

	s.logger.Info("Payment deleted",
		zap.String("payment_id", paymentID.String()),
		zap.String("reversed", reversed.StringFixed(2)))
	return nil
}

func (s *PaymentService) checkDuplicate(ctx context.Context, candidate *billing.Payment, overrideToken string) error {
	key := billing.PaymentDuplicateKey(candidate)

	if overrideToken != "" {
		token, err := s.confirmations.Take(ctx, overrideToken)
		if err == nil && token.Key == key && !token.IsExpired(time.Now()) {
			return nil
		}
	}

	existing, err := s.paymentRepo.FindByAccount(ctx, candidate.AccountID)
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

func (s *PaymentService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventBus == nil {
		return
	}
	if events := aggregate.GetDomainEvents(); len(events) > 0 {
		if err := s.eventBus.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish domain events", zap.Error(err))
		}
		aggregate.ClearDomainEvents()
	}
}
