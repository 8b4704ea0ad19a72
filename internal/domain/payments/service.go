package payments

import (
	"context"
	"fmt"
	"time"

	"salescore/internal/core/apperror"
	"salescore/internal/core/id"
	"salescore/internal/core/numerator"
	"salescore/internal/core/scope"
	"salescore/internal/core/tx"
	"salescore/internal/core/types"
	"salescore/internal/domain"
	"salescore/internal/domain/documents/invoice"
	"salescore/internal/domain/events"
	"salescore/pkg/logger"
)

const (
	// NumberPrefix is the payment number prefix (PAY-2026-00001).
	NumberPrefix = "PAY"

	// NumeratorStrategy for payments. Payments are accounting records,
	// so numbers must be gapless.
	NumeratorStrategy = numerator.StrategyStrict
)

// ApplyInput carries the caller-supplied payment fields.
type ApplyInput struct {
	Amount      types.Money
	PaymentDate time.Time
	Method      Method
	Reference   string
	Notes       string
}

// RecordInput carries the fields of an advance payment that is not
// applied to any invoice yet.
type RecordInput struct {
	CustomerID  id.ID
	CurrencyID  id.ID
	Amount      types.Money
	PaymentDate time.Time
	Method      Method
	Reference   string
	Notes       string
}

// Service is the payment application engine.
type Service struct {
	repo      Repository
	invoices  invoice.Repository
	numerator numerator.Generator
	txManager tx.Manager
	publisher events.Publisher
}

// NewService creates a new payment service.
func NewService(
	repo Repository,
	invoices invoice.Repository,
	gen numerator.Generator,
	txManager tx.Manager,
	publisher events.Publisher,
) *Service {
	return &Service{
		repo:      repo,
		invoices:  invoices,
		numerator: gen,
		txManager: txManager,
		publisher: publisher,
	}
}

// ApplyPayment applies a payment against an invoice. The payment row, the
// invoice balance update and the resulting status change commit as one
// unit. The invoice row is locked for the duration of the
// read-modify-write, so concurrent payments serialize against the
// current balance.
//
// Failure kinds are distinct: a closed invoice is rejected before the
// amount is examined, a non-positive amount is a validation error, and
// an over-payment leaves the invoice untouched.
func (s *Service) ApplyPayment(ctx context.Context, sc scope.Scope, invoiceID id.ID, in ApplyInput) (*CustomerPayment, *invoice.SalesInvoice, error) {
	if err := sc.Validate(); err != nil {
		return nil, nil, err
	}
	if !in.Amount.IsPositive() {
		return nil, nil, apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "amount")
	}
	if !isValidMethod(in.Method) {
		return nil, nil, apperror.NewValidation("invalid payment method").
			WithDetail("field", "method").
			WithDetail("value", string(in.Method))
	}
	if in.PaymentDate.IsZero() {
		in.PaymentDate = time.Now().UTC()
	}

	var (
		payment *CustomerPayment
		inv     *invoice.SalesInvoice
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoices.GetForUpdate(ctx, sc, invoiceID)
		if err != nil {
			return err
		}

		if !inv.Status.IsPayable() {
			return apperror.NewInvoiceNotPayable(string(inv.Status))
		}
		if in.Amount.GreaterThan(inv.BalanceDue) {
			return apperror.NewPaymentExceedsBalance(in.Amount.String(), inv.BalanceDue.String())
		}

		payment = NewCustomerPayment(sc.CompanyID, inv.CustomerID, inv.ID,
			in.Amount, in.PaymentDate, in.Method)
		payment.CurrencyID = inv.CurrencyID
		payment.Reference = in.Reference
		payment.Notes = in.Notes
		payment.StampActor(sc.Actor())

		if err := payment.Validate(ctx); err != nil {
			return err
		}

		number, err := s.numerator.GetNextNumber(ctx, sc.CompanyID,
			numerator.DefaultConfig(NumberPrefix),
			&numerator.Options{Strategy: NumeratorStrategy}, in.PaymentDate)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		payment.Number = number

		if err := s.repo.Create(ctx, sc, payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		oldStatus := inv.Status
		now := time.Now().UTC()
		inv.RegisterPayment(in.Amount, now)
		inv.Touch()
		inv.StampActor(sc.Actor())

		if err := s.invoices.Update(ctx, sc, inv); err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}

		if err := s.publisher.Publish(ctx, events.PaymentApplied{
			PaymentID:     payment.ID,
			InvoiceID:     inv.ID,
			CompanyID:     inv.CompanyID,
			Amount:        in.Amount,
			BalanceDue:    inv.BalanceDue,
			InvoiceStatus: string(inv.Status),
			OccurredAt:    now,
		}); err != nil {
			return err
		}
		if oldStatus != inv.Status {
			if err := s.publisher.Publish(ctx, events.InvoiceStatusChanged{
				InvoiceID:  inv.ID,
				CompanyID:  inv.CompanyID,
				Number:     inv.Number,
				FromStatus: string(oldStatus),
				ToStatus:   string(inv.Status),
				OccurredAt: now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Info(ctx, "payment applied", "paymentId", payment.ID,
		"invoiceId", invoiceID, "amount", in.Amount, "invoiceStatus", inv.Status)
	return payment, inv, nil
}

// RecordUnapplied records an advance payment from a customer without
// settling any invoice. The row gets a number and a COMPLETED status
// like an applied payment; application happens later, manually.
func (s *Service) RecordUnapplied(ctx context.Context, sc scope.Scope, in RecordInput) (*CustomerPayment, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if id.IsNil(in.CustomerID) {
		return nil, apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}
	if in.PaymentDate.IsZero() {
		in.PaymentDate = time.Now().UTC()
	}

	payment := NewUnappliedPayment(sc.CompanyID, in.CustomerID, in.Amount, in.PaymentDate, in.Method)
	payment.CurrencyID = in.CurrencyID
	payment.Reference = in.Reference
	payment.Notes = in.Notes
	payment.StampActor(sc.Actor())

	if err := payment.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numerator.GetNextNumber(ctx, sc.CompanyID,
			numerator.DefaultConfig(NumberPrefix),
			&numerator.Options{Strategy: NumeratorStrategy}, in.PaymentDate)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		payment.Number = number

		if err := s.repo.Create(ctx, sc, payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "advance payment recorded", "paymentId", payment.ID,
		"customerId", in.CustomerID, "amount", in.Amount)
	return payment, nil
}

// GetByID retrieves a payment.
func (s *Service) GetByID(ctx context.Context, sc scope.Scope, paymentID id.ID) (*CustomerPayment, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, sc, paymentID)
}

// ListByInvoice returns the payment history of an invoice.
func (s *Service) ListByInvoice(ctx context.Context, sc scope.Scope, invoiceID id.ID) ([]*CustomerPayment, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return s.repo.ListByInvoice(ctx, sc, invoiceID)
}

// List retrieves payments with filtering.
func (s *Service) List(ctx context.Context, sc scope.Scope, filter ListFilter) (domain.ListResult[*CustomerPayment], error) {
	if err := sc.Validate(); err != nil {
		return domain.ListResult[*CustomerPayment]{}, err
	}
	return s.repo.List(ctx, sc, filter)
}
