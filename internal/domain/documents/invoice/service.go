package invoice

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
	"salescore/internal/domain/documents/salesorder"
	"salescore/internal/domain/events"
	"salescore/pkg/logger"
)

const documentType = "SalesInvoice"

// OrderSource supplies the order data needed when billing an order.
// Implemented by the salesorder service.
type OrderSource interface {
	GetByID(ctx context.Context, sc scope.Scope, docID id.ID) (*salesorder.SalesOrder, error)
	RecordInvoiced(ctx context.Context, sc scope.Scope, docID id.ID, quantities map[id.ID]types.Quantity) error
}

// Service provides business operations for invoice documents.
type Service struct {
	repo      Repository
	orders    OrderSource
	numerator numerator.Generator
	txManager tx.Manager
	publisher events.Publisher
}

// NewService creates a new invoice service.
func NewService(
	repo Repository,
	orders OrderSource,
	gen numerator.Generator,
	txManager tx.Manager,
	publisher events.Publisher,
) *Service {
	return &Service{
		repo:      repo,
		orders:    orders,
		numerator: gen,
		txManager: txManager,
		publisher: publisher,
	}
}

// Create creates a new invoice with its lines.
func (s *Service) Create(ctx context.Context, sc scope.Scope, doc *SalesInvoice) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	doc.CompanyID = sc.CompanyID
	if doc.Status == "" {
		doc.Status = StatusDraft
	}
	if doc.Status != StatusDraft {
		return apperror.NewValidation("invoice must be created in DRAFT status").
			WithDetail("status", string(doc.Status))
	}
	doc.ApplyTotals()
	doc.StampActor(sc.Actor())

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if doc.Number == "" {
		number, err := s.nextNumber(ctx, sc)
		if err != nil {
			return err
		}
		doc.Number = number
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, sc, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "invoice created", "id", doc.ID, "number", doc.Number)
	return nil
}

// CreateFromOrder bills a sales order: every line with a remaining
// uninvoiced quantity becomes an invoice line, and the order's invoiced
// quantities advance in the same transaction. Partial fulfillment is
// permitted; the order must be CONFIRMED or further along.
func (s *Service) CreateFromOrder(ctx context.Context, sc scope.Scope, orderID id.ID, dueDate time.Time) (*SalesInvoice, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	var doc *SalesInvoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetByID(ctx, sc, orderID)
		if err != nil {
			return err
		}

		switch order.Status {
		case salesorder.StatusConfirmed, salesorder.StatusInProgress,
			salesorder.StatusShipped, salesorder.StatusDelivered:
		default:
			return apperror.NewInvalidTransition(documentType,
				string(order.Status), "invoiced")
		}

		doc = New(sc.CompanyID, order.CustomerID, dueDate)
		doc.CurrencyID = order.CurrencyID
		doc.OrderID = &orderID
		doc.DiscountPercentage = order.DiscountPercentage
		doc.DiscountAmount = order.DiscountAmount
		doc.ShippingAmount = order.ShippingAmount

		invoiced := make(map[id.ID]types.Quantity)
		for _, ol := range order.Lines {
			remaining := ol.RemainingToInvoice()
			if !remaining.IsPositive() {
				continue
			}
			lineID := ol.LineID
			doc.AddLine(Line{
				ProductID:          ol.ProductID,
				Description:        ol.Description,
				OrderLineID:        &lineID,
				Quantity:           remaining,
				UnitPrice:          ol.UnitPrice,
				DiscountPercentage: ol.DiscountPercentage,
				DiscountAmount:     ol.DiscountAmount,
				TaxRate:            ol.TaxRate,
			})
			invoiced[ol.LineID] = remaining
		}
		if len(doc.Lines) == 0 {
			return apperror.NewValidation("order has no uninvoiced quantity").
				WithDetail("orderId", orderID.String())
		}
		doc.ApplyTotals()
		doc.StampActor(sc.Actor())

		if err := doc.Validate(ctx); err != nil {
			return err
		}

		number, err := s.nextNumber(ctx, sc)
		if err != nil {
			return err
		}
		doc.Number = number

		if err := s.repo.Create(ctx, sc, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		return s.orders.RecordInvoiced(ctx, sc, orderID, invoiced)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice created from order", "id", doc.ID,
		"number", doc.Number, "orderId", orderID)
	return doc, nil
}

// GetByID retrieves an invoice with lines.
func (s *Service) GetByID(ctx context.Context, sc scope.Scope, docID id.ID) (*SalesInvoice, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	doc, err := s.repo.GetByID(ctx, sc, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// Update updates an invoice. Allowed while DRAFT or SENT.
func (s *Service) Update(ctx context.Context, sc scope.Scope, doc *SalesInvoice) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	if !doc.IsEditable() {
		return apperror.NewNotEditable(documentType, string(doc.Status))
	}

	doc.ApplyTotals()
	doc.Touch()
	doc.StampActor(sc.Actor())

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, sc, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
}

// ChangeStatus transitions an invoice to a new status. A same-status
// change is a no-op. SENT stamps the sent date.
func (s *Service) ChangeStatus(ctx context.Context, sc scope.Scope, docID id.ID, newStatus Status) (*SalesInvoice, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if !newStatus.IsValid() {
		return nil, apperror.NewValidation("invalid invoice status").
			WithDetail("value", string(newStatus))
	}

	var doc *SalesInvoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, sc, docID)
		if err != nil {
			return err
		}

		oldStatus := doc.Status
		if oldStatus == newStatus {
			return nil
		}
		if !oldStatus.CanTransitionTo(newStatus) {
			return apperror.NewInvalidTransition(documentType, string(oldStatus), string(newStatus))
		}

		now := time.Now().UTC()
		doc.Status = newStatus
		if newStatus == StatusSent {
			doc.SentDate = &now
		}
		doc.Touch()
		doc.StampActor(sc.Actor())

		if err := s.repo.Update(ctx, sc, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		return s.publisher.Publish(ctx, events.InvoiceStatusChanged{
			InvoiceID:  doc.ID,
			CompanyID:  doc.CompanyID,
			Number:     doc.Number,
			FromStatus: string(oldStatus),
			ToStatus:   string(newStatus),
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice status changed", "id", docID, "status", newStatus)
	return doc, nil
}

// CheckOverdue sweeps SENT/PARTIAL_PAID invoices past their due date with
// a positive balance into OVERDUE. Idempotent; already-overdue invoices
// are untouched. Returns the number of invoices transitioned.
func (s *Service) CheckOverdue(ctx context.Context, sc scope.Scope, asOf time.Time) (int, error) {
	if err := sc.Validate(); err != nil {
		return 0, err
	}

	moved := 0
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		candidates, err := s.repo.ListOverdueCandidates(ctx, sc, asOf, 500)
		if err != nil {
			return err
		}

		for _, doc := range candidates {
			if !doc.IsOverdue(asOf) {
				continue
			}
			oldStatus := doc.Status
			doc.Status = StatusOverdue
			doc.Touch()
			if err := s.repo.Update(ctx, sc, doc); err != nil {
				return fmt.Errorf("mark overdue %s: %w", doc.ID, err)
			}

			if err := s.publisher.Publish(ctx, events.InvoiceOverdue{
				InvoiceID:  doc.ID,
				CompanyID:  doc.CompanyID,
				Number:     doc.Number,
				DueDate:    doc.DueDate,
				BalanceDue: doc.BalanceDue,
				OccurredAt: asOf,
			}); err != nil {
				return err
			}
			if err := s.publisher.Publish(ctx, events.InvoiceStatusChanged{
				InvoiceID:  doc.ID,
				CompanyID:  doc.CompanyID,
				Number:     doc.Number,
				FromStatus: string(oldStatus),
				ToStatus:   string(StatusOverdue),
				OccurredAt: asOf,
			}); err != nil {
				return err
			}
			moved++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if moved > 0 {
		logger.Info(ctx, "invoices marked overdue", "count", moved)
	}
	return moved, nil
}

// RecalculateTotals re-runs the totals cascade over the stored lines and
// persists the result, including the balance due. Idempotent.
func (s *Service) RecalculateTotals(ctx context.Context, sc scope.Scope, docID id.ID) (*SalesInvoice, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	var doc *SalesInvoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, sc, docID)
		if err != nil {
			return err
		}
		lines, err := s.repo.GetLines(ctx, docID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		doc.Lines = lines

		doc.ApplyTotals()
		doc.Touch()

		if err := s.repo.Update(ctx, sc, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// List retrieves invoices with filtering.
func (s *Service) List(ctx context.Context, sc scope.Scope, filter ListFilter) (domain.ListResult[*SalesInvoice], error) {
	if err := sc.Validate(); err != nil {
		return domain.ListResult[*SalesInvoice]{}, err
	}
	return s.repo.List(ctx, sc, filter)
}

func (s *Service) nextNumber(ctx context.Context, sc scope.Scope) (string, error) {
	cfg := numerator.DefaultConfig(NumberPrefix)
	number, err := s.numerator.GetNextNumber(ctx, sc.CompanyID, cfg,
		&numerator.Options{Strategy: NumeratorStrategy}, time.Now())
	if err != nil {
		return "", fmt.Errorf("generate number: %w", err)
	}
	return number, nil
}
