package salesorder

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
	"salescore/internal/domain/documents/quote"
	"salescore/internal/domain/events"
	"salescore/pkg/logger"
)

const documentType = "SalesOrder"

// Service provides business operations for sales order documents.
type Service struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager
	publisher events.Publisher
}

// NewService creates a new sales order service.
func NewService(
	repo Repository,
	gen numerator.Generator,
	txManager tx.Manager,
	publisher events.Publisher,
) *Service {
	return &Service{
		repo:      repo,
		numerator: gen,
		txManager: txManager,
		publisher: publisher,
	}
}

// Create creates a new sales order with its lines.
func (s *Service) Create(ctx context.Context, sc scope.Scope, doc *SalesOrder) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	doc.CompanyID = sc.CompanyID
	if doc.Status == "" {
		doc.Status = StatusDraft
	}
	if doc.Status != StatusDraft {
		return apperror.NewValidation("order must be created in DRAFT status").
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

	logger.Info(ctx, "sales order created", "id", doc.ID, "number", doc.Number)
	return nil
}

// CreateFromQuote creates a DRAFT order from an accepted quote. Lines are
// re-snapshotted with new identifiers and numbering restarted at 1.
// Runs inside the caller's transaction; implements quote.OrderFactory.
func (s *Service) CreateFromQuote(ctx context.Context, sc scope.Scope, q *quote.Quote) (id.ID, error) {
	doc := New(sc.CompanyID, q.CustomerID)
	doc.CurrencyID = q.CurrencyID
	doc.QuoteID = &q.ID
	doc.Notes = q.Notes
	doc.DiscountPercentage = q.DiscountPercentage
	doc.DiscountAmount = q.DiscountAmount

	for _, ql := range q.Lines {
		doc.AddLine(Line{
			ProductID:          ql.ProductID,
			Description:        ql.Description,
			Quantity:           ql.Quantity,
			UnitPrice:          ql.UnitPrice,
			DiscountPercentage: ql.DiscountPercentage,
			DiscountAmount:     ql.DiscountAmount,
			TaxRate:            ql.TaxRate,
		})
	}
	doc.ApplyTotals()
	doc.StampActor(sc.Actor())

	if err := doc.Validate(ctx); err != nil {
		return id.Nil(), err
	}

	number, err := s.nextNumber(ctx, sc)
	if err != nil {
		return id.Nil(), err
	}
	doc.Number = number

	if err := s.repo.Create(ctx, sc, doc); err != nil {
		return id.Nil(), fmt.Errorf("create document: %w", err)
	}
	if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
		return id.Nil(), fmt.Errorf("save lines: %w", err)
	}

	return doc.ID, nil
}

// GetByID retrieves a sales order with lines.
func (s *Service) GetByID(ctx context.Context, sc scope.Scope, docID id.ID) (*SalesOrder, error) {
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

// Update updates a sales order. Allowed while DRAFT or CONFIRMED.
func (s *Service) Update(ctx context.Context, sc scope.Scope, doc *SalesOrder) error {
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

// ChangeStatus transitions an order to a new status. A same-status change
// is a no-op. Fails closed on any edge not in the transition table.
func (s *Service) ChangeStatus(ctx context.Context, sc scope.Scope, docID id.ID, newStatus Status) (*SalesOrder, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if !newStatus.IsValid() {
		return nil, apperror.NewValidation("invalid order status").
			WithDetail("value", string(newStatus))
	}

	var doc *SalesOrder
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
		switch newStatus {
		case StatusConfirmed:
			doc.ConfirmedDate = &now
		case StatusShipped:
			doc.ShippedDate = &now
		case StatusDelivered:
			doc.DeliveredDate = &now
		}
		doc.Touch()
		doc.StampActor(sc.Actor())

		if err := s.repo.Update(ctx, sc, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		return s.publisher.Publish(ctx, events.OrderStatusChanged{
			OrderID:    doc.ID,
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

	logger.Info(ctx, "order status changed", "id", docID, "status", newStatus)
	return doc, nil
}

// RecordFulfillment increments a line's shipped quantity. The shipped
// quantity is monotonic and must never exceed the ordered quantity.
func (s *Service) RecordFulfillment(ctx context.Context, sc scope.Scope, docID, lineID id.ID, quantityShipped types.Quantity) (*SalesOrder, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if !quantityShipped.IsPositive() {
		return nil, apperror.NewValidation("shipped quantity must be positive").
			WithDetail("field", "quantityShipped")
	}

	var doc *SalesOrder
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, sc, docID)
		if err != nil {
			return err
		}
		if doc.Status.IsTerminal() || doc.Status == StatusDraft {
			return apperror.NewNotEditable(documentType, string(doc.Status))
		}

		lines, err := s.repo.GetLines(ctx, docID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		doc.Lines = lines

		line := doc.FindLine(lineID)
		if line == nil {
			return apperror.NewNotFound("order line", lineID.String())
		}

		newShipped := line.QuantityShipped.Add(quantityShipped)
		if newShipped.GreaterThan(line.Quantity) {
			return apperror.NewFulfillmentExceeded(line.LineNo,
				line.Quantity.String(), newShipped.String())
		}
		line.QuantityShipped = newShipped
		doc.Touch()
		doc.StampActor(sc.Actor())

		if err := s.repo.Update(ctx, sc, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "fulfillment recorded", "orderId", docID, "lineId", lineID,
		"quantity", quantityShipped)
	return doc, nil
}

// RecordInvoiced advances the invoiced quantity on order lines after an
// invoice is created from this order. Quantities are keyed by line ID.
// Runs inside the caller's transaction.
func (s *Service) RecordInvoiced(ctx context.Context, sc scope.Scope, docID id.ID, quantities map[id.ID]types.Quantity) error {
	doc, err := s.repo.GetForUpdate(ctx, sc, docID)
	if err != nil {
		return err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	for lineID, qty := range quantities {
		line := doc.FindLine(lineID)
		if line == nil {
			return apperror.NewNotFound("order line", lineID.String())
		}
		newInvoiced := line.QuantityInvoiced.Add(qty)
		if newInvoiced.GreaterThan(line.Quantity) {
			return apperror.NewFulfillmentExceeded(line.LineNo,
				line.Quantity.String(), newInvoiced.String())
		}
		line.QuantityInvoiced = newInvoiced
	}
	doc.Touch()

	if err := s.repo.Update(ctx, sc, doc); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
}

// RecalculateTotals re-runs the totals cascade over the stored lines and
// persists the result. Callable any time before a terminal status.
func (s *Service) RecalculateTotals(ctx context.Context, sc scope.Scope, docID id.ID) (*SalesOrder, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	var doc *SalesOrder
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, sc, docID)
		if err != nil {
			return err
		}
		if doc.Status.IsTerminal() {
			return apperror.NewNotEditable(documentType, string(doc.Status))
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

// List retrieves sales orders with filtering.
func (s *Service) List(ctx context.Context, sc scope.Scope, filter ListFilter) (domain.ListResult[*SalesOrder], error) {
	if err := sc.Validate(); err != nil {
		return domain.ListResult[*SalesOrder]{}, err
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

// Ensure compile-time interface compliance.
var _ quote.OrderFactory = (*Service)(nil)
