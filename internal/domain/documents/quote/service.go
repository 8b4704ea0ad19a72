package quote

import (
	"context"
	"fmt"
	"time"

	"salescore/internal/core/apperror"
	"salescore/internal/core/id"
	"salescore/internal/core/numerator"
	"salescore/internal/core/scope"
	"salescore/internal/core/tx"
	"salescore/internal/domain"
	"salescore/internal/domain/events"
	"salescore/pkg/logger"
)

const documentType = "Quote"

// OrderFactory creates a sales order from an accepted quote.
// Implemented by the salesorder package; declared here to avoid a
// dependency cycle.
type OrderFactory interface {
	CreateFromQuote(ctx context.Context, sc scope.Scope, q *Quote) (id.ID, error)
}

// Service provides business operations for quote documents.
type Service struct {
	repo      Repository
	orders    OrderFactory
	numerator numerator.Generator
	txManager tx.Manager
	publisher events.Publisher
}

// NewService creates a new quote service.
func NewService(
	repo Repository,
	orders OrderFactory,
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

// Create creates a new quote document with its lines.
func (s *Service) Create(ctx context.Context, sc scope.Scope, doc *Quote) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	doc.CompanyID = sc.CompanyID
	if doc.Status == "" {
		doc.Status = StatusDraft
	}
	if doc.Status != StatusDraft {
		return apperror.NewValidation("quote must be created in DRAFT status").
			WithDetail("status", string(doc.Status))
	}
	doc.ApplyTotals()
	doc.StampActor(sc.Actor())

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if doc.Number == "" {
		cfg := numerator.DefaultConfig(NumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, sc.CompanyID, cfg,
			&numerator.Options{Strategy: NumeratorStrategy}, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
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

	logger.Info(ctx, "quote created", "id", doc.ID, "number", doc.Number)
	return nil
}

// GetByID retrieves a quote with lines.
func (s *Service) GetByID(ctx context.Context, sc scope.Scope, docID id.ID) (*Quote, error) {
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

// Update updates a quote document. Allowed only while the quote is DRAFT.
func (s *Service) Update(ctx context.Context, sc scope.Scope, doc *Quote) error {
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

// ChangeStatus transitions a quote to a new status. A same-status change
// is a no-op. The reason is recorded on rejection.
func (s *Service) ChangeStatus(ctx context.Context, sc scope.Scope, docID id.ID, newStatus Status, reason string) (*Quote, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if !newStatus.IsValid() {
		return nil, apperror.NewValidation("invalid quote status").
			WithDetail("value", string(newStatus))
	}
	if newStatus == StatusConverted {
		return nil, apperror.NewValidation("use convert to order instead of a direct status change").
			WithDetail("status", string(newStatus))
	}
	if newStatus == StatusRejected && reason == "" {
		return nil, apperror.NewValidation("rejection reason is required").
			WithDetail("field", "reason")
	}

	var doc *Quote
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
		case StatusSent:
			doc.SentDate = &now
		case StatusAccepted:
			doc.AcceptedDate = &now
		case StatusRejected:
			doc.RejectionReason = &reason
		}
		doc.Touch()
		doc.StampActor(sc.Actor())

		if err := s.repo.Update(ctx, sc, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		return s.publisher.Publish(ctx, events.QuoteStatusChanged{
			QuoteID:    doc.ID,
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

	logger.Info(ctx, "quote status changed", "id", docID, "status", newStatus)
	return doc, nil
}

// ConvertToOrder creates a sales order from an accepted quote.
// The quote moves to CONVERTED and records the order reference; both
// writes and the order creation happen in one transaction.
func (s *Service) ConvertToOrder(ctx context.Context, sc scope.Scope, docID id.ID) (id.ID, error) {
	if err := sc.Validate(); err != nil {
		return id.Nil(), err
	}

	var orderID id.ID
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, sc, docID)
		if err != nil {
			return err
		}
		if doc.Status != StatusAccepted {
			return apperror.NewInvalidTransition(documentType, string(doc.Status), string(StatusConverted))
		}

		lines, err := s.repo.GetLines(ctx, docID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		doc.Lines = lines

		orderID, err = s.orders.CreateFromQuote(ctx, sc, doc)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		oldStatus := doc.Status
		now := time.Now().UTC()
		doc.Status = StatusConverted
		doc.ConvertedOrderID = &orderID
		doc.Touch()
		doc.StampActor(sc.Actor())

		if err := s.repo.Update(ctx, sc, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		if err := s.publisher.Publish(ctx, events.QuoteConverted{
			QuoteID:    doc.ID,
			OrderID:    orderID,
			CompanyID:  doc.CompanyID,
			OccurredAt: now,
		}); err != nil {
			return err
		}
		return s.publisher.Publish(ctx, events.QuoteStatusChanged{
			QuoteID:    doc.ID,
			CompanyID:  doc.CompanyID,
			Number:     doc.Number,
			FromStatus: string(oldStatus),
			ToStatus:   string(StatusConverted),
			OccurredAt: now,
		})
	})
	if err != nil {
		return id.Nil(), err
	}

	logger.Info(ctx, "quote converted to order", "quoteId", docID, "orderId", orderID)
	return orderID, nil
}

// RecalculateTotals re-runs the totals cascade over the stored lines and
// persists the result. Idempotent.
func (s *Service) RecalculateTotals(ctx context.Context, sc scope.Scope, docID id.ID) (*Quote, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	var doc *Quote
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

// MarkExpired sweeps SENT quotes past their validity date into EXPIRED.
// Idempotent; returns the number of quotes expired.
func (s *Service) MarkExpired(ctx context.Context, sc scope.Scope, asOf time.Time) (int, error) {
	if err := sc.Validate(); err != nil {
		return 0, err
	}

	expired := 0
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		candidates, err := s.repo.ListExpiring(ctx, sc, asOf, 500)
		if err != nil {
			return err
		}

		for _, doc := range candidates {
			oldStatus := doc.Status
			doc.Status = StatusExpired
			doc.Touch()
			if err := s.repo.Update(ctx, sc, doc); err != nil {
				return fmt.Errorf("expire quote %s: %w", doc.ID, err)
			}
			if err := s.publisher.Publish(ctx, events.QuoteStatusChanged{
				QuoteID:    doc.ID,
				CompanyID:  doc.CompanyID,
				Number:     doc.Number,
				FromStatus: string(oldStatus),
				ToStatus:   string(StatusExpired),
				OccurredAt: asOf,
			}); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if expired > 0 {
		logger.Info(ctx, "quotes expired", "count", expired)
	}
	return expired, nil
}

// List retrieves quotes with filtering.
func (s *Service) List(ctx context.Context, sc scope.Scope, filter ListFilter) (domain.ListResult[*Quote], error) {
	if err := sc.Validate(); err != nil {
		return domain.ListResult[*Quote]{}, err
	}
	return s.repo.List(ctx, sc, filter)
}
