package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"salescore/internal/core/id"
	"salescore/internal/core/scope"
	"salescore/internal/domain"
	"salescore/internal/domain/payments"
	"salescore/internal/infrastructure/storage/postgres"
)

const paymentsTable = "doc_customer_payments"

// PaymentRepo implements payments.Repository. Payments have no table
// part, so only the document row is stored.
type PaymentRepo struct {
	*BaseDocumentRepo[*payments.CustomerPayment]
}

var _ payments.Repository = (*PaymentRepo)(nil)

// NewPaymentRepo creates a new customer payment repository.
func NewPaymentRepo(txManager *postgres.TxManager) *PaymentRepo {
	return &PaymentRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			paymentsTable,
			postgres.ExtractDBColumns[payments.CustomerPayment](),
			func() *payments.CustomerPayment { return &payments.CustomerPayment{} },
		),
	}
}

// ListByInvoice returns the payment history of an invoice, oldest first.
func (r *PaymentRepo) ListByInvoice(ctx context.Context, sc scope.Scope, invoiceID id.ID) ([]*payments.CustomerPayment, error) {
	q := r.baseSelect(sc).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("date", "created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*payments.CustomerPayment
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list by invoice: %w", err)
	}

	return items, nil
}

func (r *PaymentRepo) List(ctx context.Context, sc scope.Scope, filter payments.ListFilter) (domain.ListResult[*payments.CustomerPayment], error) {
	result := domain.ListResult[*payments.CustomerPayment]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(sc)

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}

	if filter.InvoiceID != nil {
		q = q.Where(squirrel.Eq{"invoice_id": *filter.InvoiceID})
	}

	if filter.Method != nil {
		q = q.Where(squirrel.Eq{"method": *filter.Method})
	}

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": searchPattern},
			squirrel.ILike{"reference": searchPattern},
		})
	}

	err := r.countAndSelect(ctx, q, filter.OrderBy, filter.Limit, filter.Offset,
		&result.TotalCount, &result.Items)
	if err != nil {
		return result, err
	}

	return result, nil
}
