package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"salescore/internal/core/id"
	"salescore/internal/core/scope"
	"salescore/internal/domain"
	"salescore/internal/domain/documents/invoice"
	"salescore/internal/infrastructure/storage/postgres"
)

const (
	invoicesTable     = "doc_sales_invoices"
	invoiceLinesTable = "doc_sales_invoice_lines"
)

// InvoiceRepo implements invoice.Repository.
type InvoiceRepo struct {
	*BaseDocumentRepo[*invoice.SalesInvoice]
}

var _ invoice.Repository = (*InvoiceRepo)(nil)

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txManager *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			invoicesTable,
			postgres.ExtractDBColumns[invoice.SalesInvoice](),
			func() *invoice.SalesInvoice { return &invoice.SalesInvoice{} },
		),
	}
}

func (r *InvoiceRepo) GetLines(ctx context.Context, docID id.ID) ([]invoice.Line, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "product_id", "description", "order_line_id",
			"quantity", "unit_price", "discount_percentage", "discount_amount",
			"tax_rate", "line_total", "tax_amount",
		).
		From(invoiceLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []invoice.Line
	if err := pgxscan.Select(ctx, r.Querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

func (r *InvoiceRepo) SaveLines(ctx context.Context, docID id.ID, lines []invoice.Line) error {
	querier := r.Querier(ctx)

	deleteSQL := "DELETE FROM " + invoiceLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(invoiceLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "product_id", "description", "order_line_id",
			"quantity", "unit_price", "discount_percentage", "discount_amount",
			"tax_rate", "line_total", "tax_amount",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.ProductID, line.Description, line.OrderLineID,
			line.Quantity, line.UnitPrice, line.DiscountPercentage, line.DiscountAmount,
			line.TaxRate, line.LineTotal, line.TaxAmount,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

func (r *InvoiceRepo) List(ctx context.Context, sc scope.Scope, filter invoice.ListFilter) (domain.ListResult[*invoice.SalesInvoice], error) {
	result := domain.ListResult[*invoice.SalesInvoice]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(sc)

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	if filter.OrderID != nil {
		q = q.Where(squirrel.Eq{"order_id": *filter.OrderID})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.DueBefore != nil {
		q = q.Where(squirrel.Lt{"due_date": *filter.DueBefore})
	}

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	err := r.countAndSelect(ctx, q, filter.OrderBy, filter.Limit, filter.Offset,
		&result.TotalCount, &result.Items)
	if err != nil {
		return result, err
	}

	return result, nil
}

// ListOverdueCandidates returns SENT/PARTIAL_PAID invoices past their due
// date with a positive balance. Rows are locked so concurrent sweeps skip
// each other's work.
func (r *InvoiceRepo) ListOverdueCandidates(ctx context.Context, sc scope.Scope, asOf time.Time, limit int) ([]*invoice.SalesInvoice, error) {
	q := r.baseSelect(sc).
		Where(squirrel.Eq{"status": []invoice.Status{invoice.StatusSent, invoice.StatusPartialPaid}}).
		Where(squirrel.Lt{"due_date": asOf}).
		Where(squirrel.Gt{"balance_due": 0}).
		OrderBy("due_date").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*invoice.SalesInvoice
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list overdue candidates: %w", err)
	}

	return items, nil
}
