package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"salescore/internal/core/id"
	"salescore/internal/core/scope"
	"salescore/internal/domain"
	"salescore/internal/domain/documents/salesorder"
	"salescore/internal/infrastructure/storage/postgres"
)

const (
	salesOrdersTable     = "doc_sales_orders"
	salesOrderLinesTable = "doc_sales_order_lines"
)

// SalesOrderRepo implements salesorder.Repository.
type SalesOrderRepo struct {
	*BaseDocumentRepo[*salesorder.SalesOrder]
}

var _ salesorder.Repository = (*SalesOrderRepo)(nil)

// NewSalesOrderRepo creates a new sales order repository.
func NewSalesOrderRepo(txManager *postgres.TxManager) *SalesOrderRepo {
	return &SalesOrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			salesOrdersTable,
			postgres.ExtractDBColumns[salesorder.SalesOrder](),
			func() *salesorder.SalesOrder { return &salesorder.SalesOrder{} },
		),
	}
}

func (r *SalesOrderRepo) GetLines(ctx context.Context, docID id.ID) ([]salesorder.Line, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "product_id", "description",
			"quantity", "unit_price", "discount_percentage", "discount_amount",
			"tax_rate", "line_total", "tax_amount",
			"quantity_shipped", "quantity_invoiced",
		).
		From(salesOrderLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []salesorder.Line
	if err := pgxscan.Select(ctx, r.Querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

func (r *SalesOrderRepo) SaveLines(ctx context.Context, docID id.ID, lines []salesorder.Line) error {
	querier := r.Querier(ctx)

	deleteSQL := "DELETE FROM " + salesOrderLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(salesOrderLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "product_id", "description",
			"quantity", "unit_price", "discount_percentage", "discount_amount",
			"tax_rate", "line_total", "tax_amount",
			"quantity_shipped", "quantity_invoiced",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.ProductID, line.Description,
			line.Quantity, line.UnitPrice, line.DiscountPercentage, line.DiscountAmount,
			line.TaxRate, line.LineTotal, line.TaxAmount,
			line.QuantityShipped, line.QuantityInvoiced,
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

func (r *SalesOrderRepo) List(ctx context.Context, sc scope.Scope, filter salesorder.ListFilter) (domain.ListResult[*salesorder.SalesOrder], error) {
	result := domain.ListResult[*salesorder.SalesOrder]{
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

	if filter.QuoteID != nil {
		q = q.Where(squirrel.Eq{"quote_id": *filter.QuoteID})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
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
