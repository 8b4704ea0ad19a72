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
	"salescore/internal/domain/documents/quote"
	"salescore/internal/infrastructure/storage/postgres"
)

const (
	quotesTable     = "doc_quotes"
	quoteLinesTable = "doc_quote_lines"
)

// QuoteRepo implements quote.Repository.
type QuoteRepo struct {
	*BaseDocumentRepo[*quote.Quote]
}

var _ quote.Repository = (*QuoteRepo)(nil)

// NewQuoteRepo creates a new quote repository.
func NewQuoteRepo(txManager *postgres.TxManager) *QuoteRepo {
	return &QuoteRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			quotesTable,
			postgres.ExtractDBColumns[quote.Quote](),
			func() *quote.Quote { return &quote.Quote{} },
		),
	}
}

func (r *QuoteRepo) GetLines(ctx context.Context, docID id.ID) ([]quote.Line, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "product_id", "description",
			"quantity", "unit_price", "discount_percentage", "discount_amount",
			"tax_rate", "line_total", "tax_amount",
		).
		From(quoteLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []quote.Line
	if err := pgxscan.Select(ctx, r.Querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

func (r *QuoteRepo) SaveLines(ctx context.Context, docID id.ID, lines []quote.Line) error {
	querier := r.Querier(ctx)

	deleteSQL := "DELETE FROM " + quoteLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(quoteLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "product_id", "description",
			"quantity", "unit_price", "discount_percentage", "discount_amount",
			"tax_rate", "line_total", "tax_amount",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.ProductID, line.Description,
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

func (r *QuoteRepo) List(ctx context.Context, sc scope.Scope, filter quote.ListFilter) (domain.ListResult[*quote.Quote], error) {
	result := domain.ListResult[*quote.Quote]{
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

// ListExpiring returns SENT quotes whose validity window closed before
// asOf. Rows are locked so concurrent sweeps skip each other's work.
func (r *QuoteRepo) ListExpiring(ctx context.Context, sc scope.Scope, asOf time.Time, limit int) ([]*quote.Quote, error) {
	q := r.baseSelect(sc).
		Where(squirrel.Eq{"status": quote.StatusSent}).
		Where(squirrel.Lt{"valid_until": asOf}).
		OrderBy("valid_until").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*quote.Quote
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list expiring: %w", err)
	}

	return items, nil
}
