package salesorder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescore/internal/core/apperror"
	"salescore/internal/core/id"
	"salescore/internal/core/numerator"
	"salescore/internal/core/scope"
	"salescore/internal/core/tx"
	"salescore/internal/core/types"
	"salescore/internal/domain"
	"salescore/internal/domain/documents/quote"
	"salescore/internal/domain/events"
)

// fakeRepo is an in-memory Repository for unit tests.
type fakeRepo struct {
	docs  map[id.ID]*SalesOrder
	lines map[id.ID][]Line
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs:  make(map[id.ID]*SalesOrder),
		lines: make(map[id.ID][]Line),
	}
}

func (r *fakeRepo) clone(doc *SalesOrder) *SalesOrder {
	c := *doc
	c.Lines = nil
	return &c
}

func (r *fakeRepo) Create(ctx context.Context, sc scope.Scope, doc *SalesOrder) error {
	r.docs[doc.ID] = r.clone(doc)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, sc scope.Scope, docID id.ID) (*SalesOrder, error) {
	doc, ok := r.docs[docID]
	if !ok || doc.CompanyID != sc.CompanyID {
		return nil, apperror.NewNotFound("sales order", docID.String())
	}
	return r.clone(doc), nil
}

func (r *fakeRepo) GetByNumber(ctx context.Context, sc scope.Scope, number string) (*SalesOrder, error) {
	for _, doc := range r.docs {
		if doc.Number == number && doc.CompanyID == sc.CompanyID {
			return r.clone(doc), nil
		}
	}
	return nil, apperror.NewNotFound("sales order", number)
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, sc scope.Scope, docID id.ID) (*SalesOrder, error) {
	return r.GetByID(ctx, sc, docID)
}

func (r *fakeRepo) Update(ctx context.Context, sc scope.Scope, doc *SalesOrder) error {
	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewNotFound("sales order", doc.ID.String())
	}
	r.docs[doc.ID] = r.clone(doc)
	return nil
}

func (r *fakeRepo) GetLines(ctx context.Context, docID id.ID) ([]Line, error) {
	return append([]Line(nil), r.lines[docID]...), nil
}

func (r *fakeRepo) SaveLines(ctx context.Context, docID id.ID, lines []Line) error {
	r.lines[docID] = append([]Line(nil), lines...)
	return nil
}

func (r *fakeRepo) List(ctx context.Context, sc scope.Scope, filter ListFilter) (domain.ListResult[*SalesOrder], error) {
	var items []*SalesOrder
	for _, doc := range r.docs {
		if doc.CompanyID != sc.CompanyID {
			continue
		}
		items = append(items, r.clone(doc))
	}
	return domain.ListResult[*SalesOrder]{Items: items, TotalCount: int64(len(items))}, nil
}

type fixture struct {
	repo    *fakeRepo
	pub     *events.CapturePublisher
	svc     *Service
	sc      scope.Scope
	company id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	company := id.New()
	repo := newFakeRepo()
	pub := &events.CapturePublisher{}
	svc := NewService(repo, &numerator.MockGenerator{}, tx.Noop{}, pub)
	return &fixture{
		repo:    repo,
		pub:     pub,
		svc:     svc,
		sc:      scope.New(company, id.New()),
		company: company,
	}
}

func draftOrder(companyID id.ID) *SalesOrder {
	o := New(companyID, id.New())
	o.CurrencyID = id.New()
	o.AddLine(Line{
		ProductID: id.New(),
		Quantity:  types.MustMoney("10"),
		UnitPrice: types.MustMoney("25.00"),
	})
	return o
}

func (f *fixture) createInStatus(t *testing.T, status Status) *SalesOrder {
	t.Helper()
	ctx := context.Background()
	o := draftOrder(f.company)
	require.NoError(t, f.svc.Create(ctx, f.sc, o))
	f.repo.docs[o.ID].Status = status
	doc, err := f.svc.GetByID(ctx, f.sc, o.ID)
	require.NoError(t, err)
	return doc
}

func TestCreate_AssignsNumberAndTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o := draftOrder(f.company)
	require.NoError(t, f.svc.Create(ctx, f.sc, o))

	assert.NotEmpty(t, o.Number)
	assert.Equal(t, StatusDraft, o.Status)
	assert.True(t, o.TotalAmount.Equal(types.MustMoney("250.00")))
}

func TestChangeStatus_HappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o := draftOrder(f.company)
	require.NoError(t, f.svc.Create(ctx, f.sc, o))

	for _, next := range []Status{StatusConfirmed, StatusInProgress, StatusShipped, StatusDelivered} {
		doc, err := f.svc.ChangeStatus(ctx, f.sc, o.ID, next)
		require.NoError(t, err, "to %s", next)
		assert.Equal(t, next, doc.Status)
	}

	doc, err := f.svc.GetByID(ctx, f.sc, o.ID)
	require.NoError(t, err)
	assert.NotNil(t, doc.ConfirmedDate)
	assert.NotNil(t, doc.ShippedDate)
	assert.NotNil(t, doc.DeliveredDate)
	assert.Len(t, f.pub.ByType(events.TypeOrderStatusChanged), 4)
}

// A shipped order cannot move backward to CONFIRMED.
func TestChangeStatus_BackwardTransitionFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := f.createInStatus(t, StatusShipped)
	before := *f.repo.docs[doc.ID]

	_, err := f.svc.ChangeStatus(ctx, f.sc, doc.ID, StatusConfirmed)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTransition))
	assert.Equal(t, before, *f.repo.docs[doc.ID])
}

func TestChangeStatus_TransitionClosure(t *testing.T) {
	all := []Status{StatusDraft, StatusConfirmed, StatusInProgress,
		StatusShipped, StatusDelivered, StatusReturned, StatusCancelled}

	allowed := map[Status]map[Status]bool{
		StatusDraft:      {StatusConfirmed: true, StatusCancelled: true},
		StatusConfirmed:  {StatusInProgress: true, StatusCancelled: true},
		StatusInProgress: {StatusShipped: true, StatusCancelled: true},
		StatusShipped:    {StatusDelivered: true, StatusReturned: true},
		StatusDelivered:  {StatusReturned: true},
	}

	for _, from := range all {
		for _, to := range all {
			if from == to || allowed[from][to] {
				continue
			}

			f := newFixture(t)
			doc := f.createInStatus(t, from)
			before := *f.repo.docs[doc.ID]

			_, err := f.svc.ChangeStatus(context.Background(), f.sc, doc.ID, to)
			require.Error(t, err, "%s -> %s must fail", from, to)
			assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTransition),
				"%s -> %s: got %v", from, to, err)
			assert.Equal(t, before, *f.repo.docs[doc.ID])
		}
	}
}

func TestUpdate_AllowedStatuses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// CONFIRMED orders stay editable
	doc := f.createInStatus(t, StatusConfirmed)
	doc.Lines, _ = f.repo.GetLines(ctx, doc.ID)
	doc.Notes = "rush delivery"
	require.NoError(t, f.svc.Update(ctx, f.sc, doc))

	// Shipped orders do not
	shipped := f.createInStatus(t, StatusShipped)
	shipped.Lines, _ = f.repo.GetLines(ctx, shipped.ID)
	err := f.svc.Update(ctx, f.sc, shipped)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeDocumentNotEditable))
}

func TestRecordFulfillment_IncrementsShipped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := f.createInStatus(t, StatusConfirmed)
	lines, _ := f.repo.GetLines(ctx, doc.ID)
	lineID := lines[0].LineID

	updated, err := f.svc.RecordFulfillment(ctx, f.sc, doc.ID, lineID, types.MustMoney("4"))
	require.NoError(t, err)
	assert.True(t, updated.Lines[0].QuantityShipped.Equal(types.MustMoney("4")))

	updated, err = f.svc.RecordFulfillment(ctx, f.sc, doc.ID, lineID, types.MustMoney("6"))
	require.NoError(t, err)
	assert.True(t, updated.Lines[0].QuantityShipped.Equal(types.MustMoney("10")))
	assert.True(t, updated.FullyShipped())
}

func TestRecordFulfillment_CannotExceedOrdered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := f.createInStatus(t, StatusConfirmed)
	lines, _ := f.repo.GetLines(ctx, doc.ID)
	lineID := lines[0].LineID

	_, err := f.svc.RecordFulfillment(ctx, f.sc, doc.ID, lineID, types.MustMoney("8"))
	require.NoError(t, err)

	// 8 + 3 > 10 ordered
	_, err = f.svc.RecordFulfillment(ctx, f.sc, doc.ID, lineID, types.MustMoney("3"))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeFulfillmentExceeded))

	// Shipped quantity unchanged after the failure
	stored, _ := f.repo.GetLines(ctx, doc.ID)
	assert.True(t, stored[0].QuantityShipped.Equal(types.MustMoney("8")))
}

func TestRecordFulfillment_RequiresActiveStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := f.createInStatus(t, StatusDraft)
	lines, _ := f.repo.GetLines(ctx, doc.ID)

	_, err := f.svc.RecordFulfillment(ctx, f.sc, doc.ID, lines[0].LineID, types.MustMoney("1"))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeDocumentNotEditable))
}

func TestCreateFromQuote_ResnapshotsLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q := quote.New(f.company, id.New())
	q.CurrencyID = id.New()
	q.DiscountPercentage = types.MustMoney("5")
	q.AddLine(quote.Line{
		ProductID:          id.New(),
		Quantity:           types.MustMoney("2"),
		UnitPrice:          types.MustMoney("100.00"),
		DiscountPercentage: types.MustMoney("10"),
		TaxRate:            types.MustMoney("5"),
	})
	q.AddLine(quote.Line{
		ProductID: id.New(),
		Quantity:  types.MustMoney("1"),
		UnitPrice: types.MustMoney("50.00"),
	})
	q.ApplyTotals()

	orderID, err := f.svc.CreateFromQuote(ctx, f.sc, q)
	require.NoError(t, err)

	doc, err := f.svc.GetByID(ctx, f.sc, orderID)
	require.NoError(t, err)

	require.NotNil(t, doc.QuoteID)
	assert.Equal(t, q.ID, *doc.QuoteID)
	assert.Equal(t, q.CustomerID, doc.CustomerID)
	assert.Equal(t, StatusDraft, doc.Status)
	require.Len(t, doc.Lines, 2)

	// New identifiers, numbering restarted at 1
	assert.NotEqual(t, q.Lines[0].LineID, doc.Lines[0].LineID)
	assert.Equal(t, 1, doc.Lines[0].LineNo)
	assert.Equal(t, 2, doc.Lines[1].LineNo)

	// Same arithmetic as the quote
	assert.True(t, doc.Subtotal.Equal(q.Subtotal))
	assert.True(t, doc.TaxAmount.Equal(q.TaxAmount))
}

func TestRecordInvoiced_AdvancesQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := f.createInStatus(t, StatusConfirmed)
	lines, _ := f.repo.GetLines(ctx, doc.ID)
	lineID := lines[0].LineID

	err := f.svc.RecordInvoiced(ctx, f.sc, doc.ID, map[id.ID]types.Quantity{
		lineID: types.MustMoney("10"),
	})
	require.NoError(t, err)

	stored, _ := f.repo.GetLines(ctx, doc.ID)
	assert.True(t, stored[0].QuantityInvoiced.Equal(types.MustMoney("10")))

	// A second full billing would exceed the ordered quantity
	err = f.svc.RecordInvoiced(ctx, f.sc, doc.ID, map[id.ID]types.Quantity{
		lineID: types.MustMoney("1"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeFulfillmentExceeded))
}

func TestRecalculateTotals_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o := draftOrder(f.company)
	require.NoError(t, f.svc.Create(ctx, f.sc, o))

	first, err := f.svc.RecalculateTotals(ctx, f.sc, o.ID)
	require.NoError(t, err)
	second, err := f.svc.RecalculateTotals(ctx, f.sc, o.ID)
	require.NoError(t, err)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.TaxAmount.Equal(second.TaxAmount))
	assert.True(t, first.TotalAmount.Equal(second.TotalAmount))
}
