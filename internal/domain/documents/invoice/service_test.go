package invoice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescore/internal/core/apperror"
	"salescore/internal/core/id"
	"salescore/internal/core/numerator"
	"salescore/internal/core/scope"
	"salescore/internal/core/tx"
	"salescore/internal/core/types"
	"salescore/internal/domain"
	"salescore/internal/domain/documents/salesorder"
	"salescore/internal/domain/events"
)

// fakeRepo is an in-memory Repository for unit tests.
type fakeRepo struct {
	docs  map[id.ID]*SalesInvoice
	lines map[id.ID][]Line
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs:  make(map[id.ID]*SalesInvoice),
		lines: make(map[id.ID][]Line),
	}
}

func (r *fakeRepo) clone(doc *SalesInvoice) *SalesInvoice {
	c := *doc
	c.Lines = nil
	return &c
}

func (r *fakeRepo) Create(ctx context.Context, sc scope.Scope, doc *SalesInvoice) error {
	r.docs[doc.ID] = r.clone(doc)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, sc scope.Scope, docID id.ID) (*SalesInvoice, error) {
	doc, ok := r.docs[docID]
	if !ok || doc.CompanyID != sc.CompanyID {
		return nil, apperror.NewNotFound("invoice", docID.String())
	}
	return r.clone(doc), nil
}

func (r *fakeRepo) GetByNumber(ctx context.Context, sc scope.Scope, number string) (*SalesInvoice, error) {
	for _, doc := range r.docs {
		if doc.Number == number && doc.CompanyID == sc.CompanyID {
			return r.clone(doc), nil
		}
	}
	return nil, apperror.NewNotFound("invoice", number)
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, sc scope.Scope, docID id.ID) (*SalesInvoice, error) {
	return r.GetByID(ctx, sc, docID)
}

func (r *fakeRepo) Update(ctx context.Context, sc scope.Scope, doc *SalesInvoice) error {
	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewNotFound("invoice", doc.ID.String())
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

func (r *fakeRepo) List(ctx context.Context, sc scope.Scope, filter ListFilter) (domain.ListResult[*SalesInvoice], error) {
	var items []*SalesInvoice
	for _, doc := range r.docs {
		if doc.CompanyID != sc.CompanyID {
			continue
		}
		items = append(items, r.clone(doc))
	}
	return domain.ListResult[*SalesInvoice]{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *fakeRepo) ListOverdueCandidates(ctx context.Context, sc scope.Scope, asOf time.Time, limit int) ([]*SalesInvoice, error) {
	var out []*SalesInvoice
	for _, doc := range r.docs {
		if doc.CompanyID != sc.CompanyID {
			continue
		}
		if doc.Status != StatusSent && doc.Status != StatusPartialPaid {
			continue
		}
		if !doc.DueDate.Before(asOf) || !doc.BalanceDue.IsPositive() {
			continue
		}
		out = append(out, r.clone(doc))
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// fakeOrderSource serves one stored order and applies invoiced quantities
// to it, mirroring the order service contract.
type fakeOrderSource struct {
	order         *salesorder.SalesOrder
	invoicedCalls []map[id.ID]types.Quantity
}

func (f *fakeOrderSource) GetByID(ctx context.Context, sc scope.Scope, docID id.ID) (*salesorder.SalesOrder, error) {
	if f.order == nil || f.order.ID != docID {
		return nil, apperror.NewNotFound("sales order", docID.String())
	}
	return f.order, nil
}

func (f *fakeOrderSource) RecordInvoiced(ctx context.Context, sc scope.Scope, docID id.ID, quantities map[id.ID]types.Quantity) error {
	f.invoicedCalls = append(f.invoicedCalls, quantities)
	for lineID, qty := range quantities {
		line := f.order.FindLine(lineID)
		if line == nil {
			return apperror.NewNotFound("order line", lineID.String())
		}
		line.QuantityInvoiced = line.QuantityInvoiced.Add(qty)
	}
	return nil
}

type fixture struct {
	repo    *fakeRepo
	orders  *fakeOrderSource
	pub     *events.CapturePublisher
	svc     *Service
	sc      scope.Scope
	company id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	company := id.New()
	repo := newFakeRepo()
	orders := &fakeOrderSource{}
	pub := &events.CapturePublisher{}
	svc := NewService(repo, orders, &numerator.MockGenerator{}, tx.Noop{}, pub)
	return &fixture{
		repo:    repo,
		orders:  orders,
		pub:     pub,
		svc:     svc,
		sc:      scope.New(company, id.New()),
		company: company,
	}
}

func draftInvoice(companyID id.ID) *SalesInvoice {
	inv := New(companyID, id.New(), time.Now().UTC().Add(14*24*time.Hour))
	inv.CurrencyID = id.New()
	inv.AddLine(Line{
		ProductID: id.New(),
		Quantity:  types.MustMoney("2"),
		UnitPrice: types.MustMoney("100.00"),
	})
	return inv
}

func (f *fixture) createInStatus(t *testing.T, status Status) *SalesInvoice {
	t.Helper()
	ctx := context.Background()
	inv := draftInvoice(f.company)
	require.NoError(t, f.svc.Create(ctx, f.sc, inv))
	f.repo.docs[inv.ID].Status = status
	doc, err := f.svc.GetByID(ctx, f.sc, inv.ID)
	require.NoError(t, err)
	return doc
}

func TestCreate_AssignsNumberAndBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv := draftInvoice(f.company)
	require.NoError(t, f.svc.Create(ctx, f.sc, inv))

	assert.NotEmpty(t, inv.Number)
	assert.Equal(t, StatusDraft, inv.Status)
	assert.True(t, inv.TotalAmount.Equal(types.MustMoney("200.00")))
	assert.True(t, inv.BalanceDue.Equal(inv.TotalAmount))
	assert.True(t, inv.PaidAmount.IsZero())
}

func TestCreate_DueDateBeforeInvoiceDateFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv := draftInvoice(f.company)
	inv.DueDate = inv.Date.Add(-24 * time.Hour)

	err := f.svc.Create(ctx, f.sc, inv)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func confirmedOrder(f *fixture) *salesorder.SalesOrder {
	o := salesorder.New(f.company, id.New())
	o.CurrencyID = id.New()
	o.AddLine(salesorder.Line{
		ProductID: id.New(),
		Quantity:  types.MustMoney("10"),
		UnitPrice: types.MustMoney("25.00"),
	})
	o.AddLine(salesorder.Line{
		ProductID: id.New(),
		Quantity:  types.MustMoney("4"),
		UnitPrice: types.MustMoney("50.00"),
	})
	o.Number = "SO-2026-00001"
	o.Status = salesorder.StatusConfirmed
	return o
}

func TestCreateFromOrder_BillsRemainingQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := confirmedOrder(f)
	order.Lines[0].QuantityInvoiced = types.MustMoney("6")
	f.orders.order = order
	dueDate := time.Now().UTC().Add(30 * 24 * time.Hour)

	inv, err := f.svc.CreateFromOrder(ctx, f.sc, order.ID, dueDate)
	require.NoError(t, err)

	require.NotNil(t, inv.OrderID)
	assert.Equal(t, order.ID, *inv.OrderID)
	assert.Equal(t, order.CustomerID, inv.CustomerID)
	assert.Equal(t, StatusDraft, inv.Status)
	require.Len(t, inv.Lines, 2)

	// Line 1 bills the remaining 4 of 10; line 2 the full 4
	assert.True(t, inv.Lines[0].Quantity.Equal(types.MustMoney("4")))
	assert.True(t, inv.Lines[1].Quantity.Equal(types.MustMoney("4")))
	require.NotNil(t, inv.Lines[0].OrderLineID)
	assert.Equal(t, order.Lines[0].LineID, *inv.Lines[0].OrderLineID)

	// 4*25 + 4*50 = 300
	assert.True(t, inv.TotalAmount.Equal(types.MustMoney("300.00")))
	assert.True(t, inv.BalanceDue.Equal(types.MustMoney("300.00")))

	// Order lines are now fully invoiced
	require.Len(t, f.orders.invoicedCalls, 1)
	assert.True(t, order.Lines[0].QuantityInvoiced.Equal(types.MustMoney("10")))
	assert.True(t, order.Lines[1].QuantityInvoiced.Equal(types.MustMoney("4")))
}

func TestCreateFromOrder_RequiresActiveOrder(t *testing.T) {
	for _, status := range []salesorder.Status{
		salesorder.StatusDraft, salesorder.StatusCancelled, salesorder.StatusReturned,
	} {
		f := newFixture(t)
		order := confirmedOrder(f)
		order.Status = status
		f.orders.order = order

		_, err := f.svc.CreateFromOrder(context.Background(), f.sc, order.ID,
			time.Now().UTC().Add(24*time.Hour))
		require.Error(t, err, "status %s", status)
		assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTransition))
		assert.Empty(t, f.orders.invoicedCalls)
	}
}

func TestCreateFromOrder_NothingLeftToBill(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := confirmedOrder(f)
	order.Lines[0].QuantityInvoiced = order.Lines[0].Quantity
	order.Lines[1].QuantityInvoiced = order.Lines[1].Quantity
	f.orders.order = order

	_, err := f.svc.CreateFromOrder(ctx, f.sc, order.ID,
		time.Now().UTC().Add(24*time.Hour))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestChangeStatus_SentStampsDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv := draftInvoice(f.company)
	require.NoError(t, f.svc.Create(ctx, f.sc, inv))

	doc, err := f.svc.ChangeStatus(ctx, f.sc, inv.ID, StatusSent)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, doc.Status)
	assert.NotNil(t, doc.SentDate)

	changed := f.pub.ByType(events.TypeInvoiceStatusChanged)
	require.Len(t, changed, 1)
	evt := changed[0].(events.InvoiceStatusChanged)
	assert.Equal(t, string(StatusDraft), evt.FromStatus)
	assert.Equal(t, string(StatusSent), evt.ToStatus)
}

func TestChangeStatus_TransitionClosure(t *testing.T) {
	all := []Status{StatusDraft, StatusSent, StatusPartialPaid, StatusPaid,
		StatusOverdue, StatusCancelled, StatusVoid}

	allowed := map[Status]map[Status]bool{
		StatusDraft:       {StatusSent: true, StatusCancelled: true},
		StatusSent:        {StatusPartialPaid: true, StatusPaid: true, StatusOverdue: true, StatusCancelled: true},
		StatusPartialPaid: {StatusPaid: true, StatusOverdue: true, StatusCancelled: true},
		StatusOverdue:     {StatusPartialPaid: true, StatusPaid: true, StatusCancelled: true},
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

// VOID is a valid stored status but no transition reaches it.
func TestChangeStatus_VoidIsUnreachable(t *testing.T) {
	f := newFixture(t)
	doc := f.createInStatus(t, StatusDraft)

	_, err := f.svc.ChangeStatus(context.Background(), f.sc, doc.ID, StatusVoid)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTransition))
}

func TestCheckOverdue_SweepsPastDueInvoices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	pastDue := f.createInStatus(t, StatusSent)
	f.repo.docs[pastDue.ID].DueDate = now.Add(-48 * time.Hour)

	partialPastDue := f.createInStatus(t, StatusPartialPaid)
	f.repo.docs[partialPastDue.ID].DueDate = now.Add(-24 * time.Hour)

	notYetDue := f.createInStatus(t, StatusSent)
	f.repo.docs[notYetDue.ID].DueDate = now.Add(24 * time.Hour)

	draft := f.createInStatus(t, StatusDraft)
	f.repo.docs[draft.ID].DueDate = now.Add(-48 * time.Hour)

	moved, err := f.svc.CheckOverdue(ctx, f.sc, now)
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	assert.Equal(t, StatusOverdue, f.repo.docs[pastDue.ID].Status)
	assert.Equal(t, StatusOverdue, f.repo.docs[partialPastDue.ID].Status)
	assert.Equal(t, StatusSent, f.repo.docs[notYetDue.ID].Status)
	assert.Equal(t, StatusDraft, f.repo.docs[draft.ID].Status)

	assert.Len(t, f.pub.ByType(events.TypeInvoiceOverdue), 2)
}

func TestCheckOverdue_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	inv := f.createInStatus(t, StatusSent)
	f.repo.docs[inv.ID].DueDate = now.Add(-48 * time.Hour)

	moved, err := f.svc.CheckOverdue(ctx, f.sc, now)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	moved, err = f.svc.CheckOverdue(ctx, f.sc, now)
	require.NoError(t, err)
	assert.Equal(t, 0, moved)

	// The overdue event fired exactly once
	assert.Len(t, f.pub.ByType(events.TypeInvoiceOverdue), 1)
}

func TestCheckOverdue_SkipsSettledBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	inv := f.createInStatus(t, StatusSent)
	stored := f.repo.docs[inv.ID]
	stored.DueDate = now.Add(-48 * time.Hour)
	stored.PaidAmount = stored.TotalAmount
	stored.BalanceDue = types.Zero()

	moved, err := f.svc.CheckOverdue(ctx, f.sc, now)
	require.NoError(t, err)
	assert.Equal(t, 0, moved)
	assert.Equal(t, StatusSent, f.repo.docs[inv.ID].Status)
}

func TestUpdate_BlockedAfterPartialPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := f.createInStatus(t, StatusPartialPaid)
	doc.Lines, _ = f.repo.GetLines(ctx, doc.ID)

	err := f.svc.Update(ctx, f.sc, doc)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeDocumentNotEditable))
}
