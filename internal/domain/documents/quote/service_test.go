package quote

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
	"salescore/internal/domain/events"
)

// fakeRepo is an in-memory Repository for unit tests.
type fakeRepo struct {
	docs  map[id.ID]*Quote
	lines map[id.ID][]Line
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs:  make(map[id.ID]*Quote),
		lines: make(map[id.ID][]Line),
	}
}

func (r *fakeRepo) clone(doc *Quote) *Quote {
	c := *doc
	c.Lines = nil
	return &c
}

func (r *fakeRepo) Create(ctx context.Context, sc scope.Scope, doc *Quote) error {
	r.docs[doc.ID] = r.clone(doc)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, sc scope.Scope, docID id.ID) (*Quote, error) {
	doc, ok := r.docs[docID]
	if !ok || doc.CompanyID != sc.CompanyID {
		return nil, apperror.NewNotFound("quote", docID.String())
	}
	return r.clone(doc), nil
}

func (r *fakeRepo) GetByNumber(ctx context.Context, sc scope.Scope, number string) (*Quote, error) {
	for _, doc := range r.docs {
		if doc.Number == number && doc.CompanyID == sc.CompanyID {
			return r.clone(doc), nil
		}
	}
	return nil, apperror.NewNotFound("quote", number)
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, sc scope.Scope, docID id.ID) (*Quote, error) {
	return r.GetByID(ctx, sc, docID)
}

func (r *fakeRepo) Update(ctx context.Context, sc scope.Scope, doc *Quote) error {
	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewNotFound("quote", doc.ID.String())
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

func (r *fakeRepo) List(ctx context.Context, sc scope.Scope, filter ListFilter) (domain.ListResult[*Quote], error) {
	var items []*Quote
	for _, doc := range r.docs {
		if doc.CompanyID != sc.CompanyID {
			continue
		}
		if filter.Status != nil && doc.Status != *filter.Status {
			continue
		}
		items = append(items, r.clone(doc))
	}
	return domain.ListResult[*Quote]{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *fakeRepo) ListExpiring(ctx context.Context, sc scope.Scope, asOf time.Time, limit int) ([]*Quote, error) {
	var out []*Quote
	for _, doc := range r.docs {
		if doc.CompanyID == sc.CompanyID && doc.IsExpired(asOf) {
			out = append(out, r.clone(doc))
		}
	}
	return out, nil
}

type fakeOrderFactory struct {
	orderID id.ID
	calls   int
	err     error
}

func (f *fakeOrderFactory) CreateFromQuote(ctx context.Context, sc scope.Scope, q *Quote) (id.ID, error) {
	f.calls++
	if f.err != nil {
		return id.Nil(), f.err
	}
	if id.IsNil(f.orderID) {
		f.orderID = id.New()
	}
	return f.orderID, nil
}

type fixture struct {
	repo    *fakeRepo
	orders  *fakeOrderFactory
	pub     *events.CapturePublisher
	svc     *Service
	sc      scope.Scope
	company id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	company := id.New()
	repo := newFakeRepo()
	orders := &fakeOrderFactory{}
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

func draftQuote(companyID id.ID) *Quote {
	q := New(companyID, id.New())
	q.CurrencyID = id.New()
	q.AddLine(Line{
		ProductID: id.New(),
		Quantity:  types.MustMoney("2"),
		UnitPrice: types.MustMoney("100.00"),
	})
	return q
}

func TestCreate_AssignsNumberAndTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q := draftQuote(f.company)
	require.NoError(t, f.svc.Create(ctx, f.sc, q))

	assert.NotEmpty(t, q.Number)
	assert.Equal(t, StatusDraft, q.Status)
	assert.True(t, q.TotalAmount.Equal(types.MustMoney("200.00")))

	stored, err := f.svc.GetByID(ctx, f.sc, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.Number, stored.Number)
	assert.Len(t, stored.Lines, 1)
}

func TestCreate_EmptyLinesFails(t *testing.T) {
	f := newFixture(t)

	q := New(f.company, id.New())
	q.CurrencyID = id.New()
	err := f.svc.Create(context.Background(), f.sc, q)

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestCreate_ValidUntilBeforeDateFails(t *testing.T) {
	f := newFixture(t)

	q := draftQuote(f.company)
	past := q.Date.Add(-24 * time.Hour)
	q.ValidUntil = &past

	err := f.svc.Create(context.Background(), f.sc, q)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestUpdate_OnlyDraftEditable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q := draftQuote(f.company)
	require.NoError(t, f.svc.Create(ctx, f.sc, q))
	_, err := f.svc.ChangeStatus(ctx, f.sc, q.ID, StatusSent, "")
	require.NoError(t, err)

	sent, err := f.svc.GetByID(ctx, f.sc, q.ID)
	require.NoError(t, err)
	sent.Notes = "revised"

	err = f.svc.Update(ctx, f.sc, sent)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeDocumentNotEditable))
}

func TestChangeStatus_SentStampsDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q := draftQuote(f.company)
	require.NoError(t, f.svc.Create(ctx, f.sc, q))

	updated, err := f.svc.ChangeStatus(ctx, f.sc, q.ID, StatusSent, "")
	require.NoError(t, err)
	assert.Equal(t, StatusSent, updated.Status)
	assert.NotNil(t, updated.SentDate)

	evts := f.pub.ByType(events.TypeQuoteStatusChanged)
	require.Len(t, evts, 1)
	sc := evts[0].(events.QuoteStatusChanged)
	assert.Equal(t, "DRAFT", sc.FromStatus)
	assert.Equal(t, "SENT", sc.ToStatus)
}

func TestChangeStatus_RejectedRequiresReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q := draftQuote(f.company)
	require.NoError(t, f.svc.Create(ctx, f.sc, q))
	_, err := f.svc.ChangeStatus(ctx, f.sc, q.ID, StatusSent, "")
	require.NoError(t, err)

	_, err = f.svc.ChangeStatus(ctx, f.sc, q.ID, StatusRejected, "")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	updated, err := f.svc.ChangeStatus(ctx, f.sc, q.ID, StatusRejected, "price too high")
	require.NoError(t, err)
	require.NotNil(t, updated.RejectionReason)
	assert.Equal(t, "price too high", *updated.RejectionReason)
}

func TestChangeStatus_SameStatusIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q := draftQuote(f.company)
	require.NoError(t, f.svc.Create(ctx, f.sc, q))

	updated, err := f.svc.ChangeStatus(ctx, f.sc, q.ID, StatusDraft, "")
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, updated.Status)
	assert.Empty(t, f.pub.Events)
}

// TestChangeStatus_TransitionClosure drives every (from, to) pair through
// the state machine and verifies the service fails closed with no
// document mutation on every pair outside the transition table.
func TestChangeStatus_TransitionClosure(t *testing.T) {
	all := []Status{StatusDraft, StatusSent, StatusAccepted, StatusRejected,
		StatusExpired, StatusConverted, StatusCancelled}

	allowed := map[Status]map[Status]bool{
		StatusDraft:    {StatusSent: true, StatusCancelled: true},
		StatusSent:     {StatusAccepted: true, StatusRejected: true, StatusExpired: true, StatusCancelled: true},
		StatusAccepted: {StatusConverted: true},
	}

	for _, from := range all {
		for _, to := range all {
			if from == to || allowed[from][to] {
				continue
			}
			// ConvertToOrder owns the ACCEPTED->CONVERTED edge; a
			// direct change to CONVERTED is rejected separately.
			if to == StatusConverted {
				continue
			}

			f := newFixture(t)
			ctx := context.Background()
			q := draftQuote(f.company)
			require.NoError(t, f.svc.Create(ctx, f.sc, q))

			// Force the starting status directly in storage.
			f.repo.docs[q.ID].Status = from
			before := *f.repo.docs[q.ID]

			_, err := f.svc.ChangeStatus(ctx, f.sc, q.ID, to, "because")
			require.Error(t, err, "%s -> %s must fail", from, to)
			assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTransition),
				"%s -> %s: got %v", from, to, err)
			assert.Equal(t, before, *f.repo.docs[q.ID],
				"%s -> %s must not mutate the document", from, to)
		}
	}
}

func TestConvert_RequiresAccepted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q := draftQuote(f.company)
	require.NoError(t, f.svc.Create(ctx, f.sc, q))
	_, err := f.svc.ChangeStatus(ctx, f.sc, q.ID, StatusSent, "")
	require.NoError(t, err)

	// SENT is not enough; the quote must be accepted first.
	_, err = f.svc.ConvertToOrder(ctx, f.sc, q.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTransition))
	assert.Zero(t, f.orders.calls)
}

func TestConvert_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q := draftQuote(f.company)
	require.NoError(t, f.svc.Create(ctx, f.sc, q))
	_, err := f.svc.ChangeStatus(ctx, f.sc, q.ID, StatusSent, "")
	require.NoError(t, err)
	_, err = f.svc.ChangeStatus(ctx, f.sc, q.ID, StatusAccepted, "")
	require.NoError(t, err)

	orderID, err := f.svc.ConvertToOrder(ctx, f.sc, q.ID)
	require.NoError(t, err)
	assert.False(t, id.IsNil(orderID))

	converted, err := f.svc.GetByID(ctx, f.sc, q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConverted, converted.Status)
	require.NotNil(t, converted.ConvertedOrderID)
	assert.Equal(t, orderID, *converted.ConvertedOrderID)

	require.Len(t, f.pub.ByType(events.TypeQuoteConverted), 1)
}

func TestConvert_OrderFailureLeavesQuoteUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q := draftQuote(f.company)
	require.NoError(t, f.svc.Create(ctx, f.sc, q))
	_, err := f.svc.ChangeStatus(ctx, f.sc, q.ID, StatusSent, "")
	require.NoError(t, err)
	_, err = f.svc.ChangeStatus(ctx, f.sc, q.ID, StatusAccepted, "")
	require.NoError(t, err)

	f.orders.err = apperror.NewInternal(nil)
	_, err = f.svc.ConvertToOrder(ctx, f.sc, q.ID)
	require.Error(t, err)

	doc, err := f.svc.GetByID(ctx, f.sc, q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, doc.Status)
	assert.Nil(t, doc.ConvertedOrderID)
}

func TestMarkExpired_SweepsSentQuotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q := draftQuote(f.company)
	until := time.Now().UTC().Add(24 * time.Hour)
	q.ValidUntil = &until
	require.NoError(t, f.svc.Create(ctx, f.sc, q))
	_, err := f.svc.ChangeStatus(ctx, f.sc, q.ID, StatusSent, "")
	require.NoError(t, err)

	// Not yet expired
	n, err := f.svc.MarkExpired(ctx, f.sc, time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, n)

	// Past validity
	n, err = f.svc.MarkExpired(ctx, f.sc, until.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	doc, err := f.svc.GetByID(ctx, f.sc, q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, doc.Status)

	// Idempotent
	n, err = f.svc.MarkExpired(ctx, f.sc, until.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGetByID_ScopedByCompany(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q := draftQuote(f.company)
	require.NoError(t, f.svc.Create(ctx, f.sc, q))

	other := scope.New(id.New(), id.New())
	_, err := f.svc.GetByID(ctx, other, q.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
