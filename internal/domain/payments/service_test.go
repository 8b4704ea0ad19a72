package payments

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
	"salescore/internal/domain/documents/invoice"
	"salescore/internal/domain/events"
)

// fakePaymentRepo is an in-memory payment Repository.
type fakePaymentRepo struct {
	payments []*CustomerPayment
}

func (r *fakePaymentRepo) Create(ctx context.Context, sc scope.Scope, p *CustomerPayment) error {
	c := *p
	r.payments = append(r.payments, &c)
	return nil
}

func (r *fakePaymentRepo) GetByID(ctx context.Context, sc scope.Scope, paymentID id.ID) (*CustomerPayment, error) {
	for _, p := range r.payments {
		if p.ID == paymentID && p.CompanyID == sc.CompanyID {
			c := *p
			return &c, nil
		}
	}
	return nil, apperror.NewNotFound("payment", paymentID.String())
}

func (r *fakePaymentRepo) ListByInvoice(ctx context.Context, sc scope.Scope, invoiceID id.ID) ([]*CustomerPayment, error) {
	var out []*CustomerPayment
	for _, p := range r.payments {
		if p.InvoiceID == invoiceID && p.CompanyID == sc.CompanyID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) List(ctx context.Context, sc scope.Scope, filter ListFilter) (domain.ListResult[*CustomerPayment], error) {
	var out []*CustomerPayment
	for _, p := range r.payments {
		if p.CompanyID == sc.CompanyID {
			c := *p
			out = append(out, &c)
		}
	}
	return domain.ListResult[*CustomerPayment]{Items: out, TotalCount: int64(len(out))}, nil
}

// fakeInvoiceRepo holds invoices in memory. Only the methods the payment
// engine touches do real work.
type fakeInvoiceRepo struct {
	docs map[id.ID]*invoice.SalesInvoice
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{docs: make(map[id.ID]*invoice.SalesInvoice)}
}

func (r *fakeInvoiceRepo) clone(doc *invoice.SalesInvoice) *invoice.SalesInvoice {
	c := *doc
	c.Lines = nil
	return &c
}

func (r *fakeInvoiceRepo) Create(ctx context.Context, sc scope.Scope, doc *invoice.SalesInvoice) error {
	r.docs[doc.ID] = r.clone(doc)
	return nil
}

func (r *fakeInvoiceRepo) GetByID(ctx context.Context, sc scope.Scope, docID id.ID) (*invoice.SalesInvoice, error) {
	doc, ok := r.docs[docID]
	if !ok || doc.CompanyID != sc.CompanyID {
		return nil, apperror.NewNotFound("invoice", docID.String())
	}
	return r.clone(doc), nil
}

func (r *fakeInvoiceRepo) GetByNumber(ctx context.Context, sc scope.Scope, number string) (*invoice.SalesInvoice, error) {
	for _, doc := range r.docs {
		if doc.Number == number && doc.CompanyID == sc.CompanyID {
			return r.clone(doc), nil
		}
	}
	return nil, apperror.NewNotFound("invoice", number)
}

func (r *fakeInvoiceRepo) GetForUpdate(ctx context.Context, sc scope.Scope, docID id.ID) (*invoice.SalesInvoice, error) {
	return r.GetByID(ctx, sc, docID)
}

func (r *fakeInvoiceRepo) Update(ctx context.Context, sc scope.Scope, doc *invoice.SalesInvoice) error {
	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewNotFound("invoice", doc.ID.String())
	}
	r.docs[doc.ID] = r.clone(doc)
	return nil
}

func (r *fakeInvoiceRepo) GetLines(ctx context.Context, docID id.ID) ([]invoice.Line, error) {
	return nil, nil
}

func (r *fakeInvoiceRepo) SaveLines(ctx context.Context, docID id.ID, lines []invoice.Line) error {
	return nil
}

func (r *fakeInvoiceRepo) List(ctx context.Context, sc scope.Scope, filter invoice.ListFilter) (domain.ListResult[*invoice.SalesInvoice], error) {
	return domain.ListResult[*invoice.SalesInvoice]{}, nil
}

func (r *fakeInvoiceRepo) ListOverdueCandidates(ctx context.Context, sc scope.Scope, asOf time.Time, limit int) ([]*invoice.SalesInvoice, error) {
	return nil, nil
}

type fixture struct {
	payments *fakePaymentRepo
	invoices *fakeInvoiceRepo
	pub      *events.CapturePublisher
	svc      *Service
	sc       scope.Scope
	company  id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	company := id.New()
	payments := &fakePaymentRepo{}
	invoices := newFakeInvoiceRepo()
	pub := &events.CapturePublisher{}
	svc := NewService(payments, invoices, &numerator.MockGenerator{}, tx.Noop{}, pub)
	return &fixture{
		payments: payments,
		invoices: invoices,
		pub:      pub,
		svc:      svc,
		sc:       scope.New(company, id.New()),
		company:  company,
	}
}

// sentInvoice stores a SENT invoice with the given total and full balance.
func (f *fixture) sentInvoice(t *testing.T, total string) *invoice.SalesInvoice {
	t.Helper()
	inv := invoice.New(f.company, id.New(), time.Now().UTC().Add(30*24*time.Hour))
	inv.CurrencyID = id.New()
	inv.Number = "INV-2026-00001"
	inv.Status = invoice.StatusSent
	inv.TotalAmount = types.MustMoney(total)
	inv.BalanceDue = types.MustMoney(total)
	require.NoError(t, f.invoices.Create(context.Background(), f.sc, inv))
	return inv
}

func (f *fixture) apply(invoiceID id.ID, amount string) (*CustomerPayment, *invoice.SalesInvoice, error) {
	return f.svc.ApplyPayment(context.Background(), f.sc, invoiceID, ApplyInput{
		Amount: types.MustMoney(amount),
		Method: MethodBankTransfer,
	})
}

func TestApplyPayment_PartialThenFull(t *testing.T) {
	f := newFixture(t)
	inv := f.sentInvoice(t, "189.00")

	payment, updated, err := f.apply(inv.ID, "100.00")
	require.NoError(t, err)

	assert.NotEmpty(t, payment.Number)
	assert.Equal(t, StatusCompleted, payment.Status)
	assert.Equal(t, inv.CustomerID, payment.CustomerID)
	assert.Equal(t, invoice.StatusPartialPaid, updated.Status)
	assert.True(t, updated.PaidAmount.Equal(types.MustMoney("100.00")))
	assert.True(t, updated.BalanceDue.Equal(types.MustMoney("89.00")))
	assert.Nil(t, updated.PaidDate)

	_, updated, err = f.apply(inv.ID, "89.00")
	require.NoError(t, err)

	assert.Equal(t, invoice.StatusPaid, updated.Status)
	assert.True(t, updated.BalanceDue.IsZero())
	assert.True(t, updated.PaidAmount.Equal(types.MustMoney("189.00")))
	assert.NotNil(t, updated.PaidDate)

	history, err := f.svc.ListByInvoice(context.Background(), f.sc, inv.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestApplyPayment_PaidInvoiceRejected(t *testing.T) {
	f := newFixture(t)
	inv := f.sentInvoice(t, "50.00")

	_, _, err := f.apply(inv.ID, "50.00")
	require.NoError(t, err)

	before := *f.invoices.docs[inv.ID]
	_, _, err = f.apply(inv.ID, "1.00")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvoiceNotPayable))

	// Nothing changed: still one payment, invoice untouched
	assert.Equal(t, before, *f.invoices.docs[inv.ID])
	assert.Len(t, f.payments.payments, 1)
}

func TestApplyPayment_OverpaymentRejected(t *testing.T) {
	f := newFixture(t)
	inv := f.sentInvoice(t, "189.00")

	_, _, err := f.apply(inv.ID, "100.00")
	require.NoError(t, err)

	// Balance is 89.00; 100.00 exceeds it
	_, _, err = f.apply(inv.ID, "100.00")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodePaymentExceedsBalance))

	stored := f.invoices.docs[inv.ID]
	assert.True(t, stored.PaidAmount.Equal(types.MustMoney("100.00")))
	assert.True(t, stored.BalanceDue.Equal(types.MustMoney("89.00")))
	assert.Equal(t, invoice.StatusPartialPaid, stored.Status)
	assert.Len(t, f.payments.payments, 1)
}

func TestApplyPayment_NonPositiveAmount(t *testing.T) {
	f := newFixture(t)
	inv := f.sentInvoice(t, "100.00")

	for _, amount := range []string{"0", "-5.00"} {
		_, _, err := f.apply(inv.ID, amount)
		require.Error(t, err, "amount %s", amount)
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	}
	assert.Empty(t, f.payments.payments)
}

func TestApplyPayment_InvalidMethod(t *testing.T) {
	f := newFixture(t)
	inv := f.sentInvoice(t, "100.00")

	_, _, err := f.svc.ApplyPayment(context.Background(), f.sc, inv.ID, ApplyInput{
		Amount: types.MustMoney("10.00"),
		Method: Method("IOU"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestApplyPayment_OverdueInvoiceIsPayable(t *testing.T) {
	f := newFixture(t)
	inv := f.sentInvoice(t, "100.00")
	f.invoices.docs[inv.ID].Status = invoice.StatusOverdue

	_, updated, err := f.apply(inv.ID, "100.00")
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, updated.Status)
}

// paid_amount plus balance_due must equal total_amount after every
// successful application.
func TestApplyPayment_Conservation(t *testing.T) {
	f := newFixture(t)
	inv := f.sentInvoice(t, "500.00")

	var applied types.Money = types.Zero()
	for _, amount := range []string{"120.00", "0.01", "379.98", "0.01"} {
		_, updated, err := f.apply(inv.ID, amount)
		require.NoError(t, err)

		applied = applied.Add(types.MustMoney(amount))
		assert.True(t, updated.PaidAmount.Equal(applied))
		assert.True(t, updated.PaidAmount.Add(updated.BalanceDue).Equal(updated.TotalAmount),
			"conservation broken after %s", amount)
	}

	assert.Equal(t, invoice.StatusPaid, f.invoices.docs[inv.ID].Status)
}

func TestApplyPayment_PublishesEvents(t *testing.T) {
	f := newFixture(t)
	inv := f.sentInvoice(t, "189.00")

	payment, updated, err := f.apply(inv.ID, "100.00")
	require.NoError(t, err)

	appliedEvents := f.pub.ByType(events.TypePaymentApplied)
	require.Len(t, appliedEvents, 1)
	evt := appliedEvents[0].(events.PaymentApplied)
	assert.Equal(t, payment.ID, evt.PaymentID)
	assert.Equal(t, inv.ID, evt.InvoiceID)
	assert.True(t, evt.BalanceDue.Equal(updated.BalanceDue))

	changed := f.pub.ByType(events.TypeInvoiceStatusChanged)
	require.Len(t, changed, 1)
	status := changed[0].(events.InvoiceStatusChanged)
	assert.Equal(t, string(invoice.StatusSent), status.FromStatus)
	assert.Equal(t, string(invoice.StatusPartialPaid), status.ToStatus)

	// A payment within PARTIAL_PAID changes no status, so only the
	// applied event fires
	_, _, err = f.apply(inv.ID, "10.00")
	require.NoError(t, err)
	assert.Len(t, f.pub.ByType(events.TypePaymentApplied), 2)
	assert.Len(t, f.pub.ByType(events.TypeInvoiceStatusChanged), 1)
}

func TestApplyPayment_DefaultsPaymentDate(t *testing.T) {
	f := newFixture(t)
	inv := f.sentInvoice(t, "100.00")

	payment, _, err := f.apply(inv.ID, "25.00")
	require.NoError(t, err)
	assert.False(t, payment.Date.IsZero())
	assert.Equal(t, inv.CurrencyID, payment.CurrencyID)
}

func TestRecordUnapplied(t *testing.T) {
	f := newFixture(t)

	t.Run("records an advance without an invoice", func(t *testing.T) {
		payment, err := f.svc.RecordUnapplied(context.Background(), f.sc, RecordInput{
			CustomerID: id.New(),
			CurrencyID: id.New(),
			Amount:     types.MustMoney("500.00"),
			Method:     MethodBankTransfer,
			Reference:  "wire-4711",
		})
		require.NoError(t, err)
		assert.False(t, payment.IsApplied())
		assert.NotEmpty(t, payment.Number)
		assert.Equal(t, StatusCompleted, payment.Status)
		assert.False(t, payment.Date.IsZero())
		assert.Empty(t, f.pub.Events)
	})

	t.Run("requires a customer", func(t *testing.T) {
		_, err := f.svc.RecordUnapplied(context.Background(), f.sc, RecordInput{
			CurrencyID: id.New(),
			Amount:     types.MustMoney("10.00"),
			Method:     MethodCash,
		})
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := f.svc.RecordUnapplied(context.Background(), f.sc, RecordInput{
			CustomerID: id.New(),
			CurrencyID: id.New(),
			Amount:     types.MustMoney("0.00"),
			Method:     MethodCash,
		})
		require.Error(t, err)
	})
}
