package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salescore/internal/core/apperror"
	"salescore/internal/core/id"
	"salescore/internal/domain/payments"
	"salescore/internal/infrastructure/http/v1/dto"
)

// PaymentHandler handles customer payment endpoints.
type PaymentHandler struct {
	*BaseHandler
	service *payments.Service
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(base *BaseHandler, service *payments.Service) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Apply handles POST /invoices/:id/payments
// Applies a payment against the invoice and returns both the payment
// and the updated invoice state.
func (h *PaymentHandler) Apply(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	invoiceID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.ApplyPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	payment, inv, err := h.service.ApplyPayment(ctx, sc, invoiceID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.ApplyPaymentResponse{
		Payment: dto.FromPayment(payment),
		Invoice: dto.FromInvoice(inv),
	}
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// Record handles POST /payments
// Records an advance payment not applied to any invoice.
func (h *PaymentHandler) Record(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	var req dto.RecordPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	customerID, err := id.Parse(req.CustomerID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid customerId format"))
		return
	}
	currencyID, err := id.Parse(req.CurrencyID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid currencyId format"))
		return
	}

	payment, err := h.service.RecordUnapplied(ctx, sc, req.ToInput(customerID, currencyID))
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromPayment(payment)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// ListByInvoice handles GET /invoices/:id/payments
func (h *PaymentHandler) ListByInvoice(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	invoiceID, ok := h.ParseID(c)
	if !ok {
		return
	}

	items, err := h.service.ListByInvoice(ctx, sc, invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": dto.FromPaymentList(items)})
}

// Get handles GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	paymentID, ok := h.ParseID(c)
	if !ok {
		return
	}

	payment, err := h.service.GetByID(ctx, sc, paymentID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromPayment(payment))
}

// List handles GET /payments
func (h *PaymentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	var q dto.PaymentListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.service.List(ctx, sc, q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      dto.FromPaymentList(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
