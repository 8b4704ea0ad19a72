package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salescore/internal/core/apperror"
	"salescore/internal/core/id"
	"salescore/internal/domain/documents/invoice"
	"salescore/internal/infrastructure/http/v1/dto"
)

// InvoiceHandler handles sales invoice lifecycle endpoints.
type InvoiceHandler struct {
	*BaseHandler
	service *invoice.Service
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	var q dto.InvoiceListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.service.List(ctx, sc, q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      dto.FromInvoiceList(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(ctx, sc, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromInvoice(doc))
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	var req dto.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc := req.ToEntity(sc.CompanyID)

	if err := h.service.Create(ctx, sc, doc); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromInvoice(doc)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// CreateFromOrder handles POST /invoices/from-order
// Bills the uninvoiced remainder of a confirmed sales order.
func (h *InvoiceHandler) CreateFromOrder(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	var req dto.CreateInvoiceFromOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	orderID, err := id.Parse(req.OrderID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid orderId format"))
		return
	}

	doc, err := h.service.CreateFromOrder(ctx, sc, orderID, req.DueDate)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromInvoice(doc)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// Update handles PUT /invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.GetByID(ctx, sc, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(doc)

	if err := h.service.Update(ctx, sc, doc); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromInvoice(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// ChangeStatus handles POST /invoices/:id/status
func (h *InvoiceHandler) ChangeStatus(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.ChangeInvoiceStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.ChangeStatus(ctx, sc, docID, invoice.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromInvoice(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// RecalculateTotals handles POST /invoices/:id/recalculate
func (h *InvoiceHandler) RecalculateTotals(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	doc, err := h.service.RecalculateTotals(ctx, sc, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoice(doc))
}
