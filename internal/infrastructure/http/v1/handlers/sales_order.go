package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salescore/internal/core/apperror"
	"salescore/internal/core/id"
	"salescore/internal/domain/documents/salesorder"
	"salescore/internal/infrastructure/http/v1/dto"
)

// SalesOrderHandler handles sales order lifecycle endpoints.
type SalesOrderHandler struct {
	*BaseHandler
	service *salesorder.Service
}

// NewSalesOrderHandler creates a new sales order handler.
func NewSalesOrderHandler(base *BaseHandler, service *salesorder.Service) *SalesOrderHandler {
	return &SalesOrderHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /sales-orders
func (h *SalesOrderHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	var q dto.SalesOrderListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.service.List(ctx, sc, q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      dto.FromSalesOrderList(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /sales-orders/:id
func (h *SalesOrderHandler) Get(c *gin.Context) {
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

	c.JSON(http.StatusOK, dto.FromSalesOrder(doc))
}

// Create handles POST /sales-orders
func (h *SalesOrderHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	var req dto.CreateSalesOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc := req.ToEntity(sc.CompanyID)

	if err := h.service.Create(ctx, sc, doc); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromSalesOrder(doc)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// Update handles PUT /sales-orders/:id
func (h *SalesOrderHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateSalesOrderRequest
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

	response := dto.FromSalesOrder(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// ChangeStatus handles POST /sales-orders/:id/status
func (h *SalesOrderHandler) ChangeStatus(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.ChangeOrderStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.ChangeStatus(ctx, sc, docID, salesorder.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromSalesOrder(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// RecordFulfillment handles POST /sales-orders/:id/fulfillment
func (h *SalesOrderHandler) RecordFulfillment(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.RecordFulfillmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lineID, err := id.Parse(req.LineID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid lineId format"))
		return
	}

	doc, err := h.service.RecordFulfillment(ctx, sc, docID, lineID, req.QuantityShipped)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromSalesOrder(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// RecalculateTotals handles POST /sales-orders/:id/recalculate
func (h *SalesOrderHandler) RecalculateTotals(c *gin.Context) {
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

	h.OK(c, dto.FromSalesOrder(doc))
}
