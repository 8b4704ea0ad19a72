package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salescore/internal/domain/documents/quote"
	"salescore/internal/infrastructure/http/v1/dto"
)

// QuoteHandler handles quote lifecycle endpoints.
type QuoteHandler struct {
	*BaseHandler
	service *quote.Service
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(base *BaseHandler, service *quote.Service) *QuoteHandler {
	return &QuoteHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /quotes
func (h *QuoteHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	var q dto.QuoteListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.service.List(ctx, sc, q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      dto.FromQuoteList(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /quotes/:id
func (h *QuoteHandler) Get(c *gin.Context) {
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

	c.JSON(http.StatusOK, dto.FromQuote(doc))
}

// Create handles POST /quotes
func (h *QuoteHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	var req dto.CreateQuoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc := req.ToEntity(sc.CompanyID)

	if err := h.service.Create(ctx, sc, doc); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromQuote(doc)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// Update handles PUT /quotes/:id
func (h *QuoteHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateQuoteRequest
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

	response := dto.FromQuote(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// ChangeStatus handles POST /quotes/:id/status
func (h *QuoteHandler) ChangeStatus(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.ChangeQuoteStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.ChangeStatus(ctx, sc, docID, quote.Status(req.Status), req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromQuote(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// ConvertToOrder handles POST /quotes/:id/convert
func (h *QuoteHandler) ConvertToOrder(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	orderID, err := h.service.ConvertToOrder(ctx, sc, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, orderID)
}

// RecalculateTotals handles POST /quotes/:id/recalculate
func (h *QuoteHandler) RecalculateTotals(c *gin.Context) {
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

	h.OK(c, dto.FromQuote(doc))
}
