package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salescore/internal/core/apperror"
	"salescore/internal/core/id"
	"salescore/internal/infrastructure/storage/postgres"
)

// AuditHandler exposes the change history of audited entities.
type AuditHandler struct {
	*BaseHandler
	audit *postgres.AuditService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, audit *postgres.AuditService) *AuditHandler {
	return &AuditHandler{
		BaseHandler: base,
		audit:       audit,
	}
}

// History handles GET /audit/:entityType/:id
func (h *AuditHandler) History(c *gin.Context) {
	ctx := c.Request.Context()

	sc, ok := h.Scope(c)
	if !ok {
		return
	}

	entityType := c.Param("entityType")
	if entityType == "" {
		h.Error(c, apperror.NewValidation("entityType is required"))
		return
	}

	entityID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	limit := h.parseLimit(c)

	entries, err := h.audit.GetEntityHistory(ctx, sc, entityType, entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]gin.H, len(entries))
	for i, e := range entries {
		items[i] = gin.H{
			"id":        e.ID.String(),
			"action":    string(e.Action),
			"userId":    e.UserID,
			"changes":   e.Changes,
			"createdAt": e.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *AuditHandler) parseLimit(c *gin.Context) int {
	const defaultLimit = 50
	var q struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&q); err != nil || q.Limit <= 0 || q.Limit > 200 {
		return defaultLimit
	}
	return q.Limit
}
