package handler

import (
	"github.com/agency/backoffice/internal/application/activity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ActivityLogHandler exposes the tenant audit trail to admins
type ActivityLogHandler struct {
	BaseHandler
	logs *activity.Service
}

// NewActivityLogHandler creates a new activity log handler
func NewActivityLogHandler(logs *activity.Service) *ActivityLogHandler {
	return &ActivityLogHandler{logs: logs}
}

// List godoc
// @Summary  Page through who changed what
// @Router   /activity-logs [get]
func (h *ActivityLogHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var q ActivityLogQuery
	if !h.bindQuery(c, &q) {
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = 20
	}

	logs, total, err := h.logs.List(c.Request.Context(), tenantID, activity.ListFilter{
		Page:       q.Page,
		PageSize:   q.PageSize,
		Search:     q.Search,
		EntityType: q.EntityType,
		EntityID:   optionalUUID(q.EntityID),
		ActorID:    optionalUUID(q.ActorID),
		Oldest:     q.Order == "oldest",
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, logs, total, q.Page, q.PageSize)
}

// optionalUUID parses a query value already checked by the uuid binding tag
func optionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
