package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/hillman/internal/entities"
)

const auditPageSize = 25

// AuditEventReader lists audit events, optionally by type.
type AuditEventReader interface {
	GetEvents(actor string, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// AuditController shows the audit log and triggers its pruning.
type AuditController struct {
	events    AuditEventReader
	cleanup   MaintenanceRunner
	presenter *Presenter
}

// NewAuditController creates an AuditController. cleanup may be nil, in which
// case the manual trigger answers 503.
func NewAuditController(events AuditEventReader, cleanup MaintenanceRunner, presenter *Presenter) *AuditController {
	return &AuditController{
		events:    events,
		cleanup:   cleanup,
		presenter: presenter,
	}
}

// AuditLog handles GET /audit?page=&type=&actor=
func (ac *AuditController) AuditLog(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit := parseLimit(c, 100)
	if limit == 0 {
		limit = auditPageSize
	}
	offset := (page - 1) * limit

	eventType := c.Query("type")

	var events []entities.AuditEvent
	var total int64
	var err error

	if eventType != "" {
		events, total, err = ac.events.GetEventsByType(entities.AuditEventType(eventType), limit, offset)
	} else {
		events, total, err = ac.events.GetEvents(c.Query("actor"), limit, offset)
	}
	if err != nil {
		ac.presenter.Fail(c, err, "")
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	ac.presenter.Render(c, http.StatusOK, "audit", gin.H{
		"Title":        "Audit log",
		"events":       events,
		"page":         page,
		"limit":        limit,
		"total_pages":  totalPages,
		"total_events": total,
		"event_type":   eventType,
		"EventTypes":   getEventTypes(),
	})
}

// RunCleanup handles POST /audit/cleanup
// Prunes old audit events now instead of waiting for the schedule.
func (ac *AuditController) RunCleanup(c *gin.Context) {
	if ac.cleanup == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "audit cleanup is not configured", RequestID: GetRequestID(c)})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	if err := ac.cleanup.RunNow(ctx); err != nil {
		ac.presenter.Fail(c, err, "/audit")
		return
	}
	ac.presenter.Done(c, http.StatusAccepted, "Audit cleanup started", "/audit", nil)
}

type EventTypeOption struct {
	Value string
	Label string
}

func getEventTypes() []EventTypeOption {
	return []EventTypeOption{
		{Value: "", Label: "All Events"},
		{Value: string(entities.AuditEventAuth), Label: "Authentication"},
		{Value: string(entities.AuditEventAdmin), Label: "Administration"},
		{Value: string(entities.AuditEventBulkLoad), Label: "Bulk load"},
		{Value: string(entities.AuditEventMaintenance), Label: "Maintenance"},
	}
}
