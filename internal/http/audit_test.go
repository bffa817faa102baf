package http

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/hillman/internal/entities"
)

type fakeEvents struct {
	events    []entities.AuditEvent
	actor     string
	eventType entities.AuditEventType
	limit     int
	offset    int
}

func (f *fakeEvents) GetEvents(actor string, limit, offset int) ([]entities.AuditEvent, int64, error) {
	f.actor, f.limit, f.offset = actor, limit, offset
	return f.events, int64(len(f.events)), nil
}

func (f *fakeEvents) GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	f.eventType, f.limit, f.offset = eventType, limit, offset
	return f.events, int64(len(f.events)), nil
}

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) RunNow(ctx context.Context) error {
	return f(ctx)
}

func setupAuditRouter(events *fakeEvents, cleanup MaintenanceRunner) *gin.Engine {
	controller := NewAuditController(events, cleanup, NewPresenter(false, nil))
	router := gin.New()
	router.GET("/audit", controller.AuditLog)
	router.POST("/audit/cleanup", controller.RunCleanup)
	return router
}

func TestAuditController_AuditLog(t *testing.T) {
	events := &fakeEvents{events: []entities.AuditEvent{
		{ID: 1, ActorUsername: "admin", EventType: entities.AuditEventAdmin, Action: "remove_user"},
	}}
	router := setupAuditRouter(events, nil)

	w := serve(router, newJSONRequest("GET", "/audit?page=3&actor=admin", ""))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "remove_user")
	assert.Equal(t, "admin", events.actor)
	assert.Equal(t, auditPageSize, events.limit)
	assert.Equal(t, 2*auditPageSize, events.offset)

	w = serve(router, newJSONRequest("GET", "/audit?type=bulk_load&limit=5", ""))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entities.AuditEventBulkLoad, events.eventType)
	assert.Equal(t, 5, events.limit)
}

func TestAuditController_RunCleanup(t *testing.T) {
	ran := 0
	router := setupAuditRouter(&fakeEvents{}, runnerFunc(func(context.Context) error {
		ran++
		return nil
	}))

	w := serve(router, newJSONRequest("POST", "/audit/cleanup", ""))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, ran)

	failing := setupAuditRouter(&fakeEvents{}, runnerFunc(func(context.Context) error {
		return errors.New("queue closed")
	}))
	w = serve(failing, newJSONRequest("POST", "/audit/cleanup", ""))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	unconfigured := setupAuditRouter(&fakeEvents{}, nil)
	w = serve(unconfigured, newJSONRequest("POST", "/audit/cleanup", ""))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
