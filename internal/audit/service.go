package audit

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/hillman/internal/database/audit"
	"github.com/mrlokans/hillman/internal/entities"
	"github.com/mrlokans/hillman/internal/utils"
)

// Service provides high-level audit logging functionality.
// A nil *Service is valid and records nothing.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	if s == nil {
		return nil
	}
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	if s == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until every LogAsync call issued so far has been written.
func (s *Service) Wait() {
	if s == nil {
		return
	}
	s.pending.Wait()
}

// LogAuth records a login, logout or registration attempt.
func (s *Service) LogAuth(actor, action, ipAddr string, err error) {
	event := &entities.AuditEvent{
		ActorUsername: utils.Truncate(actor, entities.MaxUsernameLength),
		EventType:     entities.AuditEventAuth,
		Action:        action,
		IPAddress:     ipAddr,
	}
	s.LogAsync(withOutcome(event, err))
}

// LogAdmin records a privileged action performed by actor on subject.
func (s *Service) LogAdmin(actor, action, subject, description string, err error) {
	event := &entities.AuditEvent{
		ActorUsername: actor,
		EventType:     entities.AuditEventAdmin,
		Action:        action,
		Subject:       utils.Truncate(subject, 512),
		Description:   utils.Truncate(description, 500),
	}
	s.LogAsync(withOutcome(event, err))
}

// LogBulkLoad records the outcome of loading a flat file.
func (s *Service) LogBulkLoad(actor, kind, source string, created, failed int, err error) {
	event := &entities.AuditEvent{
		ActorUsername: actor,
		EventType:     entities.AuditEventBulkLoad,
		Action:        "load_" + kind,
		Subject:       utils.Truncate(source, 512),
		Description:   fmt.Sprintf("Loaded %d %s, %d lines rejected", created, kind, failed),
	}
	s.LogAsync(withOutcome(event, err))
}

// LogMaintenance records a background job run.
func (s *Service) LogMaintenance(action, description string, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventMaintenance,
		Action:      action,
		Description: utils.Truncate(description, 500),
	}
	s.LogAsync(withOutcome(event, err))
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(actor string, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(actor, limit, offset)
}

// GetEventsByType retrieves paginated audit events of one type.
func (s *Service) GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(eventType, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func withOutcome(event *entities.AuditEvent, err error) *entities.AuditEvent {
	event.Status = entities.AuditStatusSuccess
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = utils.Truncate(err.Error(), 500)
	}
	return event
}
