package entities

import "time"

type AuditEventType string

const (
	AuditEventAuth        AuditEventType = "auth"
	AuditEventAdmin       AuditEventType = "admin"
	AuditEventBulkLoad    AuditEventType = "bulk_load"
	AuditEventMaintenance AuditEventType = "maintenance"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ActorUsername string         `gorm:"index;size:24" json:"actor_username,omitempty"`
	EventType     AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action        string         `gorm:"size:100" json:"action"`      // e.g., "login", "remove_user"
	Description   string         `gorm:"size:500" json:"description"` // Human-readable summary
	Subject       string         `gorm:"size:512" json:"subject,omitempty"`
	IPAddress     string         `gorm:"size:45" json:"ip_address,omitempty"`
	Status        AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg      string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
