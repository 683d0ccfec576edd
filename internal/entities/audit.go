package entities

import "time"

type AuditEventType string

const (
	AuditEventAuth      AuditEventType = "auth"
	AuditEventCatalog   AuditEventType = "catalog"
	AuditEventBorrowing AuditEventType = "borrowing"
	AuditEventReview    AuditEventType = "review"
	AuditEventProfile   AuditEventType = "profile"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id" bson:"-"`
	UserID      string         `gorm:"index;size:36" json:"userId" bson:"userId"`
	EventType   AuditEventType `gorm:"index;size:50" json:"eventType" bson:"eventType"`
	Action      string         `gorm:"size:100" json:"action" bson:"action"`                  // e.g., "login", "book_delete"
	Description string         `gorm:"size:500" json:"description" bson:"description"`        // Human-readable summary
	EntityType  string         `gorm:"size:50" json:"entityType,omitempty" bson:"entityType"` // "book", "review", "user"
	EntityID    string         `gorm:"index;size:36" json:"entityId,omitempty" bson:"entityId"`
	IPAddress   string         `gorm:"size:45" json:"ipAddress,omitempty" bson:"ipAddress"`
	UserAgent   string         `gorm:"size:500" json:"userAgent,omitempty" bson:"userAgent"`
	Status      AuditStatus    `gorm:"size:20" json:"status" bson:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"errorMsg,omitempty" bson:"errorMsg"`
	CreatedAt   time.Time      `gorm:"index" json:"createdAt" bson:"createdAt"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}

// AuditEventFilter narrows an audit event listing. Zero values match everything.
type AuditEventFilter struct {
	UserID    string
	EventType AuditEventType
	Limit     int
	Offset    int
}

// Normalize applies the default page size and clamps negative offsets.
func (f AuditEventFilter) Normalize() AuditEventFilter {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 200 {
		f.Limit = 200
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
