package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/sharda-hr/performance-service/internal/models"
)

// EventType represents different types of notification events
type EventType string

const (
	// KPI lifecycle events
	EventKPISubmitted EventType = "kpi.submitted"
	EventKPIReviewed  EventType = "kpi.reviewed"
	EventKPIApproved  EventType = "kpi.approved"

	// Template events
	EventTemplateImported EventType = "template.imported"
)

// NotificationEvent is the base event structure for all notification events
type NotificationEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

const eventSource = "performance-service"
const eventVersion = "1.0"

func newNotificationEvent(eventType EventType, data interface{}) *NotificationEvent {
	return &NotificationEvent{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

// KPI notification event payloads

type KPISubmittedEvent struct {
	KPIRecordID uint              `json:"kpi_record_id"`
	EmployeeID  string            `json:"employee_id"`
	TemplateID  uint              `json:"template_id"`
	PeriodType  models.PeriodType `json:"period_type"`
	PeriodStart time.Time         `json:"period_start"`
	PeriodEnd   time.Time         `json:"period_end"`
	FinalScore  float64           `json:"final_score"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

type KPIReviewedEvent struct {
	KPIRecordID uint             `json:"kpi_record_id"`
	EmployeeID  string           `json:"employee_id"`
	ReviewerID  string           `json:"reviewer_id"`
	Status      models.KPIStatus `json:"status"`
	ReviewedAt  time.Time        `json:"reviewed_at"`
}

type TemplateImportedEvent struct {
	TemplateID    uint   `json:"template_id"`
	TemplateName  string `json:"template_name"`
	ImportedCount int    `json:"imported_count"`
	ErrorCount    int    `json:"error_count"`
	ImportedBy    string `json:"imported_by"`
}

// NewKPISubmittedEvent wraps a KPISubmittedEvent payload
func NewKPISubmittedEvent(data KPISubmittedEvent) *NotificationEvent {
	return newNotificationEvent(EventKPISubmitted, data)
}

// NewKPIReviewedEvent wraps a KPIReviewedEvent payload. Approval is a
// distinct event type so downstream consumers can subscribe to it alone.
func NewKPIReviewedEvent(data KPIReviewedEvent) *NotificationEvent {
	eventType := EventKPIReviewed
	if data.Status == models.KPIStatusApproved {
		eventType = EventKPIApproved
	}
	return newNotificationEvent(eventType, data)
}

// NewTemplateImportedEvent wraps a TemplateImportedEvent payload
func NewTemplateImportedEvent(data TemplateImportedEvent) *NotificationEvent {
	return newNotificationEvent(EventTemplateImported, data)
}
