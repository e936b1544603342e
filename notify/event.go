// Package notify coordinates presentation of server notifications: dedup,
// severity classification, priority routing, and a short durable history.
package notify

import "time"

// Severity is the visual weight of a presented notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Origin classifies where a notification came from. External events (lead
// ingestion, integrations) are presented with higher priority than events
// caused by actions inside the console.
type Origin string

const (
	OriginInternal Origin = "internal"
	OriginExternal Origin = "external"
)

// Event is a normalized server notification. Events are immutable once
// constructed; they are created by the realtime channel or a poll fetch and
// only ever consumed.
type Event struct {
	ID        string
	Title     string
	Message   string
	Type      string
	Severity  Severity
	Origin    Origin
	Read      bool
	CreatedAt time.Time
}

// ResolveSeverity picks the presentation severity for an event. An explicit
// variant from the server wins; otherwise the event type decides.
func ResolveSeverity(variant, eventType string) Severity {
	switch Severity(variant) {
	case SeverityInfo, SeveritySuccess, SeverityWarning, SeverityError:
		return Severity(variant)
	}
	switch eventType {
	case "task_overdue", "task_due_soon":
		return SeverityWarning
	case "task_completed", "project_completed":
		return SeveritySuccess
	default:
		return SeverityInfo
	}
}
