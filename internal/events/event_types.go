package events

import (
	"time"

	"github.com/crmkit/crm-authz/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCapabilityDenied    EventType = "capability_denied"
	EventContextRejected     EventType = "context_rejected"
	EventSnapshotInvalidated EventType = "snapshot_invalidated"
)

// Event represents an authorization audit record.
type Event struct {
	ID             string      `json:"id"`
	Type           EventType   `json:"type"`
	UserID         string      `json:"user_id,omitempty"`
	OrganizationID string      `json:"organization_id,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
	Payload        interface{} `json:"payload"`
}

// CapabilityDeniedPayload payload.
type CapabilityDeniedPayload struct {
	Capability domain.Capability `json:"capability"`
	Role       domain.Role       `json:"role"`
	Method     string            `json:"method"`
	Path       string            `json:"path"`
}

// ContextRejectedPayload payload.
type ContextRejectedPayload struct {
	Reason string `json:"reason"`
	Path   string `json:"path"`
}

// SnapshotInvalidatedPayload payload.
type SnapshotInvalidatedPayload struct {
	TargetUserID string `json:"target_user_id"`
}
