package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/crmkit/crm-authz/internal/events"
)

// StartAuditWorker subscribes the audit log to authorization events.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil || logger == nil {
		return
	}
	audit := logger.Named("audit")
	handler := func(_ context.Context, e events.Event) error {
		audit.Info("authorization event",
			zap.String("event_id", e.ID),
			zap.String("event_type", string(e.Type)),
			zap.String("user_id", e.UserID),
			zap.String("organization_id", e.OrganizationID),
			zap.Time("timestamp", e.Timestamp),
			zap.Any("payload", e.Payload),
		)
		return nil
	}
	for _, t := range []events.EventType{
		events.EventCapabilityDenied,
		events.EventContextRejected,
		events.EventSnapshotInvalidated,
	} {
		dispatcher.Subscribe(t, handler)
	}
}
