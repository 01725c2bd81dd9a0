// Package audit records operator actions to the structured log. Audit events
// are best-effort breadcrumbs for support investigations, not a compliance
// store.
package audit

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/ports"
)

// SlogAuditRecorder implements ports.AuditRecorder by emitting one structured
// log record per operator action.
type SlogAuditRecorder struct {
	logger *slog.Logger
}

// NewSlogAuditRecorder creates a recorder writing to the given logger.
func NewSlogAuditRecorder(logger *slog.Logger) *SlogAuditRecorder {
	return &SlogAuditRecorder{logger: logger}
}

// Record writes the audit event.
func (r *SlogAuditRecorder) Record(ctx context.Context, event ports.AuditEvent) error {
	r.logger.InfoContext(ctx, "audit",
		"actor", event.Actor,
		"action", event.Action,
		"entity_type", event.EntityType,
		"entity_id", event.EntityID,
		"detail", event.Detail,
		"at", event.At,
	)
	return nil
}
