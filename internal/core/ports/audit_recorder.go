package ports

import (
	"context"
	"time"
)

// AuditEvent is one operator-visible action taken against an entity.
type AuditEvent struct {
	Actor      string
	Action     string
	EntityType string
	EntityID   string
	Detail     string
	At         time.Time
}

// AuditRecorder is the consumed audit-logging capability. Recording is
// best-effort; callers log and swallow errors.
type AuditRecorder interface {
	Record(ctx context.Context, event AuditEvent) error
}
