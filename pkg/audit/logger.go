package audit

import (
	"context"

	"unsubly-be/internal/pkg/logger"
	"unsubly-be/pkg/cancellation"
)

// zapAuditLogger records audit entries through the structured logger.
// Best-effort by construction: it has no failure path of its own and never
// blocks the primary flow.
type zapAuditLogger struct {
	logger logger.ILogger
}

// NewLogger creates the standard audit logger.
func NewLogger(log logger.ILogger) cancellation.AuditLogger {
	return &zapAuditLogger{logger: log}
}

func (a *zapAuditLogger) Log(ctx context.Context, entry *cancellation.AuditEntry) {
	details := map[string]interface{}{
		"user_id":  entry.UserId.String(),
		"action":   entry.Action,
		"resource": entry.Resource,
		"result":   entry.Result,
	}
	if entry.Error != "" {
		details["error"] = entry.Error
	}
	for k, v := range entry.Metadata {
		details[k] = v
	}

	if entry.Result == "failure" {
		a.logger.Warn("Audit", "Audit event", details)
		return
	}
	a.logger.Info("Audit", "Audit event", details)
}
