package contract

import (
	"context"

	"unsubly-be/internal/entity"
	"unsubly-be/internal/repository/specification"
)

// CancellationLogRepository appends and reads the audit timeline.
// There is deliberately no Update or Delete: the log is append-only.
type CancellationLogRepository interface {
	Append(ctx context.Context, log *entity.CancellationLog) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CancellationLog, error)
}
