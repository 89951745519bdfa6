package entity

import (
	"time"

	"github.com/google/uuid"
)

type CancellationLogLevel string

const (
	CancellationLogLevelInfo    CancellationLogLevel = "info"
	CancellationLogLevelSuccess CancellationLogLevel = "success"
	CancellationLogLevelWarning CancellationLogLevel = "warning"
	CancellationLogLevelError   CancellationLogLevel = "error"
)

// CancellationLog is one append-only audit entry tied to a request and its
// orchestration. Entries are never mutated; replaying them in creation
// order reconstructs the timeline of an orchestration.
type CancellationLog struct {
	Id              uuid.UUID
	RequestId       uuid.UUID
	OrchestrationId string
	Action          string
	Level           CancellationLogLevel
	Message         string
	Metadata        map[string]interface{}
	CreatedAt       time.Time
}
