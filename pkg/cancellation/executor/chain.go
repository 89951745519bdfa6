package executor

import (
	"context"
	"fmt"
	"time"

	"unsubly-be/internal/entity"
	"unsubly-be/internal/pkg/logger"
	"unsubly-be/internal/repository/contract"
	"unsubly-be/pkg/cancellation"
	"unsubly-be/pkg/cancellation/tracker"
)

// DefaultBackoff is the fixed wait between fallback attempts.
const DefaultBackoff = 2 * time.Second

// ChainResult is the terminal outcome of driving one fallback chain.
type ChainResult struct {
	// Outcome is set iff some method succeeded.
	Outcome *Outcome
	// Method is the method that produced Outcome, or the last one tried.
	Method entity.CancellationMethod
	// AttemptsUsed counts the methods actually invoked.
	AttemptsUsed int
	// FailureCode/FailureMessage are set iff every allowed attempt failed.
	FailureCode    cancellation.ErrorCode
	FailureMessage string
}

// Succeeded reports whether some method in the chain completed.
func (r *ChainResult) Succeeded() bool {
	return r.Outcome != nil
}

// ChainExecutor drives a fallback chain strictly sequentially: one attempt
// at a time, first success wins, a fixed backoff between attempts. Given
// the chain and the ordered executor outcomes the result is deterministic.
type ChainExecutor struct {
	executors map[entity.CancellationMethod]MethodExecutor
	logger    logger.ILogger
	backoff   time.Duration
}

// NewChainExecutor wires the per-method executors. A non-positive backoff
// falls back to DefaultBackoff; tests pass a tiny value.
func NewChainExecutor(executors []MethodExecutor, log logger.ILogger, backoff time.Duration) *ChainExecutor {
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	byMethod := make(map[entity.CancellationMethod]MethodExecutor, len(executors))
	for _, ex := range executors {
		byMethod[ex.Method()] = ex
	}
	return &ChainExecutor{
		executors: byMethod,
		logger:    log,
		backoff:   backoff,
	}
}

// Run tries each method in order until one succeeds or policy stops it.
// Log appends and tracker emissions are best-effort and never abort the run.
func (ce *ChainExecutor) Run(ctx context.Context, in *Input, chain []entity.CancellationMethod, logs contract.CancellationLogRepository, trk *tracker.Tracker) *ChainResult {
	total := len(chain)

	for i, method := range chain {
		attempt := i + 1

		ce.appendLog(ctx, logs, in, "method_attempt", entity.CancellationLogLevelInfo,
			fmt.Sprintf("Attempting %s cancellation (method %d of %d)", method, attempt, total),
			map[string]interface{}{"method": string(method), "attempt": attempt, "of": total})
		if trk != nil {
			trk.UpdateStatus(in.OrchestrationId, entity.CancellationStatusProcessing, method,
				fmt.Sprintf("Attempting method %d of %d", attempt, total))
		}

		ex, ok := ce.executors[method]
		if !ok {
			// A chain never contains an unwired method unless wiring itself
			// is broken, so treat it like a failed attempt.
			ce.failAttempt(ctx, in, logs, trk, method, fmt.Errorf("no executor wired for method %s", method))
			if last := ce.afterFailure(ctx, in, chain, i,
				fmt.Sprintf("no executor wired for method %s", method)); last != nil {
				return last
			}
			continue
		}

		outcome, err := ex.Execute(ctx, in)
		if err == nil {
			ce.appendLog(ctx, logs, in, "method_succeeded", entity.CancellationLogLevelSuccess,
				fmt.Sprintf("Method %s succeeded: %s", method, outcome.Message),
				map[string]interface{}{"method": string(method), "attempt": attempt})
			return &ChainResult{
				Outcome:      outcome,
				Method:       method,
				AttemptsUsed: attempt,
			}
		}

		ce.failAttempt(ctx, in, logs, trk, method, err)
		if last := ce.afterFailure(ctx, in, chain, i, err.Error()); last != nil {
			return last
		}
	}

	// Unreachable for a well-formed chain; afterFailure returns on the last
	// element. Kept so an empty chain cannot fall through silently.
	return &ChainResult{
		Method:         entity.CancellationMethodManual,
		AttemptsUsed:   total,
		FailureCode:    cancellation.CodeAllMethodsFailed,
		FailureMessage: "no cancellation methods available",
	}
}

// afterFailure applies fallback policy after a failed attempt at index i.
// It returns a terminal result when the run must stop, nil to continue.
func (ce *ChainExecutor) afterFailure(ctx context.Context, in *Input, chain []entity.CancellationMethod, i int, failure string) *ChainResult {
	method := chain[i]

	if i == len(chain)-1 {
		return &ChainResult{
			Method:         method,
			AttemptsUsed:   len(chain),
			FailureCode:    cancellation.CodeAllMethodsFailed,
			FailureMessage: fmt.Sprintf("all %d cancellation methods failed, last error: %s", len(chain), failure),
		}
	}

	if in.Preferences != nil && !in.Preferences.AllowFallback {
		return &ChainResult{
			Method:         method,
			AttemptsUsed:   i + 1,
			FailureCode:    cancellation.CodeFallbackDisabled,
			FailureMessage: fmt.Sprintf("method %s failed and fallback is disabled: %s", method, failure),
		}
	}

	// Cooperative fixed delay before the next method.
	select {
	case <-ctx.Done():
		return &ChainResult{
			Method:         method,
			AttemptsUsed:   i + 1,
			FailureCode:    cancellation.CodeOrchestrationFailed,
			FailureMessage: fmt.Sprintf("orchestration aborted while waiting to fall back: %v", ctx.Err()),
		}
	case <-time.After(ce.backoff):
	}
	return nil
}

func (ce *ChainExecutor) failAttempt(ctx context.Context, in *Input, logs contract.CancellationLogRepository, trk *tracker.Tracker, method entity.CancellationMethod, err error) {
	ce.appendLog(ctx, logs, in, "method_failed", entity.CancellationLogLevelError,
		fmt.Sprintf("Method %s failed: %v", method, err),
		map[string]interface{}{"method": string(method), "error": err.Error()})
	if trk != nil {
		trk.EmitUpdate(tracker.Update{
			OrchestrationId: in.OrchestrationId,
			Status:          entity.CancellationStatusProcessing,
			Method:          method,
			Message:         fmt.Sprintf("Method %s failed", method),
			Timestamp:       time.Now().UTC(),
		})
	}
}

func (ce *ChainExecutor) appendLog(ctx context.Context, logs contract.CancellationLogRepository, in *Input, action string, level entity.CancellationLogLevel, message string, metadata map[string]interface{}) {
	if logs == nil {
		return
	}
	err := logs.Append(ctx, &entity.CancellationLog{
		RequestId:       in.Request.Id,
		OrchestrationId: in.OrchestrationId,
		Action:          action,
		Level:           level,
		Message:         message,
		Metadata:        metadata,
	})
	if err != nil {
		ce.logger.Warn("ChainExecutor", "Failed to append cancellation log", map[string]interface{}{
			"action": action,
			"error":  err.Error(),
		})
	}
}
