package tracker

import (
	"testing"
	"time"

	"unsubly-be/internal/entity"
	"unsubly-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	trk := NewTracker(nil, logger.NopLogger{}, time.Minute)
	t.Cleanup(trk.Stop)
	return trk
}

func TestTrackerRegisterAndGet(t *testing.T) {
	trk := newTestTracker(t)
	userId := uuid.New()

	trk.Register("orch-1", userId, entity.CancellationMethodApi)

	snapshot, ok := trk.Get("orch-1")
	require.True(t, ok)
	assert.Equal(t, userId, snapshot.UserId)
	assert.Equal(t, entity.CancellationStatusProcessing, snapshot.Status)
	assert.Equal(t, entity.CancellationMethodApi, snapshot.Method)
	assert.False(t, snapshot.StartedAt.IsZero())
}

func TestTrackerGetUnknownSession(t *testing.T) {
	trk := newTestTracker(t)

	_, ok := trk.Get("missing")
	assert.False(t, ok)
}

func TestTrackerSubscribeReceivesUpdates(t *testing.T) {
	trk := newTestTracker(t)
	trk.Register("orch-1", uuid.New(), entity.CancellationMethodApi)

	var received []Update
	unsubscribe := trk.Subscribe("orch-1", func(u Update) {
		received = append(received, u)
	})
	defer unsubscribe()

	trk.UpdateStatus("orch-1", entity.CancellationStatusProcessing, entity.CancellationMethodAutomation, "falling back")

	require.Len(t, received, 1)
	assert.Equal(t, "orch-1", received[0].OrchestrationId)
	assert.Equal(t, entity.CancellationMethodAutomation, received[0].Method)
	assert.Equal(t, "falling back", received[0].Message)
}

func TestTrackerUnsubscribeStopsDelivery(t *testing.T) {
	trk := newTestTracker(t)
	trk.Register("orch-1", uuid.New(), entity.CancellationMethodApi)

	calls := 0
	unsubscribe := trk.Subscribe("orch-1", func(Update) { calls++ })

	trk.UpdateStatus("orch-1", entity.CancellationStatusProcessing, entity.CancellationMethodApi, "first")
	unsubscribe()
	trk.UpdateStatus("orch-1", entity.CancellationStatusProcessing, entity.CancellationMethodApi, "second")

	assert.Equal(t, 1, calls)
}

func TestTrackerSubscribeUnknownSessionIsNoop(t *testing.T) {
	trk := newTestTracker(t)

	unsubscribe := trk.Subscribe("missing", func(Update) {
		t.Fatal("callback must never fire for an unknown session")
	})
	require.NotNil(t, unsubscribe)
	unsubscribe()
}

func TestTrackerFinishEmitsTerminalUpdateAndEvicts(t *testing.T) {
	trk := newTestTracker(t)
	trk.Register("orch-1", uuid.New(), entity.CancellationMethodApi)

	var last Update
	trk.Subscribe("orch-1", func(u Update) { last = u })

	trk.Finish("orch-1", entity.CancellationStatusCompleted, entity.CancellationMethodApi, "cancelled successfully")

	assert.Equal(t, entity.CancellationStatusCompleted, last.Status)
	_, ok := trk.Get("orch-1")
	assert.False(t, ok, "finished session must be evicted")
}

func TestTrackerUpdateUnknownSessionIsIgnored(t *testing.T) {
	trk := newTestTracker(t)

	// Must not panic or create a session.
	trk.UpdateStatus("missing", entity.CancellationStatusProcessing, entity.CancellationMethodApi, "late update")
	_, ok := trk.Get("missing")
	assert.False(t, ok)
}

func TestTrackerConcurrentSessionsAreIsolated(t *testing.T) {
	trk := newTestTracker(t)
	trk.Register("orch-1", uuid.New(), entity.CancellationMethodApi)
	trk.Register("orch-2", uuid.New(), entity.CancellationMethodManual)

	var one, two int
	trk.Subscribe("orch-1", func(Update) { one++ })
	trk.Subscribe("orch-2", func(Update) { two++ })

	trk.UpdateStatus("orch-1", entity.CancellationStatusProcessing, entity.CancellationMethodApi, "progress")

	assert.Equal(t, 1, one)
	assert.Equal(t, 0, two)
}
