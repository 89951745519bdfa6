package tracker

import (
	"context"
	"sync"
	"time"

	"unsubly-be/internal/entity"
	"unsubly-be/internal/pkg/logger"
	"unsubly-be/pkg/events"

	"github.com/google/uuid"
)

// Update is one progress notification for a live orchestration.
type Update struct {
	OrchestrationId string
	Status          entity.CancellationStatus
	Method          entity.CancellationMethod
	Message         string
	Timestamp       time.Time
}

// Callback receives updates for one subscribed orchestration.
type Callback func(Update)

// Snapshot is a read-only copy of a live session's state.
type Snapshot struct {
	OrchestrationId string
	UserId          uuid.UUID
	Status          entity.CancellationStatus
	Method          entity.CancellationMethod
	StartedAt       time.Time
	LastUpdateAt    time.Time
}

type session struct {
	userId       uuid.UUID
	status       entity.CancellationStatus
	method       entity.CancellationMethod
	startedAt    time.Time
	lastUpdateAt time.Time
	subscribers  map[int]Callback
	nextSubId    int
}

// Tracker is the in-memory registry of live orchestration sessions. It is
// the only place live progress exists; nothing here is persisted, and after
// a restart a session is reconstructable only by replaying the request and
// its logs. Sessions are evicted at terminal status or after sitting idle
// past the TTL.
type Tracker struct {
	mu        sync.RWMutex
	sessions  map[string]*session
	publisher events.Publisher
	logger    logger.ILogger
	ttl       time.Duration
	stop      chan struct{}
	stopOnce  sync.Once
}

// DefaultSessionTTL bounds how long an abandoned session may linger.
const DefaultSessionTTL = 30 * time.Minute

const sweepInterval = 5 * time.Minute

// NewTracker creates the session registry and starts its eviction sweeper.
// The publisher may be nil; lifecycle event publication is best-effort.
func NewTracker(publisher events.Publisher, log logger.ILogger, ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	t := &Tracker{
		sessions:  make(map[string]*session),
		publisher: publisher,
		logger:    log,
		ttl:       ttl,
		stop:      make(chan struct{}),
	}
	go t.sweep()
	return t
}

// Register adds a live session for a freshly started orchestration.
func (t *Tracker) Register(orchestrationId string, userId uuid.UUID, method entity.CancellationMethod) {
	now := time.Now().UTC()

	t.mu.Lock()
	t.sessions[orchestrationId] = &session{
		userId:       userId,
		status:       entity.CancellationStatusProcessing,
		method:       method,
		startedAt:    now,
		lastUpdateAt: now,
		subscribers:  make(map[int]Callback),
	}
	t.mu.Unlock()

	t.publish(events.TypeCancellationStarted, orchestrationId, map[string]interface{}{
		"user_id": userId.String(),
		"method":  string(method),
	})
}

// UpdateStatus records progress and notifies subscribers.
func (t *Tracker) UpdateStatus(orchestrationId string, status entity.CancellationStatus, method entity.CancellationMethod, message string) {
	t.mu.Lock()
	s, ok := t.sessions[orchestrationId]
	if ok {
		s.status = status
		s.method = method
		s.lastUpdateAt = time.Now().UTC()
	}
	t.mu.Unlock()

	if !ok {
		return
	}

	t.EmitUpdate(Update{
		OrchestrationId: orchestrationId,
		Status:          status,
		Method:          method,
		Message:         message,
		Timestamp:       time.Now().UTC(),
	})
}

// EmitUpdate fans the update out to subscribers and publishes a global
// lifecycle event. Subscriber callbacks run synchronously in the caller's
// goroutine; they must be fast.
func (t *Tracker) EmitUpdate(update Update) {
	t.mu.RLock()
	s, ok := t.sessions[update.OrchestrationId]
	var callbacks []Callback
	var userId uuid.UUID
	if ok {
		userId = s.userId
		callbacks = make([]Callback, 0, len(s.subscribers))
		for _, cb := range s.subscribers {
			callbacks = append(callbacks, cb)
		}
	}
	t.mu.RUnlock()

	for _, cb := range callbacks {
		cb(update)
	}

	eventType := events.TypeCancellationProgress
	switch update.Status {
	case entity.CancellationStatusCompleted:
		eventType = events.TypeCancellationCompleted
	case entity.CancellationStatusFailed:
		eventType = events.TypeCancellationFailed
	}
	payload := map[string]interface{}{
		"status":  string(update.Status),
		"method":  string(update.Method),
		"message": update.Message,
	}
	// Downstream consumers (the websocket hub in particular) route events
	// to the owning user.
	if userId != uuid.Nil {
		payload["user_id"] = userId.String()
	}
	t.publish(eventType, update.OrchestrationId, payload)
}

// Subscribe registers a callback for one orchestration and returns its
// unsubscribe function. Subscribing to an unknown or already-finished
// orchestration returns a no-op unsubscribe rather than an error.
func (t *Tracker) Subscribe(orchestrationId string, cb Callback) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[orchestrationId]
	if !ok {
		return func() {}
	}

	id := s.nextSubId
	s.nextSubId++
	s.subscribers[id] = cb

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if s, ok := t.sessions[orchestrationId]; ok {
			delete(s.subscribers, id)
		}
	}
}

// Get returns a snapshot of a live session.
func (t *Tracker) Get(orchestrationId string) (*Snapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.sessions[orchestrationId]
	if !ok {
		return nil, false
	}
	return &Snapshot{
		OrchestrationId: orchestrationId,
		UserId:          s.userId,
		Status:          s.status,
		Method:          s.method,
		StartedAt:       s.startedAt,
		LastUpdateAt:    s.lastUpdateAt,
	}, true
}

// Finish emits the terminal update and evicts the session.
func (t *Tracker) Finish(orchestrationId string, status entity.CancellationStatus, method entity.CancellationMethod, message string) {
	t.UpdateStatus(orchestrationId, status, method, message)

	t.mu.Lock()
	delete(t.sessions, orchestrationId)
	t.mu.Unlock()
}

// Stop halts the eviction sweeper.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

func (t *Tracker) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-t.ttl)
			t.mu.Lock()
			for id, s := range t.sessions {
				if s.lastUpdateAt.Before(cutoff) {
					delete(t.sessions, id)
					t.logger.Warn("OrchestrationTracker", "Evicted stale orchestration session", map[string]interface{}{
						"orchestration_id": id,
					})
				}
			}
			t.mu.Unlock()
		}
	}
}

func (t *Tracker) publish(eventType, orchestrationId string, data map[string]interface{}) {
	if t.publisher == nil {
		return
	}
	event := events.NewCancellationEvent(eventType, orchestrationId, data)
	if err := t.publisher.Publish(context.Background(), event); err != nil {
		t.logger.Warn("OrchestrationTracker", "Failed to publish lifecycle event", map[string]interface{}{
			"event":            eventType,
			"orchestration_id": orchestrationId,
			"error":            err.Error(),
		})
	}
}
