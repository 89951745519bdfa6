package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"unsubly-be/internal/dto"
	"unsubly-be/internal/entity"
	"unsubly-be/internal/pkg/logger"
	"unsubly-be/internal/repository/contract"
	"unsubly-be/internal/repository/specification"
	"unsubly-be/internal/repository/unitofwork"
	"unsubly-be/pkg/cancellation"
	"unsubly-be/pkg/cancellation/analytics"
	"unsubly-be/pkg/cancellation/capability"
	"unsubly-be/pkg/cancellation/executor"
	"unsubly-be/pkg/cancellation/tracker"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Repository stubs ---

type stubUserRepo struct {
	contract.UserRepository
	users map[uuid.UUID]*entity.User
}

func (s *stubUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByID); ok {
			return s.users[byID.ID], nil
		}
	}
	return nil, nil
}

type stubSubscriptionRepo struct {
	contract.SubscriptionRepository
	subscriptions map[uuid.UUID]*entity.Subscription
	cancelled     int
}

func (s *stubSubscriptionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	for _, sub := range s.subscriptions {
		if matchSubscription(sub, specs) {
			return sub, nil
		}
	}
	return nil, nil
}

func (s *stubSubscriptionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	var out []*entity.Subscription
	for _, sub := range s.subscriptions {
		if matchSubscription(sub, specs) {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *stubSubscriptionRepo) MarkCancelled(ctx context.Context, subscription *entity.Subscription) error {
	now := time.Now().UTC()
	subscription.Status = entity.SubscriptionStatusCancelled
	subscription.IsActive = false
	subscription.CancelledAt = &now
	s.cancelled++
	return nil
}

func matchSubscription(sub *entity.Subscription, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if sub.Id != sp.ID {
				return false
			}
		case specification.ByUserID:
			if sub.UserId != sp.UserID {
				return false
			}
		}
	}
	return true
}

type stubCancellationRequestRepo struct {
	requests  map[uuid.UUID]*entity.CancellationRequest
	createErr error
	updates   int
}

func newStubCancellationRequestRepo() *stubCancellationRequestRepo {
	return &stubCancellationRequestRepo{requests: make(map[uuid.UUID]*entity.CancellationRequest)}
}

func (s *stubCancellationRequestRepo) Create(ctx context.Context, request *entity.CancellationRequest) error {
	if s.createErr != nil {
		return s.createErr
	}
	request.Id = uuid.New()
	request.CreatedAt = time.Now().UTC()
	s.requests[request.Id] = request
	return nil
}

func (s *stubCancellationRequestRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CancellationRequest, error) {
	for _, req := range s.requests {
		if matchRequest(req, specs) {
			return req, nil
		}
	}
	return nil, nil
}

func (s *stubCancellationRequestRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CancellationRequest, error) {
	var out []*entity.CancellationRequest
	for _, req := range s.requests {
		if matchRequest(req, specs) {
			out = append(out, req)
		}
	}
	return out, nil
}

func (s *stubCancellationRequestRepo) Update(ctx context.Context, request *entity.CancellationRequest) error {
	s.requests[request.Id] = request
	s.updates++
	return nil
}

func matchRequest(req *entity.CancellationRequest, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if req.Id != sp.ID {
				return false
			}
		case specification.ByUserID:
			if req.UserId != sp.UserID {
				return false
			}
		case specification.BySubscriptionID:
			if req.SubscriptionId != sp.SubscriptionID {
				return false
			}
		case specification.ByOrchestrationID:
			if req.OrchestrationId != sp.OrchestrationID {
				return false
			}
		case specification.ByStatusIn:
			found := false
			for _, status := range sp.Statuses {
				if req.Status == status {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

type stubLogRepo struct {
	entries []*entity.CancellationLog
}

func (s *stubLogRepo) Append(ctx context.Context, log *entity.CancellationLog) error {
	log.CreatedAt = time.Now().UTC()
	s.entries = append(s.entries, log)
	return nil
}

func (s *stubLogRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CancellationLog, error) {
	var out []*entity.CancellationLog
	for _, entry := range s.entries {
		match := true
		for _, spec := range specs {
			if byReq, ok := spec.(specification.ByRequestID); ok && entry.RequestId != byReq.RequestID {
				match = false
			}
		}
		if match {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *stubLogRepo) actions() []string {
	actions := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		actions = append(actions, e.Action)
	}
	return actions
}

type stubProviderRepo struct {
	contract.ProviderRepository
	provider *entity.Provider
}

func (s *stubProviderRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Provider, error) {
	return s.provider, nil
}

type stubUow struct {
	unitofwork.UnitOfWork
	users    *stubUserRepo
	subs     *stubSubscriptionRepo
	requests *stubCancellationRequestRepo
	logs     *stubLogRepo
}

func (u *stubUow) UserRepository() contract.UserRepository { return u.users }
func (u *stubUow) SubscriptionRepository() contract.SubscriptionRepository {
	return u.subs
}
func (u *stubUow) CancellationRequestRepository() contract.CancellationRequestRepository {
	return u.requests
}
func (u *stubUow) CancellationLogRepository() contract.CancellationLogRepository {
	return u.logs
}

type stubUowFactory struct {
	uow *stubUow
}

func (f *stubUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

// --- Collaborator stubs ---

type stubMethodExecutor struct {
	method  entity.CancellationMethod
	outcome *executor.Outcome
	err     error
	calls   int
}

func (s *stubMethodExecutor) Method() entity.CancellationMethod { return s.method }

func (s *stubMethodExecutor) Execute(ctx context.Context, in *executor.Input) (*executor.Outcome, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.outcome, nil
}

type stubManualClient struct {
	confirmed  int
	confirmErr error
}

func (s *stubManualClient) ProvideInstructions(ctx context.Context, user *entity.User, req *cancellation.ManualRequest) (*cancellation.ManualResponse, error) {
	return &cancellation.ManualResponse{RequestId: uuid.New().String(), Instructions: []string{"call support"}}, nil
}

func (s *stubManualClient) Confirm(ctx context.Context, user *entity.User, requestId string, outcome *cancellation.ManualConfirmation) error {
	s.confirmed++
	return s.confirmErr
}

type nopAudit struct{}

func (nopAudit) Log(ctx context.Context, entry *cancellation.AuditEntry) {}

// --- Fixture ---

type fixture struct {
	svc    ICancellationService
	user   *entity.User
	sub    *entity.Subscription
	uow    *stubUow
	trk    *tracker.Tracker
	api    *stubMethodExecutor
	auto   *stubMethodExecutor
	man    *stubMethodExecutor
	manual *stubManualClient
}

func defaultProvider() *entity.Provider {
	return &entity.Provider{
		Name:                  "Netflix",
		NormalizedName:        "netflix",
		SupportsApi:           true,
		SupportsAutomation:    true,
		ApiSuccessRate:        0.9,
		AutomationSuccessRate: 0.8,
		ManualSuccessRate:     0.95,
		ApiEstimatedMinutes:   2,
		AutoEstimatedMinutes:  10,
		ManualEstimatedMins:   15,
		Difficulty:            entity.ProviderDifficultyEasy,
	}
}

func newFixtureWithProvider(t *testing.T, provider *entity.Provider) *fixture {
	t.Helper()

	user := &entity.User{Id: uuid.New(), Email: "jane@example.com", FullName: "Jane Doe", Timezone: "UTC"}
	sub := &entity.Subscription{
		Id:           uuid.New(),
		UserId:       user.Id,
		Name:         "Netflix Premium",
		ProviderName: "Netflix",
		Status:       entity.SubscriptionStatusActive,
		IsActive:     true,
	}

	uow := &stubUow{
		users:    &stubUserRepo{users: map[uuid.UUID]*entity.User{user.Id: user}},
		subs:     &stubSubscriptionRepo{subscriptions: map[uuid.UUID]*entity.Subscription{sub.Id: sub}},
		requests: newStubCancellationRequestRepo(),
		logs:     &stubLogRepo{},
	}

	api := &stubMethodExecutor{
		method:  entity.CancellationMethodApi,
		outcome: &executor.Outcome{Status: entity.CancellationStatusCompleted, Message: "cancelled via api"},
	}
	auto := &stubMethodExecutor{
		method:  entity.CancellationMethodAutomation,
		outcome: &executor.Outcome{Status: entity.CancellationStatusProcessing, Message: "workflow started"},
	}
	man := &stubMethodExecutor{
		method: entity.CancellationMethodManual,
		outcome: &executor.Outcome{
			Status:       entity.CancellationStatusRequiresManual,
			Message:      "follow the instructions",
			Instructions: []string{"log in", "cancel"},
		},
	}

	trk := tracker.NewTracker(nil, logger.NopLogger{}, time.Minute)
	t.Cleanup(trk.Stop)

	manualClient := &stubManualClient{}
	svc := NewCancellationService(
		&stubUowFactory{uow: uow},
		capability.NewAssessor(&stubProviderRepo{provider: provider}, logger.NopLogger{}),
		executor.NewChainExecutor([]executor.MethodExecutor{api, auto, man}, logger.NopLogger{}, time.Nanosecond),
		trk,
		manualClient,
		NewEligibilityValidator(logger.NopLogger{}),
		analytics.NewAggregator(logger.NopLogger{}),
		nopAudit{},
		nil,
		validator.New(),
		logger.NopLogger{},
	)

	return &fixture{
		svc:    svc,
		user:   user,
		sub:    sub,
		uow:    uow,
		trk:    trk,
		api:    api,
		auto:   auto,
		man:    man,
		manual: manualClient,
	}
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithProvider(t, defaultProvider())
}

func (f *fixture) seedRequest(status entity.CancellationStatus) *entity.CancellationRequest {
	req := &entity.CancellationRequest{
		Id:              uuid.New(),
		UserId:          f.user.Id,
		SubscriptionId:  f.sub.Id,
		OrchestrationId: uuid.New().String(),
		Method:          entity.CancellationMethodApi,
		Priority:        entity.CancellationPriorityNormal,
		Status:          status,
		CreatedAt:       time.Now().UTC().Add(-time.Hour),
	}
	f.uow.requests.requests[req.Id] = req
	return req
}

// --- Initiation ---

func TestInitiateCancellationCompletesViaApi(t *testing.T) {
	f := newFixture(t)

	res := f.svc.InitiateCancellation(context.Background(), f.user.Id, &dto.InitiateCancellationRequest{
		SubscriptionId: f.sub.Id,
	})

	require.True(t, res.Success)
	assert.Equal(t, "completed", res.Status)
	assert.Equal(t, "api", res.Method)
	assert.NotEqual(t, uuid.Nil, res.RequestId)
	assert.NotEmpty(t, res.OrchestrationId)
	assert.Equal(t, 1, res.Metadata.AttemptsUsed)
	assert.Empty(t, res.Metadata.FallbackReason)
	assert.Contains(t, res.Tracking.StatusCheckEndpoint, res.RequestId.String())

	assert.Equal(t, entity.SubscriptionStatusCancelled, f.sub.Status)
	assert.Equal(t, 1, f.uow.subs.cancelled)

	stored := f.uow.requests.requests[res.RequestId]
	require.NotNil(t, stored)
	assert.Equal(t, entity.CancellationStatusCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)

	_, live := f.trk.Get(res.OrchestrationId)
	assert.False(t, live, "terminal session must be evicted")
}

func TestInitiateCancellationFallsBackToAutomation(t *testing.T) {
	f := newFixture(t)
	f.api.err = errors.New("provider api down")

	res := f.svc.InitiateCancellation(context.Background(), f.user.Id, &dto.InitiateCancellationRequest{
		SubscriptionId: f.sub.Id,
	})

	require.True(t, res.Success)
	assert.Equal(t, "processing", res.Status)
	assert.Equal(t, "automation", res.Method)
	assert.Equal(t, 2, res.Metadata.AttemptsUsed)
	assert.NotEmpty(t, res.Metadata.FallbackReason)

	// An automation workflow is still running; its session stays live.
	snapshot, live := f.trk.Get(res.OrchestrationId)
	require.True(t, live)
	assert.Equal(t, entity.CancellationStatusProcessing, snapshot.Status)

	assert.Zero(t, f.uow.subs.cancelled, "subscription must not flip before confirmation")
}

func TestInitiateCancellationFallbackDisabled(t *testing.T) {
	f := newFixture(t)
	f.api.err = errors.New("provider api down")
	allowFallback := false

	res := f.svc.InitiateCancellation(context.Background(), f.user.Id, &dto.InitiateCancellationRequest{
		SubscriptionId: f.sub.Id,
		AllowFallback:  &allowFallback,
	})

	require.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Equal(t, "FALLBACK_DISABLED", res.Error.Code)
	assert.Equal(t, 1, res.Metadata.AttemptsUsed)
	assert.Equal(t, 0, f.auto.calls)

	stored := f.uow.requests.requests[res.RequestId]
	require.NotNil(t, stored)
	assert.Equal(t, entity.CancellationStatusFailed, stored.Status)
}

func TestInitiateCancellationAllMethodsFailed(t *testing.T) {
	f := newFixture(t)
	f.api.err = errors.New("api down")
	f.auto.err = errors.New("workflow rejected")
	f.man.err = errors.New("no instructions")

	res := f.svc.InitiateCancellation(context.Background(), f.user.Id, &dto.InitiateCancellationRequest{
		SubscriptionId: f.sub.Id,
	})

	require.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Equal(t, "ALL_METHODS_FAILED", res.Error.Code)
	assert.Equal(t, 3, res.Metadata.AttemptsUsed)
}

func TestInitiateCancellationUnknownSubscription(t *testing.T) {
	f := newFixture(t)

	res := f.svc.InitiateCancellation(context.Background(), f.user.Id, &dto.InitiateCancellationRequest{
		SubscriptionId: uuid.New(),
	})

	require.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Equal(t, "NOT_FOUND", res.Error.Code)
	assert.Equal(t, 0, f.api.calls)
}

func TestInitiateCancellationForeignSubscription(t *testing.T) {
	f := newFixture(t)
	other := &entity.Subscription{Id: uuid.New(), UserId: uuid.New(), ProviderName: "Spotify", Status: entity.SubscriptionStatusActive, IsActive: true}
	f.uow.subs.subscriptions[other.Id] = other

	res := f.svc.InitiateCancellation(context.Background(), f.user.Id, &dto.InitiateCancellationRequest{
		SubscriptionId: other.Id,
	})

	require.False(t, res.Success)
	assert.Equal(t, "NOT_FOUND", res.Error.Code)
}

func TestInitiateCancellationAlreadyCancelled(t *testing.T) {
	f := newFixture(t)
	f.sub.Status = entity.SubscriptionStatusCancelled
	f.sub.IsActive = false

	res := f.svc.InitiateCancellation(context.Background(), f.user.Id, &dto.InitiateCancellationRequest{
		SubscriptionId: f.sub.Id,
	})

	require.False(t, res.Success)
	assert.Equal(t, "ALREADY_CANCELLED", res.Error.Code)
}

func TestInitiateCancellationInProgressRejection(t *testing.T) {
	f := newFixture(t)
	f.seedRequest(entity.CancellationStatusProcessing)

	res := f.svc.InitiateCancellation(context.Background(), f.user.Id, &dto.InitiateCancellationRequest{
		SubscriptionId: f.sub.Id,
	})

	require.False(t, res.Success)
	assert.Equal(t, "CANCELLATION_IN_PROGRESS", res.Error.Code)
	assert.Equal(t, 0, f.api.calls, "executor must never run for a rejected initiation")
}

func TestInitiateCancellationDuplicateInsertMapsToInProgress(t *testing.T) {
	// The storage-level unique index is authoritative even when the
	// fast-path read saw nothing.
	f := newFixture(t)
	f.uow.requests.createErr = contract.ErrActiveRequestExists

	res := f.svc.InitiateCancellation(context.Background(), f.user.Id, &dto.InitiateCancellationRequest{
		SubscriptionId: f.sub.Id,
	})

	require.False(t, res.Success)
	assert.Equal(t, "CANCELLATION_IN_PROGRESS", res.Error.Code)
	assert.Equal(t, 0, f.api.calls)
}

func TestInitiateCancellationInvalidMethod(t *testing.T) {
	f := newFixture(t)

	res := f.svc.InitiateCancellation(context.Background(), f.user.Id, &dto.InitiateCancellationRequest{
		SubscriptionId: f.sub.Id,
		Method:         "teleport",
	})

	require.False(t, res.Success)
	assert.Equal(t, "VALIDATION_ERROR", res.Error.Code)
}

// --- Scheduling ---

func TestInitiateCancellationScheduledPath(t *testing.T) {
	f := newFixture(t)
	scheduleFor := time.Now().Add(48 * time.Hour)

	res := f.svc.InitiateCancellation(context.Background(), f.user.Id, &dto.InitiateCancellationRequest{
		SubscriptionId: f.sub.Id,
		ScheduleFor:    &scheduleFor,
		Timezone:       "Europe/Madrid",
	})

	require.True(t, res.Success)
	assert.Equal(t, "scheduled", res.Status)
	assert.Equal(t, 0, res.Metadata.AttemptsUsed)
	assert.False(t, res.Metadata.RealTimeUpdatesEnabled)
	assert.Equal(t, 0, f.api.calls, "no executor runs for a scheduled request")

	_, live := f.trk.Get(res.OrchestrationId)
	assert.False(t, live, "no live session for a scheduled request")

	stored := f.uow.requests.requests[res.RequestId]
	require.NotNil(t, stored)
	assert.Equal(t, entity.CancellationStatusScheduled, stored.Status)
	require.NotNil(t, stored.ScheduledFor)
	assert.Equal(t, "Europe/Madrid", stored.Timezone)

	assert.Equal(t, []string{"cancellation_scheduled"}, f.uow.logs.actions())
}

func TestInitiateCancellationScheduledInPast(t *testing.T) {
	f := newFixture(t)
	scheduleFor := time.Now().Add(-time.Minute)

	res := f.svc.InitiateCancellation(context.Background(), f.user.Id, &dto.InitiateCancellationRequest{
		SubscriptionId: f.sub.Id,
		ScheduleFor:    &scheduleFor,
	})

	require.False(t, res.Success)
	assert.Equal(t, "SCHEDULING_VALIDATION_FAILED", res.Error.Code)
	assert.Empty(t, f.uow.requests.requests, "nothing may be persisted")
}

// --- Retry ---

func TestRetryCancellationOnFailedRequest(t *testing.T) {
	f := newFixture(t)
	req := f.seedRequest(entity.CancellationStatusFailed)
	previousOrchestration := req.OrchestrationId

	res := f.svc.RetryCancellation(context.Background(), f.user.Id, req.Id, &dto.RetryCancellationRequest{})

	require.True(t, res.Success)
	assert.Equal(t, req.Id, res.RequestId)
	assert.NotEqual(t, previousOrchestration, res.OrchestrationId)
	assert.Equal(t, entity.CancellationStatusCompleted, req.Status)
}

func TestRetryCancellationRejectsNonRetryableStatus(t *testing.T) {
	f := newFixture(t)
	req := f.seedRequest(entity.CancellationStatusCompleted)

	res := f.svc.RetryCancellation(context.Background(), f.user.Id, req.Id, &dto.RetryCancellationRequest{})

	require.False(t, res.Success)
	assert.Equal(t, "REQUEST_NOT_FOUND", res.Error.Code)
	assert.Equal(t, entity.CancellationStatusCompleted, req.Status, "request must not be mutated")
	assert.Equal(t, 0, f.api.calls)
}

func TestRetryCancellationUnknownRequest(t *testing.T) {
	f := newFixture(t)

	res := f.svc.RetryCancellation(context.Background(), f.user.Id, uuid.New(), &dto.RetryCancellationRequest{})

	require.False(t, res.Success)
	assert.Equal(t, "REQUEST_NOT_FOUND", res.Error.Code)
}

func TestRetryCancellationForcedMethodDisablesFallback(t *testing.T) {
	f := newFixture(t)
	req := f.seedRequest(entity.CancellationStatusFailed)
	f.api.err = errors.New("still down")

	res := f.svc.RetryCancellation(context.Background(), f.user.Id, req.Id, &dto.RetryCancellationRequest{
		Method: "api",
	})

	require.False(t, res.Success)
	assert.Equal(t, "FALLBACK_DISABLED", res.Error.Code)
	assert.Equal(t, 0, f.auto.calls)
	assert.Equal(t, 0, f.man.calls)
}

func TestRetryCancellationForcedUnsupportedMethod(t *testing.T) {
	provider := defaultProvider()
	provider.SupportsAutomation = false
	f := newFixtureWithProvider(t, provider)
	req := f.seedRequest(entity.CancellationStatusFailed)

	res := f.svc.RetryCancellation(context.Background(), f.user.Id, req.Id, &dto.RetryCancellationRequest{
		Method: "automation",
	})

	require.False(t, res.Success)
	assert.Equal(t, "UNSUPPORTED_METHOD", res.Error.Code)
	assert.Equal(t, entity.CancellationStatusFailed, req.Status)
}

func TestRetryCancellationEscalatesToAutomation(t *testing.T) {
	f := newFixture(t)
	req := f.seedRequest(entity.CancellationStatusFailed)

	res := f.svc.RetryCancellation(context.Background(), f.user.Id, req.Id, &dto.RetryCancellationRequest{
		Escalate: true,
	})

	require.True(t, res.Success)
	assert.Equal(t, "automation", res.Method)
	assert.Equal(t, 0, f.api.calls)
	assert.Equal(t, 1, f.auto.calls)
}

// --- Manual confirmation ---

func TestConfirmManualSuccess(t *testing.T) {
	f := newFixture(t)
	req := f.seedRequest(entity.CancellationStatusRequiresManual)
	code := "CONF-123"

	res, err := f.svc.ConfirmManual(context.Background(), f.user.Id, req.Id, &dto.ConfirmManualRequest{
		WasSuccessful:    true,
		ConfirmationCode: &code,
	})
	require.NoError(t, err)

	assert.Equal(t, "completed", res.Status)
	assert.Equal(t, &code, res.ConfirmationCode)
	assert.Equal(t, 1, f.manual.confirmed)
	assert.Equal(t, entity.SubscriptionStatusCancelled, f.sub.Status)
	require.NotNil(t, req.CompletedAt)
}

func TestConfirmManualReportedFailure(t *testing.T) {
	f := newFixture(t)
	req := f.seedRequest(entity.CancellationStatusRequiresManual)

	res, err := f.svc.ConfirmManual(context.Background(), f.user.Id, req.Id, &dto.ConfirmManualRequest{
		WasSuccessful: false,
	})
	require.NoError(t, err)

	assert.Equal(t, "failed", res.Status)
	assert.Zero(t, f.uow.subs.cancelled)
}

func TestConfirmManualWrongStatus(t *testing.T) {
	f := newFixture(t)
	req := f.seedRequest(entity.CancellationStatusPending)

	_, err := f.svc.ConfirmManual(context.Background(), f.user.Id, req.Id, &dto.ConfirmManualRequest{WasSuccessful: true})
	require.Error(t, err)

	engineErr, ok := cancellation.AsEngineError(err)
	require.True(t, ok)
	assert.Equal(t, cancellation.CodeValidationError, engineErr.Code)
}

// --- Abort ---

func TestCancelCancellationRequest(t *testing.T) {
	f := newFixture(t)
	req := f.seedRequest(entity.CancellationStatusPending)

	res, err := f.svc.CancelCancellationRequest(context.Background(), f.user.Id, req.Id)
	require.NoError(t, err)

	assert.Equal(t, "cancelled", res.Status)
	assert.Equal(t, entity.CancellationStatusCancelled, req.Status)
	assert.Contains(t, f.uow.logs.actions(), "request_aborted")
}

func TestCancelCancellationRequestTerminalStatus(t *testing.T) {
	f := newFixture(t)
	req := f.seedRequest(entity.CancellationStatusCompleted)

	_, err := f.svc.CancelCancellationRequest(context.Background(), f.user.Id, req.Id)
	require.Error(t, err)

	engineErr, ok := cancellation.AsEngineError(err)
	require.True(t, ok)
	assert.Equal(t, cancellation.CodeValidationError, engineErr.Code)
	assert.Equal(t, entity.CancellationStatusCompleted, req.Status)
}

// --- Status reads ---

func TestGetCancellationStatusIncludesTimeline(t *testing.T) {
	f := newFixture(t)

	res := f.svc.InitiateCancellation(context.Background(), f.user.Id, &dto.InitiateCancellationRequest{
		SubscriptionId: f.sub.Id,
	})
	require.True(t, res.Success)

	status, err := f.svc.GetCancellationStatus(context.Background(), f.user.Id, res.RequestId)
	require.NoError(t, err)

	assert.Equal(t, res.RequestId, status.Id)
	assert.Equal(t, "completed", status.Status)
	require.NotEmpty(t, status.Timeline)
	assert.Equal(t, "orchestration_started", status.Timeline[0].Action)
}

func TestGetOrchestrationStatusLive(t *testing.T) {
	f := newFixture(t)
	f.trk.Register("orch-live", f.user.Id, entity.CancellationMethodApi)

	res, err := f.svc.GetOrchestrationStatus(context.Background(), f.user.Id, "orch-live")
	require.NoError(t, err)

	assert.Equal(t, "live", res.Source)
	assert.Equal(t, "processing", res.Status)
}

func TestGetOrchestrationStatusLiveForeignUser(t *testing.T) {
	f := newFixture(t)
	f.trk.Register("orch-live", uuid.New(), entity.CancellationMethodApi)

	_, err := f.svc.GetOrchestrationStatus(context.Background(), f.user.Id, "orch-live")
	require.Error(t, err)
}

func TestGetOrchestrationStatusReplayed(t *testing.T) {
	f := newFixture(t)
	req := f.seedRequest(entity.CancellationStatusFailed)

	res, err := f.svc.GetOrchestrationStatus(context.Background(), f.user.Id, req.OrchestrationId)
	require.NoError(t, err)

	assert.Equal(t, "replayed", res.Source)
	assert.Equal(t, "failed", res.Status)
	require.NotNil(t, res.RequestId)
	assert.Equal(t, req.Id, *res.RequestId)
}

func TestGetOrchestrationStatusUnknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetOrchestrationStatus(context.Background(), f.user.Id, "missing")
	require.Error(t, err)

	engineErr, ok := cancellation.AsEngineError(err)
	require.True(t, ok)
	assert.Equal(t, cancellation.CodeRequestNotFound, engineErr.Code)
}

func TestGetProviderCapabilities(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.GetProviderCapabilities(context.Background(), "Netflix")
	require.NoError(t, err)

	assert.True(t, res.SupportsApi)
	assert.Equal(t, "database", res.DataSource)
}
