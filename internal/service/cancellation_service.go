package service

import (
	"context"
	"errors"
	"fmt"
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
	"unsubly-be/pkg/cancellation/strategy"
	"unsubly-be/pkg/cancellation/tracker"
	"unsubly-be/pkg/events"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ICancellationService is the single entry point for everything
// cancellation: orchestration, scheduling, retries, manual confirmation,
// status reads and analytics.
//
// InitiateCancellation and RetryCancellation never return a Go error; every
// failure is folded into the structured CancellationResult so callers get
// one uniform contract.
type ICancellationService interface {
	InitiateCancellation(ctx context.Context, userId uuid.UUID, req *dto.InitiateCancellationRequest) *dto.CancellationResult
	RetryCancellation(ctx context.Context, userId, requestId uuid.UUID, req *dto.RetryCancellationRequest) *dto.CancellationResult
	ConfirmManual(ctx context.Context, userId, requestId uuid.UUID, req *dto.ConfirmManualRequest) (*dto.CancellationStatusResponse, error)
	CancelCancellationRequest(ctx context.Context, userId, requestId uuid.UUID) (*dto.CancellationStatusResponse, error)
	GetCancellationStatus(ctx context.Context, userId, requestId uuid.UUID) (*dto.CancellationStatusResponse, error)
	GetOrchestrationStatus(ctx context.Context, userId uuid.UUID, orchestrationId string) (*dto.OrchestrationStatusResponse, error)
	SubscribeToUpdates(orchestrationId string, cb tracker.Callback) func()
	GetUnifiedAnalytics(ctx context.Context, userId uuid.UUID, timeframe string) *dto.UnifiedAnalyticsResponse
	GetProviderCapabilities(ctx context.Context, providerName string) (*dto.ProviderCapabilityResponse, error)
}

type cancellationService struct {
	uowFactory  unitofwork.RepositoryFactory
	assessor    *capability.Assessor
	chainExec   *executor.ChainExecutor
	trk         *tracker.Tracker
	manual      cancellation.ManualClient
	eligibility *EligibilityValidator
	aggregator  *analytics.Aggregator
	audit       cancellation.AuditLogger
	publisher   events.Publisher
	validate    *validator.Validate
	logger      logger.ILogger
}

func NewCancellationService(
	uowFactory unitofwork.RepositoryFactory,
	assessor *capability.Assessor,
	chainExec *executor.ChainExecutor,
	trk *tracker.Tracker,
	manual cancellation.ManualClient,
	eligibility *EligibilityValidator,
	aggregator *analytics.Aggregator,
	audit cancellation.AuditLogger,
	publisher events.Publisher,
	validate *validator.Validate,
	log logger.ILogger,
) ICancellationService {
	return &cancellationService{
		uowFactory:  uowFactory,
		assessor:    assessor,
		chainExec:   chainExec,
		trk:         trk,
		manual:      manual,
		eligibility: eligibility,
		aggregator:  aggregator,
		audit:       audit,
		publisher:   publisher,
		validate:    validate,
		logger:      log,
	}
}

// --- Initiation ---

func (s *cancellationService) InitiateCancellation(ctx context.Context, userId uuid.UUID, req *dto.InitiateCancellationRequest) *dto.CancellationResult {
	orchestrationId := uuid.New().String()

	if err := s.validate.Struct(req); err != nil {
		return s.failResult(orchestrationId, uuid.Nil,
			cancellation.NewError(cancellation.CodeValidationError, err.Error()))
	}
	if _, ok := cancellation.ParseMethod(req.Method); !ok {
		return s.failResult(orchestrationId, uuid.Nil,
			cancellation.NewError(cancellation.CodeUnsupportedMethod,
				fmt.Sprintf("unsupported cancellation method: %s", req.Method)))
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil || user == nil {
		return s.failResult(orchestrationId, uuid.Nil,
			cancellation.NewError(cancellation.CodeNotFound, "user not found"))
	}

	subscription, err := s.eligibility.ValidateSubscriptionOwnership(ctx, uow, userId, req.SubscriptionId)
	if err != nil {
		return s.failResult(orchestrationId, uuid.Nil, err)
	}
	if err := s.eligibility.ValidateCancellationEligibility(ctx, uow, subscription); err != nil {
		return s.failResult(orchestrationId, uuid.Nil, err)
	}

	capSnapshot, err := s.assessor.Assess(ctx, subscription.ProviderName)
	if err != nil {
		return s.failResult(orchestrationId, uuid.Nil, err)
	}

	prefs := s.preferencesFrom(req)
	primary := strategy.SelectMethod(capSnapshot, req.Method, prefs)

	if req.ScheduleFor != nil {
		return s.schedule(ctx, uow, orchestrationId, user, subscription, capSnapshot, primary, req)
	}

	request := &entity.CancellationRequest{
		UserId:          userId,
		SubscriptionId:  subscription.Id,
		OrchestrationId: orchestrationId,
		Method:          primary,
		Priority:        priorityFrom(req.Priority),
		Status:          entity.CancellationStatusPending,
		UserNotes:       req.Notes,
		Timezone:        timezoneFor(req.Timezone, user),
		Metadata: map[string]interface{}{
			"provider_name":     subscription.ProviderName,
			"capability_source": string(capSnapshot.DataSource),
			"allow_fallback":    prefs.AllowFallback,
		},
	}
	if err := uow.CancellationRequestRepository().Create(ctx, request); err != nil {
		if errors.Is(err, contract.ErrActiveRequestExists) {
			return s.failResult(orchestrationId, uuid.Nil,
				cancellation.NewError(cancellation.CodeCancellationInProgress,
					"a cancellation request for this subscription is already in progress"))
		}
		s.logger.Error("CancellationService", "Failed to persist cancellation request", map[string]interface{}{
			"orchestration_id": orchestrationId,
			"error":            err.Error(),
		})
		return s.failResult(orchestrationId, uuid.Nil,
			cancellation.NewError(cancellation.CodeOrchestrationFailed, "failed to create cancellation request"))
	}

	s.audit.Log(ctx, &cancellation.AuditEntry{
		UserId:   userId,
		Action:   "cancellation.initiate",
		Resource: subscription.Id.String(),
		Result:   "accepted",
		Metadata: map[string]interface{}{"orchestration_id": orchestrationId, "method": string(primary)},
	})

	return s.runOrchestration(ctx, uow, user, subscription, capSnapshot, request, prefs, primary)
}

// runOrchestration drives the fallback chain for an already-persisted
// request and finalizes the durable row from the chain result. Shared by
// initiation and retry.
func (s *cancellationService) runOrchestration(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User, subscription *entity.Subscription, capSnapshot *entity.ProviderCapability, request *entity.CancellationRequest, prefs *cancellation.Preferences, primary entity.CancellationMethod) *dto.CancellationResult {
	orchestrationId := request.OrchestrationId
	requests := uow.CancellationRequestRepository()
	logs := uow.CancellationLogRepository()

	chain := strategy.BuildFallbackChain(primary, capSnapshot)

	request.Status = entity.CancellationStatusProcessing
	request.Method = primary
	if err := requests.Update(ctx, request); err != nil {
		s.logger.Error("CancellationService", "Failed to mark request processing", map[string]interface{}{
			"orchestration_id": orchestrationId,
			"error":            err.Error(),
		})
		return s.failResult(orchestrationId, request.Id,
			cancellation.NewError(cancellation.CodeOrchestrationFailed, "failed to start orchestration"))
	}

	s.appendLog(ctx, logs, request, "orchestration_started", entity.CancellationLogLevelInfo,
		fmt.Sprintf("Starting cancellation orchestration via %s", primary),
		map[string]interface{}{
			"chain":             methodStrings(chain),
			"capability_source": string(capSnapshot.DataSource),
		})

	s.trk.Register(orchestrationId, user.Id, primary)

	in := &executor.Input{
		OrchestrationId: orchestrationId,
		User:            user,
		Subscription:    subscription,
		Request:         request,
		Capability:      capSnapshot,
		Preferences:     prefs,
	}
	res := s.chainExec.Run(ctx, in, chain, logs, s.trk)

	request.Attempts = res.AttemptsUsed
	if !res.Succeeded() {
		return s.finalizeFailure(ctx, uow, request, res)
	}
	return s.finalizeSuccess(ctx, uow, subscription, request, res, chain)
}

func (s *cancellationService) finalizeSuccess(ctx context.Context, uow unitofwork.UnitOfWork, subscription *entity.Subscription, request *entity.CancellationRequest, res *executor.ChainResult, chain []entity.CancellationMethod) *dto.CancellationResult {
	outcome := res.Outcome
	request.Method = res.Method

	switch outcome.Status {
	case entity.CancellationStatusCompleted:
		now := time.Now().UTC()
		request.Status = entity.CancellationStatusCompleted
		request.CompletedAt = &now
		request.ConfirmationCode = outcome.ConfirmationCode
		request.EffectiveDate = outcome.EffectiveDate
		request.RefundAmount = outcome.RefundAmount
		if err := uow.SubscriptionRepository().MarkCancelled(ctx, subscription); err != nil {
			s.logger.Error("CancellationService", "Cancellation succeeded but subscription update failed", map[string]interface{}{
				"subscription_id": subscription.Id.String(),
				"error":           err.Error(),
			})
		}
	case entity.CancellationStatusRequiresManual:
		request.Status = entity.CancellationStatusRequiresManual
		if request.Metadata == nil {
			request.Metadata = map[string]interface{}{}
		}
		request.Metadata["manual_instructions"] = outcome.Instructions
	default:
		// An automation workflow keeps running on the collaborator side;
		// the durable row stays processing until a later confirmation.
		request.Status = entity.CancellationStatusProcessing
	}

	if err := uow.CancellationRequestRepository().Update(ctx, request); err != nil {
		s.logger.Error("CancellationService", "Failed to finalize cancellation request", map[string]interface{}{
			"request_id": request.Id.String(),
			"error":      err.Error(),
		})
	}
	s.appendLog(ctx, uow.CancellationLogRepository(), request, "orchestration_completed", entity.CancellationLogLevelSuccess,
		fmt.Sprintf("Orchestration finished with status %s via %s", request.Status, res.Method),
		map[string]interface{}{"attempts_used": res.AttemptsUsed})

	// Completed and requires_manual sessions are done as far as live
	// tracking goes; a processing automation run keeps its session until
	// the TTL sweeper reclaims it.
	if request.Status == entity.CancellationStatusProcessing {
		s.trk.UpdateStatus(request.OrchestrationId, request.Status, res.Method, outcome.Message)
	} else {
		s.trk.Finish(request.OrchestrationId, request.Status, res.Method, outcome.Message)
	}

	result := &dto.CancellationResult{
		Success:             true,
		OrchestrationId:     request.OrchestrationId,
		RequestId:           request.Id,
		Status:              string(request.Status),
		Method:              string(res.Method),
		Message:             outcome.Message,
		EstimatedCompletion: outcome.EstimatedCompletion,
		ConfirmationCode:    outcome.ConfirmationCode,
		EffectiveDate:       outcome.EffectiveDate,
		RefundAmount:        outcome.RefundAmount,
		ManualInstructions:  outcome.Instructions,
		Metadata: dto.ResultMetadata{
			AttemptsUsed:           res.AttemptsUsed,
			RealTimeUpdatesEnabled: true,
		},
		Tracking: s.trackingFor(request),
	}
	if res.AttemptsUsed > 1 {
		result.Metadata.FallbackReason = fmt.Sprintf("primary method %s failed, completed via %s", chain[0], res.Method)
	}
	return result
}

func (s *cancellationService) finalizeFailure(ctx context.Context, uow unitofwork.UnitOfWork, request *entity.CancellationRequest, res *executor.ChainResult) *dto.CancellationResult {
	request.Status = entity.CancellationStatusFailed
	request.Method = res.Method
	if err := uow.CancellationRequestRepository().Update(ctx, request); err != nil {
		s.logger.Error("CancellationService", "Failed to persist failed request", map[string]interface{}{
			"request_id": request.Id.String(),
			"error":      err.Error(),
		})
	}
	s.appendLog(ctx, uow.CancellationLogRepository(), request, "orchestration_failed", entity.CancellationLogLevelError,
		res.FailureMessage, map[string]interface{}{
			"code":          string(res.FailureCode),
			"attempts_used": res.AttemptsUsed,
		})

	s.trk.Finish(request.OrchestrationId, entity.CancellationStatusFailed, res.Method, res.FailureMessage)

	result := s.failResult(request.OrchestrationId, request.Id,
		cancellation.NewError(res.FailureCode, res.FailureMessage))
	result.Method = string(res.Method)
	result.Metadata.AttemptsUsed = res.AttemptsUsed
	result.Tracking = s.trackingFor(request)
	return result
}

// --- Scheduling ---

// schedule persists a deferred request without running any executor or
// registering a live session. Execution happens when the due-date worker
// picks the row up.
func (s *cancellationService) schedule(ctx context.Context, uow unitofwork.UnitOfWork, orchestrationId string, user *entity.User, subscription *entity.Subscription, capSnapshot *entity.ProviderCapability, primary entity.CancellationMethod, req *dto.InitiateCancellationRequest) *dto.CancellationResult {
	if !req.ScheduleFor.After(time.Now()) {
		return s.failResult(orchestrationId, uuid.Nil,
			cancellation.NewError(cancellation.CodeSchedulingValidation, "schedule_for must be in the future"))
	}

	timezone := timezoneFor(req.Timezone, user)
	request := &entity.CancellationRequest{
		UserId:          user.Id,
		SubscriptionId:  subscription.Id,
		OrchestrationId: orchestrationId,
		Method:          primary,
		Priority:        priorityFrom(req.Priority),
		Status:          entity.CancellationStatusScheduled,
		UserNotes:       req.Notes,
		ScheduledFor:    req.ScheduleFor,
		Timezone:        timezone,
		Metadata: map[string]interface{}{
			"provider_name":     subscription.ProviderName,
			"selected_method":   string(primary),
			"capability_source": string(capSnapshot.DataSource),
			"timezone":          timezone,
		},
	}
	if err := uow.CancellationRequestRepository().Create(ctx, request); err != nil {
		if errors.Is(err, contract.ErrActiveRequestExists) {
			return s.failResult(orchestrationId, uuid.Nil,
				cancellation.NewError(cancellation.CodeCancellationInProgress,
					"a cancellation request for this subscription is already in progress"))
		}
		return s.failResult(orchestrationId, uuid.Nil,
			cancellation.NewError(cancellation.CodeOrchestrationFailed, "failed to schedule cancellation"))
	}

	s.appendLog(ctx, uow.CancellationLogRepository(), request, "cancellation_scheduled", entity.CancellationLogLevelInfo,
		fmt.Sprintf("Cancellation scheduled for %s via %s", req.ScheduleFor.Format(time.RFC3339), primary),
		map[string]interface{}{"scheduled_for": req.ScheduleFor.Format(time.RFC3339)})

	if s.publisher != nil {
		event := events.NewCancellationEvent(events.TypeCancellationScheduled, orchestrationId, map[string]interface{}{
			"user_id":       user.Id.String(),
			"method":        string(primary),
			"scheduled_for": req.ScheduleFor.Format(time.RFC3339),
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("CancellationService", "Failed to publish scheduled event", map[string]interface{}{
				"orchestration_id": orchestrationId,
				"error":            err.Error(),
			})
		}
	}
	s.audit.Log(ctx, &cancellation.AuditEntry{
		UserId:   user.Id,
		Action:   "cancellation.schedule",
		Resource: subscription.Id.String(),
		Result:   "accepted",
		Metadata: map[string]interface{}{"orchestration_id": orchestrationId, "scheduled_for": req.ScheduleFor.Format(time.RFC3339)},
	})

	return &dto.CancellationResult{
		Success:         true,
		OrchestrationId: orchestrationId,
		RequestId:       request.Id,
		Status:          string(entity.CancellationStatusScheduled),
		Method:          string(primary),
		Message:         fmt.Sprintf("Cancellation scheduled for %s", req.ScheduleFor.Format(time.RFC3339)),
		Metadata: dto.ResultMetadata{
			AttemptsUsed:           0,
			RealTimeUpdatesEnabled: false,
		},
		Tracking: s.trackingFor(request),
	}
}

// --- Retry ---

func (s *cancellationService) RetryCancellation(ctx context.Context, userId, requestId uuid.UUID, req *dto.RetryCancellationRequest) *dto.CancellationResult {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	request, err := uow.CancellationRequestRepository().FindOne(ctx,
		specification.ByID{ID: requestId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return s.failResult("", requestId,
			cancellation.NewError(cancellation.CodeOrchestrationFailed, "failed to load cancellation request"))
	}
	// Only settled requests are retryable. Everything else, including a
	// request that simply does not exist, is reported the same way so a
	// retry probe cannot distinguish the two.
	if request == nil ||
		(request.Status != entity.CancellationStatusFailed && request.Status != entity.CancellationStatusCancelled) {
		return s.failResult("", requestId,
			cancellation.NewError(cancellation.CodeRequestNotFound, "no retryable cancellation request found"))
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil || user == nil {
		return s.failResult("", requestId,
			cancellation.NewError(cancellation.CodeNotFound, "user not found"))
	}
	subscription, err := s.eligibility.ValidateSubscriptionOwnership(ctx, uow, userId, request.SubscriptionId)
	if err != nil {
		return s.failResult("", requestId, err)
	}
	if err := s.eligibility.ValidateCancellationEligibility(ctx, uow, subscription); err != nil {
		return s.failResult("", requestId, err)
	}

	capSnapshot, err := s.assessor.Assess(ctx, subscription.ProviderName)
	if err != nil {
		return s.failResult("", requestId, err)
	}

	prefs := cancellation.DefaultPreferences()
	var primary entity.CancellationMethod
	switch {
	case req != nil && req.Method != "":
		forced, ok := cancellation.ParseMethod(req.Method)
		if !ok || forced == "" || !capSnapshot.Supports(forced) {
			return s.failResult("", requestId,
				cancellation.NewError(cancellation.CodeUnsupportedMethod,
					fmt.Sprintf("provider does not support method %s", req.Method)))
		}
		// An explicit override means "this method and nothing else".
		primary = forced
		prefs.PreferredMethod = req.Method
		prefs.AllowFallback = false
	case req != nil && req.Escalate:
		prefs.PreferredMethod = string(entity.CancellationMethodAutomation)
		primary = strategy.SelectMethod(capSnapshot, prefs.PreferredMethod, prefs)
	default:
		primary = strategy.SelectMethod(capSnapshot, cancellation.MethodAuto, prefs)
	}

	orchestrationId := uuid.New().String()
	request.OrchestrationId = orchestrationId
	request.Status = entity.CancellationStatusPending
	request.Attempts = 0
	if req != nil && req.Notes != "" {
		request.UserNotes = req.Notes
	}
	if err := uow.CancellationRequestRepository().Update(ctx, request); err != nil {
		return s.failResult(orchestrationId, requestId,
			cancellation.NewError(cancellation.CodeOrchestrationFailed, "failed to reopen cancellation request"))
	}

	s.appendLog(ctx, uow.CancellationLogRepository(), request, "retry_started", entity.CancellationLogLevelInfo,
		fmt.Sprintf("Retrying cancellation via %s", primary),
		map[string]interface{}{"escalated": req != nil && req.Escalate, "forced_method": prefs.PreferredMethod})
	s.audit.Log(ctx, &cancellation.AuditEntry{
		UserId:   userId,
		Action:   "cancellation.retry",
		Resource: request.Id.String(),
		Result:   "accepted",
		Metadata: map[string]interface{}{"orchestration_id": orchestrationId, "method": string(primary)},
	})

	return s.runOrchestration(ctx, uow, user, subscription, capSnapshot, request, prefs, primary)
}

// --- Manual confirmation ---

func (s *cancellationService) ConfirmManual(ctx context.Context, userId, requestId uuid.UUID, req *dto.ConfirmManualRequest) (*dto.CancellationStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	request, err := uow.CancellationRequestRepository().FindOne(ctx,
		specification.ByID{ID: requestId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load cancellation request: %w", err)
	}
	if request == nil {
		return nil, cancellation.NewError(cancellation.CodeRequestNotFound, "cancellation request not found")
	}
	if request.Status != entity.CancellationStatusRequiresManual {
		return nil, cancellation.NewError(cancellation.CodeValidationError,
			fmt.Sprintf("request in status %s cannot be confirmed manually", request.Status))
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil || user == nil {
		return nil, cancellation.NewError(cancellation.CodeNotFound, "user not found")
	}

	outcome := &cancellation.ManualConfirmation{
		WasSuccessful:    req.WasSuccessful,
		ConfirmationCode: req.ConfirmationCode,
		EffectiveDate:    req.EffectiveDate,
		Notes:            req.Notes,
	}
	if err := s.manual.Confirm(ctx, user, request.Id.String(), outcome); err != nil {
		return nil, cancellation.NewError(cancellation.CodeOrchestrationFailed, "failed to record manual confirmation")
	}

	if req.WasSuccessful {
		now := time.Now().UTC()
		request.Status = entity.CancellationStatusCompleted
		request.CompletedAt = &now
		request.ConfirmationCode = req.ConfirmationCode
		request.EffectiveDate = req.EffectiveDate

		subscription, err := uow.SubscriptionRepository().FindOne(ctx,
			specification.ByID{ID: request.SubscriptionId})
		if err == nil && subscription != nil {
			if err := uow.SubscriptionRepository().MarkCancelled(ctx, subscription); err != nil {
				s.logger.Error("CancellationService", "Manual confirmation succeeded but subscription update failed", map[string]interface{}{
					"subscription_id": subscription.Id.String(),
					"error":           err.Error(),
				})
			}
		}
		s.appendLog(ctx, uow.CancellationLogRepository(), request, "manual_confirmed", entity.CancellationLogLevelSuccess,
			"User confirmed the manual cancellation succeeded", nil)
	} else {
		request.Status = entity.CancellationStatusFailed
		s.appendLog(ctx, uow.CancellationLogRepository(), request, "manual_confirmed", entity.CancellationLogLevelWarning,
			"User reported the manual cancellation did not succeed", nil)
	}

	if err := uow.CancellationRequestRepository().Update(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to update cancellation request: %w", err)
	}

	s.audit.Log(ctx, &cancellation.AuditEntry{
		UserId:   userId,
		Action:   "cancellation.confirm_manual",
		Resource: request.Id.String(),
		Result:   string(request.Status),
	})

	return s.statusResponse(ctx, uow, request)
}

// --- Abort ---

func (s *cancellationService) CancelCancellationRequest(ctx context.Context, userId, requestId uuid.UUID) (*dto.CancellationStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	request, err := uow.CancellationRequestRepository().FindOne(ctx,
		specification.ByID{ID: requestId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load cancellation request: %w", err)
	}
	if request == nil {
		return nil, cancellation.NewError(cancellation.CodeRequestNotFound, "cancellation request not found")
	}
	switch request.Status {
	case entity.CancellationStatusPending, entity.CancellationStatusProcessing:
	default:
		return nil, cancellation.NewError(cancellation.CodeValidationError,
			fmt.Sprintf("request in status %s cannot be aborted", request.Status))
	}

	request.Status = entity.CancellationStatusCancelled
	if err := uow.CancellationRequestRepository().Update(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to abort cancellation request: %w", err)
	}
	s.appendLog(ctx, uow.CancellationLogRepository(), request, "request_aborted", entity.CancellationLogLevelWarning,
		"Cancellation request aborted by the user", nil)

	// Best-effort: a live session for this orchestration, if any, learns
	// about the abort too.
	if request.OrchestrationId != "" {
		s.trk.Finish(request.OrchestrationId, entity.CancellationStatusCancelled, request.Method,
			"Cancellation request aborted by the user")
	}

	s.audit.Log(ctx, &cancellation.AuditEntry{
		UserId:   userId,
		Action:   "cancellation.abort",
		Resource: request.Id.String(),
		Result:   "cancelled",
	})

	return s.statusResponse(ctx, uow, request)
}

// --- Reads ---

func (s *cancellationService) GetCancellationStatus(ctx context.Context, userId, requestId uuid.UUID) (*dto.CancellationStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	request, err := uow.CancellationRequestRepository().FindOne(ctx,
		specification.ByID{ID: requestId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load cancellation request: %w", err)
	}
	if request == nil {
		return nil, cancellation.NewError(cancellation.CodeRequestNotFound, "cancellation request not found")
	}
	return s.statusResponse(ctx, uow, request)
}

func (s *cancellationService) GetOrchestrationStatus(ctx context.Context, userId uuid.UUID, orchestrationId string) (*dto.OrchestrationStatusResponse, error) {
	if snapshot, ok := s.trk.Get(orchestrationId); ok {
		if snapshot.UserId != userId {
			return nil, cancellation.NewError(cancellation.CodeRequestNotFound, "orchestration not found")
		}
		return &dto.OrchestrationStatusResponse{
			OrchestrationId: orchestrationId,
			Status:          string(snapshot.Status),
			Method:          string(snapshot.Method),
			StartedAt:       snapshot.StartedAt,
			LastUpdateAt:    snapshot.LastUpdateAt,
			Source:          "live",
		}, nil
	}

	// The live session is gone (finished, evicted, or the process
	// restarted); replay from the durable request instead.
	uow := s.uowFactory.NewUnitOfWork(ctx)
	request, err := uow.CancellationRequestRepository().FindOne(ctx,
		specification.ByOrchestrationID{OrchestrationID: orchestrationId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to replay orchestration: %w", err)
	}
	if request == nil {
		return nil, cancellation.NewError(cancellation.CodeRequestNotFound, "orchestration not found")
	}

	return &dto.OrchestrationStatusResponse{
		OrchestrationId: orchestrationId,
		Status:          string(request.Status),
		Method:          string(request.Method),
		StartedAt:       request.CreatedAt,
		LastUpdateAt:    request.UpdatedAt,
		Source:          "replayed",
		RequestId:       &request.Id,
	}, nil
}

func (s *cancellationService) SubscribeToUpdates(orchestrationId string, cb tracker.Callback) func() {
	return s.trk.Subscribe(orchestrationId, cb)
}

func (s *cancellationService) GetUnifiedAnalytics(ctx context.Context, userId uuid.UUID, timeframe string) *dto.UnifiedAnalyticsResponse {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.aggregator.GetUnifiedAnalytics(ctx, uow, userId, timeframe)
}

func (s *cancellationService) GetProviderCapabilities(ctx context.Context, providerName string) (*dto.ProviderCapabilityResponse, error) {
	capSnapshot, err := s.assessor.Assess(ctx, providerName)
	if err != nil {
		return nil, err
	}
	return &dto.ProviderCapabilityResponse{
		ProviderName:          capSnapshot.ProviderName,
		SupportsApi:           capSnapshot.SupportsApi,
		SupportsAutomation:    capSnapshot.SupportsAutomation,
		SupportsManual:        capSnapshot.SupportsManual,
		ApiSuccessRate:        capSnapshot.ApiSuccessRate,
		AutomationSuccessRate: capSnapshot.AutomationSuccessRate,
		ManualSuccessRate:     capSnapshot.ManualSuccessRate,
		ApiEstimatedMinutes:   capSnapshot.ApiEstimatedMinutes,
		AutoEstimatedMinutes:  capSnapshot.AutoEstimatedMinutes,
		ManualEstimatedMins:   capSnapshot.ManualEstimatedMins,
		Difficulty:            string(capSnapshot.Difficulty),
		Requires2FA:           capSnapshot.Requires2FA,
		HasRetentionOffers:    capSnapshot.HasRetentionOffers,
		DataSource:            string(capSnapshot.DataSource),
		LastAssessed:          capSnapshot.LastAssessed,
	}, nil
}

// --- Helpers ---

func (s *cancellationService) statusResponse(ctx context.Context, uow unitofwork.UnitOfWork, request *entity.CancellationRequest) (*dto.CancellationStatusResponse, error) {
	logs, err := uow.CancellationLogRepository().FindAll(ctx,
		specification.ByRequestID{RequestID: request.Id},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load cancellation timeline: %w", err)
	}

	timeline := make([]dto.CancellationLogEntry, 0, len(logs))
	for _, log := range logs {
		timeline = append(timeline, dto.CancellationLogEntry{
			Action:    log.Action,
			Level:     string(log.Level),
			Message:   log.Message,
			Metadata:  log.Metadata,
			CreatedAt: log.CreatedAt,
		})
	}

	return &dto.CancellationStatusResponse{
		Id:               request.Id,
		SubscriptionId:   request.SubscriptionId,
		OrchestrationId:  request.OrchestrationId,
		Method:           string(request.Method),
		Priority:         string(request.Priority),
		Status:           string(request.Status),
		Attempts:         request.Attempts,
		ConfirmationCode: request.ConfirmationCode,
		EffectiveDate:    request.EffectiveDate,
		RefundAmount:     request.RefundAmount,
		ScheduledFor:     request.ScheduledFor,
		CreatedAt:        request.CreatedAt,
		CompletedAt:      request.CompletedAt,
		Timeline:         timeline,
	}, nil
}

func (s *cancellationService) appendLog(ctx context.Context, logs contract.CancellationLogRepository, request *entity.CancellationRequest, action string, level entity.CancellationLogLevel, message string, metadata map[string]interface{}) {
	err := logs.Append(ctx, &entity.CancellationLog{
		RequestId:       request.Id,
		OrchestrationId: request.OrchestrationId,
		Action:          action,
		Level:           level,
		Message:         message,
		Metadata:        metadata,
	})
	if err != nil {
		s.logger.Warn("CancellationService", "Failed to append cancellation log", map[string]interface{}{
			"action": action,
			"error":  err.Error(),
		})
	}
}

// failResult folds any error into the structured result contract.
func (s *cancellationService) failResult(orchestrationId string, requestId uuid.UUID, err error) *dto.CancellationResult {
	resultErr := &dto.ResultError{
		Code:    string(cancellation.CodeOrchestrationFailed),
		Message: err.Error(),
	}
	if engineErr, ok := cancellation.AsEngineError(err); ok {
		resultErr.Code = string(engineErr.Code)
		resultErr.Message = engineErr.Message
		resultErr.Details = engineErr.Details
	}
	return &dto.CancellationResult{
		Success:         false,
		OrchestrationId: orchestrationId,
		RequestId:       requestId,
		Status:          string(entity.CancellationStatusFailed),
		Message:         resultErr.Message,
		Error:           resultErr,
	}
}

func (s *cancellationService) trackingFor(request *entity.CancellationRequest) dto.ResultTracking {
	return dto.ResultTracking{
		StatusCheckEndpoint: fmt.Sprintf("/api/cancellations/%s", request.Id),
		LiveUpdateEndpoint:  "/api/ws/cancellations",
	}
}

func (s *cancellationService) preferencesFrom(req *dto.InitiateCancellationRequest) *cancellation.Preferences {
	prefs := cancellation.DefaultPreferences()
	if req.Method != "" {
		prefs.PreferredMethod = req.Method
	}
	if req.AllowFallback != nil {
		prefs.AllowFallback = *req.AllowFallback
	}
	if req.Notifications != nil {
		prefs.Notifications = req.Notifications
	}
	return prefs
}

func priorityFrom(raw string) entity.CancellationPriority {
	switch raw {
	case string(entity.CancellationPriorityLow):
		return entity.CancellationPriorityLow
	case string(entity.CancellationPriorityHigh):
		return entity.CancellationPriorityHigh
	default:
		return entity.CancellationPriorityNormal
	}
}

func timezoneFor(requested string, user *entity.User) string {
	if requested != "" {
		return requested
	}
	if user.Timezone != "" {
		return user.Timezone
	}
	return "UTC"
}

func methodStrings(chain []entity.CancellationMethod) []string {
	out := make([]string, len(chain))
	for i, m := range chain {
		out[i] = string(m)
	}
	return out
}
