package implementation

import (
	"context"
	"errors"

	"unsubly-be/internal/entity"
	"unsubly-be/internal/model"
	"unsubly-be/internal/repository/contract"
	"unsubly-be/internal/repository/specification"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type cancellationRequestRepositoryImpl struct {
	db *gorm.DB
}

// NewCancellationRequestRepository creates a new cancellation request repository
func NewCancellationRequestRepository(db *gorm.DB) contract.CancellationRequestRepository {
	return &cancellationRequestRepositoryImpl{db: db}
}

func (r *cancellationRequestRepositoryImpl) Create(ctx context.Context, request *entity.CancellationRequest) error {
	m := r.mapToModel(request)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return contract.ErrActiveRequestExists
		}
		return err
	}
	request.Id = m.ID
	request.CreatedAt = m.CreatedAt
	request.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *cancellationRequestRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CancellationRequest, error) {
	var m model.CancellationRequest
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return r.mapToEntity(&m), nil
}

func (r *cancellationRequestRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CancellationRequest, error) {
	var models []*model.CancellationRequest
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	var requests []*entity.CancellationRequest
	for _, m := range models {
		requests = append(requests, r.mapToEntity(m))
	}

	return requests, nil
}

// Update persists the mutable lifecycle fields. created_at, user_id and
// subscription_id are set once at insert and never written again.
func (r *cancellationRequestRepositoryImpl) Update(ctx context.Context, request *entity.CancellationRequest) error {
	return r.db.WithContext(ctx).Model(&model.CancellationRequest{}).
		Where("id = ?", request.Id).
		Updates(map[string]interface{}{
			"orchestration_id":  request.OrchestrationId,
			"method":            string(request.Method),
			"priority":          string(request.Priority),
			"status":            string(request.Status),
			"attempts":          request.Attempts,
			"confirmation_code": request.ConfirmationCode,
			"effective_date":    request.EffectiveDate,
			"refund_amount":     request.RefundAmount,
			"user_notes":        request.UserNotes,
			"scheduled_for":     request.ScheduledFor,
			"timezone":          request.Timezone,
			"metadata":          datatypes.JSONMap(request.Metadata),
			"completed_at":      request.CompletedAt,
		}).Error
}

func (r *cancellationRequestRepositoryImpl) mapToModel(e *entity.CancellationRequest) *model.CancellationRequest {
	return &model.CancellationRequest{
		ID:               e.Id,
		UserID:           e.UserId,
		SubscriptionID:   e.SubscriptionId,
		OrchestrationID:  e.OrchestrationId,
		Method:           string(e.Method),
		Priority:         string(e.Priority),
		Status:           string(e.Status),
		Attempts:         e.Attempts,
		ConfirmationCode: e.ConfirmationCode,
		EffectiveDate:    e.EffectiveDate,
		RefundAmount:     e.RefundAmount,
		UserNotes:        e.UserNotes,
		ScheduledFor:     e.ScheduledFor,
		Timezone:         e.Timezone,
		Metadata:         datatypes.JSONMap(e.Metadata),
		CompletedAt:      e.CompletedAt,
	}
}

func (r *cancellationRequestRepositoryImpl) mapToEntity(m *model.CancellationRequest) *entity.CancellationRequest {
	return &entity.CancellationRequest{
		Id:               m.ID,
		UserId:           m.UserID,
		SubscriptionId:   m.SubscriptionID,
		OrchestrationId:  m.OrchestrationID,
		Method:           entity.CancellationMethod(m.Method),
		Priority:         entity.CancellationPriority(m.Priority),
		Status:           entity.CancellationStatus(m.Status),
		Attempts:         m.Attempts,
		ConfirmationCode: m.ConfirmationCode,
		EffectiveDate:    m.EffectiveDate,
		RefundAmount:     m.RefundAmount,
		UserNotes:        m.UserNotes,
		ScheduledFor:     m.ScheduledFor,
		Timezone:         m.Timezone,
		Metadata:         map[string]interface{}(m.Metadata),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		CompletedAt:      m.CompletedAt,
	}
}

// isUniqueViolation detects the partial unique index rejecting a second
// active request for the same subscription.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
