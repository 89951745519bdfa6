package implementation

import (
	"context"

	"unsubly-be/internal/entity"
	"unsubly-be/internal/model"
	"unsubly-be/internal/repository/contract"
	"unsubly-be/internal/repository/specification"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type cancellationLogRepositoryImpl struct {
	db *gorm.DB
}

// NewCancellationLogRepository creates a new cancellation log repository
func NewCancellationLogRepository(db *gorm.DB) contract.CancellationLogRepository {
	return &cancellationLogRepositoryImpl{db: db}
}

func (r *cancellationLogRepositoryImpl) Append(ctx context.Context, log *entity.CancellationLog) error {
	m := &model.CancellationLog{
		ID:              log.Id,
		RequestID:       log.RequestId,
		OrchestrationID: log.OrchestrationId,
		Action:          log.Action,
		Level:           string(log.Level),
		Message:         log.Message,
		Metadata:        datatypes.JSONMap(log.Metadata),
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	log.Id = m.ID
	log.CreatedAt = m.CreatedAt
	return nil
}

func (r *cancellationLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CancellationLog, error) {
	var models []*model.CancellationLog
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	var logs []*entity.CancellationLog
	for _, m := range models {
		logs = append(logs, &entity.CancellationLog{
			Id:              m.ID,
			RequestId:       m.RequestID,
			OrchestrationId: m.OrchestrationID,
			Action:          m.Action,
			Level:           entity.CancellationLogLevel(m.Level),
			Message:         m.Message,
			Metadata:        map[string]interface{}(m.Metadata),
			CreatedAt:       m.CreatedAt,
		})
	}

	return logs, nil
}
