package implementation

import (
	"context"

	"unsubly-be/internal/entity"
	"unsubly-be/internal/model"
	"unsubly-be/internal/repository/contract"
	"unsubly-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type providerRepositoryImpl struct {
	db *gorm.DB
}

// NewProviderRepository creates a new provider registry repository
func NewProviderRepository(db *gorm.DB) contract.ProviderRepository {
	return &providerRepositoryImpl{db: db}
}

func (r *providerRepositoryImpl) Upsert(ctx context.Context, provider *entity.Provider) error {
	m := r.mapToModel(provider)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "normalized_name"}},
			UpdateAll: true,
		}).
		Create(m).Error
}

func (r *providerRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Provider, error) {
	var m model.Provider
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

func (r *providerRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Provider, error) {
	var models []*model.Provider
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	var providers []*entity.Provider
	for _, m := range models {
		providers = append(providers, r.mapToEntity(m))
	}

	return providers, nil
}

func (r *providerRepositoryImpl) mapToModel(e *entity.Provider) *model.Provider {
	return &model.Provider{
		ID:                    e.Id,
		Name:                  e.Name,
		NormalizedName:        e.NormalizedName,
		Category:              e.Category,
		SupportsApi:           e.SupportsApi,
		SupportsAutomation:    e.SupportsAutomation,
		ApiSuccessRate:        e.ApiSuccessRate,
		AutomationSuccessRate: e.AutomationSuccessRate,
		ManualSuccessRate:     e.ManualSuccessRate,
		ApiEstimatedMinutes:   e.ApiEstimatedMinutes,
		AutoEstimatedMinutes:  e.AutoEstimatedMinutes,
		ManualEstimatedMins:   e.ManualEstimatedMins,
		Difficulty:            string(e.Difficulty),
		Requires2FA:           e.Requires2FA,
		HasRetentionOffers:    e.HasRetentionOffers,
	}
}

func (r *providerRepositoryImpl) mapToEntity(m *model.Provider) *entity.Provider {
	return &entity.Provider{
		Id:                    m.ID,
		Name:                  m.Name,
		NormalizedName:        m.NormalizedName,
		Category:              m.Category,
		SupportsApi:           m.SupportsApi,
		SupportsAutomation:    m.SupportsAutomation,
		ApiSuccessRate:        m.ApiSuccessRate,
		AutomationSuccessRate: m.AutomationSuccessRate,
		ManualSuccessRate:     m.ManualSuccessRate,
		ApiEstimatedMinutes:   m.ApiEstimatedMinutes,
		AutoEstimatedMinutes:  m.AutoEstimatedMinutes,
		ManualEstimatedMins:   m.ManualEstimatedMins,
		Difficulty:            entity.ProviderDifficulty(m.Difficulty),
		Requires2FA:           m.Requires2FA,
		HasRetentionOffers:    m.HasRetentionOffers,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}
