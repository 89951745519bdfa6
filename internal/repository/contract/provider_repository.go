package contract

import (
	"context"

	"unsubly-be/internal/entity"
	"unsubly-be/internal/repository/specification"
)

// ProviderRepository reads (and seeds) the persisted provider registry
type ProviderRepository interface {
	Upsert(ctx context.Context, provider *entity.Provider) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Provider, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Provider, error)
}
