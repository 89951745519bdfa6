package contract

import (
	"context"

	"unsubly-be/internal/entity"
	"unsubly-be/internal/repository/specification"
)

// UserRepository defines read access to users
type UserRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	Count(ctx context.Context) (int64, error)
}
