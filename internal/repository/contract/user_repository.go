package contract

import (
	"context"

	"ai-chatspace-be/internal/entity"
	"ai-chatspace-be/internal/repository/specification"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	SaveUserProvider(ctx context.Context, provider *entity.UserProvider) error
}
