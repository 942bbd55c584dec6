package implementation

import (
	"context"
	"errors"

	"ai-chatspace-be/internal/entity"
	"ai-chatspace-be/internal/mapper"
	"ai-chatspace-be/internal/model"
	"ai-chatspace-be/internal/repository/contract"
	"ai-chatspace-be/internal/repository/specification"

	"gorm.io/gorm"
)

type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *UserRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	m := r.mapper.ToModel(user)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*user = *r.mapper.ToEntity(m)
	return nil
}

func (r *UserRepositoryImpl) Update(ctx context.Context, user *entity.User) error {
	m := r.mapper.ToModel(user)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*user = *r.mapper.ToEntity(m)
	return nil
}

func (r *UserRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	var m model.User
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

// SaveUserProvider upserts the provider link keyed by (user_id, provider_name).
func (r *UserRepositoryImpl) SaveUserProvider(ctx context.Context, provider *entity.UserProvider) error {
	var existing model.UserProvider
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider_name = ?", provider.UserId, provider.ProviderName).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		m := model.UserProvider{
			Id:             provider.Id,
			UserId:         provider.UserId,
			ProviderName:   provider.ProviderName,
			ProviderUserId: provider.ProviderUserId,
			AvatarURL:      provider.AvatarURL,
			CreatedAt:      provider.CreatedAt,
		}
		return r.db.WithContext(ctx).Create(&m).Error
	}
	if err != nil {
		return err
	}

	existing.ProviderUserId = provider.ProviderUserId
	existing.AvatarURL = provider.AvatarURL
	return r.db.WithContext(ctx).Save(&existing).Error
}
