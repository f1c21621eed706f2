package repository

import (
	"context"
	"errors"
	"gobarber/cmd/internal/domain/entity"
	"gorm.io/gorm"
)

type DefaultUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *DefaultUserRepository {
	return &DefaultUserRepository{db: db}
}

func (u *DefaultUserRepository) FindByID(ctx context.Context, id int) (*entity.User, error) {
	var user entity.User
	err := u.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindProvider returns the user only when it carries the provider flag.
func (u *DefaultUserRepository) FindProvider(ctx context.Context, id int) (*entity.User, error) {
	var user entity.User
	err := u.db.WithContext(ctx).
		Where("id = ?", id).
		Where("provider = ?", true).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *DefaultUserRepository) ListProviders(ctx context.Context) ([]*entity.UserSummary, error) {
	var users []*entity.User
	err := u.db.WithContext(ctx).
		Where("provider = ?", true).
		Order("name asc").
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	avatars, err := findFiles(ctx, u.db, avatarIDs(users))
	if err != nil {
		return nil, err
	}

	summaries := make([]*entity.UserSummary, len(users))
	for i, user := range users {
		summaries[i] = toUserSummary(user, avatars)
	}
	return summaries, nil
}
