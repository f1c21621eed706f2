package repository

import (
	"context"
	"errors"
	"gobarber/cmd/internal/domain/entity"
	"gorm.io/gorm"
)

type DefaultNotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *DefaultNotificationRepository {
	return &DefaultNotificationRepository{db: db}
}

func (n *DefaultNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	return n.db.WithContext(ctx).Create(notification).Error
}

func (n *DefaultNotificationRepository) FindByID(ctx context.Context, id int) (*entity.Notification, error) {
	var notification entity.Notification
	err := n.db.WithContext(ctx).First(&notification, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// FindRecentByUser returns the newest notifications of the user first.
func (n *DefaultNotificationRepository) FindRecentByUser(ctx context.Context, userID, limit int) ([]*entity.Notification, error) {
	var notifications []*entity.Notification
	err := n.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (n *DefaultNotificationRepository) Save(ctx context.Context, notification *entity.Notification) error {
	return n.db.WithContext(ctx).Save(notification).Error
}
