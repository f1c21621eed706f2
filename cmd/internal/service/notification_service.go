package service

import (
	"context"
	"fmt"
	"github.com/labstack/gommon/log"
	"gobarber/cmd/internal/domain/entity"
	"gobarber/cmd/internal/utils"
	"gobarber/cmd/internal/utils/apierror"
	"time"
)

// NotificationLimit caps how many notifications a provider gets back.
const NotificationLimit = 20

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	FindByID(ctx context.Context, id int) (*entity.Notification, error)
	FindRecentByUser(ctx context.Context, userID, limit int) ([]*entity.Notification, error)
	Save(ctx context.Context, notification *entity.Notification) error
}

type DefaultNotificationService struct {
	NotificationRepo NotificationRepository
	UserRepo         UserRepository
	Location         *time.Location
}

func NewNotificationService(notificationRepo NotificationRepository, userRepo UserRepository, location *time.Location) *DefaultNotificationService {
	if location == nil {
		location = time.UTC
	}
	return &DefaultNotificationService{NotificationRepo: notificationRepo, UserRepo: userRepo, Location: location}
}

// NotifyBooking records the new appointment for its provider.
func (n *DefaultNotificationService) NotifyBooking(ctx context.Context, appt *entity.Appointment, requester *entity.User) error {
	notification := &entity.Notification{
		Content: fmt.Sprintf("Novo agendamento de %s para %s", requester.Name, utils.FormatDatePtBR(appt.Date, n.Location)),
		UserID:  appt.ProviderID,
	}
	return n.NotificationRepo.Create(ctx, notification)
}

func (n *DefaultNotificationService) GetNotifications(ctx context.Context, userID int) ([]*NotificationResponse, apierror.ErrorResponse) {
	provider, err := n.UserRepo.FindProvider(ctx, userID)
	if err != nil {
		log.Errorf("failed to fetch provider %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}
	if provider == nil {
		return nil, apierror.NotProviderError
	}

	notifications, err := n.NotificationRepo.FindRecentByUser(ctx, userID, NotificationLimit)
	if err != nil {
		log.Errorf("failed to fetch notifications of user %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*NotificationResponse, len(notifications))
	for i, notification := range notifications {
		resp[i] = toNotificationResponse(notification)
	}
	return resp, nil
}

func (n *DefaultNotificationService) MarkAsRead(ctx context.Context, id, userID int) (*NotificationResponse, apierror.ErrorResponse) {
	notification, err := n.NotificationRepo.FindByID(ctx, id)
	if err != nil {
		log.Errorf("failed to fetch notification %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if notification == nil || notification.UserID != userID {
		return nil, apierror.NotificationNotFoundError
	}

	if !notification.Read {
		notification.Read = true
		if err := n.NotificationRepo.Save(ctx, notification); err != nil {
			log.Errorf("failed to mark notification %d as read: %v", id, err)
			return nil, apierror.InternalServerError
		}
	}
	return toNotificationResponse(notification), nil
}
