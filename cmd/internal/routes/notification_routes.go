package routes

import (
	"context"
	"github.com/labstack/echo/v4"
	"gobarber/cmd/internal/service"
	"gobarber/cmd/internal/utils"
	"gobarber/cmd/internal/utils/apierror"
	"net/http"
	"strconv"
)

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int) ([]*service.NotificationResponse, apierror.ErrorResponse)
	MarkAsRead(ctx context.Context, id, userID int) (*service.NotificationResponse, apierror.ErrorResponse)
}

type DefaultNotificationRoute struct {
	NotificationService NotificationService
}

func NewNotificationDefault(notificationService NotificationService) *DefaultNotificationRoute {
	return &DefaultNotificationRoute{NotificationService: notificationService}
}

func (n *DefaultNotificationRoute) GetNotifications(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	notifications, apierr := n.NotificationService.GetNotifications(c.Request().Context(), data.UserID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, notifications)
}

func (n *DefaultNotificationRoute) MarkAsRead(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errResp := apierror.NewSimple(http.StatusBadRequest, "ID is not a number")
		return c.JSON(errResp.Code(), errResp)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	notification, apierr := n.NotificationService.MarkAsRead(c.Request().Context(), id, data.UserID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, notification)
}
