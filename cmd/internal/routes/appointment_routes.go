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

type AppointmentService interface {
	GetAppointments(ctx context.Context, userID, page int) ([]*service.AppointmentResponse, apierror.ErrorResponse)
	CreateAppointment(ctx context.Context, req *service.AppointmentRequest, userID int) (*service.AppointmentResponse, apierror.ErrorResponse)
	CancelAppointment(ctx context.Context, id, userID int) (*service.AppointmentResponse, apierror.ErrorResponse)
}

type DefaultAppointmentRoute struct {
	AppointmentService AppointmentService
}

func NewAppointmentDefault(apptService AppointmentService) *DefaultAppointmentRoute {
	return &DefaultAppointmentRoute{AppointmentService: apptService}
}

func (a *DefaultAppointmentRoute) GetAppointments(c echo.Context) error {
	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			apierr := apierror.NewInvalidParamTypeError("page", "positive integer")
			return c.JSON(apierr.Code(), apierr)
		}
		page = parsed
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	appts, apierr := a.AppointmentService.GetAppointments(c.Request().Context(), data.UserID, page)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appts)
}

func (a *DefaultAppointmentRoute) CreateAppointment(c echo.Context) error {
	var req service.AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(apierror.ValidationFailsError.Code(), apierror.ValidationFailsError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	appt, apierr := a.AppointmentService.CreateAppointment(c.Request().Context(), &req, data.UserID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appt)
}

func (a *DefaultAppointmentRoute) CancelAppointment(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errResp := apierror.NewSimple(http.StatusBadRequest, "ID is not a number")
		return c.JSON(errResp.Code(), errResp)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	appt, apierr := a.AppointmentService.CancelAppointment(c.Request().Context(), id, data.UserID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appt)
}
