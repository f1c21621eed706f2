package routes

import (
	"context"
	"github.com/labstack/echo/v4"
	"gobarber/cmd/internal/service"
	"gobarber/cmd/internal/utils"
	"gobarber/cmd/internal/utils/apierror"
	"net/http"
	"strconv"
	"strings"
)

type ProviderService interface {
	GetProviders(ctx context.Context) ([]*service.UserSummaryResponse, apierror.ErrorResponse)
	GetAvailability(ctx context.Context, providerID int, date int64) ([]*service.AvailabilityResponse, apierror.ErrorResponse)
	GetSchedule(ctx context.Context, userID int, date int64) ([]*service.AppointmentResponse, apierror.ErrorResponse)
}

type DefaultProviderRoute struct {
	ProviderService ProviderService
}

func NewProviderDefault(providerService ProviderService) *DefaultProviderRoute {
	return &DefaultProviderRoute{ProviderService: providerService}
}

func (p *DefaultProviderRoute) GetProviders(c echo.Context) error {
	providers, apierr := p.ProviderService.GetProviders(c.Request().Context())
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, providers)
}

// GetAvailability expects ?date=<epoch millis> for any instant of the day.
func (p *DefaultProviderRoute) GetAvailability(c echo.Context) error {
	providerID, err := strconv.Atoi(c.Param("providerId"))
	if err != nil {
		errResp := apierror.NewSimple(http.StatusBadRequest, "ID is not a number")
		return c.JSON(errResp.Code(), errResp)
	}

	raw := strings.TrimSpace(c.QueryParam("date"))
	if raw == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("date"))
	}
	date, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		apierr := apierror.NewInvalidParamTypeError("date", "int64")
		return c.JSON(apierr.Code(), apierr)
	}

	slots, apierr := p.ProviderService.GetAvailability(c.Request().Context(), providerID, date)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, slots)
}

// GetSchedule expects ?date=<RFC 3339>, e.g. 2030-01-01T00:00:00Z.
func (p *DefaultProviderRoute) GetSchedule(c echo.Context) error {
	raw := strings.TrimSpace(c.QueryParam("date"))
	if raw == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("date"))
	}
	date, err := utils.FromEpoch(raw)
	if err != nil {
		apierr := apierror.NewSimple(http.StatusBadRequest, "Could not understand date format")
		return c.JSON(apierr.Code(), apierr)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	schedule, apierr := p.ProviderService.GetSchedule(c.Request().Context(), data.UserID, date)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, schedule)
}
