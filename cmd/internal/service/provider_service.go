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

// Working hours offered by every provider, as UTC hours of the day.
const (
	FirstWorkingHour = 8
	LastWorkingHour  = 19
)

type UserRepository interface {
	FindByID(ctx context.Context, id int) (*entity.User, error)
	FindProvider(ctx context.Context, id int) (*entity.User, error)
	ListProviders(ctx context.Context) ([]*entity.UserSummary, error)
}

type ScheduleRepository interface {
	FindActiveByProviderBetween(ctx context.Context, providerID int, start, end int64) ([]*entity.AppointmentDetails, error)
}

type DefaultProviderService struct {
	UserRepo     UserRepository
	ScheduleRepo ScheduleRepository
	AppURL       string
	Now          func() time.Time
}

func NewProviderService(userRepo UserRepository, scheduleRepo ScheduleRepository, appURL string) *DefaultProviderService {
	return &DefaultProviderService{
		UserRepo:     userRepo,
		ScheduleRepo: scheduleRepo,
		AppURL:       appURL,
		Now:          time.Now,
	}
}

func (p *DefaultProviderService) GetProviders(ctx context.Context) ([]*UserSummaryResponse, apierror.ErrorResponse) {
	providers, err := p.UserRepo.ListProviders(ctx)
	if err != nil {
		log.Errorf("failed to fetch providers: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*UserSummaryResponse, len(providers))
	for i, provider := range providers {
		resp[i] = toUserSummaryResponse(provider, p.AppURL, true)
	}
	return resp, nil
}

// GetAvailability lists the provider's working hours on the day of date,
// flagging the ones still bookable.
func (p *DefaultProviderService) GetAvailability(ctx context.Context, providerID int, date int64) ([]*AvailabilityResponse, apierror.ErrorResponse) {
	provider, err := p.UserRepo.FindProvider(ctx, providerID)
	if err != nil {
		log.Errorf("failed to fetch provider %d: %v", providerID, err)
		return nil, apierror.InternalServerError
	}
	if provider == nil {
		return nil, apierror.ProviderNotFoundError
	}

	dayStart := utils.StartOfDay(date)
	appts, err := p.ScheduleRepo.FindActiveByProviderBetween(ctx, providerID, dayStart, dayStart+24*time.Hour.Milliseconds())
	if err != nil {
		log.Errorf("failed to fetch schedule of provider %d: %v", providerID, err)
		return nil, apierror.InternalServerError
	}

	taken := make(map[int64]bool, len(appts))
	for _, appt := range appts {
		taken[appt.Appointment.Date] = true
	}

	now := p.Now().UnixMilli()
	resp := make([]*AvailabilityResponse, 0, LastWorkingHour-FirstWorkingHour+1)
	for hour := FirstWorkingHour; hour <= LastWorkingHour; hour++ {
		slot := dayStart + int64(hour)*time.Hour.Milliseconds()
		resp = append(resp, &AvailabilityResponse{
			Time:      fmt.Sprintf("%02d:00", hour),
			Value:     utils.FormatEpoch(slot),
			Available: slot > now && !taken[slot],
		})
	}
	return resp, nil
}

// GetSchedule returns the caller's own live appointments on the day of date.
// Only providers have a schedule.
func (p *DefaultProviderService) GetSchedule(ctx context.Context, userID int, date int64) ([]*AppointmentResponse, apierror.ErrorResponse) {
	provider, err := p.UserRepo.FindProvider(ctx, userID)
	if err != nil {
		log.Errorf("failed to fetch provider %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}
	if provider == nil {
		return nil, apierror.NotProviderError
	}

	dayStart := utils.StartOfDay(date)
	appts, err := p.ScheduleRepo.FindActiveByProviderBetween(ctx, userID, dayStart, dayStart+24*time.Hour.Milliseconds())
	if err != nil {
		log.Errorf("failed to fetch schedule of provider %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}

	now := p.Now().UnixMilli()
	resp := make([]*AppointmentResponse, len(appts))
	for i, appt := range appts {
		resp[i] = toAppointmentResponse(appt.Appointment, now)
		resp[i].User = toUserSummaryResponse(appt.User, p.AppURL, false)
	}
	return resp, nil
}
