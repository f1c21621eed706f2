package service

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"gobarber/cmd/internal/domain/entity"
	"gobarber/cmd/internal/jobs"
	"gobarber/cmd/internal/utils"
	"gobarber/cmd/internal/utils/apierror"
	"iter"
	"strconv"
	"time"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appt *entity.Appointment) error
	FindActiveAt(ctx context.Context, providerID int, date int64) (*entity.Appointment, error)
	ListActiveByUser(ctx context.Context, userID, page int) iter.Seq2[*entity.AppointmentListing, error]
	FindDetailsByID(ctx context.Context, id int) (*entity.AppointmentDetails, error)
	Cancel(ctx context.Context, appt *entity.Appointment, at int64) error
}

// JobQueue is the producer side of the background queue.
type JobQueue interface {
	Add(ctx context.Context, key string, payload any) error
}

type BookingNotifier interface {
	NotifyBooking(ctx context.Context, appt *entity.Appointment, requester *entity.User) error
}

type AppointmentRequest struct {
	ProviderID json.Number `json:"provider_id" validate:"required,number"`
	Date       string      `json:"date" validate:"required,iso8601"`
}

type DefaultAppointmentService struct {
	AppointmentRepo AppointmentRepository
	UserRepo        UserRepository
	Notifier        BookingNotifier
	Jobs            JobQueue
	Validate        *validator.Validate
	AppURL          string
	Now             func() time.Time
}

func NewAppointmentService(
	apptRepo AppointmentRepository,
	userRepo UserRepository,
	notifier BookingNotifier,
	jobQueue JobQueue,
	validate *validator.Validate,
	appURL string,
) *DefaultAppointmentService {
	return &DefaultAppointmentService{
		AppointmentRepo: apptRepo,
		UserRepo:        userRepo,
		Notifier:        notifier,
		Jobs:            jobQueue,
		Validate:        validate,
		AppURL:          appURL,
		Now:             time.Now,
	}
}

func (a *DefaultAppointmentService) GetAppointments(ctx context.Context, userID, page int) ([]*AppointmentResponse, apierror.ErrorResponse) {
	now := a.Now().UnixMilli()

	response := []*AppointmentResponse{}
	for listing, err := range a.AppointmentRepo.ListActiveByUser(ctx, userID, page) {
		if err != nil {
			log.Errorf("failed to list appointments of user %d (page %d): %v", userID, page, err)
			return nil, apierror.InternalServerError
		}
		resp := toAppointmentResponse(listing.Appointment, now)
		resp.Provider = toUserSummaryResponse(listing.Provider, a.AppURL, false)
		response = append(response, resp)
	}
	return response, nil
}

func (a *DefaultAppointmentService) CreateAppointment(ctx context.Context, req *AppointmentRequest, userID int) (*AppointmentResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if valerr := a.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	providerID, err := strconv.Atoi(req.ProviderID.String())
	if err != nil {
		return nil, apierror.ValidationFailsError
	}

	date, err := utils.FromEpoch(req.Date)
	if err != nil {
		return nil, apierror.ValidationFailsError
	}

	if providerID == userID {
		return nil, apierror.SelfBookingError
	}

	provider, err := a.UserRepo.FindProvider(ctx, providerID)
	if err != nil {
		log.Errorf("failed to fetch provider %d: %v", providerID, err)
		return nil, apierror.InternalServerError
	}
	if provider == nil {
		return nil, apierror.InvalidProviderError
	}

	requester, err := a.UserRepo.FindByID(ctx, userID)
	if err != nil {
		log.Errorf("failed to fetch user %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}
	if requester == nil {
		return nil, apierror.InvalidAuthTokenError
	}

	now := a.Now().UnixMilli()
	hourStart := utils.StartOfHour(date)
	if hourStart <= now {
		return nil, apierror.PastDateError
	}

	taken, err := a.AppointmentRepo.FindActiveAt(ctx, providerID, hourStart)
	if err != nil {
		log.Errorf("failed to check slot %d of provider %d: %v", hourStart, providerID, err)
		return nil, apierror.InternalServerError
	}
	if taken != nil {
		return nil, apierror.SlotTakenError
	}

	appointment := &entity.Appointment{
		Date:       hourStart,
		UserID:     userID,
		ProviderID: providerID,
	}

	err = a.AppointmentRepo.Create(ctx, appointment)
	if errors.Is(err, entity.ErrSlotTaken) {
		return nil, apierror.SlotTakenError
	}
	if err != nil {
		log.Errorf("failed to save appointment: %v", err)
		return nil, apierror.InternalServerError
	}

	if err := a.Notifier.NotifyBooking(ctx, appointment, requester); err != nil {
		log.Errorf("failed to notify provider %d of appointment %d: %v", providerID, appointment.ID, err)
		return nil, apierror.InternalServerError
	}
	return toAppointmentResponse(appointment, now), nil
}

// CancelAppointment soft-cancels the requester's own appointment and queues
// the cancellation mail for the provider.
func (a *DefaultAppointmentService) CancelAppointment(ctx context.Context, id, userID int) (*AppointmentResponse, apierror.ErrorResponse) {
	details, err := a.AppointmentRepo.FindDetailsByID(ctx, id)
	if err != nil {
		log.Errorf("failed to fetch appointment by id %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if details == nil {
		return nil, apierror.NotFoundError
	}

	appt := details.Appointment
	if appt.UserID != userID {
		return nil, apierror.PermissionError
	}
	if appt.IsCanceled() {
		return nil, apierror.AlreadyCanceledError
	}

	now := a.Now().UnixMilli()
	if !appt.IsCancelable(now) {
		return nil, apierror.TooLateError
	}

	if err := a.AppointmentRepo.Cancel(ctx, appt, now); err != nil {
		log.Errorf("failed to cancel appointment %d: %v", id, err)
		return nil, apierror.InternalServerError
	}

	// The cancellation stands even when the mail cannot be queued.
	if err := a.Jobs.Add(ctx, jobs.CancellationMailKey, jobs.NewCancellationRequested(details)); err != nil {
		log.Errorf("failed to queue %s for appointment %d: %v", jobs.CancellationMailKey, id, err)
	}

	resp := toAppointmentResponse(appt, now)
	resp.Provider = toUserSummaryResponse(details.Provider, a.AppURL, true)
	resp.User = toUserSummaryResponse(details.User, a.AppURL, false)
	return resp, nil
}
