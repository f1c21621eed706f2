package repository

import (
	"context"
	"errors"
	"gobarber/cmd/internal/domain/entity"
	"gorm.io/gorm"
	"iter"
	"math"
)

// PageSize is the number of appointments per listing page.
const PageSize = 20

// maxPage is the last page whose offset still fits in an int.
const maxPage = math.MaxInt/PageSize + 1

type DefaultAppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *DefaultAppointmentRepository {
	return &DefaultAppointmentRepository{db: db}
}

// Create inserts appt. A live booking already holding the provider's slot
// yields entity.ErrSlotTaken.
func (a *DefaultAppointmentRepository) Create(ctx context.Context, appt *entity.Appointment) error {
	err := a.db.WithContext(ctx).Create(appt).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return entity.ErrSlotTaken
	}
	return err
}

func (a *DefaultAppointmentRepository) FindByID(ctx context.Context, id int) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := a.db.WithContext(ctx).First(&appt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// FindActiveAt returns the non-canceled appointment holding the provider's
// slot at date, if any.
func (a *DefaultAppointmentRepository) FindActiveAt(ctx context.Context, providerID int, date int64) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := a.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Where("date = ?", date).
		Where("canceled_at IS NULL").
		First(&appt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// ListActiveByUser yields one page of the user's live appointments, earliest
// first. Nothing is queried until the sequence is ranged over, and every
// range runs the query again.
func (a *DefaultAppointmentRepository) ListActiveByUser(ctx context.Context, userID, page int) iter.Seq2[*entity.AppointmentListing, error] {
	if page < 1 {
		page = 1
	}

	return func(yield func(*entity.AppointmentListing, error) bool) {
		if page > maxPage {
			return
		}

		var appts []*entity.Appointment
		err := a.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Where("canceled_at IS NULL").
			Order("date asc").
			Limit(PageSize).
			Offset((page - 1) * PageSize).
			Find(&appts).Error
		if err != nil {
			yield(nil, err)
			return
		}

		providers, err := findUserSummaries(ctx, a.db, providerIDs(appts))
		if err != nil {
			yield(nil, err)
			return
		}

		for _, appt := range appts {
			listing := &entity.AppointmentListing{
				Appointment: appt,
				Provider:    providers[appt.ProviderID],
			}
			if !yield(listing, nil) {
				return
			}
		}
	}
}

// FindDetailsByID returns the appointment with provider and requester, or
// nil when there is no such appointment.
func (a *DefaultAppointmentRepository) FindDetailsByID(ctx context.Context, id int) (*entity.AppointmentDetails, error) {
	appt, err := a.FindByID(ctx, id)
	if err != nil || appt == nil {
		return nil, err
	}

	users, err := findUserSummaries(ctx, a.db, []int{appt.ProviderID, appt.UserID})
	if err != nil {
		return nil, err
	}

	return &entity.AppointmentDetails{
		Appointment: appt,
		Provider:    users[appt.ProviderID],
		User:        users[appt.UserID],
	}, nil
}

// FindActiveByProviderBetween lists the provider's live appointments in
// [start, end), earliest first, with the requester attached.
func (a *DefaultAppointmentRepository) FindActiveByProviderBetween(ctx context.Context, providerID int, start, end int64) ([]*entity.AppointmentDetails, error) {
	var appts []*entity.Appointment
	err := a.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Where("canceled_at IS NULL").
		Where("date >= ?", start).
		Where("date < ?", end).
		Order("date asc").
		Find(&appts).Error
	if err != nil {
		return nil, err
	}

	userIDs := make([]int, len(appts))
	for i, appt := range appts {
		userIDs[i] = appt.UserID
	}

	users, err := findUserSummaries(ctx, a.db, userIDs)
	if err != nil {
		return nil, err
	}

	result := make([]*entity.AppointmentDetails, len(appts))
	for i, appt := range appts {
		result[i] = &entity.AppointmentDetails{
			Appointment: appt,
			User:        users[appt.UserID],
		}
	}
	return result, nil
}

// Cancel soft-deletes the appointment by stamping canceled_at.
func (a *DefaultAppointmentRepository) Cancel(ctx context.Context, appt *entity.Appointment, at int64) error {
	appt.CanceledAt = &at
	return a.db.WithContext(ctx).Save(appt).Error
}

func providerIDs(appts []*entity.Appointment) []int {
	ids := make([]int, len(appts))
	for i, appt := range appts {
		ids[i] = appt.ProviderID
	}
	return ids
}
