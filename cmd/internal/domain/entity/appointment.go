package entity

import (
	"errors"
	"time"
)

// CancellationWindow is how long before the appointment a cancellation is still accepted.
const CancellationWindow = 2 * time.Hour

// ErrSlotTaken is returned by the store when an active appointment already
// holds the provider's slot.
var ErrSlotTaken = errors.New("slot already taken")

type Appointment struct {
	ID         int   `gorm:"primaryKey"`
	Date       int64 `gorm:"not null;index"` // epoch millis, hour aligned
	UserID     int   `gorm:"not null;index"` // References: users(id)
	ProviderID int   `gorm:"not null;index"` // References: users(id)
	CanceledAt *int64
	CreatedAt  int64 `gorm:"not null;autoCreateTime:milli"`
	UpdatedAt  int64 `gorm:"not null;autoUpdateTime:milli"`
}

func (a *Appointment) IsCanceled() bool {
	return a.CanceledAt != nil
}

func (a *Appointment) IsPast(now int64) bool {
	return a.Date < now
}

// IsCancelable reports whether the appointment is still active and now is
// strictly before the cancellation cutoff.
func (a *Appointment) IsCancelable(now int64) bool {
	return !a.IsCanceled() && now < a.Date-CancellationWindow.Milliseconds()
}

// AppointmentListing is an appointment as shown to its requester.
type AppointmentListing struct {
	Appointment *Appointment
	Provider    *UserSummary
}

// AppointmentDetails carries both parties of an appointment.
type AppointmentDetails struct {
	Appointment *Appointment
	Provider    *UserSummary
	User        *UserSummary
}
