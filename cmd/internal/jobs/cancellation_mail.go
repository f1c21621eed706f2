package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"gobarber/cmd/internal/domain/entity"
	"gobarber/cmd/internal/mail"
	"gobarber/cmd/internal/utils"
	"time"
)

const CancellationMailKey = "CancellationMail"

type Party struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// CancellationRequested is emitted once per canceled appointment.
type CancellationRequested struct {
	AppointmentID int   `json:"appointment_id"`
	Date          int64 `json:"date"`
	CanceledAt    int64 `json:"canceled_at"`
	Provider      Party `json:"provider"`
	User          Party `json:"user"`
}

func NewCancellationRequested(details *entity.AppointmentDetails) CancellationRequested {
	appt := details.Appointment
	event := CancellationRequested{
		AppointmentID: appt.ID,
		Date:          appt.Date,
		Provider:      Party{ID: appt.ProviderID},
		User:          Party{ID: appt.UserID},
	}
	if appt.CanceledAt != nil {
		event.CanceledAt = *appt.CanceledAt
	}
	if details.Provider != nil {
		event.Provider.Name = details.Provider.Name
		event.Provider.Email = details.Provider.Email
	}
	if details.User != nil {
		event.User.Name = details.User.Name
	}
	return event
}

type Sender interface {
	Send(ctx context.Context, msg *mail.Message) error
}

// CancellationMail tells the provider that a booking was canceled.
type CancellationMail struct {
	sender   Sender
	location *time.Location
}

func NewCancellationMail(sender Sender, location *time.Location) *CancellationMail {
	if location == nil {
		location = time.UTC
	}
	return &CancellationMail{sender: sender, location: location}
}

func (c *CancellationMail) Key() string {
	return CancellationMailKey
}

func (c *CancellationMail) Handle(ctx context.Context, payload []byte) error {
	var event CancellationRequested
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("decode %s payload: %w", CancellationMailKey, err)
	}
	if event.Provider.Email == "" {
		return fmt.Errorf("appointment %d: provider has no e-mail", event.AppointmentID)
	}

	return c.sender.Send(ctx, &mail.Message{
		To:       fmt.Sprintf("%s <%s>", event.Provider.Name, event.Provider.Email),
		Subject:  "Agendamento cancelado",
		Template: "cancellation",
		Context: map[string]string{
			"Provider": event.Provider.Name,
			"User":     event.User.Name,
			"Date":     utils.FormatDatePtBR(event.Date, c.location),
		},
	})
}
