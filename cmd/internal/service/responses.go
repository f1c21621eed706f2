package service

import (
	"gobarber/cmd/internal/domain/entity"
	"gobarber/cmd/internal/utils"
)

type FileResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

type UserSummaryResponse struct {
	ID     int           `json:"id"`
	Name   string        `json:"name"`
	Email  string        `json:"email,omitempty"`
	Avatar *FileResponse `json:"avatar"`
}

type AppointmentResponse struct {
	ID         int                  `json:"id"`
	Date       string               `json:"date"`
	UserID     int                  `json:"user_id"`
	ProviderID int                  `json:"provider_id"`
	CanceledAt *string              `json:"canceled_at"`
	Past       bool                 `json:"past"`
	Cancelable bool                 `json:"cancelable"`
	CreatedAt  string               `json:"created_at"`
	UpdatedAt  string               `json:"updated_at"`
	Provider   *UserSummaryResponse `json:"provider,omitempty"`
	User       *UserSummaryResponse `json:"user,omitempty"`
}

type NotificationResponse struct {
	ID        int    `json:"id"`
	Content   string `json:"content"`
	UserID    int    `json:"user_id"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type AvailabilityResponse struct {
	Time      string `json:"time"`
	Value     string `json:"value"`
	Available bool   `json:"available"`
}

func toAppointmentResponse(appt *entity.Appointment, now int64) *AppointmentResponse {
	return &AppointmentResponse{
		ID:         appt.ID,
		Date:       utils.FormatEpoch(appt.Date),
		UserID:     appt.UserID,
		ProviderID: appt.ProviderID,
		CanceledAt: utils.FormatEpochPtr(appt.CanceledAt),
		Past:       appt.IsPast(now),
		Cancelable: appt.IsCancelable(now),
		CreatedAt:  utils.FormatEpoch(appt.CreatedAt),
		UpdatedAt:  utils.FormatEpoch(appt.UpdatedAt),
	}
}

// toUserSummaryResponse keeps the e-mail only when withEmail is set; the
// requester's listing never exposes it.
func toUserSummaryResponse(summary *entity.UserSummary, baseURL string, withEmail bool) *UserSummaryResponse {
	if summary == nil {
		return nil
	}
	resp := &UserSummaryResponse{ID: summary.ID, Name: summary.Name}
	if withEmail {
		resp.Email = summary.Email
	}
	if summary.Avatar != nil {
		resp.Avatar = &FileResponse{
			ID:   summary.Avatar.ID,
			Name: summary.Avatar.Name,
			Path: summary.Avatar.Path,
			URL:  summary.Avatar.URL(baseURL),
		}
	}
	return resp
}

func toNotificationResponse(n *entity.Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:        n.ID,
		Content:   n.Content,
		UserID:    n.UserID,
		Read:      n.Read,
		CreatedAt: utils.FormatEpoch(n.CreatedAt),
		UpdatedAt: utils.FormatEpoch(n.UpdatedAt),
	}
}
