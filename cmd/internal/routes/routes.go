package routes

import "github.com/labstack/echo/v4"

// Register mounts every authenticated route behind auth.
func Register(e *echo.Echo, auth echo.MiddlewareFunc, appts *DefaultAppointmentRoute, providers *DefaultProviderRoute, notifications *DefaultNotificationRoute) {
	g := e.Group("", auth)

	// Appointments
	g.GET("/appointments", appts.GetAppointments)
	g.POST("/appointments", appts.CreateAppointment)
	g.DELETE("/appointments/:id", appts.CancelAppointment)

	// Providers and their day
	g.GET("/providers", providers.GetProviders)
	g.GET("/providers/:providerId/available", providers.GetAvailability)
	g.GET("/schedule", providers.GetSchedule)

	// Notifications
	g.GET("/notifications", notifications.GetNotifications)
	g.PUT("/notifications/:id", notifications.MarkAsRead)
}
