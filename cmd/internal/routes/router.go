package routes

import (
	"github.com/labstack/echo/v4"
)

// Register mounts every HTTP route. Middleware in suggestionMW only wraps the
// suggestion endpoint.
func Register(e *echo.Echo, appts *DefaultAppointmentRoute, suggestions *DefaultSuggestionRoute, health *HealthRoute, suggestionMW ...echo.MiddlewareFunc) {
	e.GET("/health", health.Health)

	api := e.Group("/api")

	// Appointments
	api.POST("/appointments", appts.BookAppointment)
	api.GET("/appointments", appts.GetAppointments)
	api.GET("/appointments/similar", appts.FindSimilar)
	api.GET("/appointments/:id", appts.GetAppointment)

	// Pseudo-entity "Calendar" to check the availability of a slot
	api.GET("/calendar", appts.GetCalendar)

	api.POST("/suggestions", suggestions.Suggest, suggestionMW...)
}
