package routes

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthRoute struct {
	DB Pinger
}

func NewHealthRoute(db Pinger) *HealthRoute {
	return &HealthRoute{DB: db}
}

func (h *HealthRoute) Health(c echo.Context) error {
	if err := h.DB.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
