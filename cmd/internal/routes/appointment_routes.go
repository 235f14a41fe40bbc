package routes

import (
	"context"
	"net/http"
	"strconv"

	"slotbook/cmd/internal/service"
	"slotbook/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type AppointmentService interface {
	BookAppointment(ctx context.Context, req *service.AppointmentRequest) (*service.BookingResponse, apierror.ErrorResponse)
	GetAppointment(ctx context.Context, id int64) (*service.AppointmentResponse, apierror.ErrorResponse)
	GetAppointments(ctx context.Context, userID string) ([]*service.AppointmentResponse, apierror.ErrorResponse)
	GetCalendar(ctx context.Context, date string) (*service.CalendarResponse, apierror.ErrorResponse)
	FindSimilar(ctx context.Context, req *service.SimilarityRequest) (*service.SimilarityResponse, apierror.ErrorResponse)
}

type DefaultAppointmentRoute struct {
	AppointmentService AppointmentService
}

func NewAppointmentDefault(apptService AppointmentService) *DefaultAppointmentRoute {
	return &DefaultAppointmentRoute{AppointmentService: apptService}
}

func (a *DefaultAppointmentRoute) BookAppointment(c echo.Context) error {
	var req service.AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := a.AppointmentService.BookAppointment(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (a *DefaultAppointmentRoute) GetAppointments(c echo.Context) error {
	appts, apierr := a.AppointmentService.GetAppointments(c.Request().Context(), c.QueryParam("user_id"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"appointments": appts}
	return c.JSON(http.StatusOK, &resp)
}

func (a *DefaultAppointmentRoute) GetAppointment(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errResp := apierror.NewSimple(http.StatusBadRequest, "ID is not a number")
		return c.JSON(errResp.Code(), errResp)
	}

	appt, apierr := a.AppointmentService.GetAppointment(c.Request().Context(), id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appt)
}

func (a *DefaultAppointmentRoute) FindSimilar(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("query"))
	}

	req := service.SimilarityRequest{Query: query}
	if raw := c.QueryParam("top_k"); raw != "" {
		topK, err := strconv.Atoi(raw)
		if err != nil || topK < 1 {
			errResp := apierror.NewSimple(http.StatusBadRequest, "top_k must be a positive integer")
			return c.JSON(errResp.Code(), errResp)
		}
		req.TopK = topK
	}

	resp, apierr := a.AppointmentService.FindSimilar(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetCalendar lists the taken times of one day so clients can pick a free slot.
func (a *DefaultAppointmentRoute) GetCalendar(c echo.Context) error {
	date := c.QueryParam("date") // "2025-02-24"
	if date == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("date"))
	}

	calendar, apierr := a.AppointmentService.GetCalendar(c.Request().Context(), date)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, calendar)
}
