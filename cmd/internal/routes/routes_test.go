package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"slotbook/cmd/internal/service"
	"slotbook/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAppointments struct {
	booked     *service.AppointmentRequest
	bookErr    apierror.ErrorResponse
	userFilter string
	similarReq *service.SimilarityRequest
	date       string
}

func (s *stubAppointments) BookAppointment(_ context.Context, req *service.AppointmentRequest) (*service.BookingResponse, apierror.ErrorResponse) {
	s.booked = req
	if s.bookErr != nil {
		return nil, s.bookErr
	}
	return &service.BookingResponse{Success: true, Message: "booked", AppointmentID: 7, Indexed: true}, nil
}

func (s *stubAppointments) GetAppointment(_ context.Context, id int64) (*service.AppointmentResponse, apierror.ErrorResponse) {
	if id != 7 {
		return nil, apierror.NotFoundError
	}
	return &service.AppointmentResponse{ID: 7, Date: "2025-02-24", Time: "14:00"}, nil
}

func (s *stubAppointments) GetAppointments(_ context.Context, userID string) ([]*service.AppointmentResponse, apierror.ErrorResponse) {
	s.userFilter = userID
	return []*service.AppointmentResponse{{ID: 7, UserID: userID}}, nil
}

func (s *stubAppointments) GetCalendar(_ context.Context, date string) (*service.CalendarResponse, apierror.ErrorResponse) {
	s.date = date
	return &service.CalendarResponse{Date: date, TakenTimes: []string{"14:00"}}, nil
}

func (s *stubAppointments) FindSimilar(_ context.Context, req *service.SimilarityRequest) (*service.SimilarityResponse, apierror.ErrorResponse) {
	s.similarReq = req
	return &service.SimilarityResponse{Query: req.Query}, nil
}

type stubSuggestions struct {
	err apierror.ErrorResponse
}

func (s *stubSuggestions) Suggest(_ context.Context, req *service.SuggestionRequest) (*service.SuggestionResponse, apierror.ErrorResponse) {
	if s.err != nil {
		return nil, s.err
	}
	return &service.SuggestionResponse{Query: req.Query, Suggestions: "Tuesday"}, nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestServer(appts *stubAppointments, suggestions *stubSuggestions, ping error) *echo.Echo {
	e := echo.New()
	Register(e, NewAppointmentDefault(appts), NewSuggestionDefault(suggestions), NewHealthRoute(stubPinger{ping}))
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestBookAppointmentRoute(t *testing.T) {
	appts := &stubAppointments{}
	e := newTestServer(appts, &stubSuggestions{}, nil)

	rec := do(e, http.MethodPost, "/api/appointments",
		`{"date":"2025-02-24","time":"14:00","user_id":"user123","description":"Regular medical checkup"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 7, decode(t, rec)["appointment_id"])
	require.NotNil(t, appts.booked)
	assert.Equal(t, "user123", appts.booked.UserID)
}

func TestBookAppointmentRoute_Errors(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		e := newTestServer(&stubAppointments{}, &stubSuggestions{}, nil)
		rec := do(e, http.MethodPost, "/api/appointments", `{"date":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apierror.KindMalformedBody, decode(t, rec)["kind"])
	})

	t.Run("slot taken", func(t *testing.T) {
		appts := &stubAppointments{bookErr: apierror.NewSlotTakenError("2025-02-24", "14:00")}
		e := newTestServer(appts, &stubSuggestions{}, nil)
		rec := do(e, http.MethodPost, "/api/appointments", `{"date":"2025-02-24","time":"14:00"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)

		body := decode(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, apierror.KindSlotTaken, body["kind"])
	})
}

func TestGetAppointmentsRoute(t *testing.T) {
	appts := &stubAppointments{}
	e := newTestServer(appts, &stubSuggestions{}, nil)

	rec := do(e, http.MethodGet, "/api/appointments?user_id=alice", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", appts.userFilter)
	assert.Len(t, decode(t, rec)["appointments"], 1)
}

func TestGetAppointmentRoute(t *testing.T) {
	e := newTestServer(&stubAppointments{}, &stubSuggestions{}, nil)

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/api/appointments/7", "").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/api/appointments/8", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/api/appointments/abc", "").Code)
}

func TestFindSimilarRoute(t *testing.T) {
	appts := &stubAppointments{}
	e := newTestServer(appts, &stubSuggestions{}, nil)

	rec := do(e, http.MethodGet, "/api/appointments/similar?query=checkup&top_k=3", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, appts.similarReq)
	assert.Equal(t, "checkup", appts.similarReq.Query)
	assert.Equal(t, 3, appts.similarReq.TopK)

	rec = do(e, http.MethodGet, "/api/appointments/similar", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierror.KindMissingParam, decode(t, rec)["kind"])

	rec = do(e, http.MethodGet, "/api/appointments/similar?query=checkup&top_k=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCalendarRoute(t *testing.T) {
	appts := &stubAppointments{}
	e := newTestServer(appts, &stubSuggestions{}, nil)

	rec := do(e, http.MethodGet, "/api/calendar?date=2025-02-24", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-02-24", appts.date)
	assert.Equal(t, []any{"14:00"}, decode(t, rec)["taken_times"])

	rec = do(e, http.MethodGet, "/api/calendar", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggestRoute(t *testing.T) {
	e := newTestServer(&stubAppointments{}, &stubSuggestions{}, nil)
	rec := do(e, http.MethodPost, "/api/suggestions", `{"query":"mornings"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Tuesday", decode(t, rec)["suggestions"])

	failing := &stubSuggestions{err: apierror.NewSuggestionError(errors.New("upstream down"))}
	e = newTestServer(&stubAppointments{}, failing, nil)
	rec = do(e, http.MethodPost, "/api/suggestions", `{"query":"mornings"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, apierror.KindSuggestionError, decode(t, rec)["kind"])
}

func TestSuggestRoute_AppliesMiddleware(t *testing.T) {
	e := echo.New()
	blocked := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return c.JSON(apierror.RateLimitedError.Code(), apierror.RateLimitedError)
		}
	}
	Register(e, NewAppointmentDefault(&stubAppointments{}), NewSuggestionDefault(&stubSuggestions{}),
		NewHealthRoute(stubPinger{}), blocked)

	assert.Equal(t, http.StatusTooManyRequests, do(e, http.MethodPost, "/api/suggestions", `{"query":"x"}`).Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/api/calendar?date=2025-02-24", "").Code)
}

func TestHealthRoute(t *testing.T) {
	e := newTestServer(&stubAppointments{}, &stubSuggestions{}, nil)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/health", "").Code)

	e = newTestServer(&stubAppointments{}, &stubSuggestions{}, errors.New("closed"))
	assert.Equal(t, http.StatusServiceUnavailable, do(e, http.MethodGet, "/health", "").Code)
}
