package service

import (
	"context"
	"errors"
	"fmt"

	"slotbook/cmd/internal/domain/database/repository"
	"slotbook/cmd/internal/domain/entity"
	"slotbook/cmd/internal/integration/vectorstore"
	"slotbook/cmd/internal/utils"
	"slotbook/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	DefaultTopK = 5
	MaxTopK     = 50
)

type AppointmentRepository interface {
	IsSlotAvailable(ctx context.Context, date, time string) (bool, error)
	Insert(ctx context.Context, appointment *entity.Appointment) error
	FindByID(ctx context.Context, id int64) (*entity.Appointment, error)
	FindAll(ctx context.Context) ([]*entity.Appointment, error)
	FindByUserID(ctx context.Context, userID string) ([]*entity.Appointment, error)
	FindTakenTimes(ctx context.Context, date string) ([]string, error)
}

// AppointmentIndex is the semantic index; it is written after the relational
// store and may lag behind it.
type AppointmentIndex interface {
	IndexAppointment(ctx context.Context, id int64, description string, meta vectorstore.Metadata) error
	QuerySimilar(ctx context.Context, text string, topK int) ([]vectorstore.Match, error)
}

type AppointmentRequest struct {
	Date        string `json:"date" validate:"required,isodate"`
	Time        string `json:"time" validate:"required,clocktime"`
	UserID      string `json:"user_id" validate:"required,max=128"`
	Description string `json:"description" validate:"required,max=2000"`
}

type SimilarityRequest struct {
	Query string `json:"query" validate:"required,max=2000"`
	TopK  int    `json:"top_k" validate:"min=0,max=50"`
}

// BookingResponse is returned for every booking that reached the relational
// store. Indexed is false when the semantic index write failed; the booking
// still stands and Warning explains the gap.
type BookingResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	AppointmentID int64  `json:"appointment_id"`
	Indexed       bool   `json:"indexed"`
	Kind          string `json:"kind,omitempty"`
	Warning       string `json:"warning,omitempty"`
}

type AppointmentResponse struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	UserID      string `json:"user_id"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

type CalendarResponse struct {
	Date       string   `json:"date"`
	TakenTimes []string `json:"taken_times"`
}

type SimilarityResponse struct {
	Query   string              `json:"query"`
	Matches []vectorstore.Match `json:"matches"`
}

type DefaultAppointmentService struct {
	AppointmentRepo AppointmentRepository
	Index           AppointmentIndex
	Validate        *validator.Validate
	Logger          *zap.Logger
}

func NewAppointmentService(apptRepo AppointmentRepository, index AppointmentIndex, validate *validator.Validate, logger *zap.Logger) *DefaultAppointmentService {
	return &DefaultAppointmentService{
		AppointmentRepo: apptRepo,
		Index:           index,
		Validate:        validate,
		Logger:          logger.Named("appointments"),
	}
}

// BookAppointment checks the slot, writes the relational row and then
// projects it into the semantic index. The projection is best effort: its
// failure is reported on the response and never undoes the booking.
func (a *DefaultAppointmentService) BookAppointment(ctx context.Context, req *AppointmentRequest) (*BookingResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if valerr := a.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	// Fast path for the friendly message; the unique index on (date, time)
	// catches concurrent bookings that both pass this check.
	available, err := a.AppointmentRepo.IsSlotAvailable(ctx, req.Date, req.Time)
	if err != nil {
		a.Logger.Error("Failed to check slot availability",
			zap.String("date", req.Date), zap.String("time", req.Time), zap.Error(err))
		return nil, apierror.NewStorageFailure(err)
	}
	if !available {
		return nil, apierror.NewSlotTakenError(req.Date, req.Time)
	}

	appointment := &entity.Appointment{
		Date:        req.Date,
		Time:        req.Time,
		UserID:      req.UserID,
		Description: req.Description,
		CreatedAt:   utils.NowUTC(),
	}

	if err := a.AppointmentRepo.Insert(ctx, appointment); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlot) {
			a.Logger.Warn("Concurrent booking lost the race for a slot",
				zap.String("date", req.Date), zap.String("time", req.Time))
		} else {
			a.Logger.Error("Failed to save appointment", zap.Error(err))
		}
		return nil, apierror.NewStorageFailure(err)
	}

	resp := &BookingResponse{
		Success:       true,
		Message:       fmt.Sprintf("Appointment successfully booked for %s at %s", req.Date, req.Time),
		AppointmentID: appointment.ID,
		Indexed:       true,
	}

	meta := vectorstore.Metadata{Date: appointment.Date, Time: appointment.Time, UserID: appointment.UserID}
	if err := a.Index.IndexAppointment(ctx, appointment.ID, appointment.Description, meta); err != nil {
		a.Logger.Warn("Appointment booked but not indexed for similarity search",
			zap.Int64("appointment_id", appointment.ID), zap.Error(err))
		resp.Indexed = false
		resp.Kind = apierror.KindIndexFailure
		resp.Warning = fmt.Sprintf("The appointment was booked but will not appear in similarity search: %v", err)
	}

	a.Logger.Info("Appointment booked",
		zap.Int64("appointment_id", appointment.ID),
		zap.String("date", appointment.Date),
		zap.String("time", appointment.Time),
		zap.Bool("indexed", resp.Indexed))
	return resp, nil
}

func (a *DefaultAppointmentService) GetAppointment(ctx context.Context, id int64) (*AppointmentResponse, apierror.ErrorResponse) {
	appt, err := a.AppointmentRepo.FindByID(ctx, id)
	if err != nil {
		a.Logger.Error("Failed to fetch appointment", zap.Int64("appointment_id", id), zap.Error(err))
		return nil, apierror.InternalServerError
	}
	if appt == nil {
		return nil, apierror.NotFoundError
	}
	return toAppointmentResponse(appt), nil
}

// GetAppointments lists every appointment, or only those of userID when set.
func (a *DefaultAppointmentService) GetAppointments(ctx context.Context, userID string) ([]*AppointmentResponse, apierror.ErrorResponse) {
	var (
		appts []*entity.Appointment
		err   error
	)
	if userID == "" {
		appts, err = a.AppointmentRepo.FindAll(ctx)
	} else {
		appts, err = a.AppointmentRepo.FindByUserID(ctx, userID)
	}

	if err != nil {
		a.Logger.Error("Failed to list appointments", zap.String("user_id", userID), zap.Error(err))
		return nil, apierror.InternalServerError
	}

	response := make([]*AppointmentResponse, len(appts))
	for i, appt := range appts {
		response[i] = toAppointmentResponse(appt)
	}
	return response, nil
}

// GetCalendar returns the occupied times of a date.
func (a *DefaultAppointmentService) GetCalendar(ctx context.Context, date string) (*CalendarResponse, apierror.ErrorResponse) {
	if err := a.Validate.Var(date, "required,isodate"); err != nil {
		return nil, apierror.NewSimple(400, "Could not understand date format, expected YYYY-MM-DD")
	}

	times, err := a.AppointmentRepo.FindTakenTimes(ctx, date)
	if err != nil {
		a.Logger.Error("Failed to fetch calendar", zap.String("date", date), zap.Error(err))
		return nil, apierror.InternalServerError
	}
	if times == nil {
		times = []string{}
	}
	return &CalendarResponse{Date: date, TakenTimes: times}, nil
}

// FindSimilar ranks indexed appointments by similarity to the query.
// Appointments whose index write failed are never returned.
func (a *DefaultAppointmentService) FindSimilar(ctx context.Context, req *SimilarityRequest) (*SimilarityResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if valerr := a.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	topK := req.TopK
	if topK == 0 {
		topK = DefaultTopK
	}

	matches, err := a.Index.QuerySimilar(ctx, req.Query, topK)
	if err != nil {
		a.Logger.Error("Similarity search failed", zap.String("query", req.Query), zap.Error(err))
		return nil, apierror.NewSearchError(err)
	}
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return &SimilarityResponse{Query: req.Query, Matches: matches}, nil
}

func toAppointmentResponse(appt *entity.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:          appt.ID,
		Date:        appt.Date,
		Time:        appt.Time,
		UserID:      appt.UserID,
		Description: appt.Description,
		CreatedAt:   utils.FormatTimestamp(appt.CreatedAt),
	}
}
