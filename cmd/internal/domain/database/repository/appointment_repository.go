package repository

import (
	"context"
	"errors"
	"fmt"

	"slotbook/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

// ErrDuplicateSlot is returned by Insert when the storage layer rejects a
// second appointment for the same (date, time).
var ErrDuplicateSlot = errors.New("slot already booked")

type DefaultAppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *DefaultAppointmentRepository {
	return &DefaultAppointmentRepository{db: db}
}

// IsSlotAvailable reports whether no appointment matches both date and time exactly.
func (a *DefaultAppointmentRepository) IsSlotAvailable(ctx context.Context, date, time string) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&entity.Appointment{}).
		Where("date = ? AND time = ?", date, time).
		Count(&count).Error

	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// Insert stores a new appointment and writes the assigned id back into it.
func (a *DefaultAppointmentRepository) Insert(ctx context.Context, appointment *entity.Appointment) error {
	appointment.ID = 0
	err := a.db.WithContext(ctx).Create(appointment).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s at %s", ErrDuplicateSlot, appointment.Date, appointment.Time)
	}
	return err
}

func (a *DefaultAppointmentRepository) FindByID(ctx context.Context, id int64) (*entity.Appointment, error) {
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

func (a *DefaultAppointmentRepository) FindAll(ctx context.Context) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.WithContext(ctx).Order("id asc").Find(&appts).Error
	return appts, err
}

func (a *DefaultAppointmentRepository) FindByUserID(ctx context.Context, userID string) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&appts).Error
	return appts, err
}

// FindTakenTimes returns the occupied times of a date, sorted.
func (a *DefaultAppointmentRepository) FindTakenTimes(ctx context.Context, date string) ([]string, error) {
	var times []string
	err := a.db.WithContext(ctx).
		Model(&entity.Appointment{}).
		Where("date = ?", date).
		Order("time asc").
		Pluck("time", &times).Error

	if err != nil {
		return nil, err
	}
	return times, nil
}

// Count returns the number of stored appointments.
func (a *DefaultAppointmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := a.db.WithContext(ctx).Model(&entity.Appointment{}).Count(&count).Error
	return count, err
}
