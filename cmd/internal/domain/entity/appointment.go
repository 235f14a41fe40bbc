package entity

import "time"

// Appointment is a booked (date, time) slot. At most one row exists per slot;
// idx_appointments_slot enforces it at the storage layer.
type Appointment struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Date        string `gorm:"not null;uniqueIndex:idx_appointments_slot,priority:1"`
	Time        string `gorm:"not null;uniqueIndex:idx_appointments_slot,priority:2"`
	UserID      string `gorm:"not null;index"`
	Description string
	CreatedAt   time.Time `gorm:"not null"`
}
