package models

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// IsTerminal reports whether no further transition is defined from s.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusRejected, BookingStatusCancelled, BookingStatusCompleted:
		return true
	default:
		return false
	}
}

// Booking is a client's claim on a worker's availability slot. Date and
// times are copied from the slot at creation, not a live reference.
type Booking struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	UserID    uint          `json:"user_id" gorm:"not null;index"`
	WorkerID  uint          `json:"worker_id" gorm:"not null;index"`
	Service   ServiceType   `json:"service" gorm:"type:varchar(50);not null;index"`
	Address   string        `json:"address" gorm:"size:500;not null"`
	Date      time.Time     `json:"date" gorm:"not null;index"`
	StartTime string        `json:"start_time" gorm:"size:20;not null"`
	EndTime   string        `json:"end_time" gorm:"size:20;not null"`
	Status    BookingStatus `json:"status" gorm:"type:varchar(20);default:'pending';index;check:status IN ('pending','confirmed','rejected','cancelled','completed')"`

	Notes              *string `json:"notes" gorm:"size:500"`
	RejectionReason    *string `json:"rejection_reason" gorm:"size:500"`
	CancellationReason *string `json:"cancellation_reason" gorm:"size:500"`
	CompletionNotes    *string `json:"completion_notes" gorm:"size:500"`

	AvailabilityID uint `json:"availability_id" gorm:"not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	User         User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Worker       User         `json:"worker,omitempty" gorm:"foreignKey:WorkerID"`
	Availability Availability `json:"availability,omitempty" gorm:"foreignKey:AvailabilityID"`
}

// TableName specifies the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}
