package models

import (
	"time"
)

// Availability is a bookable time window a worker has published. Start and
// end times are wall-clock strings ("09:00"), not tied to a timezone.
type Availability struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	WorkerID  uint      `json:"worker_id" gorm:"not null;uniqueIndex:idx_worker_slot"`
	Date      time.Time `json:"date" gorm:"not null;uniqueIndex:idx_worker_slot"`
	StartTime string    `json:"start_time" gorm:"size:20;not null;uniqueIndex:idx_worker_slot"`
	EndTime   string    `json:"end_time" gorm:"size:20;not null;uniqueIndex:idx_worker_slot"`

	// IsBooked is true iff BookedByID is set
	IsBooked   bool  `json:"is_booked" gorm:"default:false"`
	BookedByID *uint `json:"booked_by_id"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Worker   User  `json:"worker,omitempty" gorm:"foreignKey:WorkerID"`
	BookedBy *User `json:"booked_by,omitempty" gorm:"foreignKey:BookedByID"`
}

// TableName specifies the table name for the Availability model
func (Availability) TableName() string {
	return "availabilities"
}
