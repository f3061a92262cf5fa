package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"azhome-server/models"
)

// AvailabilityService owns slot existence, the uniqueness of the
// (worker, date, start, end) tuple and the booked/unbooked flag.
type AvailabilityService struct {
	db *gorm.DB
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{db: db}
}

type CreateSlotInput struct {
	Date      time.Time
	StartTime string
	EndTime   string
}

type UpdateSlotInput struct {
	Date      *time.Time
	StartTime *string
	EndTime   *string
}

type SlotFilter struct {
	WorkerID *uint
	Date     *time.Time
}

// Create publishes a new unbooked slot for the calling worker.
func (s *AvailabilityService) Create(caller *models.User, in CreateSlotInput) (*models.Availability, error) {
	if !caller.IsWorker() {
		return nil, fmt.Errorf("%w: only workers can set availability", ErrForbidden)
	}
	if in.Date.IsZero() || in.StartTime == "" || in.EndTime == "" {
		return nil, fmt.Errorf("%w: date, start time and end time are required", ErrValidation)
	}
	// Wall-clock strings compare lexically ("09:00" < "10:00")
	if in.StartTime >= in.EndTime {
		return nil, fmt.Errorf("%w: end time must be after start time", ErrValidation)
	}

	slot := &models.Availability{
		WorkerID:  caller.ID,
		Date:      in.Date,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
	}

	var existing models.Availability
	err := s.db.Where("worker_id = ? AND date = ? AND start_time = ? AND end_time = ?",
		caller.ID, in.Date, in.StartTime, in.EndTime).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: this time slot already exists", ErrConflict)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.db.Create(slot).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: this time slot already exists", ErrConflict)
		}
		return nil, err
	}

	return slot, nil
}

// GetByID fetches a single slot.
func (s *AvailabilityService) GetByID(id uint) (*models.Availability, error) {
	var slot models.Availability
	if err := s.db.First(&slot, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: availability not found", ErrNotFound)
		}
		return nil, err
	}
	return &slot, nil
}

// List returns slots matching the filter with the worker and booking client
// identities expanded.
func (s *AvailabilityService) List(filter SlotFilter) ([]models.Availability, error) {
	query := s.db.Preload("Worker").Preload("BookedBy")
	if filter.WorkerID != nil {
		query = query.Where("worker_id = ?", *filter.WorkerID)
	}
	if filter.Date != nil {
		query = query.Where("date = ?", *filter.Date)
	}

	var slots []models.Availability
	if err := query.Order("date, start_time").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// Update changes the date or time window of an unbooked slot owned by the
// caller.
func (s *AvailabilityService) Update(caller *models.User, id uint, in UpdateSlotInput) (*models.Availability, error) {
	var slot models.Availability
	if err := s.db.First(&slot, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: availability not found", ErrNotFound)
		}
		return nil, err
	}

	if slot.WorkerID != caller.ID {
		return nil, fmt.Errorf("%w: not authorized to update this availability", ErrForbidden)
	}
	if slot.IsBooked {
		return nil, fmt.Errorf("%w: cannot update a booked time slot", ErrInvalidState)
	}

	if in.Date != nil {
		slot.Date = *in.Date
	}
	if in.StartTime != nil {
		slot.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		slot.EndTime = *in.EndTime
	}
	if slot.StartTime >= slot.EndTime {
		return nil, fmt.Errorf("%w: end time must be after start time", ErrValidation)
	}

	if err := s.db.Save(&slot).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: this time slot already exists", ErrConflict)
		}
		return nil, err
	}
	return &slot, nil
}

// Delete removes an unbooked slot owned by the caller.
func (s *AvailabilityService) Delete(caller *models.User, id uint) error {
	var slot models.Availability
	if err := s.db.First(&slot, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: availability not found", ErrNotFound)
		}
		return err
	}

	if slot.WorkerID != caller.ID {
		return fmt.Errorf("%w: not authorized to delete this availability", ErrForbidden)
	}
	if slot.IsBooked {
		return fmt.Errorf("%w: cannot delete a booked time slot", ErrInvalidState)
	}

	return s.db.Delete(&slot).Error
}
