package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"azhome-server/models"
)

// BookingService is the lifecycle engine for bookings: it creates a booking
// together with its slot reservation as one transactional unit, and drives
// the pending → confirmed/rejected, confirmed → completed/cancelled,
// pending → cancelled transitions.
type BookingService struct {
	db       *gorm.DB
	notifier *Notifier
}

func NewBookingService(db *gorm.DB, notifier *Notifier) *BookingService {
	return &BookingService{db: db, notifier: notifier}
}

type CreateBookingInput struct {
	WorkerID       uint
	AvailabilityID uint
	Service        models.ServiceType
	Address        string
	Notes          string
}

type AdminBookingFilter struct {
	Status   *models.BookingStatus
	WorkerID *uint
	UserID   *uint
	Service  *models.ServiceType
	From     *time.Time
	To       *time.Time
}

// Create reserves a slot and records the claim as one unit. The slot flip is
// a guarded update checked via RowsAffected, so a losing concurrent request
// rolls the whole transaction back and never leaves an orphaned booking.
func (s *BookingService) Create(client *models.User, in CreateBookingInput) (*models.Booking, error) {
	if in.WorkerID == 0 || in.AvailabilityID == 0 || in.Service == "" || in.Address == "" {
		return nil, fmt.Errorf("%w: worker ID, availability ID, service and address are required", ErrValidation)
	}
	if !models.IsValidService(in.Service) {
		return nil, fmt.Errorf("%w: unknown service %q", ErrValidation, in.Service)
	}

	var booking *models.Booking
	var worker models.User

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("WorkerProfile").First(&worker, in.WorkerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWorkerMismatch
			}
			return err
		}
		if !worker.IsWorker() || worker.WorkerProfile == nil || worker.WorkerProfile.Service != in.Service {
			return ErrWorkerMismatch
		}

		var slot models.Availability
		if err := tx.First(&slot, in.AvailabilityID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotUnavailable
			}
			return err
		}
		if slot.WorkerID != in.WorkerID {
			return fmt.Errorf("%w: invalid time slot for this worker", ErrSlotUnavailable)
		}
		if slot.IsBooked {
			return fmt.Errorf("%w: this time slot is already booked", ErrSlotUnavailable)
		}

		b := &models.Booking{
			UserID:         client.ID,
			WorkerID:       in.WorkerID,
			Service:        in.Service,
			Address:        in.Address,
			Date:           slot.Date,
			StartTime:      slot.StartTime,
			EndTime:        slot.EndTime,
			Status:         models.BookingStatusPending,
			AvailabilityID: slot.ID,
		}
		if in.Notes != "" {
			b.Notes = &in.Notes
		}
		if err := tx.Create(b).Error; err != nil {
			return err
		}

		// Compare-and-swap on the slot: whoever lands second sees zero rows
		// and the transaction, booking row included, is rolled back.
		res := tx.Model(&models.Availability{}).
			Where("id = ? AND is_booked = ?", slot.ID, false).
			Updates(map[string]interface{}{"is_booked": true, "booked_by_id": client.ID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: this time slot is already booked", ErrSlotUnavailable)
		}

		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.BookingCreated(worker.Email, worker.FullName, client.FullName, booking)
	}
	return booking, nil
}

// Accept confirms a pending booking. Worker-owner only.
func (s *BookingService) Accept(caller *models.User, id uint) (*models.Booking, error) {
	booking, err := s.loadForWorker(caller, id, models.BookingStatusPending)
	if err != nil {
		return nil, err
	}

	err = transition(s.db, booking.ID, models.BookingStatusPending, map[string]interface{}{
		"status": models.BookingStatusConfirmed,
	})
	if err != nil {
		return nil, err
	}
	booking.Status = models.BookingStatusConfirmed

	if s.notifier != nil {
		s.notifier.BookingAccepted(booking.User.Email, booking.User.FullName, booking)
	}
	return booking, nil
}

// Reject declines a pending booking and releases its slot. Worker-owner only.
func (s *BookingService) Reject(caller *models.User, id uint, reason string) (*models.Booking, error) {
	booking, err := s.loadForWorker(caller, id, models.BookingStatusPending)
	if err != nil {
		return nil, err
	}

	if reason == "" {
		reason = "No reason provided"
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		err := transition(tx, booking.ID, models.BookingStatusPending, map[string]interface{}{
			"status":           models.BookingStatusRejected,
			"rejection_reason": reason,
		})
		if err != nil {
			return err
		}
		return releaseSlot(tx, booking.AvailabilityID)
	})
	if err != nil {
		return nil, err
	}
	booking.Status = models.BookingStatusRejected
	booking.RejectionReason = &reason

	if s.notifier != nil {
		s.notifier.BookingRejected(booking.User.Email, booking.User.FullName, booking, reason)
	}
	return booking, nil
}

// Cancel lets the booking's client withdraw it. The slot is released only
// when the booking had already been confirmed; cancelling while still
// pending leaves the slot reserved until the worker rejects.
func (s *BookingService) Cancel(caller *models.User, id uint, reason string) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.Preload("Worker").First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking not found", ErrNotFound)
		}
		return nil, err
	}
	if booking.UserID != caller.ID {
		return nil, fmt.Errorf("%w: not your booking", ErrForbidden)
	}
	if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusConfirmed {
		return nil, fmt.Errorf("%w: booking cannot be cancelled from status %q", ErrInvalidState, booking.Status)
	}

	wasConfirmed := booking.Status == models.BookingStatusConfirmed
	if reason == "" {
		reason = "No reason provided"
	}

	// The flip is guarded on the status we observed, so a transition that
	// lands in between makes this one fail instead of overwriting it.
	from := booking.Status
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := transition(tx, booking.ID, from, map[string]interface{}{
			"status":              models.BookingStatusCancelled,
			"cancellation_reason": reason,
		})
		if err != nil {
			return err
		}
		if wasConfirmed {
			return releaseSlot(tx, booking.AvailabilityID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	booking.Status = models.BookingStatusCancelled
	booking.CancellationReason = &reason

	if s.notifier != nil {
		s.notifier.BookingCancelled(booking.Worker.Email, booking.Worker.FullName, &booking, reason)
	}
	return &booking, nil
}

// Complete marks a confirmed booking done. Worker-owner only. The slot stays
// consumed.
func (s *BookingService) Complete(caller *models.User, id uint, notes string) (*models.Booking, error) {
	booking, err := s.loadForWorker(caller, id, models.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"status": models.BookingStatusCompleted}
	if notes != "" {
		updates["completion_notes"] = notes
	}
	if err := transition(s.db, booking.ID, models.BookingStatusConfirmed, updates); err != nil {
		return nil, err
	}
	booking.Status = models.BookingStatusCompleted
	if notes != "" {
		booking.CompletionNotes = &notes
	}

	if s.notifier != nil {
		s.notifier.BookingCompleted(booking.User.Email, booking.User.FullName, booking)
	}
	return booking, nil
}

// Get returns a single booking, visible only to its client or worker party.
func (s *BookingService) Get(caller *models.User, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.Preload("User").Preload("Worker").Preload("Worker.WorkerProfile").First(&booking, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking not found", ErrNotFound)
		}
		return nil, err
	}
	if booking.UserID != caller.ID && booking.WorkerID != caller.ID {
		return nil, fmt.Errorf("%w: not a party to this booking", ErrForbidden)
	}
	return &booking, nil
}

// ListForClient returns a client's bookings, most recent date first.
func (s *BookingService) ListForClient(userID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.Preload("Worker").Preload("Worker.WorkerProfile").
		Where("user_id = ?", userID).
		Order("date DESC, start_time DESC").
		Find(&bookings).Error
	return bookings, err
}

// ListForWorker returns a worker's bookings in chronological queue order,
// optionally filtered by status.
func (s *BookingService) ListForWorker(workerID uint, status *models.BookingStatus) ([]models.Booking, error) {
	query := s.db.Preload("User").Where("worker_id = ?", workerID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var bookings []models.Booking
	err := query.Order("date, start_time").Find(&bookings).Error
	return bookings, err
}

// ListAll is the admin view over every booking.
func (s *BookingService) ListAll(filter AdminBookingFilter) ([]models.Booking, error) {
	query := s.db.Preload("User").Preload("Worker").Preload("Worker.WorkerProfile")
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.WorkerID != nil {
		query = query.Where("worker_id = ?", *filter.WorkerID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Service != nil {
		query = query.Where("service = ?", *filter.Service)
	}
	if filter.From != nil && filter.To != nil {
		query = query.Where("date BETWEEN ? AND ?", *filter.From, *filter.To)
	}
	var bookings []models.Booking
	err := query.Order("date DESC, start_time DESC").Find(&bookings).Error
	return bookings, err
}

// loadForWorker fetches a booking for a worker-side transition, separating
// missing, wrong-owner and wrong-state failures.
func (s *BookingService) loadForWorker(caller *models.User, id uint, required models.BookingStatus) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.Preload("User").First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking not found", ErrNotFound)
		}
		return nil, err
	}
	if booking.WorkerID != caller.ID {
		return nil, fmt.Errorf("%w: not your booking", ErrForbidden)
	}
	if booking.Status != required {
		return nil, fmt.Errorf("%w: booking is %q, expected %q", ErrInvalidState, booking.Status, required)
	}
	return &booking, nil
}

// transition applies a status change only while the booking still holds the
// expected status. The update is a compare-and-swap checked via RowsAffected,
// so two racing transitions cannot both win and a status that already moved
// on is never overwritten.
func transition(tx *gorm.DB, id uint, expected models.BookingStatus, updates map[string]interface{}) error {
	res := tx.Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: booking is no longer %q", ErrInvalidState, expected)
	}
	return nil
}

// releaseSlot flips a slot back to unbooked and clears the booking client.
func releaseSlot(tx *gorm.DB, availabilityID uint) error {
	return tx.Model(&models.Availability{}).
		Where("id = ?", availabilityID).
		Updates(map[string]interface{}{"is_booked": false, "booked_by_id": nil}).Error
}
