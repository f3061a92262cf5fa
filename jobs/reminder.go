package jobs

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"azhome-server/models"
	"azhome-server/services"
)

// ReminderJob emails clients the day before their confirmed bookings
type ReminderJob struct {
	db       *gorm.DB
	notifier *services.Notifier
	cron     *cron.Cron
}

func NewReminderJob(db *gorm.DB, notifier *services.Notifier) *ReminderJob {
	return &ReminderJob{
		db:       db,
		notifier: notifier,
		cron:     cron.New(),
	}
}

// Start schedules the daily reminder run at 08:00 server time
func (j *ReminderJob) Start() error {
	if _, err := j.cron.AddFunc("0 8 * * *", j.SendReminders); err != nil {
		return err
	}
	j.cron.Start()
	log.Println("Booking reminder job scheduled")
	return nil
}

// Stop halts the schedule; a run already in progress finishes
func (j *ReminderJob) Stop() {
	j.cron.Stop()
}

// SendReminders queues a reminder for every confirmed booking happening
// tomorrow.
func (j *ReminderJob) SendReminders() {
	tomorrow := time.Now().AddDate(0, 0, 1)
	dayStart := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, tomorrow.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var bookings []models.Booking
	err := j.db.Preload("User").
		Where("status = ? AND date >= ? AND date < ?", models.BookingStatusConfirmed, dayStart, dayEnd).
		Find(&bookings).Error
	if err != nil {
		log.Printf("Reminder job query failed: %v", err)
		return
	}

	for i := range bookings {
		b := &bookings[i]
		j.notifier.BookingReminder(b.User.Email, b.User.FullName, b)
	}

	if len(bookings) > 0 {
		log.Printf("Queued %d booking reminders for %s", len(bookings), dayStart.Format("2006-01-02"))
	}
}
