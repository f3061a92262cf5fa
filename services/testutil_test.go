package services

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"azhome-server/database"
	"azhome-server/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:azhome_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	// Shared-cache in-memory databases disappear when the last connection
	// closes; a single connection keeps every query on the same database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return db
}

func createTestClient(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		FullName:     "Test Client",
		Email:        email,
		PasswordHash: "hashed",
		Address:      "12 Main Street",
		Role:         models.RoleUser,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return user
}

func createTestWorker(t *testing.T, db *gorm.DB, email string, service models.ServiceType) *models.User {
	t.Helper()
	user := &models.User{
		FullName:     "Test Worker",
		Email:        email,
		PasswordHash: "hashed",
		Address:      "34 Workshop Road",
		Role:         models.RoleWorker,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create worker: %v", err)
	}
	profile := &models.WorkerProfile{
		UserID:     user.ID,
		Service:    service,
		HourlyRate: 50,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create worker profile: %v", err)
	}
	user.WorkerProfile = profile
	return user
}

func createTestSlot(t *testing.T, db *gorm.DB, workerID uint, date time.Time, start, end string) *models.Availability {
	t.Helper()
	slot := &models.Availability{
		WorkerID:  workerID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}
	if err := db.Create(slot).Error; err != nil {
		t.Fatalf("failed to create slot: %v", err)
	}
	return slot
}

func testDate() time.Time {
	return time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
}
