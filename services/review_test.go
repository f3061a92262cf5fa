package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"azhome-server/models"
)

func workerAggregate(t *testing.T, db *gorm.DB, workerID uint) models.WorkerProfile {
	t.Helper()
	var profile models.WorkerProfile
	require.NoError(t, db.Where("user_id = ?", workerID).First(&profile).Error)
	return profile
}

func TestAddReviewUpdatesAggregate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReviewService(db)
	worker := createTestWorker(t, db, "worker@test.com", models.ServicePlumber)
	client := createTestClient(t, db, "client@test.com")

	review, err := svc.Add(client, worker.ID, 5, "Excellent work")
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)

	profile := workerAggregate(t, db, worker.ID)
	assert.Equal(t, 1, profile.ReviewCount)
	assert.Equal(t, 5.0, profile.AverageRating)
}

func TestAverageRoundsToOneDecimal(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReviewService(db)
	worker := createTestWorker(t, db, "worker@test.com", models.ServicePlumber)

	ratings := []int{5, 4, 4} // 13/3 = 4.333... -> 4.3
	for i, rating := range ratings {
		client := createTestClient(t, db, "client"+string(rune('a'+i))+"@test.com")
		_, err := svc.Add(client, worker.ID, rating, "Good job")
		require.NoError(t, err)
	}

	profile := workerAggregate(t, db, worker.ID)
	assert.Equal(t, 3, profile.ReviewCount)
	assert.Equal(t, 4.3, profile.AverageRating)
}

func TestUpdateReviewAdjustsAggregateExactly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReviewService(db)
	worker := createTestWorker(t, db, "worker@test.com", models.ServicePlumber)
	client := createTestClient(t, db, "client@test.com")

	review, err := svc.Add(client, worker.ID, 5, "Excellent work")
	require.NoError(t, err)

	// Changing the single review from 5 to 4 must land on exactly 4.0,
	// not on an average recomputed from a rounded intermediate.
	updated, err := svc.Update(client, review.ID, 4, "Good, not great")
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Rating)

	profile := workerAggregate(t, db, worker.ID)
	assert.Equal(t, 1, profile.ReviewCount)
	assert.Equal(t, 4.0, profile.AverageRating)
}

func TestDeleteReviewZeroesAggregate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReviewService(db)
	worker := createTestWorker(t, db, "worker@test.com", models.ServicePlumber)
	client := createTestClient(t, db, "client@test.com")

	review, err := svc.Add(client, worker.ID, 4, "Solid")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(client, review.ID))

	profile := workerAggregate(t, db, worker.ID)
	assert.Equal(t, 0, profile.ReviewCount)
	assert.Equal(t, 0.0, profile.AverageRating)
}

func TestReviewValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReviewService(db)
	worker := createTestWorker(t, db, "worker@test.com", models.ServicePlumber)
	client := createTestClient(t, db, "client@test.com")

	_, err := svc.Add(client, worker.ID, 0, "No rating")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Add(client, worker.ID, 6, "Too high")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Add(client, worker.ID, 4, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Add(worker, worker.ID, 4, "Reviewing myself")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Add(client, client.ID, 4, "Not a worker")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Add(client, 9999, 4, "Missing worker")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReviewNonWorkerTarget(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReviewService(db)
	client := createTestClient(t, db, "client@test.com")
	other := createTestClient(t, db, "other@test.com")

	_, err := svc.Add(client, other.ID, 4, "Not a worker")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDuplicateReviewRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReviewService(db)
	worker := createTestWorker(t, db, "worker@test.com", models.ServicePlumber)
	client := createTestClient(t, db, "client@test.com")

	_, err := svc.Add(client, worker.ID, 4, "First review")
	require.NoError(t, err)

	_, err = svc.Add(client, worker.ID, 5, "Second review")
	assert.ErrorIs(t, err, ErrConflict)

	profile := workerAggregate(t, db, worker.ID)
	assert.Equal(t, 1, profile.ReviewCount)
}

func TestReviewOwnership(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReviewService(db)
	worker := createTestWorker(t, db, "worker@test.com", models.ServicePlumber)
	client := createTestClient(t, db, "client@test.com")
	stranger := createTestClient(t, db, "stranger@test.com")

	review, err := svc.Add(client, worker.ID, 4, "Solid")
	require.NoError(t, err)

	_, err = svc.Update(stranger, review.ID, 1, "Hijacked")
	assert.ErrorIs(t, err, ErrForbidden)
	err = svc.Delete(stranger, review.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRecomputeRepairsDriftedAggregate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReviewService(db)
	worker := createTestWorker(t, db, "worker@test.com", models.ServicePlumber)

	for i, rating := range []int{5, 3} {
		client := createTestClient(t, db, "client"+string(rune('a'+i))+"@test.com")
		_, err := svc.Add(client, worker.ID, rating, "Review")
		require.NoError(t, err)
	}

	// Corrupt the denormalized aggregate out of band
	require.NoError(t, db.Model(&models.WorkerProfile{}).
		Where("user_id = ?", worker.ID).
		Updates(map[string]interface{}{
			"rating_total": 99, "review_count": 7, "average_rating": 1.4,
		}).Error)

	require.NoError(t, svc.RecomputeWorkerRating(worker.ID))

	profile := workerAggregate(t, db, worker.ID)
	assert.Equal(t, 2, profile.ReviewCount)
	assert.Equal(t, 8, profile.RatingTotal)
	assert.Equal(t, 4.0, profile.AverageRating)
}

func TestListReviewsPaginated(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReviewService(db)
	worker := createTestWorker(t, db, "worker@test.com", models.ServicePlumber)

	for i := 0; i < 12; i++ {
		client := createTestClient(t, db, "client"+string(rune('a'+i))+"@test.com")
		_, err := svc.Add(client, worker.ID, 4, "Review")
		require.NoError(t, err)
	}

	page1, total, err := svc.ListForWorker(worker.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 12, total)
	assert.Len(t, page1, 10)

	page2, _, err := svc.ListForWorker(worker.ID, 2, 10)
	require.NoError(t, err)
	assert.Len(t, page2, 2)

	_, _, err = svc.ListForWorker(9999, 1, 10)
	assert.ErrorIs(t, err, ErrNotFound)
}
