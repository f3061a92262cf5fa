package services

import (
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"azhome-server/models"
)

// ReviewService owns reviews and the denormalized rating aggregate on the
// worker profile. Mutations apply O(1) deltas to rating_total/review_count;
// RecomputeWorkerRating re-derives everything from the review table as a
// repair path.
type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// Add creates a review for a worker. One review per (client, worker) pair;
// clients cannot review themselves.
func (s *ReviewService) Add(client *models.User, workerID uint, rating int, comment string) (*models.Review, error) {
	if workerID == 0 || rating == 0 || comment == "" {
		return nil, fmt.Errorf("%w: worker ID, rating and comment are required", ErrValidation)
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	if workerID == client.ID {
		return nil, fmt.Errorf("%w: cannot review yourself", ErrValidation)
	}

	var worker models.User
	if err := s.db.First(&worker, workerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: worker not found", ErrNotFound)
		}
		return nil, err
	}
	if !worker.IsWorker() {
		return nil, fmt.Errorf("%w: worker not found", ErrNotFound)
	}

	var existing models.Review
	err := s.db.Where("client_id = ? AND worker_id = ?", client.ID, workerID).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: you have already reviewed this worker", ErrConflict)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := &models.Review{
		ClientID: client.ID,
		WorkerID: workerID,
		Rating:   rating,
		Comment:  comment,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: you have already reviewed this worker", ErrConflict)
			}
			return err
		}
		return applyRatingDelta(tx, workerID, rating, 1)
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// Update rewrites the caller's review of a worker and adjusts the aggregate
// by the rating delta.
func (s *ReviewService) Update(client *models.User, reviewID uint, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 || comment == "" {
		return nil, fmt.Errorf("%w: rating and comment are required", ErrValidation)
	}

	var review models.Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: review not found", ErrNotFound)
		}
		return nil, err
	}
	if review.ClientID != client.ID {
		return nil, fmt.Errorf("%w: not your review", ErrForbidden)
	}

	delta := rating - review.Rating
	review.Rating = rating
	review.Comment = comment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&review).Error; err != nil {
			return err
		}
		return applyRatingDelta(tx, review.WorkerID, delta, 0)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Delete removes the caller's review and subtracts it from the aggregate.
func (s *ReviewService) Delete(client *models.User, reviewID uint) error {
	var review models.Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: review not found", ErrNotFound)
		}
		return err
	}
	if review.ClientID != client.ID {
		return fmt.Errorf("%w: not your review", ErrForbidden)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return applyRatingDelta(tx, review.WorkerID, -review.Rating, -1)
	})
}

// ListForWorker returns a page of a worker's reviews, newest first, with the
// total count.
func (s *ReviewService) ListForWorker(workerID uint, page, limit int) ([]models.Review, int64, error) {
	var worker models.User
	if err := s.db.First(&worker, workerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, fmt.Errorf("%w: worker not found", ErrNotFound)
		}
		return nil, 0, err
	}

	page, limit = normalizePage(page, limit)
	var total int64
	if err := s.db.Model(&models.Review{}).Where("worker_id = ?", workerID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	err := s.db.Preload("Client").
		Where("worker_id = ?", workerID).
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&reviews).Error
	return reviews, total, err
}

// ListForClient returns a page of reviews written by a client, newest first.
func (s *ReviewService) ListForClient(clientID uint, page, limit int) ([]models.Review, int64, error) {
	page, limit = normalizePage(page, limit)
	var total int64
	if err := s.db.Model(&models.Review{}).Where("client_id = ?", clientID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	err := s.db.Preload("Worker").Preload("Worker.WorkerProfile").
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&reviews).Error
	return reviews, total, err
}

// RecomputeWorkerRating rebuilds the aggregate from the review table. Repair
// path for the incremental bookkeeping.
func (s *ReviewService) RecomputeWorkerRating(workerID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var agg struct {
			Total int64
			Count int64
		}
		err := tx.Model(&models.Review{}).
			Select("COALESCE(SUM(rating), 0) AS total, COUNT(*) AS count").
			Where("worker_id = ?", workerID).
			Scan(&agg).Error
		if err != nil {
			return err
		}
		return writeAggregate(tx, workerID, int(agg.Total), int(agg.Count))
	})
}

// applyRatingDelta adjusts rating_total and review_count and re-derives the
// one-decimal average from the adjusted values.
func applyRatingDelta(tx *gorm.DB, workerID uint, totalDelta, countDelta int) error {
	res := tx.Model(&models.WorkerProfile{}).
		Where("user_id = ?", workerID).
		Updates(map[string]interface{}{
			"rating_total": gorm.Expr("rating_total + ?", totalDelta),
			"review_count": gorm.Expr("review_count + ?", countDelta),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: worker profile missing", ErrNotFound)
	}

	var profile models.WorkerProfile
	if err := tx.Where("user_id = ?", workerID).First(&profile).Error; err != nil {
		return err
	}
	return writeAggregate(tx, workerID, profile.RatingTotal, profile.ReviewCount)
}

func writeAggregate(tx *gorm.DB, workerID uint, total, count int) error {
	average := 0.0
	if count > 0 {
		average = math.Round(float64(total)/float64(count)*10) / 10
	}
	return tx.Model(&models.WorkerProfile{}).
		Where("user_id = ?", workerID).
		Updates(map[string]interface{}{
			"rating_total":   total,
			"review_count":   count,
			"average_rating": average,
		}).Error
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}
