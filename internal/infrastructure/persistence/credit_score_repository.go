package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/credit"
	"github.com/halo/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCreditScoreRepository implements credit.ScoreRepository using GORM
type GormCreditScoreRepository struct {
	db *gorm.DB
}

var _ credit.ScoreRepository = (*GormCreditScoreRepository)(nil)

// NewGormCreditScoreRepository creates a new GormCreditScoreRepository
func NewGormCreditScoreRepository(db *gorm.DB) *GormCreditScoreRepository {
	return &GormCreditScoreRepository{db: db}
}

// FindByUser finds a user's credit score
func (r *GormCreditScoreRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*credit.CreditScore, error) {
	var s credit.CreditScore
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Create persists a new credit score. The unique index on user_id makes
// first-touch creation race-safe.
func (r *GormCreditScoreRepository) Create(ctx context.Context, s *credit.CreditScore) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		if isDuplicateKeyError(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// SaveWithLock saves with optimistic locking. The domain layer has already
// incremented the in-memory version, so the row must still hold Version-1.
func (r *GormCreditScoreRepository) SaveWithLock(ctx context.Context, s *credit.CreditScore) error {
	s.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&credit.CreditScore{}).
		Where("id = ? AND version = ?", s.ID, s.Version-1).
		Updates(map[string]interface{}{
			"score":             s.Score,
			"tier":              s.Tier,
			"total_payments":    s.TotalPayments,
			"on_time_payments":  s.OnTimePayments,
			"late_payments":     s.LatePayments,
			"missed_payments":   s.MissedPayments,
			"circles_completed": s.CirclesCompleted,
			"version":           s.Version,
			"updated_at":        s.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
