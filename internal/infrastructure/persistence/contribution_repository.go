package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/circle"
	"github.com/halo/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormContributionRepository implements circle.ContributionRepository using
// GORM. The ledger is append-only: rows are created, never updated.
type GormContributionRepository struct {
	db *gorm.DB
}

var _ circle.ContributionRepository = (*GormContributionRepository)(nil)

// NewGormContributionRepository creates a new GormContributionRepository
func NewGormContributionRepository(db *gorm.DB) *GormContributionRepository {
	return &GormContributionRepository{db: db}
}

// FindByCircleUserPeriod finds the contribution for (circle, user, period)
func (r *GormContributionRepository) FindByCircleUserPeriod(ctx context.Context, circleID, userID uuid.UUID, period int) (*circle.Contribution, error) {
	var c circle.Contribution
	if err := r.db.WithContext(ctx).
		Where("circle_id = ? AND user_id = ? AND period = ?", circleID, userID, period).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// CountForPeriod counts contributions recorded for (circle, period)
func (r *GormContributionRepository) CountForPeriod(ctx context.Context, circleID uuid.UUID, period int) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&circle.Contribution{}).
		Where("circle_id = ? AND period = ?", circleID, period).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListByCircle lists contributions for a circle, newest first
func (r *GormContributionRepository) ListByCircle(ctx context.Context, circleID uuid.UUID) ([]circle.Contribution, error) {
	var contributions []circle.Contribution
	if err := r.db.WithContext(ctx).
		Where("circle_id = ?", circleID).
		Order("paid_at DESC").
		Find(&contributions).Error; err != nil {
		return nil, err
	}
	return contributions, nil
}

// ListByCirclePeriod lists contributions for one period of a circle
func (r *GormContributionRepository) ListByCirclePeriod(ctx context.Context, circleID uuid.UUID, period int) ([]circle.Contribution, error) {
	var contributions []circle.Contribution
	if err := r.db.WithContext(ctx).
		Where("circle_id = ? AND period = ?", circleID, period).
		Order("paid_at ASC").
		Find(&contributions).Error; err != nil {
		return nil, err
	}
	return contributions, nil
}

// Create persists a new contribution. The unique index on
// (circle, user, period) backs the ledger's exactly-once guarantee.
func (r *GormContributionRepository) Create(ctx context.Context, c *circle.Contribution) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if isDuplicateKeyError(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}
