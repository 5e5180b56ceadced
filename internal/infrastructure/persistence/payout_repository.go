package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/circle"
	"github.com/halo/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPayoutRepository implements circle.PayoutRepository using GORM
type GormPayoutRepository struct {
	db *gorm.DB
}

var _ circle.PayoutRepository = (*GormPayoutRepository)(nil)

// NewGormPayoutRepository creates a new GormPayoutRepository
func NewGormPayoutRepository(db *gorm.DB) *GormPayoutRepository {
	return &GormPayoutRepository{db: db}
}

// FindByCircleAndPeriod finds the payout for (circle, period)
func (r *GormPayoutRepository) FindByCircleAndPeriod(ctx context.Context, circleID uuid.UUID, period int) (*circle.Payout, error) {
	var p circle.Payout
	if err := r.db.WithContext(ctx).
		Where("circle_id = ? AND period = ?", circleID, period).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListByCircle lists payouts for a circle ordered by period
func (r *GormPayoutRepository) ListByCircle(ctx context.Context, circleID uuid.UUID) ([]circle.Payout, error) {
	var payouts []circle.Payout
	if err := r.db.WithContext(ctx).
		Where("circle_id = ?", circleID).
		Order("period ASC").
		Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}

// Create persists a new payout. The unique index on (circle, period) makes
// the first writer win; concurrent settlers get shared.ErrAlreadyExists.
func (r *GormPayoutRepository) Create(ctx context.Context, p *circle.Payout) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if isDuplicateKeyError(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save updates an existing payout
func (r *GormPayoutRepository) Save(ctx context.Context, p *circle.Payout) error {
	return r.db.WithContext(ctx).Save(p).Error
}
