package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/circle"
	"github.com/halo/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormMembershipRepository implements circle.MembershipRepository using GORM
type GormMembershipRepository struct {
	db *gorm.DB
}

var _ circle.MembershipRepository = (*GormMembershipRepository)(nil)

// NewGormMembershipRepository creates a new GormMembershipRepository
func NewGormMembershipRepository(db *gorm.DB) *GormMembershipRepository {
	return &GormMembershipRepository{db: db}
}

// FindByID finds a membership by its ID
func (r *GormMembershipRepository) FindByID(ctx context.Context, id uuid.UUID) (*circle.Membership, error) {
	var m circle.Membership
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// FindByCircleAndUser finds the user's membership in a circle
func (r *GormMembershipRepository) FindByCircleAndUser(ctx context.Context, circleID, userID uuid.UUID) (*circle.Membership, error) {
	var m circle.Membership
	if err := r.db.WithContext(ctx).
		Where("circle_id = ? AND user_id = ?", circleID, userID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// FindByCircleAndPosition finds the membership holding a payout position
func (r *GormMembershipRepository) FindByCircleAndPosition(ctx context.Context, circleID uuid.UUID, position int) (*circle.Membership, error) {
	var m circle.Membership
	if err := r.db.WithContext(ctx).
		Where("circle_id = ? AND payout_position = ?", circleID, position).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListByCircle lists all memberships of a circle ordered by payout position
func (r *GormMembershipRepository) ListByCircle(ctx context.Context, circleID uuid.UUID) ([]circle.Membership, error) {
	var memberships []circle.Membership
	if err := r.db.WithContext(ctx).
		Where("circle_id = ?", circleID).
		Order("payout_position ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// CountByCircle counts memberships of a circle
func (r *GormMembershipRepository) CountByCircle(ctx context.Context, circleID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&circle.Membership{}).
		Where("circle_id = ?", circleID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create persists a new membership. The unique indexes on (circle, user)
// and (circle, position) make this the arbiter of seat races.
func (r *GormMembershipRepository) Create(ctx context.Context, m *circle.Membership) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDuplicateKeyError(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save updates an existing membership
func (r *GormMembershipRepository) Save(ctx context.Context, m *circle.Membership) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// MarkAllCompleted marks every membership of the circle as completed
func (r *GormMembershipRepository) MarkAllCompleted(ctx context.Context, circleID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&circle.Membership{}).
		Where("circle_id = ?", circleID).
		Updates(map[string]interface{}{
			"status":     circle.MemberStatusCompleted,
			"updated_at": time.Now(),
		}).Error
}
