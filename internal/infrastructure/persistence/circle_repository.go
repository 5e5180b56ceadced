package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/circle"
	"github.com/halo/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCircleRepository implements circle.Repository using GORM
type GormCircleRepository struct {
	db *gorm.DB
}

var _ circle.Repository = (*GormCircleRepository)(nil)

// NewGormCircleRepository creates a new GormCircleRepository
func NewGormCircleRepository(db *gorm.DB) *GormCircleRepository {
	return &GormCircleRepository{db: db}
}

// FindByID finds a circle by its ID
func (r *GormCircleRepository) FindByID(ctx context.Context, id uuid.UUID) (*circle.Circle, error) {
	var c circle.Circle
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByInviteCode finds a circle by its invite code
func (r *GormCircleRepository) FindByInviteCode(ctx context.Context, code string) (*circle.Circle, error) {
	var c circle.Circle
	if err := r.db.WithContext(ctx).
		Where("invite_code = ?", code).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindAllForUser finds circles the user is a member of, with total count
func (r *GormCircleRepository) FindAllForUser(ctx context.Context, userID uuid.UUID, filter circle.CircleFilter) ([]circle.Circle, int64, error) {
	base := r.db.WithContext(ctx).Model(&circle.Circle{}).
		Joins("JOIN circle_memberships ON circle_memberships.circle_id = circles.id").
		Where("circle_memberships.user_id = ?", userID)

	if filter.Status != nil {
		base = base.Where("circles.status = ?", *filter.Status)
	}
	if filter.OrganizerID != nil {
		base = base.Where("circles.organizer_id = ?", *filter.OrganizerID)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, CircleSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query := base.Session(&gorm.Session{}).
		Order(fmt.Sprintf("circles.%s %s", orderBy, orderDir))
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var circles []circle.Circle
	if err := query.Find(&circles).Error; err != nil {
		return nil, 0, err
	}
	return circles, total, nil
}

// CountActiveForUser counts forming/active circles the user belongs to
func (r *GormCircleRepository) CountActiveForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&circle.Circle{}).
		Joins("JOIN circle_memberships ON circle_memberships.circle_id = circles.id").
		Where("circle_memberships.user_id = ?", userID).
		Where("circles.status IN ?", []circle.Status{circle.StatusForming, circle.StatusActive}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create persists a new circle
func (r *GormCircleRepository) Create(ctx context.Context, c *circle.Circle) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if isDuplicateKeyError(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save updates an existing circle
func (r *GormCircleRepository) Save(ctx context.Context, c *circle.Circle) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// SaveWithLock saves with optimistic locking. The domain layer has already
// incremented the in-memory version, so the row must still hold Version-1.
func (r *GormCircleRepository) SaveWithLock(ctx context.Context, c *circle.Circle) error {
	c.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&circle.Circle{}).
		Where("id = ? AND version = ?", c.ID, c.Version-1).
		Updates(map[string]interface{}{
			"status":         c.Status,
			"current_period": c.CurrentPeriod,
			"period_start":   c.PeriodStart,
			"period_end":     c.PeriodEnd,
			"started_at":     c.StartedAt,
			"completed_at":   c.CompletedAt,
			"cancelled_at":   c.CancelledAt,
			"cancel_reason":  c.CancelReason,
			"version":        c.Version,
			"updated_at":     c.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
