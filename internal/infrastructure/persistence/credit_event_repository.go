package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/credit"
	"gorm.io/gorm"
)

// GormCreditEventRepository implements credit.EventRepository using GORM.
// The event log is append-only.
type GormCreditEventRepository struct {
	db *gorm.DB
}

var _ credit.EventRepository = (*GormCreditEventRepository)(nil)

// NewGormCreditEventRepository creates a new GormCreditEventRepository
func NewGormCreditEventRepository(db *gorm.DB) *GormCreditEventRepository {
	return &GormCreditEventRepository{db: db}
}

// Create appends an audit entry
func (r *GormCreditEventRepository) Create(ctx context.Context, e *credit.CreditEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// ListByUser lists a user's credit events, newest first, with total count
func (r *GormCreditEventRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter credit.CreditEventFilter) ([]credit.CreditEvent, int64, error) {
	base := r.db.WithContext(ctx).Model(&credit.CreditEvent{}).
		Where("user_id = ?", userID)
	if filter.EventType != nil {
		base = base.Where("event_type = ?", *filter.EventType)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, CreditEventSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query := base.Session(&gorm.Session{}).
		Order(fmt.Sprintf("%s %s", orderBy, orderDir))
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var events []credit.CreditEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ListAllByUser lists every event for a user oldest first, for score replay
func (r *GormCreditEventRepository) ListAllByUser(ctx context.Context, userID uuid.UUID) ([]credit.CreditEvent, error) {
	var events []credit.CreditEvent
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
