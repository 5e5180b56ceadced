package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/circle"
	"github.com/halo/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedContribution(circleID, userID uuid.UUID, period int, paidAt time.Time) *circle.Contribution {
	return &circle.Contribution{
		BaseEntity:   shared.NewBaseEntity(),
		CircleID:     circleID,
		UserID:       userID,
		MembershipID: uuid.New(),
		Period:       period,
		Amount:       500_000_000,
		Status:       circle.ContributionStatusPaid,
		OnTime:       true,
		DueDate:      paidAt.Add(24 * time.Hour),
		PaidAt:       paidAt,
	}
}

func TestGormContributionRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormContributionRepository(db)
	ctx := context.Background()

	circleID := uuid.New()
	userID := uuid.New()
	c := storedContribution(circleID, userID, 1, time.Now())
	require.NoError(t, repo.Create(ctx, c))

	t.Run("FindByCircleUserPeriod", func(t *testing.T) {
		found, err := repo.FindByCircleUserPeriod(ctx, circleID, userID, 1)
		require.NoError(t, err)
		assert.Equal(t, c.ID, found.ID)
		assert.Equal(t, int64(500_000_000), found.Amount)
	})

	t.Run("other period returns ErrNotFound", func(t *testing.T) {
		_, err := repo.FindByCircleUserPeriod(ctx, circleID, userID, 2)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormContributionRepository_Create_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormContributionRepository(db)
	ctx := context.Background()

	circleID := uuid.New()
	userID := uuid.New()
	require.NoError(t, repo.Create(ctx, storedContribution(circleID, userID, 1, time.Now())))

	t.Run("same (circle, user, period) is rejected", func(t *testing.T) {
		err := repo.Create(ctx, storedContribution(circleID, userID, 1, time.Now()))
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("next period is accepted", func(t *testing.T) {
		assert.NoError(t, repo.Create(ctx, storedContribution(circleID, userID, 2, time.Now())))
	})

	t.Run("another member in the same period is accepted", func(t *testing.T) {
		assert.NoError(t, repo.Create(ctx, storedContribution(circleID, uuid.New(), 1, time.Now())))
	})
}

func TestGormContributionRepository_CountAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormContributionRepository(db)
	ctx := context.Background()

	circleID := uuid.New()
	base := time.Now().Add(-time.Hour)
	first := storedContribution(circleID, uuid.New(), 1, base)
	second := storedContribution(circleID, uuid.New(), 1, base.Add(10*time.Minute))
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, storedContribution(circleID, uuid.New(), 2, base.Add(20*time.Minute))))

	count, err := repo.CountForPeriod(ctx, circleID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	t.Run("ListByCirclePeriod orders oldest first", func(t *testing.T) {
		contributions, err := repo.ListByCirclePeriod(ctx, circleID, 1)
		require.NoError(t, err)
		require.Len(t, contributions, 2)
		assert.Equal(t, first.ID, contributions[0].ID)
		assert.Equal(t, second.ID, contributions[1].ID)
	})

	t.Run("ListByCircle orders newest first", func(t *testing.T) {
		contributions, err := repo.ListByCircle(ctx, circleID)
		require.NoError(t, err)
		require.Len(t, contributions, 3)
		assert.Equal(t, 2, contributions[0].Period)
	})
}
