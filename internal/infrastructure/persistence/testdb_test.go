package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/circle"
	"github.com/halo/backend/internal/domain/credit"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database with the full schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&circle.Circle{},
		&circle.Membership{},
		&circle.Contribution{},
		&circle.Payout{},
		&credit.CreditScore{},
		&credit.CreditEvent{},
	))

	return db
}

// newStoredCircle builds a valid forming circle for persistence tests
func newStoredCircle(t *testing.T, inviteCode string) *circle.Circle {
	t.Helper()

	c, err := circle.NewCircle(
		uuid.New(),
		"Savings Squad",
		500_000_000,
		"USDC",
		3,
		time.Now().Add(96*time.Hour),
		inviteCode,
		circle.DefaultPolicy(),
	)
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

// newStoredMembership builds a membership for the given circle and position
func newStoredMembership(t *testing.T, circleID uuid.UUID, position int) *circle.Membership {
	t.Helper()

	m, err := circle.NewMembership(circleID, uuid.New(), position, 3)
	require.NoError(t, err)
	return m
}
