package circle

import (
	"context"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/circle"
	"github.com/halo/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockCircleRepository is a mock implementation of circle.Repository
type MockCircleRepository struct {
	mock.Mock
}

func (m *MockCircleRepository) FindByID(ctx context.Context, id uuid.UUID) (*circle.Circle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*circle.Circle), args.Error(1)
}

func (m *MockCircleRepository) FindByInviteCode(ctx context.Context, code string) (*circle.Circle, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*circle.Circle), args.Error(1)
}

func (m *MockCircleRepository) FindAllForUser(ctx context.Context, userID uuid.UUID, filter circle.CircleFilter) ([]circle.Circle, int64, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]circle.Circle), args.Get(1).(int64), args.Error(2)
}

func (m *MockCircleRepository) CountActiveForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCircleRepository) Create(ctx context.Context, c *circle.Circle) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCircleRepository) Save(ctx context.Context, c *circle.Circle) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCircleRepository) SaveWithLock(ctx context.Context, c *circle.Circle) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockMembershipRepository is a mock implementation of circle.MembershipRepository
type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) FindByID(ctx context.Context, id uuid.UUID) (*circle.Membership, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*circle.Membership), args.Error(1)
}

func (m *MockMembershipRepository) FindByCircleAndUser(ctx context.Context, circleID, userID uuid.UUID) (*circle.Membership, error) {
	args := m.Called(ctx, circleID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*circle.Membership), args.Error(1)
}

func (m *MockMembershipRepository) FindByCircleAndPosition(ctx context.Context, circleID uuid.UUID, position int) (*circle.Membership, error) {
	args := m.Called(ctx, circleID, position)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*circle.Membership), args.Error(1)
}

func (m *MockMembershipRepository) ListByCircle(ctx context.Context, circleID uuid.UUID) ([]circle.Membership, error) {
	args := m.Called(ctx, circleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]circle.Membership), args.Error(1)
}

func (m *MockMembershipRepository) CountByCircle(ctx context.Context, circleID uuid.UUID) (int64, error) {
	args := m.Called(ctx, circleID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMembershipRepository) Create(ctx context.Context, membership *circle.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockMembershipRepository) Save(ctx context.Context, membership *circle.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockMembershipRepository) MarkAllCompleted(ctx context.Context, circleID uuid.UUID) error {
	args := m.Called(ctx, circleID)
	return args.Error(0)
}

// MockContributionRepository is a mock implementation of circle.ContributionRepository
type MockContributionRepository struct {
	mock.Mock
}

func (m *MockContributionRepository) FindByCircleUserPeriod(ctx context.Context, circleID, userID uuid.UUID, period int) (*circle.Contribution, error) {
	args := m.Called(ctx, circleID, userID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*circle.Contribution), args.Error(1)
}

func (m *MockContributionRepository) CountForPeriod(ctx context.Context, circleID uuid.UUID, period int) (int64, error) {
	args := m.Called(ctx, circleID, period)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContributionRepository) ListByCircle(ctx context.Context, circleID uuid.UUID) ([]circle.Contribution, error) {
	args := m.Called(ctx, circleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]circle.Contribution), args.Error(1)
}

func (m *MockContributionRepository) ListByCirclePeriod(ctx context.Context, circleID uuid.UUID, period int) ([]circle.Contribution, error) {
	args := m.Called(ctx, circleID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]circle.Contribution), args.Error(1)
}

func (m *MockContributionRepository) Create(ctx context.Context, c *circle.Contribution) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockPayoutRepository is a mock implementation of circle.PayoutRepository
type MockPayoutRepository struct {
	mock.Mock
}

func (m *MockPayoutRepository) FindByCircleAndPeriod(ctx context.Context, circleID uuid.UUID, period int) (*circle.Payout, error) {
	args := m.Called(ctx, circleID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*circle.Payout), args.Error(1)
}

func (m *MockPayoutRepository) ListByCircle(ctx context.Context, circleID uuid.UUID) ([]circle.Payout, error) {
	args := m.Called(ctx, circleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]circle.Payout), args.Error(1)
}

func (m *MockPayoutRepository) Create(ctx context.Context, p *circle.Payout) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPayoutRepository) Save(ctx context.Context, p *circle.Payout) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockIdentityGate is a mock implementation of circle.IdentityGate
type MockIdentityGate struct {
	mock.Mock
}

func (m *MockIdentityGate) IsVerified(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdentityGate) UniqueToken(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

// MockAssetCustody is a mock implementation of circle.AssetCustody
type MockAssetCustody struct {
	mock.Mock
}

func (m *MockAssetCustody) BalanceOf(ctx context.Context, walletID, assetID string) (int64, error) {
	args := m.Called(ctx, walletID, assetID)
	return args.Get(0).(int64), args.Error(1)
}

// MockTransferBuilder is a mock implementation of circle.TransferBuilder
type MockTransferBuilder struct {
	mock.Mock
}

func (m *MockTransferBuilder) BuildTransfer(ctx context.Context, circleID, recipientUserID uuid.UUID, assetID string, amount int64) (*circle.TransferHandle, error) {
	args := m.Called(ctx, circleID, recipientUserID, assetID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*circle.TransferHandle), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
