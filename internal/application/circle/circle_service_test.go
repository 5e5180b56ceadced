package circle

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/circle"
	"github.com/halo/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type circleServiceFixture struct {
	service        *CircleService
	circleRepo     *MockCircleRepository
	membershipRepo *MockMembershipRepository
	identityGate   *MockIdentityGate
}

func newCircleServiceFixture() *circleServiceFixture {
	circleRepo := new(MockCircleRepository)
	membershipRepo := new(MockMembershipRepository)
	identityGate := new(MockIdentityGate)
	service := NewCircleService(circleRepo, membershipRepo, identityGate, circle.DefaultPolicy(), zap.NewNop())
	return &circleServiceFixture{
		service:        service,
		circleRepo:     circleRepo,
		membershipRepo: membershipRepo,
		identityGate:   identityGate,
	}
}

func (f *circleServiceFixture) verifiedUser(userID uuid.UUID) {
	f.identityGate.On("IsVerified", mock.Anything, userID).Return(true, nil)
	f.identityGate.On("UniqueToken", mock.Anything, userID).Return("token-"+userID.String()[:8], nil)
}

func validCreateRequest() CreateCircleRequest {
	return CreateCircleRequest{
		Name:               "Family Savings",
		ContributionAmount: 1_000_000_000, // $100
		ContributionToken:  "USDC",
		TotalMembers:       3,
		StartDate:          time.Now().Add(5 * 24 * time.Hour),
	}
}

func newFormingCircle(t *testing.T, organizerID uuid.UUID, totalMembers int) *circle.Circle {
	t.Helper()
	c, err := circle.NewCircle(
		organizerID,
		"Family Savings",
		1_000_000_000,
		"USDC",
		totalMembers,
		time.Now().Add(5*24*time.Hour),
		"ABCD2345",
		circle.DefaultPolicy(),
	)
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func TestCircleService_CreateCircle(t *testing.T) {
	f := newCircleServiceFixture()
	organizerID := uuid.New()

	f.verifiedUser(organizerID)
	f.circleRepo.On("CountActiveForUser", mock.Anything, organizerID).Return(int64(0), nil)
	f.circleRepo.On("Create", mock.Anything, mock.AnythingOfType("*circle.Circle")).Return(nil)
	f.membershipRepo.On("Create", mock.Anything, mock.AnythingOfType("*circle.Membership")).Return(nil)

	resp, err := f.service.CreateCircle(context.Background(), organizerID, validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, "Family Savings", resp.Name)
	assert.Equal(t, organizerID, resp.OrganizerID)
	assert.Equal(t, "forming", resp.Status)
	assert.Equal(t, 1, resp.MemberCount)
	assert.Len(t, resp.InviteCode, circle.InviteCodeLength)
	assert.Equal(t, int64(3_000_000_000), resp.PayoutAmount)

	// The organizer's seat is always position 1
	membership := f.membershipRepo.Calls[0].Arguments.Get(1).(*circle.Membership)
	assert.Equal(t, 1, membership.PayoutPosition)
	assert.Equal(t, organizerID, membership.UserID)
}

func TestCircleService_CreateCircle_IdentityNotVerified(t *testing.T) {
	f := newCircleServiceFixture()
	organizerID := uuid.New()

	f.identityGate.On("IsVerified", mock.Anything, organizerID).Return(false, nil)

	_, err := f.service.CreateCircle(context.Background(), organizerID, validCreateRequest())
	assert.ErrorIs(t, err, circle.ErrIdentityNotVerified)
	f.circleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCircleService_CreateCircle_DuplicateIdentity(t *testing.T) {
	f := newCircleServiceFixture()
	organizerID := uuid.New()

	f.identityGate.On("IsVerified", mock.Anything, organizerID).Return(true, nil)
	f.identityGate.On("UniqueToken", mock.Anything, organizerID).Return("", circle.ErrDuplicateIdentity)

	_, err := f.service.CreateCircle(context.Background(), organizerID, validCreateRequest())
	assert.ErrorIs(t, err, circle.ErrDuplicateIdentity)
}

func TestCircleService_CreateCircle_TooManyActiveCircles(t *testing.T) {
	f := newCircleServiceFixture()
	organizerID := uuid.New()

	f.verifiedUser(organizerID)
	f.circleRepo.On("CountActiveForUser", mock.Anything, organizerID).Return(int64(3), nil)

	_, err := f.service.CreateCircle(context.Background(), organizerID, validCreateRequest())
	assert.ErrorIs(t, err, circle.ErrTooManyActiveCircles)
}

func TestCircleService_CreateCircle_InsufficientBalance(t *testing.T) {
	f := newCircleServiceFixture()
	organizerID := uuid.New()

	custody := new(MockAssetCustody)
	custody.On("BalanceOf", mock.Anything, "GWALLET", "USDC").Return(int64(1), nil)
	f.service.SetAssetCustody(custody)

	f.verifiedUser(organizerID)
	f.circleRepo.On("CountActiveForUser", mock.Anything, organizerID).Return(int64(0), nil)

	req := validCreateRequest()
	req.WalletID = "GWALLET"
	_, err := f.service.CreateCircle(context.Background(), organizerID, req)
	assert.ErrorIs(t, err, circle.ErrInsufficientBalance)
}

func TestCircleService_CreateCircle_BalanceCheckDegradesGracefully(t *testing.T) {
	f := newCircleServiceFixture()
	organizerID := uuid.New()

	custody := new(MockAssetCustody)
	custody.On("BalanceOf", mock.Anything, "GWALLET", "USDC").
		Return(int64(0), shared.ErrGatewayUnavailable)
	f.service.SetAssetCustody(custody)

	f.verifiedUser(organizerID)
	f.circleRepo.On("CountActiveForUser", mock.Anything, organizerID).Return(int64(0), nil)
	f.circleRepo.On("Create", mock.Anything, mock.AnythingOfType("*circle.Circle")).Return(nil)
	f.membershipRepo.On("Create", mock.Anything, mock.AnythingOfType("*circle.Membership")).Return(nil)

	req := validCreateRequest()
	req.WalletID = "GWALLET"
	_, err := f.service.CreateCircle(context.Background(), organizerID, req)
	assert.NoError(t, err)
}

func TestCircleService_CreateCircle_InviteCodeRetry(t *testing.T) {
	f := newCircleServiceFixture()
	organizerID := uuid.New()

	f.verifiedUser(organizerID)
	f.circleRepo.On("CountActiveForUser", mock.Anything, organizerID).Return(int64(0), nil)
	f.circleRepo.On("Create", mock.Anything, mock.AnythingOfType("*circle.Circle")).
		Return(shared.ErrAlreadyExists).Once()
	f.circleRepo.On("Create", mock.Anything, mock.AnythingOfType("*circle.Circle")).
		Return(nil).Once()
	f.membershipRepo.On("Create", mock.Anything, mock.AnythingOfType("*circle.Membership")).Return(nil)

	_, err := f.service.CreateCircle(context.Background(), organizerID, validCreateRequest())
	require.NoError(t, err)
	f.circleRepo.AssertNumberOfCalls(t, "Create", 2)
}

func TestCircleService_JoinCircle(t *testing.T) {
	f := newCircleServiceFixture()
	organizerID := uuid.New()
	userID := uuid.New()
	c := newFormingCircle(t, organizerID, 3)

	f.verifiedUser(userID)
	f.circleRepo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	f.membershipRepo.On("FindByCircleAndUser", mock.Anything, c.ID, userID).Return(nil, shared.ErrNotFound)
	f.circleRepo.On("CountActiveForUser", mock.Anything, userID).Return(int64(0), nil)
	f.membershipRepo.On("CountByCircle", mock.Anything, c.ID).Return(int64(1), nil)
	f.membershipRepo.On("Create", mock.Anything, mock.AnythingOfType("*circle.Membership")).Return(nil)

	resp, err := f.service.JoinCircle(context.Background(), userID, c.ID, c.InviteCode)
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Membership.PayoutPosition)
	assert.Equal(t, 2, resp.Circle.MemberCount)
	assert.Equal(t, "forming", resp.Circle.Status)
	f.circleRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestCircleService_JoinCircle_NoInviteCode(t *testing.T) {
	f := newCircleServiceFixture()
	organizerID := uuid.New()
	userID := uuid.New()
	c := newFormingCircle(t, organizerID, 3)

	f.verifiedUser(userID)
	f.circleRepo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	f.membershipRepo.On("FindByCircleAndUser", mock.Anything, c.ID, userID).Return(nil, shared.ErrNotFound)
	f.circleRepo.On("CountActiveForUser", mock.Anything, userID).Return(int64(0), nil)
	f.membershipRepo.On("CountByCircle", mock.Anything, c.ID).Return(int64(1), nil)
	f.membershipRepo.On("Create", mock.Anything, mock.AnythingOfType("*circle.Membership")).Return(nil)

	// The circle id alone is the join handle; the invite code is only
	// checked when the caller supplies one
	resp, err := f.service.JoinCircle(context.Background(), userID, c.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Membership.PayoutPosition)
}

func TestCircleService_JoinCircle_LastSeatActivates(t *testing.T) {
	f := newCircleServiceFixture()
	organizerID := uuid.New()
	userID := uuid.New()
	c := newFormingCircle(t, organizerID, 3)

	f.verifiedUser(userID)
	f.circleRepo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	f.membershipRepo.On("FindByCircleAndUser", mock.Anything, c.ID, userID).Return(nil, shared.ErrNotFound)
	f.circleRepo.On("CountActiveForUser", mock.Anything, userID).Return(int64(0), nil)
	f.membershipRepo.On("CountByCircle", mock.Anything, c.ID).Return(int64(2), nil)
	f.membershipRepo.On("Create", mock.Anything, mock.AnythingOfType("*circle.Membership")).Return(nil)
	f.circleRepo.On("SaveWithLock", mock.Anything, c).Return(nil)

	resp, err := f.service.JoinCircle(context.Background(), userID, c.ID, c.InviteCode)
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Membership.PayoutPosition)
	assert.Equal(t, "active", resp.Circle.Status)
	require.NotNil(t, resp.Circle.CurrentPeriod)
	assert.Equal(t, 1, *resp.Circle.CurrentPeriod)
	f.circleRepo.AssertCalled(t, "SaveWithLock", mock.Anything, c)
}

func TestCircleService_JoinCircle_Errors(t *testing.T) {
	organizerID := uuid.New()

	t.Run("wrong invite code", func(t *testing.T) {
		f := newCircleServiceFixture()
		userID := uuid.New()
		c := newFormingCircle(t, organizerID, 3)

		f.verifiedUser(userID)
		f.circleRepo.On("FindByID", mock.Anything, c.ID).Return(c, nil)

		_, err := f.service.JoinCircle(context.Background(), userID, c.ID, "WXYZ2345")
		assert.Error(t, err)
	})

	t.Run("already active means no free seats", func(t *testing.T) {
		f := newCircleServiceFixture()
		userID := uuid.New()
		c := newFormingCircle(t, organizerID, 3)
		require.NoError(t, c.Activate(time.Now()))
		c.ClearDomainEvents()

		f.verifiedUser(userID)
		f.circleRepo.On("FindByID", mock.Anything, c.ID).Return(c, nil)

		_, err := f.service.JoinCircle(context.Background(), userID, c.ID, c.InviteCode)
		assert.ErrorIs(t, err, circle.ErrCircleFull)
	})

	t.Run("cancelled circle is not forming", func(t *testing.T) {
		f := newCircleServiceFixture()
		userID := uuid.New()
		c := newFormingCircle(t, organizerID, 3)
		require.NoError(t, c.Cancel("organizer changed plans"))
		c.ClearDomainEvents()

		f.verifiedUser(userID)
		f.circleRepo.On("FindByID", mock.Anything, c.ID).Return(c, nil)

		_, err := f.service.JoinCircle(context.Background(), userID, c.ID, c.InviteCode)
		assert.ErrorIs(t, err, circle.ErrNotForming)
	})

	t.Run("already member", func(t *testing.T) {
		f := newCircleServiceFixture()
		userID := uuid.New()
		c := newFormingCircle(t, organizerID, 3)
		existing, err := circle.NewMembership(c.ID, userID, 2, 3)
		require.NoError(t, err)

		f.verifiedUser(userID)
		f.circleRepo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
		f.membershipRepo.On("FindByCircleAndUser", mock.Anything, c.ID, userID).Return(existing, nil)

		_, err = f.service.JoinCircle(context.Background(), userID, c.ID, c.InviteCode)
		assert.ErrorIs(t, err, circle.ErrAlreadyMember)
	})

	t.Run("circle full", func(t *testing.T) {
		f := newCircleServiceFixture()
		userID := uuid.New()
		c := newFormingCircle(t, organizerID, 3)

		f.verifiedUser(userID)
		f.circleRepo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
		f.membershipRepo.On("FindByCircleAndUser", mock.Anything, c.ID, userID).Return(nil, shared.ErrNotFound)
		f.circleRepo.On("CountActiveForUser", mock.Anything, userID).Return(int64(0), nil)
		f.membershipRepo.On("CountByCircle", mock.Anything, c.ID).Return(int64(3), nil)

		_, err := f.service.JoinCircle(context.Background(), userID, c.ID, c.InviteCode)
		assert.ErrorIs(t, err, circle.ErrCircleFull)
	})

	t.Run("lost cross-process seat race", func(t *testing.T) {
		f := newCircleServiceFixture()
		userID := uuid.New()
		c := newFormingCircle(t, organizerID, 3)

		f.verifiedUser(userID)
		f.circleRepo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
		f.membershipRepo.On("FindByCircleAndUser", mock.Anything, c.ID, userID).Return(nil, shared.ErrNotFound)
		f.circleRepo.On("CountActiveForUser", mock.Anything, userID).Return(int64(0), nil)
		f.membershipRepo.On("CountByCircle", mock.Anything, c.ID).Return(int64(1), nil)
		f.membershipRepo.On("Create", mock.Anything, mock.AnythingOfType("*circle.Membership")).
			Return(shared.ErrAlreadyExists)

		_, err := f.service.JoinCircle(context.Background(), userID, c.ID, c.InviteCode)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestCircleService_CancelCircle(t *testing.T) {
	f := newCircleServiceFixture()
	organizerID := uuid.New()
	c := newFormingCircle(t, organizerID, 3)

	f.circleRepo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	f.circleRepo.On("SaveWithLock", mock.Anything, c).Return(nil)
	f.membershipRepo.On("CountByCircle", mock.Anything, c.ID).Return(int64(2), nil)

	resp, err := f.service.CancelCircle(context.Background(), organizerID, c.ID, CancelCircleRequest{Reason: "not enough interest"})
	require.NoError(t, err)

	assert.Equal(t, "cancelled", resp.Status)
	assert.Equal(t, "not enough interest", resp.CancelReason)
}

func TestCircleService_CancelCircle_OrganizerOnly(t *testing.T) {
	f := newCircleServiceFixture()
	c := newFormingCircle(t, uuid.New(), 3)

	f.circleRepo.On("FindByID", mock.Anything, c.ID).Return(c, nil)

	_, err := f.service.CancelCircle(context.Background(), uuid.New(), c.ID, CancelCircleRequest{Reason: "nope"})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	f.circleRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestCircleService_GetByInviteCode(t *testing.T) {
	f := newCircleServiceFixture()
	c := newFormingCircle(t, uuid.New(), 3)

	f.circleRepo.On("FindByInviteCode", mock.Anything, c.InviteCode).Return(c, nil)
	f.membershipRepo.On("CountByCircle", mock.Anything, c.ID).Return(int64(1), nil)

	resp, err := f.service.GetByInviteCode(context.Background(), c.InviteCode)
	require.NoError(t, err)
	assert.Equal(t, c.ID, resp.ID)
	assert.Equal(t, 1, resp.MemberCount)
}
