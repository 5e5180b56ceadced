package credit

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierForScore(t *testing.T) {
	tests := []struct {
		score int
		tier  Tier
	}{
		{300, TierBuilding},
		{449, TierBuilding},
		{450, TierFair},
		{599, TierFair},
		{600, TierGood},
		{749, TierGood},
		{750, TierExcellent},
		{850, TierExcellent},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.tier, TierForScore(tt.score), "score %d", tt.score)
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, BaseScore, ClampScore(BaseScore-1))
	assert.Equal(t, BaseScore, ClampScore(0))
	assert.Equal(t, BaseScore, ClampScore(BaseScore))
	assert.Equal(t, 500, ClampScore(500))
	assert.Equal(t, MaxScore, ClampScore(MaxScore))
	assert.Equal(t, MaxScore, ClampScore(MaxScore+1))
}

func TestOnTimeRate(t *testing.T) {
	tests := []struct {
		name   string
		total  int
		onTime int
		want   int
	}{
		{"no history counts as perfect", 0, 0, 100},
		{"all on time", 5, 5, 100},
		{"none on time", 5, 0, 0},
		{"two thirds rounds up", 3, 2, 67},
		{"one third rounds down", 3, 1, 33},
		{"half", 2, 1, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OnTimeRate(tt.total, tt.onTime))
		})
	}
}

func TestNewCreditScore(t *testing.T) {
	userID := uuid.New()
	s, err := NewCreditScore(userID)
	require.NoError(t, err)

	assert.Equal(t, userID, s.UserID)
	assert.Equal(t, BaseScore, s.Score)
	assert.Equal(t, TierBuilding, s.Tier)
	assert.Zero(t, s.TotalPayments)

	_, err = NewCreditScore(uuid.Nil)
	assert.Error(t, err)
}

func TestCreditScore_RecordPayment(t *testing.T) {
	policy := DefaultPointsPolicy()
	circleID := uuid.New()

	t.Run("on time", func(t *testing.T) {
		s, err := NewCreditScore(uuid.New())
		require.NoError(t, err)

		ev := s.RecordPayment(true, false, circleID, policy)
		assert.Equal(t, BaseScore+10, s.Score)
		assert.Equal(t, 1, s.TotalPayments)
		assert.Equal(t, 1, s.OnTimePayments)
		assert.Zero(t, s.LatePayments)

		assert.Equal(t, EventPaymentOnTime, ev.EventType)
		assert.Equal(t, 10, ev.PointsChange)
		assert.Equal(t, s.Score, ev.ScoreAfter)
		require.NotNil(t, ev.CircleID)
		assert.Equal(t, circleID, *ev.CircleID)
	})

	t.Run("late within grace is neutral", func(t *testing.T) {
		s, err := NewCreditScore(uuid.New())
		require.NoError(t, err)

		ev := s.RecordPayment(false, false, circleID, policy)
		assert.Equal(t, BaseScore, s.Score)
		assert.Equal(t, 1, s.LatePayments)
		assert.Equal(t, EventPaymentLate, ev.EventType)
		assert.Zero(t, ev.PointsChange)
	})

	t.Run("late with fee clamps at the floor", func(t *testing.T) {
		s, err := NewCreditScore(uuid.New())
		require.NoError(t, err)

		// Score starts at the floor; the -5 is absorbed by the clamp and
		// the event records the effective zero change.
		ev := s.RecordPayment(false, true, circleID, policy)
		assert.Equal(t, BaseScore, s.Score)
		assert.Zero(t, ev.PointsChange)
		assert.Equal(t, BaseScore, ev.ScoreAfter)
	})
}

func TestCreditScore_RecordMissedPayment(t *testing.T) {
	policy := DefaultPointsPolicy()
	s, err := NewCreditScore(uuid.New())
	require.NoError(t, err)

	// Build some headroom first
	s.RecordPayment(true, false, uuid.New(), policy)
	s.RecordPayment(true, false, uuid.New(), policy)
	s.RecordPayment(true, false, uuid.New(), policy)
	assert.Equal(t, BaseScore+30, s.Score)

	ev := s.RecordMissedPayment(uuid.New(), 2, policy)
	assert.Equal(t, BaseScore, s.Score)
	assert.Equal(t, -30, ev.PointsChange)
	assert.Equal(t, EventPaymentMissed, ev.EventType)
	assert.Equal(t, 4, s.TotalPayments)
	assert.Equal(t, 1, s.MissedPayments)
	assert.Equal(t, 75, s.OnTimeRate())
}

func TestCreditScore_RecordCircleCompletion(t *testing.T) {
	policy := DefaultPointsPolicy()
	s, err := NewCreditScore(uuid.New())
	require.NoError(t, err)

	ev := s.RecordCircleCompletion(uuid.New(), policy)
	assert.Equal(t, BaseScore+25, s.Score)
	assert.Equal(t, 1, s.CirclesCompleted)
	assert.Equal(t, EventCircleCompleted, ev.EventType)
	assert.Equal(t, 25, ev.PointsChange)
	// Completion bonus does not count as a payment
	assert.Zero(t, s.TotalPayments)
}

func TestCreditScore_TierTracksScore(t *testing.T) {
	policy := DefaultPointsPolicy()
	s, err := NewCreditScore(uuid.New())
	require.NoError(t, err)

	// 15 on-time payments: 300 + 150 = 450 crosses into fair
	for i := 0; i < 15; i++ {
		s.RecordPayment(true, false, uuid.New(), policy)
	}
	assert.Equal(t, 450, s.Score)
	assert.Equal(t, TierFair, s.Tier)
}

func TestCreditScore_ClampAtCeiling(t *testing.T) {
	policy := DefaultPointsPolicy()
	s, err := NewCreditScore(uuid.New())
	require.NoError(t, err)

	// 55 on-time payments would push past 850 unclamped
	for i := 0; i < 55; i++ {
		s.RecordPayment(true, false, uuid.New(), policy)
	}
	assert.Equal(t, MaxScore, s.Score)
	assert.Equal(t, TierExcellent, s.Tier)
}

func TestReplayScore(t *testing.T) {
	policy := DefaultPointsPolicy()
	s, err := NewCreditScore(uuid.New())
	require.NoError(t, err)

	var log []CreditEvent
	record := func(ev *CreditEvent) { log = append(log, *ev) }

	record(s.RecordPayment(true, false, uuid.New(), policy))
	record(s.RecordPayment(false, true, uuid.New(), policy))
	record(s.RecordMissedPayment(uuid.New(), 3, policy))
	record(s.RecordCircleCompletion(uuid.New(), policy))
	record(s.RecordPayment(true, false, uuid.New(), policy))

	assert.Equal(t, s.Score, ReplayScore(log))
}

func TestReplayScore_Empty(t *testing.T) {
	assert.Equal(t, BaseScore, ReplayScore(nil))
}
