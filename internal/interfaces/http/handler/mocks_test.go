package handler

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/halo/backend/internal/domain/circle"
	"github.com/halo/backend/internal/domain/credit"
	"github.com/halo/backend/internal/domain/shared"
)

// In-memory fakes backing the real application services in handler tests.

type mockCircleRepo struct {
	mu      sync.Mutex
	circles map[uuid.UUID]*circle.Circle
	members *mockMembershipRepo
}

func newMockCircleRepo(members *mockMembershipRepo) *mockCircleRepo {
	return &mockCircleRepo{circles: make(map[uuid.UUID]*circle.Circle), members: members}
}

func (m *mockCircleRepo) FindByID(ctx context.Context, id uuid.UUID) (*circle.Circle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.circles[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, circle.ErrCircleNotFound
}

func (m *mockCircleRepo) FindByInviteCode(ctx context.Context, code string) (*circle.Circle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.circles {
		if c.InviteCode == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockCircleRepo) FindAllForUser(ctx context.Context, userID uuid.UUID, filter circle.CircleFilter) ([]circle.Circle, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []circle.Circle
	for _, c := range m.circles {
		if !m.members.isMember(c.ID, userID) {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		result = append(result, *c)
	}
	return result, int64(len(result)), nil
}

func (m *mockCircleRepo) CountActiveForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.circles {
		if (c.Status == circle.StatusForming || c.Status == circle.StatusActive) && m.members.isMember(c.ID, userID) {
			n++
		}
	}
	return n, nil
}

func (m *mockCircleRepo) Create(ctx context.Context, c *circle.Circle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.circles {
		if existing.InviteCode == c.InviteCode {
			return shared.ErrAlreadyExists
		}
	}
	cp := *c
	m.circles[c.ID] = &cp
	return nil
}

func (m *mockCircleRepo) Save(ctx context.Context, c *circle.Circle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.circles[c.ID] = &cp
	return nil
}

func (m *mockCircleRepo) SaveWithLock(ctx context.Context, c *circle.Circle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.circles[c.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if existing.Version != c.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	cp := *c
	m.circles[c.ID] = &cp
	return nil
}

type mockMembershipRepo struct {
	mu          sync.Mutex
	memberships map[uuid.UUID]*circle.Membership
}

func newMockMembershipRepo() *mockMembershipRepo {
	return &mockMembershipRepo{memberships: make(map[uuid.UUID]*circle.Membership)}
}

func (m *mockMembershipRepo) isMember(circleID, userID uuid.UUID) bool {
	for _, ms := range m.memberships {
		if ms.CircleID == circleID && ms.UserID == userID {
			return true
		}
	}
	return false
}

func (m *mockMembershipRepo) FindByID(ctx context.Context, id uuid.UUID) (*circle.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ms, ok := m.memberships[id]; ok {
		cp := *ms
		return &cp, nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockMembershipRepo) FindByCircleAndUser(ctx context.Context, circleID, userID uuid.UUID) (*circle.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ms := range m.memberships {
		if ms.CircleID == circleID && ms.UserID == userID {
			cp := *ms
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockMembershipRepo) FindByCircleAndPosition(ctx context.Context, circleID uuid.UUID, position int) (*circle.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ms := range m.memberships {
		if ms.CircleID == circleID && ms.PayoutPosition == position {
			cp := *ms
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockMembershipRepo) ListByCircle(ctx context.Context, circleID uuid.UUID) ([]circle.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []circle.Membership
	for pos := 1; pos <= len(m.memberships); pos++ {
		for _, ms := range m.memberships {
			if ms.CircleID == circleID && ms.PayoutPosition == pos {
				result = append(result, *ms)
			}
		}
	}
	return result, nil
}

func (m *mockMembershipRepo) CountByCircle(ctx context.Context, circleID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, ms := range m.memberships {
		if ms.CircleID == circleID {
			n++
		}
	}
	return n, nil
}

func (m *mockMembershipRepo) Create(ctx context.Context, ms *circle.Membership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.memberships {
		if existing.CircleID == ms.CircleID &&
			(existing.UserID == ms.UserID || existing.PayoutPosition == ms.PayoutPosition) {
			return shared.ErrAlreadyExists
		}
	}
	cp := *ms
	m.memberships[ms.ID] = &cp
	return nil
}

func (m *mockMembershipRepo) Save(ctx context.Context, ms *circle.Membership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ms
	m.memberships[ms.ID] = &cp
	return nil
}

func (m *mockMembershipRepo) MarkAllCompleted(ctx context.Context, circleID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ms := range m.memberships {
		if ms.CircleID == circleID {
			ms.Status = circle.MemberStatusCompleted
		}
	}
	return nil
}

type mockContributionRepo struct {
	mu            sync.Mutex
	contributions []*circle.Contribution
}

func newMockContributionRepo() *mockContributionRepo {
	return &mockContributionRepo{}
}

func (m *mockContributionRepo) FindByCircleUserPeriod(ctx context.Context, circleID, userID uuid.UUID, period int) (*circle.Contribution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.contributions {
		if c.CircleID == circleID && c.UserID == userID && c.Period == period {
			cp := *c
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockContributionRepo) CountForPeriod(ctx context.Context, circleID uuid.UUID, period int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.contributions {
		if c.CircleID == circleID && c.Period == period {
			n++
		}
	}
	return n, nil
}

func (m *mockContributionRepo) ListByCircle(ctx context.Context, circleID uuid.UUID) ([]circle.Contribution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []circle.Contribution
	for i := len(m.contributions) - 1; i >= 0; i-- {
		if m.contributions[i].CircleID == circleID {
			result = append(result, *m.contributions[i])
		}
	}
	return result, nil
}

func (m *mockContributionRepo) ListByCirclePeriod(ctx context.Context, circleID uuid.UUID, period int) ([]circle.Contribution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []circle.Contribution
	for _, c := range m.contributions {
		if c.CircleID == circleID && c.Period == period {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockContributionRepo) Create(ctx context.Context, c *circle.Contribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.contributions {
		if existing.CircleID == c.CircleID && existing.UserID == c.UserID && existing.Period == c.Period {
			return shared.ErrAlreadyExists
		}
	}
	cp := *c
	m.contributions = append(m.contributions, &cp)
	return nil
}

type mockPayoutRepo struct {
	mu      sync.Mutex
	payouts []*circle.Payout
}

func newMockPayoutRepo() *mockPayoutRepo {
	return &mockPayoutRepo{}
}

func (m *mockPayoutRepo) FindByCircleAndPeriod(ctx context.Context, circleID uuid.UUID, period int) (*circle.Payout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payouts {
		if p.CircleID == circleID && p.Period == period {
			cp := *p
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockPayoutRepo) ListByCircle(ctx context.Context, circleID uuid.UUID) ([]circle.Payout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []circle.Payout
	for _, p := range m.payouts {
		if p.CircleID == circleID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPayoutRepo) Create(ctx context.Context, p *circle.Payout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.payouts {
		if existing.CircleID == p.CircleID && existing.Period == p.Period {
			return shared.ErrAlreadyExists
		}
	}
	cp := *p
	m.payouts = append(m.payouts, &cp)
	return nil
}

func (m *mockPayoutRepo) Save(ctx context.Context, p *circle.Payout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.payouts {
		if existing.ID == p.ID {
			cp := *p
			m.payouts[i] = &cp
			return nil
		}
	}
	return shared.ErrNotFound
}

type mockIdentityGate struct {
	verified map[uuid.UUID]bool
	tokens   map[uuid.UUID]string
}

func newMockIdentityGate() *mockIdentityGate {
	return &mockIdentityGate{verified: make(map[uuid.UUID]bool), tokens: make(map[uuid.UUID]string)}
}

func (m *mockIdentityGate) allow(userID uuid.UUID) {
	m.verified[userID] = true
	m.tokens[userID] = "token-" + userID.String()
}

func (m *mockIdentityGate) IsVerified(ctx context.Context, userID uuid.UUID) (bool, error) {
	return m.verified[userID], nil
}

func (m *mockIdentityGate) UniqueToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return m.tokens[userID], nil
}

type mockScoreRepo struct {
	mu     sync.Mutex
	scores map[uuid.UUID]*credit.CreditScore
}

func newMockScoreRepo() *mockScoreRepo {
	return &mockScoreRepo{scores: make(map[uuid.UUID]*credit.CreditScore)}
}

func (m *mockScoreRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*credit.CreditScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.scores[userID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockScoreRepo) Create(ctx context.Context, s *credit.CreditScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scores[s.UserID]; ok {
		return shared.ErrAlreadyExists
	}
	cp := *s
	m.scores[s.UserID] = &cp
	return nil
}

func (m *mockScoreRepo) SaveWithLock(ctx context.Context, s *credit.CreditScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.scores[s.UserID]
	if !ok {
		return shared.ErrNotFound
	}
	if existing.Version != s.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	cp := *s
	m.scores[s.UserID] = &cp
	return nil
}

type mockEventRepo struct {
	mu     sync.Mutex
	events []*credit.CreditEvent
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{}
}

func (m *mockEventRepo) Create(ctx context.Context, e *credit.CreditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.events = append(m.events, &cp)
	return nil
}

func (m *mockEventRepo) ListByUser(ctx context.Context, userID uuid.UUID, filter credit.CreditEventFilter) ([]credit.CreditEvent, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []credit.CreditEvent
	for i := len(m.events) - 1; i >= 0; i-- {
		e := m.events[i]
		if e.UserID != userID {
			continue
		}
		if filter.EventType != nil && e.EventType != *filter.EventType {
			continue
		}
		result = append(result, *e)
	}
	return result, int64(len(result)), nil
}

func (m *mockEventRepo) ListAllByUser(ctx context.Context, userID uuid.UUID) ([]credit.CreditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []credit.CreditEvent
	for _, e := range m.events {
		if e.UserID == userID {
			result = append(result, *e)
		}
	}
	return result, nil
}
