package usecases

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/echomag/echomag/internal/application/expiry/dto"
	"github.com/echomag/echomag/internal/domain/account"
	"github.com/echomag/echomag/internal/domain/expiry"
)

// mockAccountRepository is a testify mock for call-level assertions.
type mockAccountRepository struct {
	mock.Mock
}

func (m *mockAccountRepository) FindExpiredPaid(ctx context.Context, now time.Time) ([]*account.Account, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func (m *mockAccountRepository) FindPaid(ctx context.Context) ([]*account.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func (m *mockAccountRepository) GetByUID(ctx context.Context, uid int64) (*account.Account, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *mockAccountRepository) DowngradeToFree(ctx context.Context, uid int64, previous account.Plan, now time.Time) (bool, error) {
	args := m.Called(ctx, uid, previous, now)
	return args.Bool(0), args.Error(1)
}

type storedAccount struct {
	username   string
	plan       account.Plan
	planStart  *time.Time
	planExpiry *time.Time
}

// memoryAccountStore behaves like the real store: filtered scans and
// conditional downgrades over a map guarded by a mutex.
type memoryAccountStore struct {
	mu       sync.Mutex
	accounts map[int64]*storedAccount

	scanErr     error
	failWrites  map[int64]error
	onDowngrade func(ctx context.Context, uid int64) error
	writes      int
}

func newMemoryAccountStore() *memoryAccountStore {
	return &memoryAccountStore{
		accounts:   make(map[int64]*storedAccount),
		failWrites: make(map[int64]error),
	}
}

func (s *memoryAccountStore) put(uid int64, plan account.Plan, expiry *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var start *time.Time
	if plan.IsPaid() {
		st := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
		start = &st
	}
	s.accounts[uid] = &storedAccount{username: "reader", plan: plan, planStart: start, planExpiry: expiry}
}

func (s *memoryAccountStore) get(uid int64) storedAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.accounts[uid]
}

func (s *memoryAccountStore) toEntity(uid int64, r *storedAccount) *account.Account {
	acc, err := account.ReconstructAccount(uid, r.username, "", account.UserTypeUser, r.plan, r.planStart, r.planExpiry)
	if err != nil {
		panic(err)
	}
	return acc
}

func (s *memoryAccountStore) FindExpiredPaid(_ context.Context, now time.Time) ([]*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	var out []*account.Account
	for uid, r := range s.accounts {
		if r.plan.IsPaid() && r.planExpiry != nil && r.planExpiry.Before(now) {
			out = append(out, s.toEntity(uid, r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID() < out[j].UID() })
	return out, nil
}

func (s *memoryAccountStore) FindPaid(_ context.Context) ([]*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	var out []*account.Account
	for uid, r := range s.accounts {
		if r.plan.IsPaid() {
			out = append(out, s.toEntity(uid, r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID() < out[j].UID() })
	return out, nil
}

func (s *memoryAccountStore) GetByUID(_ context.Context, uid int64) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.accounts[uid]
	if !ok {
		return nil, nil
	}
	return s.toEntity(uid, r), nil
}

func (s *memoryAccountStore) DowngradeToFree(ctx context.Context, uid int64, previous account.Plan, now time.Time) (bool, error) {
	if s.onDowngrade != nil {
		if err := s.onDowngrade(ctx, uid); err != nil {
			return false, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	if err := s.failWrites[uid]; err != nil {
		return false, err
	}
	r, ok := s.accounts[uid]
	if !ok || r.plan != previous || r.planExpiry == nil || !r.planExpiry.Before(now) {
		return false, nil
	}
	r.plan = account.PlanFree
	r.planStart = nil
	r.planExpiry = nil
	return true, nil
}

type memoryRunRepository struct {
	mu   sync.Mutex
	runs []*expiry.Run
	err  error
}

func (r *memoryRunRepository) Create(_ context.Context, run *expiry.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.runs = append(r.runs, run)
	return nil
}

func (r *memoryRunRepository) ListRecent(_ context.Context, limit int) ([]*expiry.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []*expiry.Run
	for i := len(r.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.runs[i])
	}
	return out, nil
}

func (r *memoryRunRepository) GetLatest(ctx context.Context) (*expiry.Run, error) {
	runs, err := r.ListRecent(ctx, 1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return runs[0], nil
}

type memoryStatsCache struct {
	mu          sync.Mutex
	entries     map[int]*dto.ExpiryStatisticsDTO
	invalidated int
	getErr      error
}

func newMemoryStatsCache() *memoryStatsCache {
	return &memoryStatsCache{entries: make(map[int]*dto.ExpiryStatisticsDTO)}
}

func (c *memoryStatsCache) Get(_ context.Context, horizon int) (*dto.ExpiryStatisticsDTO, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	s, ok := c.entries[horizon]
	return s, ok, nil
}

func (c *memoryStatsCache) Set(_ context.Context, horizon int, stats *dto.ExpiryStatisticsDTO) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[horizon] = stats
	return nil
}

func (c *memoryStatsCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int]*dto.ExpiryStatisticsDTO)
	c.invalidated++
	return nil
}

var errWriteRejected = errors.New("write rejected by store")

func timePtr(t time.Time) *time.Time { return &t }

func intPtr(v int) *int { return &v }

func newTestAccount(uid int64, plan account.Plan, expiry *time.Time) *account.Account {
	acc, err := account.ReconstructAccount(uid, "reader", "reader@example.com", account.UserTypeUser, plan, nil, expiry)
	if err != nil {
		panic(err)
	}
	return acc
}
