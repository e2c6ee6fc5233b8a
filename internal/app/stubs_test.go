package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/subtrack/subscription-service/internal/domain"
	"github.com/subtrack/subscription-service/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory SubscriptionStore. Writes made inside WithinTx
// become visible only when the callback succeeds.
type memStore struct {
	mu      sync.Mutex
	plans   map[int64]domain.Plan
	subs    map[int64]domain.Subscription
	nextID  int64
	clock   func() time.Time
	txCount int
	listErr error
}

func newMemStore(clock func() time.Time, plans ...domain.Plan) *memStore {
	m := &memStore{
		plans: map[int64]domain.Plan{},
		subs:  map[int64]domain.Subscription{},
		clock: clock,
	}
	for _, p := range plans {
		m.plans[p.ID] = p
	}
	return m
}

func (m *memStore) WithinTx(ctx context.Context, fn func(tx store.SubscriptionTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txCount++

	tx := &memTx{store: m, staged: map[int64]domain.Subscription{}}
	if err := fn(tx); err != nil {
		return err
	}
	for id, sub := range tx.staged {
		m.subs[id] = sub
	}
	m.nextID += tx.allocated
	return nil
}

func (m *memStore) ListSubscriptions(ctx context.Context, spec store.ListSpec, params store.ListParams) ([]domain.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}

	field := func(s domain.Subscription) time.Time {
		if spec.CursorField == store.CursorEndDate {
			return s.EndDate
		}
		return s.CreatedAt
	}

	var out []domain.Subscription
	for _, s := range m.subs {
		if s.UserID != params.UserID {
			continue
		}
		if spec.ActiveOnly && !s.IsActive {
			continue
		}
		if spec.FutureOnly && !s.EndDate.After(params.Now) {
			continue
		}
		if params.Cursor != nil && !field(s).Before(*params.Cursor) {
			continue
		}
		plan := m.plans[s.PlanID]
		s.Plan = plan.Summary()
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		fi, fj := field(out[i]), field(out[j])
		if !fi.Equal(fj) {
			return fi.After(fj)
		}
		return out[i].ID > out[j].ID
	})

	if len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (m *memStore) put(sub domain.Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[sub.ID] = sub
	if sub.ID > m.nextID {
		m.nextID = sub.ID
	}
}

func (m *memStore) get(id int64) (domain.Subscription, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[id]
	return sub, ok
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

type memTx struct {
	store     *memStore
	staged    map[int64]domain.Subscription
	allocated int64
	updates   int
}

func (t *memTx) GetPlan(ctx context.Context, planID int64) (*domain.Plan, error) {
	plan, ok := t.store.plans[planID]
	if !ok {
		return nil, store.ErrPlanNotFound
	}
	return &plan, nil
}

func (t *memTx) GetSubscriptionForUpdate(ctx context.Context, userID, subscriptionID int64) (*domain.Subscription, error) {
	sub, ok := t.store.subs[subscriptionID]
	if !ok || sub.UserID != userID {
		return nil, store.ErrSubscriptionNotFound
	}
	plan := t.store.plans[sub.PlanID]
	sub.Plan = plan.Summary()
	return &sub, nil
}

func (t *memTx) InsertSubscription(ctx context.Context, sub *domain.Subscription) error {
	t.allocated++
	sub.ID = t.store.nextID + t.allocated
	now := t.store.clock().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	t.staged[sub.ID] = *sub
	return nil
}

func (t *memTx) UpdateSubscription(ctx context.Context, sub *domain.Subscription) error {
	if _, ok := t.store.subs[sub.ID]; !ok {
		return store.ErrSubscriptionNotFound
	}
	t.updates++
	sub.UpdatedAt = t.store.clock().UTC()
	t.staged[sub.ID] = *sub
	return nil
}

type publishedEvent struct {
	exchange   string
	routingKey string
	event      domain.SubscriptionEvent
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	event, _ := body.(domain.SubscriptionEvent)
	p.events = append(p.events, publishedEvent{exchange: exchange, routingKey: routingKey, event: event})
	return nil
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.routingKey)
	}
	return out
}

// stubPlanRepo embeds the interface so tests only implement what they use.
type stubPlanRepo struct {
	PlanRepository
	plans      map[int64]domain.Plan
	nextID     int64
	listCalls  int
	getCalls   int
	createErr  error
	lastCreate domain.CreatePlanInput
}

func newStubPlanRepo(plans ...domain.Plan) *stubPlanRepo {
	r := &stubPlanRepo{plans: map[int64]domain.Plan{}}
	for _, p := range plans {
		r.plans[p.ID] = p
		if p.ID > r.nextID {
			r.nextID = p.ID
		}
	}
	return r
}

func (r *stubPlanRepo) CreatePlan(ctx context.Context, in domain.CreatePlanInput) (*domain.Plan, error) {
	r.lastCreate = in
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, p := range r.plans {
		if p.Name == in.Name {
			return nil, domain.NewValidationError("name", "a plan with this name already exists")
		}
	}
	r.nextID++
	plan := domain.Plan{
		ID:             r.nextID,
		Name:           in.Name,
		Description:    in.Description,
		Price:          in.Price,
		DurationInDays: in.DurationInDays,
		IsActive:       true,
	}
	r.plans[plan.ID] = plan
	return &plan, nil
}

func (r *stubPlanRepo) GetPlanByID(ctx context.Context, id int64) (*domain.Plan, error) {
	r.getCalls++
	plan, ok := r.plans[id]
	if !ok {
		return nil, store.ErrPlanNotFound
	}
	return &plan, nil
}

func (r *stubPlanRepo) ListActivePlans(ctx context.Context) ([]domain.Plan, error) {
	r.listCalls++
	var out []domain.Plan
	for id := int64(1); id <= r.nextID; id++ {
		if p, ok := r.plans[id]; ok && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubPlanRepo) SetPlanActive(ctx context.Context, id int64, active bool) (*domain.Plan, error) {
	plan, ok := r.plans[id]
	if !ok {
		return nil, store.ErrPlanNotFound
	}
	plan.IsActive = active
	r.plans[id] = plan
	return &plan, nil
}

// memPlanCache is a map-backed PlanCache that can be told to fail.
type memPlanCache struct {
	active      []domain.Plan
	hasActive   bool
	plans       map[int64]domain.Plan
	err         error
	invalidated [][]int64
}

func newMemPlanCache() *memPlanCache {
	return &memPlanCache{plans: map[int64]domain.Plan{}}
}

func (c *memPlanCache) GetActivePlans(ctx context.Context) ([]domain.Plan, bool, error) {
	if c.err != nil {
		return nil, false, c.err
	}
	return c.active, c.hasActive, nil
}

func (c *memPlanCache) SetActivePlans(ctx context.Context, plans []domain.Plan) error {
	if c.err != nil {
		return c.err
	}
	c.active, c.hasActive = plans, true
	return nil
}

func (c *memPlanCache) GetPlan(ctx context.Context, id int64) (*domain.Plan, bool, error) {
	if c.err != nil {
		return nil, false, c.err
	}
	p, ok := c.plans[id]
	if !ok {
		return nil, false, nil
	}
	return &p, true, nil
}

func (c *memPlanCache) SetPlan(ctx context.Context, plan *domain.Plan) error {
	if c.err != nil {
		return c.err
	}
	c.plans[plan.ID] = *plan
	return nil
}

func (c *memPlanCache) Invalidate(ctx context.Context, ids ...int64) error {
	c.invalidated = append(c.invalidated, ids)
	if c.err != nil {
		return c.err
	}
	c.active, c.hasActive = nil, false
	for _, id := range ids {
		delete(c.plans, id)
	}
	return nil
}

var errBoom = errors.New("boom")
