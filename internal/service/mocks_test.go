package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/pkordes/journeylog/internal/domain"
	"github.com/pkordes/journeylog/internal/repo"
	"github.com/pkordes/journeylog/internal/service"
)

// mockJourneyStore is a hand-written test double for repo.Store[domain.Journey].
// Each method is a function field; set only the ones your test needs.
// Unset fields fall through to an in-memory store, so a test can fail a single
// operation and keep real behaviour for the rest.
type mockJourneyStore struct {
	repo.Store[domain.Journey]

	insert func(ctx context.Context, j domain.Journey) error
	update func(ctx context.Context, id int64, fn func(domain.Journey) (domain.Journey, error)) (domain.Journey, error)
	nextID func(ctx context.Context) (int64, error)
	getAll func(ctx context.Context) ([]domain.Journey, error)
}

func newMockStore() *mockJourneyStore {
	return &mockJourneyStore{Store: repo.NewMemoryStore[domain.Journey]()}
}

func (m *mockJourneyStore) Insert(ctx context.Context, j domain.Journey) error {
	if m.insert != nil {
		return m.insert(ctx, j)
	}
	return m.Store.Insert(ctx, j)
}

func (m *mockJourneyStore) Update(ctx context.Context, id int64, fn func(domain.Journey) (domain.Journey, error)) (domain.Journey, error) {
	if m.update != nil {
		return m.update(ctx, id, fn)
	}
	return m.Store.Update(ctx, id, fn)
}

func (m *mockJourneyStore) NextID(ctx context.Context) (int64, error) {
	if m.nextID != nil {
		return m.nextID(ctx)
	}
	return m.Store.NextID(ctx)
}

func (m *mockJourneyStore) GetAll(ctx context.Context) ([]domain.Journey, error) {
	if m.getAll != nil {
		return m.getAll(ctx)
	}
	return m.Store.GetAll(ctx)
}

// compile-time check: mockJourneyStore must satisfy repo.Store.
var _ repo.Store[domain.Journey] = (*mockJourneyStore)(nil)

// fakeReminders records scheduling calls instead of starting goroutines.
type fakeReminders struct {
	mu      sync.Mutex
	active  map[int64]string
	retired []int64
}

func newFakeReminders() *fakeReminders {
	return &fakeReminders{active: make(map[int64]string)}
}

func (f *fakeReminders) Schedule(id int64, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active[id] = name
}

func (f *fakeReminders) Retire(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.active, id)
	f.retired = append(f.retired, id)
}

func (f *fakeReminders) has(id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.active[id]
	return ok
}

var _ service.Reminders = (*fakeReminders)(nil)

// clock is a manually advanced time source.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

// ---- helpers ---------------------------------------------------------------

type fixture struct {
	svc       *service.JourneyService
	store     *mockJourneyStore
	reminders *fakeReminders
	clock     *clock
}

func newFixture() fixture {
	f := fixture{store: newMockStore(), reminders: newFakeReminders(), clock: newClock()}
	f.svc = service.NewJourneyService(f.store, f.reminders, discardLog, service.WithClock(f.clock.Now))
	return f
}
