package repo

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/pkordes/journeylog/internal/domain"
)

// memoryStore is the in-process implementation of Store.
// Records are kept JSON encoded so callers never share memory with the store.
type memoryStore[T domain.Identifiable] struct {
	mu     sync.RWMutex
	bodies map[int64][]byte
	order  []int64
	lastID int64
}

// NewMemoryStore constructs an empty Store held in process memory.
// It is the default backend and the one used by service tests.
func NewMemoryStore[T domain.Identifiable]() Store[T] {
	return &memoryStore[T]{bodies: make(map[int64][]byte)}
}

func (s *memoryStore[T]) GetAll(_ context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		rec, err := decode[T](s.bodies[id])
		if err != nil {
			return nil, fmt.Errorf("repo.MemoryStore.GetAll: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *memoryStore[T]) Get(ctx context.Context, match func(T) bool) (T, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	rec, err := first(all, match)
	if err != nil {
		return rec, fmt.Errorf("repo.MemoryStore.Get: %w", err)
	}
	return rec, nil
}

func (s *memoryStore[T]) GetByID(_ context.Context, id int64) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bodies[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("repo.MemoryStore.GetByID: %w", domain.ErrNotFound)
	}
	return decode[T](b)
}

func (s *memoryStore[T]) Insert(ctx context.Context, rec T) error {
	if err := s.InsertAll(ctx, []T{rec}); err != nil {
		return fmt.Errorf("repo.MemoryStore.Insert: %w", err)
	}
	return nil
}

func (s *memoryStore[T]) InsertAll(_ context.Context, recs []T) error {
	if err := checkUnique(recs); err != nil {
		return err
	}
	bodies := make([][]byte, len(recs))
	for i, r := range recs {
		b, err := encode(r)
		if err != nil {
			return err
		}
		bodies[i] = b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range recs {
		if _, exists := s.bodies[r.Identifier()]; exists {
			return fmt.Errorf("%w: id %d already exists", domain.ErrConflict, r.Identifier())
		}
	}
	for i, r := range recs {
		s.bodies[r.Identifier()] = bodies[i]
		s.order = append(s.order, r.Identifier())
	}
	return nil
}

func (s *memoryStore[T]) Edit(_ context.Context, id int64, rec T) error {
	if err := checkID(id, rec); err != nil {
		return fmt.Errorf("repo.MemoryStore.Edit: %w", err)
	}
	b, err := encode(rec)
	if err != nil {
		return fmt.Errorf("repo.MemoryStore.Edit: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bodies[id]; !ok {
		return fmt.Errorf("repo.MemoryStore.Edit: %w", domain.ErrNotFound)
	}
	s.bodies[id] = b
	return nil
}

func (s *memoryStore[T]) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.bodies, id)
	s.order = slices.DeleteFunc(s.order, func(x int64) bool { return x == id })
	return nil
}

func (s *memoryStore[T]) Update(_ context.Context, id int64, fn func(T) (T, error)) (T, error) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bodies[id]
	if !ok {
		return zero, fmt.Errorf("repo.MemoryStore.Update: %w", domain.ErrNotFound)
	}
	cur, err := decode[T](b)
	if err != nil {
		return zero, fmt.Errorf("repo.MemoryStore.Update: %w", err)
	}
	next, err := fn(cur)
	if err != nil {
		return zero, err
	}
	if err := checkID(id, next); err != nil {
		return zero, fmt.Errorf("repo.MemoryStore.Update: %w", err)
	}
	nb, err := encode(next)
	if err != nil {
		return zero, fmt.Errorf("repo.MemoryStore.Update: %w", err)
	}
	s.bodies[id] = nb
	return next, nil
}

func (s *memoryStore[T]) NextID(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	return s.lastID, nil
}
