package repo

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pkordes/journeylog/internal/domain"
)

// StoreMetrics holds the Prometheus collectors shared by every instrumented store.
type StoreMetrics struct {
	ops     *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewStoreMetrics registers the store collectors with reg.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	f := promauto.With(reg)
	return &StoreMetrics{
		ops: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "journeylog",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Store operations by collection, operation and outcome.",
		}, []string{"collection", "op", "outcome"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "journeylog",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Store operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collection", "op"}),
	}
}

// Ops returns the operation counter for collection, op and outcome.
func (m *StoreMetrics) Ops(collection, op string, outcome domain.Outcome) prometheus.Counter {
	return m.ops.WithLabelValues(collection, op, outcome.String())
}

func (m *StoreMetrics) observe(collection, op string, start time.Time, err error) {
	m.ops.WithLabelValues(collection, op, domain.OutcomeOf(err).String()).Inc()
	m.latency.WithLabelValues(collection, op).Observe(time.Since(start).Seconds())
}

// instrumentedStore records an outcome and a latency sample for every call.
type instrumentedStore[T domain.Identifiable] struct {
	next       Store[T]
	collection string
	m          *StoreMetrics
}

// Instrument wraps s so that every operation is counted under collection.
// A nil m returns s unchanged.
func Instrument[T domain.Identifiable](s Store[T], collection string, m *StoreMetrics) Store[T] {
	if m == nil {
		return s
	}
	return &instrumentedStore[T]{next: s, collection: collection, m: m}
}

func (s *instrumentedStore[T]) done(op string) func(*error) {
	start := time.Now()
	return func(err *error) { s.m.observe(s.collection, op, start, *err) }
}

func (s *instrumentedStore[T]) GetAll(ctx context.Context) (_ []T, err error) {
	defer s.done("get_all")(&err)
	return s.next.GetAll(ctx)
}

func (s *instrumentedStore[T]) Get(ctx context.Context, match func(T) bool) (_ T, err error) {
	defer s.done("get")(&err)
	return s.next.Get(ctx, match)
}

func (s *instrumentedStore[T]) GetByID(ctx context.Context, id int64) (_ T, err error) {
	defer s.done("get_by_id")(&err)
	return s.next.GetByID(ctx, id)
}

func (s *instrumentedStore[T]) Insert(ctx context.Context, rec T) (err error) {
	defer s.done("insert")(&err)
	return s.next.Insert(ctx, rec)
}

func (s *instrumentedStore[T]) InsertAll(ctx context.Context, recs []T) (err error) {
	defer s.done("insert_all")(&err)
	return s.next.InsertAll(ctx, recs)
}

func (s *instrumentedStore[T]) Edit(ctx context.Context, id int64, rec T) (err error) {
	defer s.done("edit")(&err)
	return s.next.Edit(ctx, id, rec)
}

func (s *instrumentedStore[T]) Delete(ctx context.Context, id int64) (err error) {
	defer s.done("delete")(&err)
	return s.next.Delete(ctx, id)
}

func (s *instrumentedStore[T]) Update(ctx context.Context, id int64, fn func(T) (T, error)) (_ T, err error) {
	defer s.done("update")(&err)
	return s.next.Update(ctx, id, fn)
}

func (s *instrumentedStore[T]) NextID(ctx context.Context) (_ int64, err error) {
	defer s.done("next_id")(&err)
	return s.next.NextID(ctx)
}
