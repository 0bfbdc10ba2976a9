// Package reminder runs the periodic "another day on your journey" reminders
// for ongoing journeys. There is one goroutine per journey; scheduling the
// same journey again replaces its reminder.
package reminder

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultInterval is the time between two reminders for the same journey.
const DefaultInterval = 24 * time.Hour

// Notifier delivers one reminder.
type Notifier interface {
	Notify(ctx context.Context, journeyID int64, name string)
}

// LogNotifier writes reminders to the log and counts them.
type LogNotifier struct {
	log       *slog.Logger
	delivered prometheus.Counter
}

// NewLogNotifier returns a LogNotifier whose delivery counter is registered with reg.
func NewLogNotifier(log *slog.Logger, reg prometheus.Registerer) *LogNotifier {
	return &LogNotifier{
		log: log,
		delivered: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "journeylog",
			Name:      "reminders_delivered_total",
			Help:      "Journey reminders delivered.",
		}),
	}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, journeyID int64, name string) {
	n.log.InfoContext(ctx, "Another day on your journey "+name, "journey_id", journeyID)
	n.delivered.Inc()
}

type job struct {
	runID  uuid.UUID
	cancel context.CancelFunc
	done   chan struct{}
}

// Scheduler owns the reminder goroutines. It is safe for concurrent use.
type Scheduler struct {
	interval time.Duration
	notifier Notifier
	log      *slog.Logger

	mu     sync.Mutex
	jobs   map[int64]job
	closed bool
}

// NewScheduler returns a Scheduler that calls notifier every interval for each
// scheduled journey. A non-positive interval uses DefaultInterval.
func NewScheduler(interval time.Duration, notifier Notifier, log *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		interval: interval,
		notifier: notifier,
		log:      log,
		jobs:     make(map[int64]job),
	}
}

// Schedule starts the reminder for journeyID, replacing any existing one.
// It is a no-op after Close.
func (s *Scheduler) Schedule(journeyID int64, name string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	prev, had := s.jobs[journeyID]

	ctx, cancel := context.WithCancel(context.Background())
	j := job{runID: uuid.New(), cancel: cancel, done: make(chan struct{})}
	s.jobs[journeyID] = j
	s.mu.Unlock()

	if had {
		prev.cancel()
		<-prev.done
	}
	s.log.Debug("reminder scheduled", "journey_id", journeyID, "run_id", j.runID, "interval", s.interval)
	go s.run(ctx, j, journeyID, name)
}

// Retire stops the reminder for journeyID, if any, and waits for it to exit.
func (s *Scheduler) Retire(journeyID int64) {
	s.mu.Lock()
	j, ok := s.jobs[journeyID]
	delete(s.jobs, journeyID)
	s.mu.Unlock()

	if !ok {
		return
	}
	j.cancel()
	<-j.done
	s.log.Debug("reminder retired", "journey_id", journeyID, "run_id", j.runID)
}

// Active returns the journey ids that currently have a reminder, ascending.
func (s *Scheduler) Active() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Close stops every reminder and waits for the goroutines to exit.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	jobs := s.jobs
	s.jobs = make(map[int64]job)
	s.mu.Unlock()

	for _, j := range jobs {
		j.cancel()
	}
	for _, j := range jobs {
		<-j.done
	}
}

func (s *Scheduler) run(ctx context.Context, j job, journeyID int64, name string) {
	defer close(j.done)

	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.notifier.Notify(ctx, journeyID, name)
		}
	}
}
