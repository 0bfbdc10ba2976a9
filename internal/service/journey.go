// Package service contains the business logic of the journey log.
// Services validate inputs, enforce business rules, orchestrate store calls
// and publish the resulting state. No storage details live here; services
// depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/pkordes/journeylog/internal/domain"
	"github.com/pkordes/journeylog/internal/repo"
	"github.com/pkordes/journeylog/internal/state"
)

// Reminders is the reminder scheduler as seen by the journey service.
type Reminders interface {
	Schedule(journeyID int64, name string)
	Retire(journeyID int64)
}

// JourneyState is the observable view of the journey log. Every command
// republishes the parts it changed once the store has confirmed the write.
type JourneyState struct {
	Journeys                *state.Observable[[]domain.Journey]
	SelectedJourney         *state.Observable[*domain.Journey]
	SelectedPointOfInterest *state.Observable[*domain.PointOfInterest]
	PointsOfInterest        *state.Observable[[]domain.PointOfInterest]
}

func newJourneyState() *JourneyState {
	return &JourneyState{
		Journeys:                state.New([]domain.Journey{}),
		SelectedJourney:         state.New[*domain.Journey](nil),
		SelectedPointOfInterest: state.New[*domain.PointOfInterest](nil),
		PointsOfInterest:        state.New([]domain.PointOfInterest{}),
	}
}

// JourneyService implements journey and point of interest operations.
type JourneyService struct {
	store     repo.Store[domain.Journey]
	reminders Reminders
	log       *slog.Logger
	now       func() time.Time
	state     *JourneyState

	// publishMu is held from the store read to the last Set of a publication,
	// so a later publication always reflects a read made after earlier writes.
	publishMu sync.Mutex
}

// Option configures a JourneyService.
type Option func(*JourneyService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *JourneyService) { s.now = now }
}

// NewJourneyService constructs a JourneyService backed by the provided store.
func NewJourneyService(store repo.Store[domain.Journey], reminders Reminders, log *slog.Logger, opts ...Option) *JourneyService {
	s := &JourneyService{
		store:     store,
		reminders: reminders,
		log:       log,
		now:       time.Now,
		state:     newJourneyState(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// State returns the observables published by the service.
func (s *JourneyService) State() *JourneyState { return s.state }

// CreateJourney validates name and stores a new ongoing journey.
func (s *JourneyService) CreateJourney(ctx context.Context, name string) (domain.Journey, error) {
	name, err := validateName(name)
	if err != nil {
		return domain.Journey{}, err
	}
	id, err := s.store.NextID(ctx)
	if err != nil {
		return domain.Journey{}, wrap("service.JourneyService.CreateJourney", err)
	}
	j := domain.Journey{
		ID:               id,
		Name:             name,
		Status:           domain.StatusOngoing,
		PointsOfInterest: []domain.PointOfInterest{},
		CreatedAt:        s.now().UTC(),
	}
	if err := s.store.Insert(ctx, j); err != nil {
		return domain.Journey{}, wrap("service.JourneyService.CreateJourney", err)
	}
	s.log.InfoContext(ctx, "journey created", "journey_id", id)

	s.refreshJourneys(ctx)
	s.reminders.Schedule(id, name)
	return j, nil
}

// EditJourneyName renames a journey.
func (s *JourneyService) EditJourneyName(ctx context.Context, id int64, name string) (domain.Journey, error) {
	name, err := validateName(name)
	if err != nil {
		return domain.Journey{}, err
	}
	j, err := s.store.Update(ctx, id, func(j domain.Journey) (domain.Journey, error) {
		j.Name = name
		return j, nil
	})
	if err != nil {
		return domain.Journey{}, wrap("service.JourneyService.EditJourneyName", err)
	}
	s.publishJourney(ctx, j)
	if j.Status == domain.StatusOngoing {
		s.reminders.Schedule(id, name)
	}
	return j, nil
}

// DeleteJourney removes a journey. Deleting an unknown id succeeds.
func (s *JourneyService) DeleteJourney(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return wrap("service.JourneyService.DeleteJourney", err)
	}
	s.log.InfoContext(ctx, "journey deleted", "journey_id", id)

	s.reminders.Retire(id)
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	s.refreshJourneysLocked(ctx)
	if sel := s.state.SelectedJourney.Get(); sel != nil && sel.ID == id {
		s.state.SelectedJourney.Set(nil)
		s.state.SelectedPointOfInterest.Set(nil)
		s.state.PointsOfInterest.Set([]domain.PointOfInterest{})
	}
	return nil
}

// FinishJourney marks a journey completed now.
func (s *JourneyService) FinishJourney(ctx context.Context, id int64) (domain.Journey, error) {
	j, err := s.store.Update(ctx, id, func(j domain.Journey) (domain.Journey, error) {
		if j.Status == domain.StatusImported {
			return j, fmt.Errorf("%w: imported journeys cannot be finished", domain.ErrValidation)
		}
		finished := s.now().UTC()
		j.Status = domain.StatusCompleted
		j.FinishedAt = &finished
		return j, nil
	})
	if err != nil {
		return domain.Journey{}, wrap("service.JourneyService.FinishJourney", err)
	}
	s.reminders.Retire(id)
	s.publishJourney(ctx, j)
	return j, nil
}

// RestartJourney puts a completed journey back to ongoing.
func (s *JourneyService) RestartJourney(ctx context.Context, id int64) (domain.Journey, error) {
	j, err := s.store.Update(ctx, id, func(j domain.Journey) (domain.Journey, error) {
		if j.Status == domain.StatusImported {
			return j, fmt.Errorf("%w: imported journeys cannot be restarted", domain.ErrValidation)
		}
		j.Status = domain.StatusOngoing
		j.FinishedAt = nil
		return j, nil
	})
	if err != nil {
		return domain.Journey{}, wrap("service.JourneyService.RestartJourney", err)
	}
	s.reminders.Schedule(id, j.Name)
	s.publishJourney(ctx, j)
	return j, nil
}

// AddPointOfInterest appends poi to a journey. The id and creation time are
// assigned here; whatever the caller put in them is ignored.
func (s *JourneyService) AddPointOfInterest(ctx context.Context, journeyID int64, poi domain.PointOfInterest) (domain.PointOfInterest, error) {
	var added domain.PointOfInterest
	j, err := s.store.Update(ctx, journeyID, func(j domain.Journey) (domain.Journey, error) {
		added = poi
		added.ID = j.NextPointOfInterestID()
		added.CreatedAt = s.now().UTC()
		if added.Photos == nil {
			added.Photos = []domain.PhotoRef{}
		}
		j.PointsOfInterest = append(j.PointsOfInterest, added)
		return j, nil
	})
	if err != nil {
		return domain.PointOfInterest{}, wrap("service.JourneyService.AddPointOfInterest", err)
	}
	s.publishJourney(ctx, j)
	return added, nil
}

// EditPointOfInterest replaces the point of interest poiID of a journey.
// The id is kept and the creation time is reset to now. An unknown poiID
// leaves the journey untouched and returns domain.ErrNotFound.
func (s *JourneyService) EditPointOfInterest(ctx context.Context, journeyID, poiID int64, poi domain.PointOfInterest) (domain.PointOfInterest, error) {
	var edited domain.PointOfInterest
	j, err := s.store.Update(ctx, journeyID, func(j domain.Journey) (domain.Journey, error) {
		i := slices.IndexFunc(j.PointsOfInterest, func(p domain.PointOfInterest) bool { return p.ID == poiID })
		if i < 0 {
			return j, fmt.Errorf("%w: point of interest %d in journey %d", domain.ErrNotFound, poiID, journeyID)
		}
		edited = poi
		edited.ID = poiID
		edited.CreatedAt = s.now().UTC()
		if edited.Photos == nil {
			edited.Photos = []domain.PhotoRef{}
		}
		j.PointsOfInterest[i] = edited
		return j, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.WarnContext(ctx, "edit of unknown point of interest", "journey_id", journeyID, "poi_id", poiID)
		}
		return domain.PointOfInterest{}, wrap("service.JourneyService.EditPointOfInterest", err)
	}
	s.publish(ctx, j, func(latest domain.Journey) {
		if p, ok := latest.PointOfInterestByID(poiID); ok {
			s.state.SelectedPointOfInterest.Set(&p)
		}
	})
	return edited, nil
}

// DeletePointOfInterest removes every point of interest with poiID from a
// journey. The others keep their relative order.
func (s *JourneyService) DeletePointOfInterest(ctx context.Context, journeyID, poiID int64) error {
	j, err := s.store.Update(ctx, journeyID, func(j domain.Journey) (domain.Journey, error) {
		j.PointsOfInterest = slices.DeleteFunc(j.PointsOfInterest, func(p domain.PointOfInterest) bool { return p.ID == poiID })
		return j, nil
	})
	if err != nil {
		return wrap("service.JourneyService.DeletePointOfInterest", err)
	}
	s.publish(ctx, j, func(domain.Journey) {
		if sel := s.state.SelectedPointOfInterest.Get(); sel != nil && sel.ID == poiID {
			s.state.SelectedPointOfInterest.Set(nil)
		}
	})
	return nil
}

// ImportJourney stores j as a new imported journey with a fresh id. Imports
// never merge with an existing journey of the same name.
func (s *JourneyService) ImportJourney(ctx context.Context, j domain.Journey) (domain.Journey, error) {
	id, err := s.store.NextID(ctx)
	if err != nil {
		return domain.Journey{}, wrap("service.JourneyService.ImportJourney", err)
	}
	j.ID = id
	j.Status = domain.StatusImported
	if j.PointsOfInterest == nil {
		j.PointsOfInterest = []domain.PointOfInterest{}
	}
	if err := s.store.Insert(ctx, j); err != nil {
		return domain.Journey{}, wrap("service.JourneyService.ImportJourney", err)
	}
	s.log.InfoContext(ctx, "journey imported", "journey_id", id, "points", len(j.PointsOfInterest))

	s.refreshJourneys(ctx)
	return j, nil
}

// GetJourneys returns every journey in insertion order and publishes the list.
func (s *JourneyService) GetJourneys(ctx context.Context) ([]domain.Journey, error) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, wrap("service.JourneyService.GetJourneys", err)
	}
	s.state.Journeys.Set(all)
	return all, nil
}

// GetJourneyByID returns a journey and publishes it as the selection.
// An unknown id publishes no selection.
func (s *JourneyService) GetJourneyByID(ctx context.Context, id int64) (domain.Journey, error) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	j, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.state.SelectedJourney.Set(nil)
		}
		return domain.Journey{}, wrap("service.JourneyService.GetJourneyByID", err)
	}
	s.state.SelectedJourney.Set(&j)
	return j, nil
}

// GetPointOfInterestByID returns one point of interest of a journey and
// publishes it as the selection. An unknown journey or poi publishes no selection.
func (s *JourneyService) GetPointOfInterestByID(ctx context.Context, poiID, journeyID int64) (domain.PointOfInterest, error) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	j, err := s.store.GetByID(ctx, journeyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.state.SelectedPointOfInterest.Set(nil)
		}
		return domain.PointOfInterest{}, wrap("service.JourneyService.GetPointOfInterestByID", err)
	}
	p, ok := j.PointOfInterestByID(poiID)
	if !ok {
		s.state.SelectedPointOfInterest.Set(nil)
		return domain.PointOfInterest{}, fmt.Errorf("service.JourneyService.GetPointOfInterestByID: %w: point of interest %d", domain.ErrNotFound, poiID)
	}
	s.state.SelectedPointOfInterest.Set(&p)
	return p, nil
}

// GetAllPointsOfInterestByJourneyID returns the points of interest of a
// journey in insertion order and publishes them. An unknown journey publishes
// an empty list and returns domain.ErrNotFound with an empty slice.
func (s *JourneyService) GetAllPointsOfInterestByJourneyID(ctx context.Context, journeyID int64) ([]domain.PointOfInterest, error) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	j, err := s.store.GetByID(ctx, journeyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.state.PointsOfInterest.Set([]domain.PointOfInterest{})
		}
		return []domain.PointOfInterest{}, wrap("service.JourneyService.GetAllPointsOfInterestByJourneyID", err)
	}
	pois := nonNil(j.PointsOfInterest)
	s.state.PointsOfInterest.Set(pois)
	return pois, nil
}

// Summarize returns the statistics of a journey measured with mode.
func (s *JourneyService) Summarize(ctx context.Context, id int64, mode domain.DurationMode) (domain.Summary, error) {
	j, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Summary{}, wrap("service.JourneyService.Summarize", err)
	}
	return domain.Summarize(j, mode, s.now()), nil
}

// NearbyPointsOfInterest returns the points of interest of a journey within
// radiusMeters of loc, oldest first. A non-positive radius uses
// domain.DefaultNearbyRadiusMeters.
func (s *JourneyService) NearbyPointsOfInterest(ctx context.Context, journeyID int64, loc domain.Location, radiusMeters float64) ([]domain.PointOfInterest, error) {
	j, err := s.store.GetByID(ctx, journeyID)
	if err != nil {
		return nil, wrap("service.JourneyService.NearbyPointsOfInterest", err)
	}
	return domain.Nearby(j.Chronological(), loc, radiusMeters), nil
}

// ResumeReminders schedules a reminder for every ongoing journey and returns
// how many were scheduled. It is called once at startup.
func (s *JourneyService) ResumeReminders(ctx context.Context) (int, error) {
	all, err := s.GetJourneys(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, j := range all {
		if j.Status == domain.StatusOngoing {
			s.reminders.Schedule(j.ID, j.Name)
			n++
		}
	}
	return n, nil
}

// publishJourney publishes the journey written as j as the selected journey
// together with its points of interest, and refreshes the journey list.
func (s *JourneyService) publishJourney(ctx context.Context, j domain.Journey) {
	s.publish(ctx, j, nil)
}

// publish re-reads the store and publishes the stored version of j, which may
// already include later writes. A journey deleted in the meantime clears the
// selection. then, if set, runs under the same lock with the published journey.
// When the read fails, j itself is published and the list is kept.
func (s *JourneyService) publish(ctx context.Context, j domain.Journey, then func(latest domain.Journey)) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	latest, found := j, true
	if all, ok := s.refreshJourneysLocked(ctx); ok {
		i := slices.IndexFunc(all, func(x domain.Journey) bool { return x.ID == j.ID })
		if found = i >= 0; found {
			latest = all[i]
		}
	}
	if !found {
		s.state.SelectedJourney.Set(nil)
		s.state.PointsOfInterest.Set([]domain.PointOfInterest{})
		return
	}
	s.state.SelectedJourney.Set(&latest)
	s.state.PointsOfInterest.Set(nonNil(latest.PointsOfInterest))
	if then != nil {
		then(latest)
	}
}

// refreshJourneys republishes the journey list.
func (s *JourneyService) refreshJourneys(ctx context.Context) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	s.refreshJourneysLocked(ctx)
}

// refreshJourneysLocked reads and publishes the journey list; publishMu must
// be held. A failed read keeps the last published list; the write that
// triggered it has already succeeded.
func (s *JourneyService) refreshJourneysLocked(ctx context.Context) ([]domain.Journey, bool) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "refresh journey list", "error", err)
		return nil, false
	}
	s.state.Journeys.Set(all)
	return all, true
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return name, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// wrap prefixes err with op. Errors that match none of the domain sentinels
// are storage failures and additionally wrap domain.ErrWriteFailed.
func wrap(op string, err error) error {
	if domain.OutcomeOf(err) == domain.OutcomeWriteFailed && !errors.Is(err, domain.ErrWriteFailed) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrWriteFailed, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
