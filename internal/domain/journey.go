// Package domain contains the core data types for the journey log.
// Apart from the standard library it has no dependencies and is imported by
// every other internal package (repo, service, bundle, handler).
package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// Identifiable is the capability every record kept by a repo.Store must
// expose: an integer identifier used as the record's primary key.
type Identifiable interface {
	Identifier() int64
}

// JourneyStatus describes where a journey is in its lifecycle.
type JourneyStatus string

const (
	StatusOngoing   JourneyStatus = "ONGOING"
	StatusCompleted JourneyStatus = "COMPLETED"
	StatusImported  JourneyStatus = "IMPORTED"
)

// Valid reports whether s is one of the known statuses.
func (s JourneyStatus) Valid() bool {
	switch s {
	case StatusOngoing, StatusCompleted, StatusImported:
		return true
	}
	return false
}

// Journey is the top-level aggregate: a named, time-bounded collection of
// points of interest. PointsOfInterest keeps insertion order.
type Journey struct {
	ID               int64
	Name             string
	PointsOfInterest []PointOfInterest
	Status           JourneyStatus
	CreatedAt        time.Time
	FinishedAt       *time.Time // nil unless the journey was finished
}

// Identifier implements Identifiable.
func (j Journey) Identifier() int64 { return j.ID }

// Chronological returns the journey's points of interest sorted from oldest
// to newest. Points created at the same instant keep their insertion order.
// The journey itself is not modified.
func (j Journey) Chronological() []PointOfInterest {
	out := slices.Clone(j.PointsOfInterest)
	slices.SortStableFunc(out, func(a, b PointOfInterest) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

// Duration returns how long the journey lasted under the given mode.
//
// BASED_ON_POINTS measures from the oldest to the newest point of interest and
// is zero for a journey without points. BASED_ON_JOURNEY measures from creation
// to FinishedAt for a completed journey, and to now otherwise.
func (j Journey) Duration(mode DurationMode, now time.Time) time.Duration {
	if mode == DurationBasedOnPoints {
		if len(j.PointsOfInterest) == 0 {
			return 0
		}
		pois := j.Chronological()
		return pois[len(pois)-1].CreatedAt.Sub(pois[0].CreatedAt)
	}
	if j.Status == StatusCompleted && j.FinishedAt != nil {
		return j.FinishedAt.Sub(j.CreatedAt)
	}
	return now.Sub(j.CreatedAt)
}

// NextPointOfInterestID returns one more than the largest point of interest id
// in the journey, or 1 for a journey without points.
func (j Journey) NextPointOfInterestID() int64 {
	var maxID int64
	for _, p := range j.PointsOfInterest {
		maxID = max(maxID, p.ID)
	}
	return maxID + 1
}

// PointOfInterestByID returns the first point of interest with the given id.
func (j Journey) PointOfInterestByID(id int64) (PointOfInterest, bool) {
	i := slices.IndexFunc(j.PointsOfInterest, func(p PointOfInterest) bool { return p.ID == id })
	if i < 0 {
		return PointOfInterest{}, false
	}
	return j.PointsOfInterest[i], true
}

// journeyJSON is the persisted and exported wire layout of a Journey.
// Timestamps are milliseconds since the Unix epoch.
type journeyJSON struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	PointsOfInterest []PointOfInterest `json:"pointsOfInterest"`
	Status           JourneyStatus     `json:"status"`
	CreatedAt        int64             `json:"createdAt"`
	FinishedAt       *int64            `json:"finishedAt,omitempty"`
}

func (j Journey) MarshalJSON() ([]byte, error) {
	w := journeyJSON{
		ID:               j.ID,
		Name:             j.Name,
		PointsOfInterest: j.PointsOfInterest,
		Status:           j.Status,
		CreatedAt:        j.CreatedAt.UnixMilli(),
	}
	if w.PointsOfInterest == nil {
		w.PointsOfInterest = []PointOfInterest{}
	}
	if j.FinishedAt != nil {
		ms := j.FinishedAt.UnixMilli()
		w.FinishedAt = &ms
	}
	return json.Marshal(w)
}

func (j *Journey) UnmarshalJSON(data []byte) error {
	var w journeyJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Status != "" && !w.Status.Valid() {
		return fmt.Errorf("domain.Journey: unknown status %q", w.Status)
	}
	*j = Journey{
		ID:               w.ID,
		Name:             w.Name,
		PointsOfInterest: w.PointsOfInterest,
		Status:           w.Status,
		CreatedAt:        time.UnixMilli(w.CreatedAt).UTC(),
	}
	if w.FinishedAt != nil {
		t := time.UnixMilli(*w.FinishedAt).UTC()
		j.FinishedAt = &t
	}
	return nil
}
