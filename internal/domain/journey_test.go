package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/journeylog/internal/domain"
)

var base = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func poiAt(id int64, offset time.Duration) domain.PointOfInterest {
	return domain.PointOfInterest{
		ID:          id,
		Description: "poi",
		CreatedAt:   base.Add(offset),
		Location:    domain.Location{Latitude: -43.52, Longitude: 172.58},
	}
}

// ---- Duration --------------------------------------------------------------

func TestJourney_Duration_PointsEmpty(t *testing.T) {
	j := domain.Journey{Status: domain.StatusOngoing, CreatedAt: base}

	assert.Equal(t, time.Duration(0), j.Duration(domain.DurationBasedOnPoints, base.Add(time.Hour)))
}

// TestJourney_Duration_PointsIgnoresInsertionOrder verifies that the points
// based duration is newest minus oldest no matter how the points were added.
func TestJourney_Duration_PointsIgnoresInsertionOrder(t *testing.T) {
	j := domain.Journey{
		CreatedAt: base,
		PointsOfInterest: []domain.PointOfInterest{
			poiAt(1, 3*time.Hour),
			poiAt(2, 30*time.Minute),
			poiAt(3, 5*time.Hour),
			poiAt(4, time.Hour),
		},
	}

	got := j.Duration(domain.DurationBasedOnPoints, base.Add(100*time.Hour))

	assert.Equal(t, 5*time.Hour-30*time.Minute, got)
}

func TestJourney_Duration_JourneyCompleted(t *testing.T) {
	finished := base.Add(49 * time.Hour)
	j := domain.Journey{Status: domain.StatusCompleted, CreatedAt: base, FinishedAt: &finished}

	// now is irrelevant for a completed journey.
	assert.Equal(t, 49*time.Hour, j.Duration(domain.DurationBasedOnJourney, base.Add(1000*time.Hour)))
	assert.Equal(t, 49*time.Hour, j.Duration(domain.DurationBasedOnJourney, base))
}

func TestJourney_Duration_JourneyOngoingGrowsWithClock(t *testing.T) {
	j := domain.Journey{Status: domain.StatusOngoing, CreatedAt: base}

	early := j.Duration(domain.DurationBasedOnJourney, base.Add(time.Minute))
	late := j.Duration(domain.DurationBasedOnJourney, base.Add(time.Hour))

	assert.Equal(t, time.Minute, early)
	assert.Greater(t, late, early)
}

// ---- Chronological / ids ---------------------------------------------------

func TestJourney_Chronological_DoesNotMutate(t *testing.T) {
	j := domain.Journey{PointsOfInterest: []domain.PointOfInterest{
		poiAt(1, 2*time.Hour),
		poiAt(2, time.Hour),
	}}

	got := j.Chronological()

	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)
	assert.Equal(t, int64(1), j.PointsOfInterest[0].ID, "insertion order must be preserved")
}

func TestJourney_NextPointOfInterestID(t *testing.T) {
	assert.Equal(t, int64(1), domain.Journey{}.NextPointOfInterestID())

	j := domain.Journey{PointsOfInterest: []domain.PointOfInterest{poiAt(4, 0), poiAt(2, 0)}}
	assert.Equal(t, int64(5), j.NextPointOfInterestID())
}

func TestJourney_PointOfInterestByID(t *testing.T) {
	j := domain.Journey{PointsOfInterest: []domain.PointOfInterest{poiAt(1, 0), poiAt(2, 0)}}

	got, ok := j.PointOfInterestByID(2)
	require.True(t, ok)
	assert.Equal(t, int64(2), got.ID)

	_, ok = j.PointOfInterestByID(9)
	assert.False(t, ok)
}

// ---- JSON ------------------------------------------------------------------

// TestJourney_JSON_Layout verifies the persisted wire format: camelCase keys,
// millisecond timestamps and photo locators as plain strings.
func TestJourney_JSON_Layout(t *testing.T) {
	finished := base.Add(time.Hour)
	p := poiAt(1, time.Minute)
	p.Photos = []domain.PhotoRef{domain.NewPhotoRef("file:///photos/a.jpg")}
	j := domain.Journey{
		ID:               7,
		Name:             "Trip",
		PointsOfInterest: []domain.PointOfInterest{p},
		Status:           domain.StatusCompleted,
		CreatedAt:        base,
		FinishedAt:       &finished,
	}

	b, err := json.Marshal(j)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.EqualValues(t, 7, raw["id"])
	assert.Equal(t, "COMPLETED", raw["status"])
	assert.EqualValues(t, base.UnixMilli(), raw["createdAt"])
	assert.EqualValues(t, finished.UnixMilli(), raw["finishedAt"])

	pois := raw["pointsOfInterest"].([]any)
	require.Len(t, pois, 1)
	first := pois[0].(map[string]any)
	assert.Equal(t, []any{"file:///photos/a.jpg"}, first["photos"])
	assert.Equal(t, map[string]any{"latitude": -43.52, "longitude": 172.58}, first["location"])

	var back domain.Journey
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, j.Name, back.Name)
	assert.True(t, back.CreatedAt.Equal(j.CreatedAt))
	require.NotNil(t, back.FinishedAt)
	assert.True(t, back.FinishedAt.Equal(finished))
	assert.Equal(t, "file:///photos/a.jpg", back.PointsOfInterest[0].Photos[0].String())
}

func TestJourney_JSON_OngoingOmitsFinishedAt(t *testing.T) {
	b, err := json.Marshal(domain.Journey{ID: 1, Name: "x", Status: domain.StatusOngoing, CreatedAt: base})
	require.NoError(t, err)

	assert.NotContains(t, string(b), "finishedAt")
	assert.Contains(t, string(b), `"pointsOfInterest":[]`)
}

func TestJourney_JSON_UnknownStatus(t *testing.T) {
	var j domain.Journey
	err := json.Unmarshal([]byte(`{"id":1,"name":"x","status":"PAUSED","createdAt":0}`), &j)

	assert.Error(t, err)
}

func TestPointOfInterest_DisplayName(t *testing.T) {
	assert.Equal(t, "unnamed", domain.PointOfInterest{}.DisplayName())
	assert.Equal(t, "Start", domain.PointOfInterest{Description: "Start"}.DisplayName())
}
