package domain

import (
	"encoding/json"
	"time"
)

// unnamedPointOfInterest is shown in place of an empty description.
const unnamedPointOfInterest = "unnamed"

// Location is a WGS84 coordinate.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PointOfInterest is a single geotagged, timestamped entry within a journey.
// It is always owned by exactly one Journey and never referenced elsewhere.
// Photos is nil or empty when no photo was attached.
type PointOfInterest struct {
	ID          int64
	Photos      []PhotoRef
	Description string
	CreatedAt   time.Time
	Location    Location
}

// Identifier implements Identifiable.
func (p PointOfInterest) Identifier() int64 { return p.ID }

// DisplayName returns the description, or "unnamed" when it is empty.
func (p PointOfInterest) DisplayName() string {
	if p.Description == "" {
		return unnamedPointOfInterest
	}
	return p.Description
}

type pointOfInterestJSON struct {
	ID          int64      `json:"id"`
	Photos      []PhotoRef `json:"photos"`
	Description string     `json:"description"`
	CreatedAt   int64      `json:"createdAt"`
	Location    Location   `json:"location"`
}

func (p PointOfInterest) MarshalJSON() ([]byte, error) {
	return json.Marshal(pointOfInterestJSON{
		ID:          p.ID,
		Photos:      p.Photos,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.UnixMilli(),
		Location:    p.Location,
	})
}

func (p *PointOfInterest) UnmarshalJSON(data []byte) error {
	var w pointOfInterestJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = PointOfInterest{
		ID:          w.ID,
		Photos:      w.Photos,
		Description: w.Description,
		CreatedAt:   time.UnixMilli(w.CreatedAt).UTC(),
		Location:    w.Location,
	}
	return nil
}
