package domain

import "time"

// Summary is the statistics card shown for a journey.
// DistanceMeters follows the points of interest in chronological order.
type Summary struct {
	JourneyID      int64
	Name           string
	Status         JourneyStatus
	Mode           DurationMode
	PointCount     int
	PhotoCount     int
	Duration       time.Duration
	Days           int64
	DistanceMeters float64
	FirstPointAt   *time.Time // nil when the journey has no points
	LastPointAt    *time.Time
}

// Summarize computes the Summary of j at the given instant.
func Summarize(j Journey, mode DurationMode, now time.Time) Summary {
	s := Summary{
		JourneyID:  j.ID,
		Name:       j.Name,
		Status:     j.Status,
		Mode:       mode,
		PointCount: len(j.PointsOfInterest),
		Duration:   j.Duration(mode, now),
	}
	s.Days = int64(s.Duration / (24 * time.Hour))

	pois := j.Chronological()
	for i, p := range pois {
		s.PhotoCount += len(p.Photos)
		if i > 0 {
			s.DistanceMeters += DistanceMeters(pois[i-1].Location, p.Location)
		}
	}
	if len(pois) > 0 {
		first, last := pois[0].CreatedAt, pois[len(pois)-1].CreatedAt
		s.FirstPointAt, s.LastPointAt = &first, &last
	}
	return s
}
