package handler

import (
	"time"

	"github.com/pkordes/journeylog/internal/domain"
)

// LocationBody is a coordinate pair in requests and responses.
type LocationBody struct {
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
}

// PointOfInterestResponse is the API view of a point of interest.
type PointOfInterestResponse struct {
	ID          int64        `json:"id"`
	Description string       `json:"description"`
	DisplayName string       `json:"display_name"`
	Photos      []string     `json:"photos"`
	CreatedAt   time.Time    `json:"created_at"`
	Location    LocationBody `json:"location"`
}

// JourneyResponse is the API view of a journey.
type JourneyResponse struct {
	ID               int64                     `json:"id"`
	Name             string                    `json:"name"`
	Status           domain.JourneyStatus      `json:"status"`
	CreatedAt        time.Time                 `json:"created_at"`
	FinishedAt       *time.Time                `json:"finished_at,omitempty"`
	PointsOfInterest []PointOfInterestResponse `json:"points_of_interest"`
}

// Pagination describes the current page of a list response.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// JourneyListResponse is one page of journeys.
type JourneyListResponse struct {
	Data       []JourneyResponse `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

// SummaryResponse is the statistics card of a journey.
type SummaryResponse struct {
	JourneyID       int64                `json:"journey_id"`
	Name            string               `json:"name"`
	Status          domain.JourneyStatus `json:"status"`
	Mode            domain.DurationMode  `json:"mode"`
	PointCount      int                  `json:"point_count"`
	PhotoCount      int                  `json:"photo_count"`
	DurationSeconds int64                `json:"duration_seconds"`
	Days            int64                `json:"days"`
	DistanceMeters  float64              `json:"distance_meters"`
	FirstPointAt    *time.Time           `json:"first_point_at,omitempty"`
	LastPointAt     *time.Time           `json:"last_point_at,omitempty"`
}

func poiToResponse(p domain.PointOfInterest) PointOfInterestResponse {
	photos := make([]string, len(p.Photos))
	for i, ref := range p.Photos {
		photos[i] = ref.String()
	}
	lat, lng := p.Location.Latitude, p.Location.Longitude
	return PointOfInterestResponse{
		ID:          p.ID,
		Description: p.Description,
		DisplayName: p.DisplayName(),
		Photos:      photos,
		CreatedAt:   p.CreatedAt,
		Location:    LocationBody{Latitude: &lat, Longitude: &lng},
	}
}

func poisToResponse(ps []domain.PointOfInterest) []PointOfInterestResponse {
	out := make([]PointOfInterestResponse, len(ps))
	for i, p := range ps {
		out[i] = poiToResponse(p)
	}
	return out
}

func journeyToResponse(j domain.Journey) JourneyResponse {
	return JourneyResponse{
		ID:               j.ID,
		Name:             j.Name,
		Status:           j.Status,
		CreatedAt:        j.CreatedAt,
		FinishedAt:       j.FinishedAt,
		PointsOfInterest: poisToResponse(j.PointsOfInterest),
	}
}

func summaryToResponse(s domain.Summary) SummaryResponse {
	return SummaryResponse{
		JourneyID:       s.JourneyID,
		Name:            s.Name,
		Status:          s.Status,
		Mode:            s.Mode,
		PointCount:      s.PointCount,
		PhotoCount:      s.PhotoCount,
		DurationSeconds: int64(s.Duration / time.Second),
		Days:            s.Days,
		DistanceMeters:  s.DistanceMeters,
		FirstPointAt:    s.FirstPointAt,
		LastPointAt:     s.LastPointAt,
	}
}
