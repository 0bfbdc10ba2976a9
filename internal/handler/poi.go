package handler

import (
	"fmt"
	"net/http"

	"github.com/pkordes/journeylog/internal/domain"
)

// PointOfInterestRequest is the body of POST and PUT on points of interest.
// Id and creation time are always assigned by the server.
type PointOfInterestRequest struct {
	Description string       `json:"description" validate:"max=2000"`
	Photos      []string     `json:"photos" validate:"dive,required"`
	Location    LocationBody `json:"location"`
}

func (req PointOfInterestRequest) toDomain() domain.PointOfInterest {
	photos := make([]domain.PhotoRef, len(req.Photos))
	for i, p := range req.Photos {
		photos[i] = domain.NewPhotoRef(p)
	}
	return domain.PointOfInterest{
		Description: req.Description,
		Photos:      photos,
		Location:    domain.Location{Latitude: *req.Location.Latitude, Longitude: *req.Location.Longitude},
	}
}

// decodePointOfInterest decodes the body and enforces the photo limit setting.
func (s *Server) decodePointOfInterest(w http.ResponseWriter, r *http.Request) (domain.PointOfInterest, bool) {
	var req PointOfInterestRequest
	if !s.decodeBody(w, r, &req) {
		return domain.PointOfInterest{}, false
	}
	limit, err := s.settings.MaxPhotos(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return domain.PointOfInterest{}, false
	}
	if len(req.Photos) > limit {
		writeRequestError(w, fmt.Sprintf("photos: at most %d allowed", limit))
		return domain.PointOfInterest{}, false
	}
	return req.toDomain(), true
}

func poiID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathInt64(r, "poiId")
	if err != nil {
		writeRequestError(w, err.Error())
		return 0, false
	}
	return id, true
}

// ListPointsOfInterest handles GET /journeys/{id}/pois.
func (s *Server) ListPointsOfInterest(w http.ResponseWriter, r *http.Request) {
	id, ok := journeyID(w, r)
	if !ok {
		return
	}
	pois, err := s.journeys.GetAllPointsOfInterestByJourneyID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, poisToResponse(pois))
}

// CreatePointOfInterest handles POST /journeys/{id}/pois.
func (s *Server) CreatePointOfInterest(w http.ResponseWriter, r *http.Request) {
	id, ok := journeyID(w, r)
	if !ok {
		return
	}
	in, ok := s.decodePointOfInterest(w, r)
	if !ok {
		return
	}
	p, err := s.journeys.AddPointOfInterest(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, poiToResponse(p))
}

// GetPointOfInterest handles GET /journeys/{id}/pois/{poiId}.
func (s *Server) GetPointOfInterest(w http.ResponseWriter, r *http.Request) {
	id, ok := journeyID(w, r)
	if !ok {
		return
	}
	pid, ok := poiID(w, r)
	if !ok {
		return
	}
	p, err := s.journeys.GetPointOfInterestByID(r.Context(), pid, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, poiToResponse(p))
}

// UpdatePointOfInterest handles PUT /journeys/{id}/pois/{poiId}.
func (s *Server) UpdatePointOfInterest(w http.ResponseWriter, r *http.Request) {
	id, ok := journeyID(w, r)
	if !ok {
		return
	}
	pid, ok := poiID(w, r)
	if !ok {
		return
	}
	in, ok := s.decodePointOfInterest(w, r)
	if !ok {
		return
	}
	p, err := s.journeys.EditPointOfInterest(r.Context(), id, pid, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, poiToResponse(p))
}

// DeletePointOfInterest handles DELETE /journeys/{id}/pois/{poiId}.
func (s *Server) DeletePointOfInterest(w http.ResponseWriter, r *http.Request) {
	id, ok := journeyID(w, r)
	if !ok {
		return
	}
	pid, ok := poiID(w, r)
	if !ok {
		return
	}
	if err := s.journeys.DeletePointOfInterest(r.Context(), id, pid); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NearbyPointsOfInterest handles GET /journeys/{id}/pois/nearby?lat=&lng=&radius=.
// radius is in meters and defaults to 100.
func (s *Server) NearbyPointsOfInterest(w http.ResponseWriter, r *http.Request) {
	id, ok := journeyID(w, r)
	if !ok {
		return
	}
	var (
		lat, lng float64
		radius   *float64
	)
	for _, p := range []struct {
		name     string
		required bool
		dst      any
	}{
		{"lat", true, &lat},
		{"lng", true, &lng},
		{"radius", false, &radius},
	} {
		if err := queryParam(r, p.name, p.required, p.dst); err != nil {
			writeRequestError(w, err.Error())
			return
		}
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		writeRequestError(w, "lat/lng out of range")
		return
	}
	var meters float64
	if radius != nil {
		meters = *radius
	}

	pois, err := s.journeys.NearbyPointsOfInterest(r.Context(), id, domain.Location{Latitude: lat, Longitude: lng}, meters)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, poisToResponse(pois))
}
