package handler

import (
	"net/http"

	"github.com/pkordes/journeylog/internal/domain"
)

// JourneyNameRequest is the body of POST /journeys and PUT /journeys/{id}.
type JourneyNameRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// ListJourneys handles GET /journeys.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListJourneys(w http.ResponseWriter, r *http.Request) {
	var page, limit *int
	if err := queryParam(r, "page", false, &page); err != nil {
		writeRequestError(w, err.Error())
		return
	}
	if err := queryParam(r, "limit", false, &limit); err != nil {
		writeRequestError(w, err.Error())
		return
	}
	params := domain.NewPaginationParams(page, limit)

	all, err := s.journeys.GetJourneys(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	items := domain.Paginate(all, params)
	data := make([]JourneyResponse, len(items))
	for i, j := range items {
		data[i] = journeyToResponse(j)
	}
	writeJSON(w, http.StatusOK, JourneyListResponse{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: len(all)},
	})
}

// CreateJourney handles POST /journeys.
func (s *Server) CreateJourney(w http.ResponseWriter, r *http.Request) {
	var req JourneyNameRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	j, err := s.journeys.CreateJourney(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, journeyToResponse(j))
}

// GetJourney handles GET /journeys/{id}.
func (s *Server) GetJourney(w http.ResponseWriter, r *http.Request) {
	id, ok := journeyID(w, r)
	if !ok {
		return
	}
	j, err := s.journeys.GetJourneyByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, journeyToResponse(j))
}

// RenameJourney handles PUT /journeys/{id}.
func (s *Server) RenameJourney(w http.ResponseWriter, r *http.Request) {
	id, ok := journeyID(w, r)
	if !ok {
		return
	}
	var req JourneyNameRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	j, err := s.journeys.EditJourneyName(r.Context(), id, req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, journeyToResponse(j))
}

// DeleteJourney handles DELETE /journeys/{id}. Deleting an unknown id is a 204.
func (s *Server) DeleteJourney(w http.ResponseWriter, r *http.Request) {
	id, ok := journeyID(w, r)
	if !ok {
		return
	}
	if err := s.journeys.DeleteJourney(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FinishJourney handles POST /journeys/{id}/finish.
func (s *Server) FinishJourney(w http.ResponseWriter, r *http.Request) {
	id, ok := journeyID(w, r)
	if !ok {
		return
	}
	j, err := s.journeys.FinishJourney(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, journeyToResponse(j))
}

// RestartJourney handles POST /journeys/{id}/restart.
func (s *Server) RestartJourney(w http.ResponseWriter, r *http.Request) {
	id, ok := journeyID(w, r)
	if !ok {
		return
	}
	j, err := s.journeys.RestartJourney(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, journeyToResponse(j))
}

// GetJourneySummary handles GET /journeys/{id}/summary.
// ?mode= overrides the stored duration mode setting.
func (s *Server) GetJourneySummary(w http.ResponseWriter, r *http.Request) {
	id, ok := journeyID(w, r)
	if !ok {
		return
	}
	var modeParam *string
	if err := queryParam(r, "mode", false, &modeParam); err != nil {
		writeRequestError(w, err.Error())
		return
	}

	var mode domain.DurationMode
	if modeParam != nil {
		m, err := domain.ParseDurationMode(*modeParam)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		mode = m
	} else {
		m, err := s.settings.DurationMode(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		mode = m
	}

	sum, err := s.journeys.Summarize(r.Context(), id, mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryToResponse(sum))
}
