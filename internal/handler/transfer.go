package handler

import "net/http"

// ImportRequest is the body of POST /journeys/import.
type ImportRequest struct {
	Folder string `json:"folder" validate:"required"`
}

// ExportResponse names the bundle folder written under the bundle directory.
type ExportResponse struct {
	Folder string `json:"folder"`
}

// ExportJourney handles POST /journeys/{id}/export.
func (s *Server) ExportJourney(w http.ResponseWriter, r *http.Request) {
	id, ok := journeyID(w, r)
	if !ok {
		return
	}
	folder, err := s.transfer.Export(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ExportResponse{Folder: folder})
}

// ImportJourney handles POST /journeys/import.
func (s *Server) ImportJourney(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	j, err := s.transfer.Import(r.Context(), req.Folder)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, journeyToResponse(j))
}
