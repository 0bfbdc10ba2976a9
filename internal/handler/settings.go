package handler

import (
	"net/http"

	"github.com/pkordes/journeylog/internal/domain"
)

// SettingsRequest is the body of PUT /settings. Omitted fields are left unchanged.
type SettingsRequest struct {
	DarkMode     *bool   `json:"dark_mode"`
	MaxPhotos    *int    `json:"max_photos_per_poi" validate:"omitempty,min=1,max=10"`
	DurationMode *string `json:"duration_mode" validate:"omitempty,oneof=BASED_ON_POINTS BASED_ON_JOURNEY"`
}

// GetSettings handles GET /settings.
func (s *Server) GetSettings(w http.ResponseWriter, r *http.Request) {
	got, err := s.settings.Settings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, got)
}

// UpdateSettings handles PUT /settings and returns the resulting settings.
func (s *Server) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	ctx := r.Context()

	if req.DarkMode != nil {
		if err := s.settings.SetDarkMode(ctx, *req.DarkMode); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	if req.MaxPhotos != nil {
		if err := s.settings.SetMaxPhotos(ctx, *req.MaxPhotos); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	if req.DurationMode != nil {
		if err := s.settings.SetDurationMode(ctx, domain.DurationMode(*req.DurationMode)); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.GetSettings(w, r)
}
