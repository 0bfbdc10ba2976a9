// Package handler implements the HTTP handlers for the journey log API.
// All handlers are methods on Server. Methods are split into resource files
// (health.go, journey.go, poi.go, ...) but share the Server struct so they
// can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pkordes/journeylog/internal/domain"
)

// JourneyServicer defines the journey operations the handlers depend on.
// Defining the interface here, in the consumer package, lets handler tests
// inject a mock without touching the store or service layer.
type JourneyServicer interface {
	CreateJourney(ctx context.Context, name string) (domain.Journey, error)
	EditJourneyName(ctx context.Context, id int64, name string) (domain.Journey, error)
	DeleteJourney(ctx context.Context, id int64) error
	FinishJourney(ctx context.Context, id int64) (domain.Journey, error)
	RestartJourney(ctx context.Context, id int64) (domain.Journey, error)
	GetJourneys(ctx context.Context) ([]domain.Journey, error)
	GetJourneyByID(ctx context.Context, id int64) (domain.Journey, error)
	Summarize(ctx context.Context, id int64, mode domain.DurationMode) (domain.Summary, error)

	AddPointOfInterest(ctx context.Context, journeyID int64, poi domain.PointOfInterest) (domain.PointOfInterest, error)
	EditPointOfInterest(ctx context.Context, journeyID, poiID int64, poi domain.PointOfInterest) (domain.PointOfInterest, error)
	DeletePointOfInterest(ctx context.Context, journeyID, poiID int64) error
	GetPointOfInterestByID(ctx context.Context, poiID, journeyID int64) (domain.PointOfInterest, error)
	GetAllPointsOfInterestByJourneyID(ctx context.Context, journeyID int64) ([]domain.PointOfInterest, error)
	NearbyPointsOfInterest(ctx context.Context, journeyID int64, loc domain.Location, radiusMeters float64) ([]domain.PointOfInterest, error)
}

// SettingsServicer defines the settings operations the handlers depend on.
type SettingsServicer interface {
	Settings(ctx context.Context) (domain.Settings, error)
	MaxPhotos(ctx context.Context) (int, error)
	DurationMode(ctx context.Context) (domain.DurationMode, error)
	SetDarkMode(ctx context.Context, on bool) error
	SetMaxPhotos(ctx context.Context, n int) error
	SetDurationMode(ctx context.Context, mode domain.DurationMode) error
}

// TransferServicer defines the bundle export and import operations.
type TransferServicer interface {
	Export(ctx context.Context, journeyID int64) (string, error)
	Import(ctx context.Context, folder string) (domain.Journey, error)
}

// Server holds the handler dependencies.
type Server struct {
	journeys JourneyServicer
	settings SettingsServicer
	transfer TransferServicer
	validate *validator.Validate
	log      *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(journeys JourneyServicer, settings SettingsServicer, transfer TransferServicer, log *slog.Logger) *Server {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names in validation messages.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Server{journeys: journeys, settings: settings, transfer: transfer, validate: v, log: log}
}

// Register mounts every API route on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.GetHealth)

	r.Route("/journeys", func(r chi.Router) {
		r.Get("/", s.ListJourneys)
		r.Post("/", s.CreateJourney)
		r.Post("/import", s.ImportJourney)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetJourney)
			r.Put("/", s.RenameJourney)
			r.Delete("/", s.DeleteJourney)
			r.Post("/finish", s.FinishJourney)
			r.Post("/restart", s.RestartJourney)
			r.Get("/summary", s.GetJourneySummary)
			r.Post("/export", s.ExportJourney)

			r.Route("/pois", func(r chi.Router) {
				r.Get("/", s.ListPointsOfInterest)
				r.Post("/", s.CreatePointOfInterest)
				r.Get("/nearby", s.NearbyPointsOfInterest)
				r.Get("/{poiId}", s.GetPointOfInterest)
				r.Put("/{poiId}", s.UpdatePointOfInterest)
				r.Delete("/{poiId}", s.DeletePointOfInterest)
			})
		})
	})

	r.Get("/settings", s.GetSettings)
	r.Put("/settings", s.UpdateSettings)
}
