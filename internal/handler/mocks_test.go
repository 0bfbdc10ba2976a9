package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/journeylog/internal/domain"
	"github.com/pkordes/journeylog/internal/handler"
)

// mockJourneyServicer is a test double for handler.JourneyServicer.
// Set only the method fields your test needs.
type mockJourneyServicer struct {
	create     func(ctx context.Context, name string) (domain.Journey, error)
	rename     func(ctx context.Context, id int64, name string) (domain.Journey, error)
	delete     func(ctx context.Context, id int64) error
	finish     func(ctx context.Context, id int64) (domain.Journey, error)
	restart    func(ctx context.Context, id int64) (domain.Journey, error)
	list       func(ctx context.Context) ([]domain.Journey, error)
	getByID    func(ctx context.Context, id int64) (domain.Journey, error)
	summarize  func(ctx context.Context, id int64, mode domain.DurationMode) (domain.Summary, error)
	addPOI     func(ctx context.Context, journeyID int64, poi domain.PointOfInterest) (domain.PointOfInterest, error)
	editPOI    func(ctx context.Context, journeyID, poiID int64, poi domain.PointOfInterest) (domain.PointOfInterest, error)
	deletePOI  func(ctx context.Context, journeyID, poiID int64) error
	getPOI     func(ctx context.Context, poiID, journeyID int64) (domain.PointOfInterest, error)
	listPOIs   func(ctx context.Context, journeyID int64) ([]domain.PointOfInterest, error)
	nearbyPOIs func(ctx context.Context, journeyID int64, loc domain.Location, radius float64) ([]domain.PointOfInterest, error)
}

func (m *mockJourneyServicer) CreateJourney(ctx context.Context, name string) (domain.Journey, error) {
	return m.create(ctx, name)
}
func (m *mockJourneyServicer) EditJourneyName(ctx context.Context, id int64, name string) (domain.Journey, error) {
	return m.rename(ctx, id, name)
}
func (m *mockJourneyServicer) DeleteJourney(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}
func (m *mockJourneyServicer) FinishJourney(ctx context.Context, id int64) (domain.Journey, error) {
	return m.finish(ctx, id)
}
func (m *mockJourneyServicer) RestartJourney(ctx context.Context, id int64) (domain.Journey, error) {
	return m.restart(ctx, id)
}
func (m *mockJourneyServicer) GetJourneys(ctx context.Context) ([]domain.Journey, error) {
	return m.list(ctx)
}
func (m *mockJourneyServicer) GetJourneyByID(ctx context.Context, id int64) (domain.Journey, error) {
	return m.getByID(ctx, id)
}
func (m *mockJourneyServicer) Summarize(ctx context.Context, id int64, mode domain.DurationMode) (domain.Summary, error) {
	return m.summarize(ctx, id, mode)
}
func (m *mockJourneyServicer) AddPointOfInterest(ctx context.Context, journeyID int64, poi domain.PointOfInterest) (domain.PointOfInterest, error) {
	return m.addPOI(ctx, journeyID, poi)
}
func (m *mockJourneyServicer) EditPointOfInterest(ctx context.Context, journeyID, poiID int64, poi domain.PointOfInterest) (domain.PointOfInterest, error) {
	return m.editPOI(ctx, journeyID, poiID, poi)
}
func (m *mockJourneyServicer) DeletePointOfInterest(ctx context.Context, journeyID, poiID int64) error {
	return m.deletePOI(ctx, journeyID, poiID)
}
func (m *mockJourneyServicer) GetPointOfInterestByID(ctx context.Context, poiID, journeyID int64) (domain.PointOfInterest, error) {
	return m.getPOI(ctx, poiID, journeyID)
}
func (m *mockJourneyServicer) GetAllPointsOfInterestByJourneyID(ctx context.Context, journeyID int64) ([]domain.PointOfInterest, error) {
	return m.listPOIs(ctx, journeyID)
}
func (m *mockJourneyServicer) NearbyPointsOfInterest(ctx context.Context, journeyID int64, loc domain.Location, radius float64) ([]domain.PointOfInterest, error) {
	return m.nearbyPOIs(ctx, journeyID, loc, radius)
}

// mockSettingsServicer is a test double for handler.SettingsServicer.
type mockSettingsServicer struct {
	settings        func(ctx context.Context) (domain.Settings, error)
	maxPhotos       func(ctx context.Context) (int, error)
	durationMode    func(ctx context.Context) (domain.DurationMode, error)
	setDarkMode     func(ctx context.Context, on bool) error
	setMaxPhotos    func(ctx context.Context, n int) error
	setDurationMode func(ctx context.Context, mode domain.DurationMode) error
}

func (m *mockSettingsServicer) Settings(ctx context.Context) (domain.Settings, error) {
	return m.settings(ctx)
}
func (m *mockSettingsServicer) MaxPhotos(ctx context.Context) (int, error) {
	return m.maxPhotos(ctx)
}
func (m *mockSettingsServicer) DurationMode(ctx context.Context) (domain.DurationMode, error) {
	return m.durationMode(ctx)
}
func (m *mockSettingsServicer) SetDarkMode(ctx context.Context, on bool) error {
	return m.setDarkMode(ctx, on)
}
func (m *mockSettingsServicer) SetMaxPhotos(ctx context.Context, n int) error {
	return m.setMaxPhotos(ctx, n)
}
func (m *mockSettingsServicer) SetDurationMode(ctx context.Context, mode domain.DurationMode) error {
	return m.setDurationMode(ctx, mode)
}

// mockTransferServicer is a test double for handler.TransferServicer.
type mockTransferServicer struct {
	export func(ctx context.Context, journeyID int64) (string, error)
	imp    func(ctx context.Context, folder string) (domain.Journey, error)
}

func (m *mockTransferServicer) Export(ctx context.Context, journeyID int64) (string, error) {
	return m.export(ctx, journeyID)
}
func (m *mockTransferServicer) Import(ctx context.Context, folder string) (domain.Journey, error) {
	return m.imp(ctx, folder)
}

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.JourneyServicer  = (*mockJourneyServicer)(nil)
	_ handler.SettingsServicer = (*mockSettingsServicer)(nil)
	_ handler.TransferServicer = (*mockTransferServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into a chi router.
// This mirrors how main.go wires it in production.
func newHTTPHandler(j handler.JourneyServicer, s handler.SettingsServicer, tr handler.TransferServicer) http.Handler {
	r := chi.NewRouter()
	handler.NewServer(j, s, tr, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r
}

// fixedSettings returns a settings mock reporting the given photo limit and mode.
func fixedSettings(maxPhotos int, mode domain.DurationMode) *mockSettingsServicer {
	return &mockSettingsServicer{
		maxPhotos:    func(context.Context) (int, error) { return maxPhotos, nil },
		durationMode: func(context.Context) (domain.DurationMode, error) { return mode, nil },
	}
}

var created = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func journeyFixture() domain.Journey {
	return domain.Journey{
		ID:        7,
		Name:      "Alps",
		Status:    domain.StatusOngoing,
		CreatedAt: created,
		PointsOfInterest: []domain.PointOfInterest{{
			ID:          1,
			Description: "Lake",
			Photos:      []domain.PhotoRef{domain.NewPhotoRef("file:///photos/lake.jpg")},
			CreatedAt:   created.Add(time.Hour),
			Location:    domain.Location{Latitude: 46.5, Longitude: 8.1},
		}},
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, body io.Reader) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.Error
}
