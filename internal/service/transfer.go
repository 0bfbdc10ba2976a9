package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/pkordes/journeylog/internal/bundle"
	"github.com/pkordes/journeylog/internal/domain"
	"github.com/pkordes/journeylog/internal/repo"
)

// JourneyImporter stores a journey read from a bundle.
type JourneyImporter interface {
	ImportJourney(ctx context.Context, j domain.Journey) (domain.Journey, error)
}

// TransferService moves journeys in and out of bundle directories kept under
// one root directory.
type TransferService struct {
	store    repo.Store[domain.Journey]
	importer JourneyImporter
	root     string
	log      *slog.Logger
	now      func() time.Time
}

// NewTransferService constructs a TransferService writing and reading bundles under root.
func NewTransferService(store repo.Store[domain.Journey], importer JourneyImporter, root string, log *slog.Logger) *TransferService {
	return &TransferService{store: store, importer: importer, root: root, log: log, now: time.Now}
}

// Export writes the journey as a new bundle and returns the bundle folder
// name, relative to the bundle root.
func (s *TransferService) Export(ctx context.Context, journeyID int64) (string, error) {
	j, err := s.store.GetByID(ctx, journeyID)
	if err != nil {
		return "", wrap("service.TransferService.Export", err)
	}
	dir, err := bundle.Export(ctx, j, s.root, s.now())
	if err != nil {
		return "", wrap("service.TransferService.Export", err)
	}
	folder := filepath.Base(dir)
	s.log.InfoContext(ctx, "journey exported", "journey_id", journeyID, "bundle", folder)
	return folder, nil
}

// Import reads the bundle folder under the bundle root and stores it as a new
// imported journey. folder must name a directory inside the root.
func (s *TransferService) Import(ctx context.Context, folder string) (domain.Journey, error) {
	if folder == "" || !filepath.IsLocal(folder) {
		return domain.Journey{}, fmt.Errorf("service.TransferService.Import: %w: folder %q is outside the bundle directory", domain.ErrValidation, folder)
	}
	j, err := bundle.Import(ctx, filepath.Join(s.root, folder))
	if err != nil {
		return domain.Journey{}, wrap("service.TransferService.Import", err)
	}
	return s.importer.ImportJourney(ctx, j)
}
