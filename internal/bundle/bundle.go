// Package bundle writes journeys to, and reads them from, self-contained
// directories on disk. A bundle directory holds one journey JSON file and a
// photos/ directory with every photo the journey references.
package bundle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pkordes/journeylog/internal/domain"
)

// PhotosDir is the name of the photo directory inside a bundle.
const PhotosDir = "photos"

// maxParallelCopies bounds concurrent photo copies during export.
const maxParallelCopies = 4

// ErrInvalidBundle is returned when a folder is not a readable bundle.
// It always arrives wrapped together with domain.ErrValidation.
var ErrInvalidBundle = errors.New("invalid bundle")

var unsafeName = strings.NewReplacer("/", "_", `\`, "_", "\x00", "_")

// DirName returns the bundle directory name for a journey exported at now.
func DirName(journeyName string, now time.Time) string {
	return "journey_" + unsafeName.Replace(journeyName) + "_" + now.Format("20060102_150405")
}

// Export writes j as a new bundle directory under destRoot and returns its path.
// Photos with a local path are copied concurrently into photos/, named by the
// last segment of their locator; see planPhotos for name clashes. Photos
// without a local path (content:// and similar) are left out; a local photo
// that cannot be read fails the export. On failure the partial directory is
// removed.
func Export(ctx context.Context, j domain.Journey, destRoot string, now time.Time) (dir string, err error) {
	name := DirName(j.Name, now)
	dir = filepath.Join(destRoot, name)
	photos := filepath.Join(dir, PhotosDir)

	if err := os.MkdirAll(photos, 0o755); err != nil {
		return "", fmt.Errorf("bundle.Export: %w: %w", domain.ErrWriteFailed, err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(dir)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelCopies)
	bundled, copies := planPhotos(j, photos)
	for dst, src := range copies {
		g.Go(func() error { return copyFile(gctx, src, dst) })
	}
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("bundle.Export: %w: %w", domain.ErrWriteFailed, err)
	}

	body, err := json.MarshalIndent(bundled, "", "  ")
	if err != nil {
		return "", fmt.Errorf("bundle.Export: %w: %w", domain.ErrWriteFailed, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), body, 0o644); err != nil {
		return "", fmt.Errorf("bundle.Export: %w: %w", domain.ErrWriteFailed, err)
	}
	return dir, nil
}

// planPhotos assigns every local photo of j a file name in photosDir and maps
// each destination to the source it is copied from. The same source file keeps
// one copy. Distinct sources sharing a name get a " (n)" suffix, and their
// references in the returned journey are rewritten to photos/<new name> so an
// import finds them again. j itself is not modified.
func planPhotos(j domain.Journey, photosDir string) (domain.Journey, map[string]string) {
	copies := make(map[string]string)
	named := make(map[string]string) // source -> file name
	taken := make(map[string]bool)

	out := j
	out.PointsOfInterest = make([]domain.PointOfInterest, len(j.PointsOfInterest))
	for i, poi := range j.PointsOfInterest {
		poi.Photos = slices.Clone(poi.Photos)
		for k, ref := range poi.Photos {
			src := ref.Path()
			if src == "" {
				continue
			}
			name, seen := named[src]
			if !seen {
				name = uniqueName(ref.LastPathSegment(), taken)
				named[src] = name
				taken[name] = true
				copies[filepath.Join(photosDir, name)] = src
			}
			if name != ref.LastPathSegment() {
				poi.Photos[k] = domain.NewPhotoRef(PhotosDir + "/" + name)
			}
		}
		out.PointsOfInterest[i] = poi
	}
	return out, copies
}

// uniqueName returns name, or "stem (n).ext" with the smallest n not taken.
func uniqueName(name string, taken map[string]bool) string {
	if !taken[name] {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if !taken[candidate] {
			return candidate
		}
	}
}

func copyFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open photo: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create photo: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy photo %s: %w", filepath.Base(src), err)
	}
	return out.Close()
}

// Import reads the bundle in folder. It uses the first *.json file in the
// folder and requires a photos/ directory. Each photo is re-pointed at the
// file in photos/ with the same name; photos with no such file keep their
// original locator. Id and status are returned as stored; the caller decides
// what a fresh import looks like.
func Import(ctx context.Context, folder string) (domain.Journey, error) {
	if err := ctx.Err(); err != nil {
		return domain.Journey{}, err
	}
	entries, err := os.ReadDir(folder)
	if err != nil {
		return domain.Journey{}, invalid("read folder: %v", err)
	}

	var jsonFile string
	hasPhotos := false
	for _, e := range entries {
		switch {
		case e.IsDir() && e.Name() == PhotosDir:
			hasPhotos = true
		case !e.IsDir() && jsonFile == "" && strings.EqualFold(filepath.Ext(e.Name()), ".json"):
			jsonFile = e.Name()
		}
	}
	if jsonFile == "" {
		return domain.Journey{}, invalid("no journey file in %s", filepath.Base(folder))
	}
	if !hasPhotos {
		return domain.Journey{}, invalid("no %s directory in %s", PhotosDir, filepath.Base(folder))
	}

	body, err := os.ReadFile(filepath.Join(folder, jsonFile))
	if err != nil {
		return domain.Journey{}, invalid("read %s: %v", jsonFile, err)
	}
	var j domain.Journey
	if err := json.Unmarshal(body, &j); err != nil {
		return domain.Journey{}, invalid("decode %s: %v", jsonFile, err)
	}

	photosPath, err := filepath.Abs(filepath.Join(folder, PhotosDir))
	if err != nil {
		return domain.Journey{}, invalid("resolve %s: %v", PhotosDir, err)
	}
	available, err := os.ReadDir(photosPath)
	if err != nil {
		return domain.Journey{}, invalid("read %s: %v", PhotosDir, err)
	}
	files := make(map[string]string, len(available))
	for _, e := range available {
		if !e.IsDir() {
			files[e.Name()] = filepath.Join(photosPath, e.Name())
		}
	}

	for i, poi := range j.PointsOfInterest {
		for k, ref := range poi.Photos {
			if p, ok := files[ref.LastPathSegment()]; ok {
				j.PointsOfInterest[i].Photos[k] = domain.FilePhotoRef(p)
			}
		}
	}
	return j, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", domain.ErrValidation, ErrInvalidBundle, fmt.Sprintf(format, args...))
}
