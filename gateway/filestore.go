package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/h2non/filetype"

	"github.com/synanno/maskdraw"
)

var (
	// ErrNotPNG is returned for rasters that are not PNG files.
	ErrNotPNG = errors.New("gateway: raster is not a PNG")

	// ErrUnknownImage is returned for image IDs missing from the catalog.
	ErrUnknownImage = errors.New("gateway: image not in catalog")
)

// markerFile is the per-image file holding marker coordinates.
const markerFile = "markers.json"

// storedMarker is a marker coordinate as written to markerFile.
type storedMarker struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    int     `json:"z"`
	Page int     `json:"page"`
}

// FileStore is a Gateway that keeps rasters in a local directory, laid
// out by maskdraw.MaskKey.Path. The catalog supplies the bounding box and
// middle slice returned for each save.
//
// FileStore is safe for concurrent use.
type FileStore struct {
	root    string
	fsys    fs.FS
	mu      sync.Mutex
	catalog map[int]maskdraw.Target
}

// NewFileStore opens (creating if needed) a store rooted at dir.
func NewFileStore(dir string, catalog []maskdraw.Target) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("gateway: create store: %w", err)
	}
	s := &FileStore{
		root:    dir,
		fsys:    os.DirFS(dir),
		catalog: make(map[int]maskdraw.Target, len(catalog)),
	}
	for _, t := range catalog {
		s.catalog[t.ImageID] = t
	}
	return s, nil
}

// Open implements fs.FS over the stored rasters.
func (s *FileStore) Open(name string) (fs.File, error) {
	return s.fsys.Open(name)
}

// Target returns the catalog entry for an image.
func (s *FileStore) Target(imageID int) (maskdraw.Target, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.catalog[imageID]
	return t, ok
}

// SubmitMask validates and writes the raster.
func (s *FileStore) SubmitMask(_ context.Context, m maskdraw.MaskSubmission) (maskdraw.SaveResult, error) {
	if !filetype.Is(m.Raster, "png") {
		return maskdraw.SaveResult{}, ErrNotPNG
	}
	t, ok := s.Target(m.ImageID)
	if !ok {
		return maskdraw.SaveResult{}, fmt.Errorf("%w: %d", ErrUnknownImage, m.ImageID)
	}
	key := maskdraw.MaskKey{
		ImageID:     m.ImageID,
		Kind:        m.Kind,
		Slice:       m.Slice,
		BoundingBox: t.BoundingBox,
	}
	if err := s.write(key.Path(), m.Raster); err != nil {
		return maskdraw.SaveResult{}, err
	}
	maskdraw.Logger().Info("mask stored", "path", key.Path(), "bytes", len(m.Raster))
	return maskdraw.SaveResult{
		AdjustedBoundingBox: t.BoundingBox,
		ImageIndex:          t.ImageID,
		MiddleSlice:         t.MiddleSlice,
	}, nil
}

// SubmitMarkerCoordinate records the marker in the image's markers.json.
func (s *FileStore) SubmitMarkerCoordinate(_ context.Context, m maskdraw.MarkerSubmission) error {
	if _, ok := s.Target(m.ImageID); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownImage, m.ImageID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	name := filepath.Join(s.root, fmt.Sprint(m.ImageID), markerFile)
	markers := map[string]storedMarker{}
	if data, err := os.ReadFile(name); err == nil {
		if err := json.Unmarshal(data, &markers); err != nil {
			return fmt.Errorf("gateway: read %s: %w", name, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("gateway: read markers: %w", err)
	}

	markers[m.Role.String()] = storedMarker{X: m.X, Y: m.Y, Z: m.Z, Page: m.Page}
	data, err := json.MarshalIndent(markers, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(name, data)
}

// StoredMarkers returns the marker coordinates stored for an image.
func (s *FileStore) StoredMarkers(_ context.Context, imageID int) (map[maskdraw.Role]maskdraw.MarkerCoordinate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := fs.ReadFile(s.fsys, fmt.Sprintf("%d/%s", imageID, markerFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stored map[string]storedMarker
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	out := make(map[maskdraw.Role]maskdraw.MarkerCoordinate, len(stored))
	for name, m := range stored {
		r, err := maskdraw.ParseRole(name)
		if err != nil {
			return nil, err
		}
		out[r] = maskdraw.MarkerCoordinate{X: m.X, Y: m.Y, Z: m.Z}
	}
	return out, nil
}

// QueryAutoMask returns the model-generated raster, if one was stored.
func (s *FileStore) QueryAutoMask(_ context.Context, imageID, middleSlice int) ([]byte, bool, error) {
	key := maskdraw.MaskKey{ImageID: imageID, Slice: middleSlice, Auto: true}
	data, err := fs.ReadFile(s.fsys, key.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !filetype.Is(data, "png") {
		return nil, false, fmt.Errorf("%w: %s", ErrNotPNG, key.Path())
	}
	return data, true, nil
}

// PutAutoMask stores a model-generated raster for an image, keyed by the
// catalog's middle slice.
func (s *FileStore) PutAutoMask(_ context.Context, imageID int, png []byte) error {
	if !filetype.Is(png, "png") {
		return ErrNotPNG
	}
	t, ok := s.Target(imageID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownImage, imageID)
	}
	key := maskdraw.MaskKey{ImageID: imageID, Slice: t.MiddleSlice, Auto: true}
	if err := s.write(key.Path(), png); err != nil {
		return err
	}
	maskdraw.Logger().Info("auto mask stored", "path", key.Path(), "bytes", len(png))
	return nil
}

// MaskExists reports whether the raster file exists.
func (s *FileStore) MaskExists(_ context.Context, key maskdraw.MaskKey) (bool, error) {
	_, err := fs.Stat(s.fsys, key.Path())
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	}
	return false, err
}

func (s *FileStore) write(rel string, data []byte) error {
	return writeFile(filepath.Join(s.root, filepath.FromSlash(rel)), data)
}

// writeFile replaces name atomically.
func writeFile(name string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(name), ".tmp-*")
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("gateway: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("gateway: write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	return nil
}

// Verify FileStore implements the interfaces Handler and Session need.
var (
	_ Store                 = (*FileStore)(nil)
	_ maskdraw.MarkerLookup = (*FileStore)(nil)
)
