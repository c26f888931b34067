package events

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrAreaUnavailable is returned when an event's GeoJSON document
// cannot be obtained. Callers surface the area as unavailable; they
// never crash on it.
var ErrAreaUnavailable = errors.New("event area unavailable")

// GeoJsonProvider supplies the raw GeoJSON document for an event id.
type GeoJsonProvider interface {
	Get(ctx context.Context, eventID string) ([]byte, error)
}

// DirProvider serves GeoJSON documents from a local directory, looking
// up <dir>/<eventID>.geojson (then .json). Used for bundled catalogs
// and in tests.
type DirProvider struct {
	Dir string

	// FileFor optionally maps an event id to an explicit file name
	// relative to Dir, e.g. from Definition.GeoJSONFile.
	FileFor func(eventID string) string
}

// Get reads the event's document from disk.
func (p *DirProvider) Get(_ context.Context, eventID string) ([]byte, error) {
	if strings.Contains(eventID, "..") || strings.ContainsRune(eventID, filepath.Separator) {
		return nil, fmt.Errorf("%w: bad event id %q", ErrAreaUnavailable, eventID)
	}

	var candidates []string
	if p.FileFor != nil {
		if name := p.FileFor(eventID); name != "" {
			candidates = append(candidates, filepath.Join(p.Dir, name))
		}
	}
	candidates = append(candidates,
		filepath.Join(p.Dir, eventID+".geojson"),
		filepath.Join(p.Dir, eventID+".json"),
	)

	for _, path := range candidates {
		raw, err := os.ReadFile(path)
		if err == nil {
			return raw, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrAreaUnavailable, path, err)
		}
	}
	return nil, fmt.Errorf("%w: no document for event %q", ErrAreaUnavailable, eventID)
}
