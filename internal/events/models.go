// Package events manages the catalog of wave events: their
// configuration, their GeoJSON areas and the observers running against
// them.
package events

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/drwave-www/worldwidewaves/internal/sweep"
	"github.com/drwave-www/worldwidewaves/internal/wave"
	"github.com/drwave-www/worldwidewaves/pkg/geo"
)

// Catalog errors.
var (
	ErrUnknownEvent   = errors.New("unknown event")
	ErrInvalidCatalog = errors.New("invalid event catalog")
)

// Origin is an explicit deep-wave origin in the catalog.
type Origin struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

// Definition is one catalog entry. It is the external configuration a
// wave.Event is built from.
type Definition struct {
	ID       string    `yaml:"id" json:"id"`
	Name     string    `yaml:"name" json:"name"`
	Start    time.Time `yaml:"start" json:"start"`
	SpeedKmh float64   `yaml:"speed_kmh" json:"speed_kmh"`

	// Direction is "west_to_east" (default) or "east_to_west".
	Direction string `yaml:"direction" json:"direction,omitempty"`

	// Variant is "linear" (default), "deep" or "split".
	Variant string `yaml:"variant" json:"variant,omitempty"`

	// BBox overrides the area bounding box, formatted
	// "swLat, swLng, neLat, neLng".
	BBox string `yaml:"bbox" json:"bbox,omitempty"`

	// GeoJSONFile names the area document for the directory provider;
	// GeoJSONURL for the HTTP provider. The provider in use decides
	// which one matters.
	GeoJSONFile string `yaml:"geojson_file" json:"-"`
	GeoJSONURL  string `yaml:"geojson_url" json:"-"`

	// Origin pins the center of a deep wave.
	Origin *Origin `yaml:"origin" json:"origin,omitempty"`
}

// Catalog is the full set of configured events.
type Catalog struct {
	Events []Definition `yaml:"events"`
}

// LoadCatalog reads and parses a YAML catalog file.
func LoadCatalog(path string) (Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("reading catalog: %w", err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog parses a YAML catalog document and validates every
// entry.
func ParseCatalog(raw []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Catalog{}, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	seen := make(map[string]bool, len(c.Events))
	for i := range c.Events {
		d := &c.Events[i]
		if err := d.validate(); err != nil {
			return Catalog{}, err
		}
		if seen[d.ID] {
			return Catalog{}, fmt.Errorf("%w: duplicate event id %q", ErrInvalidCatalog, d.ID)
		}
		seen[d.ID] = true
	}
	return c, nil
}

func (d *Definition) validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: event without id", ErrInvalidCatalog)
	}
	if d.Start.IsZero() {
		return fmt.Errorf("%w: event %q has no start time", ErrInvalidCatalog, d.ID)
	}
	if d.SpeedKmh < 0 {
		return fmt.Errorf("%w: event %q has negative speed", ErrInvalidCatalog, d.ID)
	}
	if d.Variant != "" && !wave.Variant(d.Variant).Valid() {
		return fmt.Errorf("%w: event %q has unknown variant %q", ErrInvalidCatalog, d.ID, d.Variant)
	}
	switch d.Direction {
	case "", "west_to_east", "east_to_west":
	default:
		return fmt.Errorf("%w: event %q has unknown direction %q", ErrInvalidCatalog, d.ID, d.Direction)
	}
	if d.Origin != nil {
		if _, err := geo.NewPosition(d.Origin.Lat, d.Origin.Lng); err != nil {
			return fmt.Errorf("%w: event %q origin: %v", ErrInvalidCatalog, d.ID, err)
		}
	}
	return nil
}

// WaveEvent converts the catalog entry into the immutable wave event.
func (d Definition) WaveEvent() wave.Event {
	ev := wave.Event{
		ID:       d.ID,
		Name:     d.Name,
		Start:    d.Start,
		SpeedKmh: d.SpeedKmh,
		Variant:  wave.VariantLinear,
	}
	if d.Direction == "east_to_west" {
		ev.Direction = sweep.EastToWest
	}
	if v := wave.Variant(d.Variant); v.Valid() {
		ev.Variant = v
	}
	if d.Origin != nil {
		ev.Origin = &geo.Position{Lat: d.Origin.Lat, Lng: d.Origin.Lng}
	}
	return ev
}
