package models

import (
	"time"

	"github.com/drwave-www/worldwidewaves/internal/observation"
	"github.com/drwave-www/worldwidewaves/pkg/geo"
)

// HealthStatus is the health of the service or one of its dependencies.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)

// Health is the ops health response.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    time.Time              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Origin is a wave origin point.
type Origin struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// EventSummary is one catalog entry.
type EventSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Start     time.Time `json:"start"`
	SpeedKmh  float64   `json:"speedKmh"`
	Direction string    `json:"direction"`
	Variant   string    `json:"variant"`
	Origin    *Origin   `json:"origin,omitempty"`
}

// EventList is the catalog listing response.
type EventList struct {
	Events []EventSummary `json:"events"`
}

// EventStatus is one sampled snapshot of an event, served on demand and
// streamed over the websocket.
type EventStatus struct {
	EventID   string    `json:"eventId"`
	SampledAt time.Time `json:"sampledAt"`
	observation.State
}

// PolygonSet carries the swept and unswept area partition at an
// instant. Rings are GeoJSON-style [lng, lat] coordinate arrays with
// longitudes wrapped back into [-180, 180].
type PolygonSet struct {
	EventID     string        `json:"eventId"`
	At          time.Time     `json:"at"`
	Progression float64       `json:"progression"`
	Swept       [][][]float64 `json:"swept"`
	Unswept     [][][]float64 `json:"unswept"`
}

// EncodedPolygonSet is the polyline-encoded form of PolygonSet,
// served with format=polyline.
type EncodedPolygonSet struct {
	EventID     string    `json:"eventId"`
	At          time.Time `json:"at"`
	Progression float64   `json:"progression"`
	Swept       []string  `json:"swept"`
	Unswept     []string  `json:"unswept"`
}

// RingCoordinates converts rings from the geometry kernel into the
// wire representation, closing each ring GeoJSON-style.
func RingCoordinates(rings []geo.Ring) [][][]float64 {
	out := make([][][]float64, 0, len(rings))
	for _, ring := range rings {
		coords := make([][]float64, 0, len(ring)+1)
		for _, p := range ring {
			coords = append(coords, []float64{geo.WrapLng(p.Lng), p.Lat})
		}
		if len(ring) > 0 && !ring[0].Equal(ring[len(ring)-1]) {
			first := ring[0]
			coords = append(coords, []float64{geo.WrapLng(first.Lng), first.Lat})
		}
		out = append(out, coords)
	}
	return out
}
