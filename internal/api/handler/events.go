// Package handler provides the HTTP handlers of the wave API.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/drwave-www/worldwidewaves/internal/api/models"
	"github.com/drwave-www/worldwidewaves/internal/api/response"
	"github.com/drwave-www/worldwidewaves/internal/events"
	"github.com/drwave-www/worldwidewaves/internal/observation"
	"github.com/drwave-www/worldwidewaves/pkg/geo"
	"github.com/drwave-www/worldwidewaves/pkg/polyline"
)

// EventsHandler serves the event catalog and per-event wave state.
type EventsHandler struct {
	svc       *events.Service
	clock     observation.Clock
	intervals observation.Intervals
}

// NewEventsHandler creates an EventsHandler.
func NewEventsHandler(svc *events.Service, clock observation.Clock, intervals observation.Intervals) *EventsHandler {
	if clock == nil {
		clock = observation.SystemClock{}
	}
	return &EventsHandler{svc: svc, clock: clock, intervals: intervals}
}

// ListEvents handles GET /v1/events.
func (h *EventsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	defs := h.svc.Events()
	list := models.EventList{Events: make([]models.EventSummary, 0, len(defs))}
	for _, d := range defs {
		list.Events = append(list.Events, summarize(d))
	}
	response.JSON(w, r, http.StatusOK, list)
}

// GetEvent handles GET /v1/events/{eventId}.
func (h *EventsHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	def, ok := h.svc.Definition(eventID)
	if !ok {
		response.NotFound(w, r, "unknown event "+eventID)
		return
	}
	response.JSON(w, r, http.StatusOK, summarize(def))
}

// GetStatus handles GET /v1/events/{eventId}/status. Optional lat and
// lng query parameters compute the position-dependent fields for that
// point.
func (h *EventsHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	def, ok := h.svc.Definition(eventID)
	if !ok {
		response.NotFound(w, r, "unknown event "+eventID)
		return
	}

	pos, fieldErrs := parsePosition(r)
	if fieldErrs != nil {
		response.BadRequest(w, r, "invalid position", fieldErrs)
		return
	}

	model, err := h.svc.Model(r.Context(), eventID)
	if err != nil && !errors.Is(err, events.ErrAreaUnavailable) {
		response.InternalError(w, r, "building wave model failed")
		return
	}
	// With the area unavailable the model is nil and the sample comes
	// back UNDEFINED, mirroring what an observer would report.

	now := h.clock.Now()
	status := models.EventStatus{
		EventID:   eventID,
		SampledAt: now,
		State:     observation.Sample(model, def.WaveEvent(), now, pos, h.intervals),
	}
	response.JSON(w, r, http.StatusOK, status)
}

// GetPolygons handles GET /v1/events/{eventId}/polygons. The optional
// at query parameter (RFC3339) computes the partition at that instant
// instead of now.
func (h *EventsHandler) GetPolygons(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if _, ok := h.svc.Definition(eventID); !ok {
		response.NotFound(w, r, "unknown event "+eventID)
		return
	}

	at := h.clock.Now()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(w, r, "invalid at parameter", []models.FieldError{
				{Field: "at", Message: "must be an RFC3339 timestamp"},
			})
			return
		}
		at = parsed
	}

	model, err := h.svc.Model(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, events.ErrAreaUnavailable) {
			response.ServiceUnavailable(w, r, "event area unavailable")
			return
		}
		response.InternalError(w, r, "building wave model failed")
		return
	}

	swept, unswept := model.WavePolygons(at)

	if r.URL.Query().Get("format") == "polyline" {
		response.JSON(w, r, http.StatusOK, models.EncodedPolygonSet{
			EventID:     eventID,
			At:          at,
			Progression: model.Progression(at),
			Swept:       polyline.EncodeRings(swept),
			Unswept:     polyline.EncodeRings(unswept),
		})
		return
	}

	response.JSON(w, r, http.StatusOK, models.PolygonSet{
		EventID:     eventID,
		At:          at,
		Progression: model.Progression(at),
		Swept:       models.RingCoordinates(swept),
		Unswept:     models.RingCoordinates(unswept),
	})
}

func summarize(d events.Definition) models.EventSummary {
	direction := d.Direction
	if direction == "" {
		direction = "west_to_east"
	}
	variant := d.Variant
	if variant == "" {
		variant = "linear"
	}
	s := models.EventSummary{
		ID:        d.ID,
		Name:      d.Name,
		Start:     d.Start,
		SpeedKmh:  d.SpeedKmh,
		Direction: direction,
		Variant:   variant,
	}
	if d.Origin != nil {
		s.Origin = &models.Origin{Lat: d.Origin.Lat, Lng: d.Origin.Lng}
	}
	return s
}

// parsePosition reads the optional lat/lng query pair. Both must be
// present together and inside the WGS84 range.
func parsePosition(r *http.Request) (*geo.Position, []models.FieldError) {
	rawLat := r.URL.Query().Get("lat")
	rawLng := r.URL.Query().Get("lng")
	if rawLat == "" && rawLng == "" {
		return nil, nil
	}

	var errs []models.FieldError
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		errs = append(errs, models.FieldError{Field: "lat", Message: "must be a number"})
	}
	lng, err := strconv.ParseFloat(rawLng, 64)
	if err != nil {
		errs = append(errs, models.FieldError{Field: "lng", Message: "must be a number"})
	}
	if errs != nil {
		return nil, errs
	}

	pos, err := geo.NewPosition(lat, lng)
	if err != nil {
		return nil, []models.FieldError{{Field: "lat,lng", Message: err.Error()}}
	}
	return &pos, nil
}
