package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/drwave-www/worldwidewaves/internal/api/models"
	"github.com/drwave-www/worldwidewaves/internal/api/response"
	"github.com/drwave-www/worldwidewaves/internal/events"
)

const (
	// writeWait bounds one websocket write.
	writeWait = 10 * time.Second

	// pingPeriod is the keepalive interval. Must be shorter than the
	// client's read deadline.
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is served to native clients, not browsers.
	CheckOrigin: func(*http.Request) bool { return true },
}

// StreamHandler streams observation state changes over a websocket.
type StreamHandler struct {
	svc    *events.Service
	logger zerolog.Logger
}

// NewStreamHandler creates a StreamHandler.
func NewStreamHandler(svc *events.Service, logger zerolog.Logger) *StreamHandler {
	return &StreamHandler{svc: svc, logger: logger}
}

// Stream handles GET /v1/events/{eventId}/stream. Each connection
// subscribes to the event's observer and receives a snapshot whenever
// the observed state changes. The subscription has latest-value
// semantics: a slow client skips intermediate snapshots instead of
// stalling the observer.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if _, ok := h.svc.Definition(eventID); !ok {
		response.NotFound(w, r, "unknown event "+eventID)
		return
	}

	obs, err := h.svc.Observer(r.Context(), eventID)
	if err != nil {
		response.ServiceUnavailable(w, r, "observer unavailable")
		return
	}
	// Observation outlives the connection; other subscribers and the
	// status endpoint share it.
	obs.Start(context.Background())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.logger.Warn().Str("event_id", eventID).Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close() //nolint:errcheck // connection teardown

	states, cancel := obs.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.logger.Debug().Str("event_id", eventID).Str("remote", conn.RemoteAddr().String()).Msg("stream opened")

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case state, ok := <-states:
			if !ok {
				return
			}
			payload := models.EventStatus{
				EventID:   eventID,
				SampledAt: time.Now(),
				State:     state,
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(payload); err != nil {
				h.logger.Debug().Str("event_id", eventID).Err(err).Msg("stream write failed")
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			h.logger.Debug().Str("event_id", eventID).Msg("stream closed by client")
			return
		}
	}
}
