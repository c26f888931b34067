package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drwave-www/worldwidewaves/internal/api"
	"github.com/drwave-www/worldwidewaves/internal/api/models"
	"github.com/drwave-www/worldwidewaves/internal/events"
	"github.com/drwave-www/worldwidewaves/internal/observation"
)

var eventStart = time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC)

// fixedClock pins the API's notion of now for deterministic sampling.
type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }
func (c fixedClock) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

type stubProvider struct {
	doc []byte
	err error
}

func (p *stubProvider) Get(context.Context, string) ([]byte, error) {
	return p.doc, p.err
}

// equator test area: two degrees wide, crossed in two hours at the
// catalog speed below.
const routerGeoJSON = `{
  "type": "Polygon",
  "coordinates": [[[0, -1], [2, -1], [2, 1], [0, 1], [0, -1]]]
}`

const routerCatalog = `
events:
  - id: equator-2026
    name: Equator Wave
    start: 2026-06-21T12:00:00Z
    speed_kmh: 111.32
`

func newTestRouter(t *testing.T, provider events.GeoJsonProvider, now time.Time) http.Handler {
	t.Helper()
	catalog, err := events.ParseCatalog([]byte(routerCatalog))
	require.NoError(t, err)

	svc, err := events.NewService(events.ServiceConfig{
		Catalog:  catalog,
		Provider: provider,
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)

	return api.NewRouter(api.RouterConfig{
		Version:   "test",
		BuildTime: "now",
		Logger:    zerolog.Nop(),
		Events:    svc,
		Clock:     fixedClock{now: now},
	})
}

func doRequest(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t, &stubProvider{doc: []byte(routerGeoJSON)}, eventStart)

	rec := doRequest(t, h, "/v1/ops/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var health models.Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)

	rec = doRequest(t, h, "/v1/ops/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ListEvents(t *testing.T) {
	h := newTestRouter(t, &stubProvider{doc: []byte(routerGeoJSON)}, eventStart)

	rec := doRequest(t, h, "/v1/events")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var list models.EventList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Events, 1)
	assert.Equal(t, "equator-2026", list.Events[0].ID)
	assert.Equal(t, "west_to_east", list.Events[0].Direction)
	assert.Equal(t, "linear", list.Events[0].Variant)
}

func TestRouter_GetEvent(t *testing.T) {
	h := newTestRouter(t, &stubProvider{doc: []byte(routerGeoJSON)}, eventStart)

	rec := doRequest(t, h, "/v1/events/equator-2026")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary models.EventSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "Equator Wave", summary.Name)
	assert.Equal(t, 111.32, summary.SpeedKmh)
}

func TestRouter_GetEvent_NotFound(t *testing.T) {
	h := newTestRouter(t, &stubProvider{doc: []byte(routerGeoJSON)}, eventStart)

	rec := doRequest(t, h, "/v1/events/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeNotFound, problem.Type)
	assert.Equal(t, http.StatusNotFound, problem.Status)
	assert.Equal(t, "/v1/events/nope", problem.Instance)
	assert.NotEmpty(t, problem.TraceID)
}

func TestRouter_GetStatus(t *testing.T) {
	// One hour in: the front sits mid-area.
	h := newTestRouter(t, &stubProvider{doc: []byte(routerGeoJSON)}, eventStart.Add(time.Hour))

	rec := doRequest(t, h, "/v1/events/equator-2026/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var status models.EventStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "equator-2026", status.EventID)
	assert.Equal(t, observation.StatusRunning, status.Status)
	assert.InDelta(t, 50, status.Progression, 1e-3)
	// No position supplied, so no position-dependent fields.
	assert.False(t, status.InArea)
}

func TestRouter_GetStatus_WithPosition(t *testing.T) {
	h := newTestRouter(t, &stubProvider{doc: []byte(routerGeoJSON)}, eventStart.Add(time.Hour))

	rec := doRequest(t, h, "/v1/events/equator-2026/status?lat=0&lng=0.5")
	require.Equal(t, http.StatusOK, rec.Code)

	var status models.EventStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.InArea)
	assert.True(t, status.UserHit)

	// Ahead of the front.
	rec = doRequest(t, h, "/v1/events/equator-2026/status?lat=0&lng=1.5")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.InArea)
	assert.False(t, status.UserHit)
	assert.Greater(t, status.TimeBeforeHit, time.Duration(0))
}

func TestRouter_GetStatus_InvalidPosition(t *testing.T) {
	h := newTestRouter(t, &stubProvider{doc: []byte(routerGeoJSON)}, eventStart)

	rec := doRequest(t, h, "/v1/events/equator-2026/status?lat=abc&lng=0")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "lat", problem.Errors[0].Field)

	rec = doRequest(t, h, "/v1/events/equator-2026/status?lat=95&lng=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_GetStatus_AreaUnavailable(t *testing.T) {
	h := newTestRouter(t, &stubProvider{err: events.ErrAreaUnavailable}, eventStart)

	// Status degrades to UNDEFINED instead of failing.
	rec := doRequest(t, h, "/v1/events/equator-2026/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var status models.EventStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, observation.StatusUndefined, status.Status)
}

func TestRouter_GetPolygons(t *testing.T) {
	h := newTestRouter(t, &stubProvider{doc: []byte(routerGeoJSON)}, eventStart.Add(time.Hour))

	rec := doRequest(t, h, "/v1/events/equator-2026/polygons")
	require.Equal(t, http.StatusOK, rec.Code)

	var set models.PolygonSet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &set))
	assert.InDelta(t, 50, set.Progression, 1e-3)
	require.Len(t, set.Swept, 1)
	require.Len(t, set.Unswept, 1)
	// Rings come back closed, GeoJSON style.
	first := set.Swept[0]
	assert.Equal(t, first[0], first[len(first)-1])
}

func TestRouter_GetPolygons_At(t *testing.T) {
	h := newTestRouter(t, &stubProvider{doc: []byte(routerGeoJSON)}, eventStart)

	at := eventStart.Add(30 * time.Minute).Format(time.RFC3339)
	rec := doRequest(t, h, "/v1/events/equator-2026/polygons?at="+at)
	require.Equal(t, http.StatusOK, rec.Code)

	var set models.PolygonSet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &set))
	assert.InDelta(t, 25, set.Progression, 1e-3)

	rec = doRequest(t, h, "/v1/events/equator-2026/polygons?at=yesterday")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_GetPolygons_Polyline(t *testing.T) {
	h := newTestRouter(t, &stubProvider{doc: []byte(routerGeoJSON)}, eventStart.Add(time.Hour))

	rec := doRequest(t, h, "/v1/events/equator-2026/polygons?format=polyline")
	require.Equal(t, http.StatusOK, rec.Code)

	var set models.EncodedPolygonSet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &set))
	require.Len(t, set.Swept, 1)
	require.Len(t, set.Unswept, 1)
	assert.NotEmpty(t, set.Swept[0])
}

func TestRouter_GetPolygons_AreaUnavailable(t *testing.T) {
	h := newTestRouter(t, &stubProvider{err: events.ErrAreaUnavailable}, eventStart)

	rec := doRequest(t, h, "/v1/events/equator-2026/polygons")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeUnavailable, problem.Type)
}

func TestRouter_SecurityHeaders(t *testing.T) {
	h := newTestRouter(t, &stubProvider{doc: []byte(routerGeoJSON)}, eventStart)

	rec := doRequest(t, h, "/v1/events")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
