package events_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drwave-www/worldwidewaves/internal/events"
)

func TestHTTPProvider_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/paris.geojson", r.URL.Path)
		_, _ = w.Write([]byte(testGeoJSON))
	}))
	defer srv.Close()

	p := events.NewHTTPProvider(events.HTTPProviderConfig{
		BaseURL: srv.URL,
		Logger:  zerolog.Nop(),
	})

	raw, err := p.Get(context.Background(), "paris")
	require.NoError(t, err)
	assert.JSONEq(t, testGeoJSON, string(raw))
}

func TestHTTPProvider_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(testGeoJSON))
	}))
	defer srv.Close()

	p := events.NewHTTPProvider(events.HTTPProviderConfig{
		BaseURL:         srv.URL,
		InitialInterval: time.Millisecond,
		Logger:          zerolog.Nop(),
	})

	_, err := p.Get(context.Background(), "paris")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPProvider_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := events.NewHTTPProvider(events.HTTPProviderConfig{
		BaseURL:         srv.URL,
		InitialInterval: time.Millisecond,
		Logger:          zerolog.Nop(),
	})

	_, err := p.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, events.ErrAreaUnavailable)
	// 404 is not retried.
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPProvider_URLFor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/custom/path.geojson", r.URL.Path)
		_, _ = w.Write([]byte(testGeoJSON))
	}))
	defer srv.Close()

	p := events.NewHTTPProvider(events.HTTPProviderConfig{
		URLFor: func(id string) string {
			return srv.URL + "/custom/path.geojson"
		},
		Logger: zerolog.Nop(),
	})

	_, err := p.Get(context.Background(), "anything")
	require.NoError(t, err)

	// No base URL and no mapping: nothing to fetch.
	bare := events.NewHTTPProvider(events.HTTPProviderConfig{Logger: zerolog.Nop()})
	_, err = bare.Get(context.Background(), "anything")
	assert.ErrorIs(t, err, events.ErrAreaUnavailable)
}
