package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const waveMeterName = "github.com/drwave-www/worldwidewaves/internal/telemetry"

// ObservationMetrics holds the instruments for event observation.
type ObservationMetrics struct {
	statusTransitions metric.Int64Counter
	activeObservers   metric.Int64UpDownCounter
}

// NewObservationMetrics creates the instruments on the global meter.
func NewObservationMetrics() (*ObservationMetrics, error) {
	meter := otel.Meter(waveMeterName)

	statusTransitions, err := meter.Int64Counter(
		"wave.observation.status_transitions",
		metric.WithDescription("Number of observed event status transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	activeObservers, err := meter.Int64UpDownCounter(
		"wave.observation.active_observers",
		metric.WithDescription("Number of running event observers"),
		metric.WithUnit("{observer}"),
	)
	if err != nil {
		return nil, err
	}

	return &ObservationMetrics{
		statusTransitions: statusTransitions,
		activeObservers:   activeObservers,
	}, nil
}

// RecordTransition records one status transition for an event.
func (m *ObservationMetrics) RecordTransition(eventID, from, to string) {
	m.statusTransitions.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("event.id", eventID),
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

// ObserverStarted records an observer starting.
func (m *ObservationMetrics) ObserverStarted(eventID string) {
	m.activeObservers.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("event.id", eventID),
	))
}

// ObserverStopped records an observer stopping.
func (m *ObservationMetrics) ObserverStopped(eventID string) {
	m.activeObservers.Add(context.Background(), -1, metric.WithAttributes(
		attribute.String("event.id", eventID),
	))
}
