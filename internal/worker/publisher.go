// Package worker runs the long-lived observation side of the service:
// one observer per catalog event, a periodic area refresh job and an
// optional Pub/Sub publisher for status transitions.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// TransitionMessage is the payload published on every observed status
// transition.
type TransitionMessage struct {
	EventID     string    `json:"event_id"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Progression float64   `json:"progression"`
	At          time.Time `json:"at"`
}

// PublisherConfig holds configuration for the transition publisher.
type PublisherConfig struct {
	ProjectID string
	TopicID   string
	Logger    zerolog.Logger
}

// Publisher publishes status transitions to a Pub/Sub topic so
// downstream consumers (push notification fan-out, analytics) can
// react to wave lifecycle changes.
type Publisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	logger    zerolog.Logger
}

// NewPublisher creates the publisher.
func NewPublisher(ctx context.Context, cfg PublisherConfig) (*Publisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &Publisher{
		client:    client,
		publisher: client.Publisher(cfg.TopicID),
		logger:    cfg.Logger,
	}, nil
}

// PublishTransition publishes one transition and waits for the server
// acknowledgement.
func (p *Publisher) PublishTransition(ctx context.Context, msg TransitionMessage) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding transition: %w", err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: raw,
		Attributes: map[string]string{
			"event_id": msg.EventID,
			"status":   msg.To,
		},
	})

	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publishing transition: %w", err)
	}

	p.logger.Debug().
		Str("event_id", msg.EventID).
		Str("message_id", id).
		Str("to", msg.To).
		Msg("transition published")
	return nil
}

// Close flushes pending messages and closes the client.
func (p *Publisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}
