// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package engagement

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/basketwise/basketwise/internal/logging"
)

// Topic is the pub/sub topic engagement events travel on.
const Topic = "engagement.events"

// Event is one engagement report in flight between the API surface and the
// tracker.
type Event struct {
	Surface    Surface   `json:"surface"`
	ProductID  string    `json:"product_id"`
	Viewer     Viewer    `json:"viewer"`
	Action     Action    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Validate checks the event's fields before it enters the pipeline.
func (e Event) Validate() error {
	if !e.Surface.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSurface, e.Surface)
	}
	if !e.Action.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAction, e.Action)
	}
	if e.ProductID == "" {
		return ErrMissingProduct
	}
	return e.Viewer.Validate()
}

// Pipeline decouples event ingestion from persistence with an in-process
// watermill pub/sub channel. Publishing never blocks on the store; a failed
// write is counted and dropped rather than redelivered.
type Pipeline struct {
	pubsub  *gochannel.GoChannel
	tracker *Tracker
	logger  zerolog.Logger
}

// NewPipeline creates a pipeline feeding the tracker.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPipeline(tracker *Tracker, buffer int64, logger zerolog.Logger) *Pipeline {
	logger = logger.With().Str("component", "engagement-pipeline").Logger()
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: buffer,
	}, logging.NewWatermillAdapter(logger))

	return &Pipeline{
		pubsub:  pubsub,
		tracker: tracker,
		logger:  logger,
	}
}

// Publish validates and enqueues one event.
func (p *Pipeline) Publish(_ context.Context, ev Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal engagement event: %w", err)
	}

	return p.pubsub.Publish(Topic, message.NewMessage(uuid.NewString(), data))
}

// Run consumes events until the context is cancelled or the pipeline is
// closed. Every message is acked exactly once; bad payloads and store
// failures are logged and dropped.
func (p *Pipeline) Run(ctx context.Context) error {
	msgs, err := p.pubsub.Subscribe(ctx, Topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", Topic, err)
	}

	p.logger.Info().Str("topic", Topic).Msg("engagement consumer started")

	for msg := range msgs {
		p.handle(ctx, msg)
	}

	p.logger.Info().Msg("engagement consumer stopped")
	return nil
}

func (p *Pipeline) handle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var ev Event
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		p.logger.Warn().Err(err).Str("message_id", msg.UUID).Msg("dropping malformed engagement event")
		return
	}

	if _, err := p.tracker.TrackAt(ctx, ev.Surface, ev.ProductID, ev.Viewer, ev.Action, ev.OccurredAt); err != nil {
		p.logger.Warn().
			Err(err).
			Str("surface", string(ev.Surface)).
			Str("action", string(ev.Action)).
			Str("product_id", ev.ProductID).
			Msg("dropping engagement event after failed write")
	}
}

// Close shuts the pub/sub channel down, unblocking Run.
func (p *Pipeline) Close() error {
	return p.pubsub.Close()
}
