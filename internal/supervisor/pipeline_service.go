// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package supervisor

import (
	"context"

	"github.com/basketwise/basketwise/internal/engagement"
)

// PipelineService runs the engagement event consumer under supervision.
// A consumer crash is restarted by the events layer; published events
// sit in the pub/sub buffer until the subscription is back.
type PipelineService struct {
	pipeline *engagement.Pipeline
}

// NewPipelineService wraps the pipeline as a supervised service.
func NewPipelineService(pipeline *engagement.Pipeline) *PipelineService {
	return &PipelineService{pipeline: pipeline}
}

// Serve implements suture.Service. It blocks consuming events until the
// context is canceled.
func (s *PipelineService) Serve(ctx context.Context) error {
	err := s.pipeline.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// String identifies the service in supervision logs.
func (s *PipelineService) String() string { return "engagement-pipeline" }
