// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

// Package supervisor runs the long-lived parts of the process under a
// suture supervision tree.
//
// The tree has two child layers:
//
//   - events: the engagement event consumer
//   - api: the HTTP server
//
// The layers isolate failures from each other. A crashing event
// consumer is restarted with backoff while the API keeps serving, and
// vice versa. Supervision events are logged through sutureslog, bridged
// into zerolog by the logging package's slog handler.
package supervisor
