// Package stream provides the domain-event boundary and a DynamoDB Streams
// handler that feeds it.
package stream

import (
	"context"
	"log/slog"
)

// Notifier receives best-effort domain events after successful mutations.
// Emission is fire-and-forget: callers log and discard any returned error,
// and implementations must never block a request on delivery.
type Notifier interface {
	Emit(ctx context.Context, eventType string, payload map[string]any) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, eventType string, payload map[string]any) error

// Emit calls f.
func (f NotifierFunc) Emit(ctx context.Context, eventType string, payload map[string]any) error {
	return f(ctx, eventType, payload)
}

// LogNotifier writes events to a slog.Logger. It never fails.
type LogNotifier struct {
	Logger *slog.Logger
}

// Emit logs the event.
func (n LogNotifier) Emit(ctx context.Context, eventType string, payload map[string]any) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "domain event",
		"type", eventType,
		"payload", payload,
	)
	return nil
}
