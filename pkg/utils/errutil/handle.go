package errutil

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
)

// Handle logs an error that is not returned to any caller and sends it to Sentry when a Sentry
// client is configured.
func Handle(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}

	ctxlog.From(ctx).Error(msg, slog.Any("error", err))

	hub := sentry.CurrentHub()
	if hub.Client() == nil {
		return
	}
	hub = hub.Clone()
	hub.Scope().SetTag("message", msg)
	evID := hub.CaptureException(err)
	if evID != nil {
		ctxlog.From(ctx).Debug("error sent to Sentry", slog.String("event_id", string(*evID)))
	}
}
