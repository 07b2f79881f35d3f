package usecase

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/herald/pkg/domain/interfaces"
	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/m-mizutani/herald/pkg/utils/async"
)

type hookUseCase struct {
	tagger   interfaces.TagUseCase
	products model.Products
	pipeline string
	running  atomic.Bool
	// done is called after each dispatched walk; used by tests
	done func()
}

// HookOption configures the hook use case
type HookOption func(*hookUseCase)

// WithWalkDone sets a callback invoked when a dispatched walk finishes
func WithWalkDone(fn func()) HookOption {
	return func(uc *hookUseCase) {
		uc.done = fn
	}
}

// NewHook creates a HookUseCase that starts a walk when the umbrella pipeline completes
func NewHook(tagger interfaces.TagUseCase, products model.Products, pipeline string, opts ...HookOption) interfaces.HookUseCase {
	uc := &hookUseCase{
		tagger:   tagger,
		products: products,
		pipeline: pipeline,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Running reports whether a walk is in progress
func (uc *hookUseCase) Running() bool {
	return uc.running.Load()
}

// HandleBuildEvent starts an asynchronous walk for a succeeded umbrella build. Events for other
// pipelines, unsuccessful builds and events received while a walk is running are ignored.
func (uc *hookUseCase) HandleBuildEvent(ctx context.Context, event *model.BuildEvent) error {
	logger := ctxlog.From(ctx).With(
		slog.String("event_id", event.ID),
		slog.String("pipeline", event.Pipeline),
		slog.String("build_number", event.BuildNumber),
	)

	if !event.IsSucceededCompletion(uc.pipeline) {
		logger.Info("Ignoring build event",
			slog.String("event_type", event.EventType),
			slog.String("result", event.Result),
		)
		return nil
	}

	if !uc.running.CompareAndSwap(false, true) {
		logger.Warn("Walk already running, ignoring build event")
		return nil
	}

	logger.Info("Umbrella build completed, starting walk")
	async.Dispatch(ctx, "walk", func(ctx context.Context) error {
		defer func() {
			uc.running.Store(false)
			if uc.done != nil {
				uc.done()
			}
		}()
		uc.tagger.Run(ctx, uc.products)
		return nil
	})

	return nil
}
