package interfaces

import (
	"context"

	"github.com/m-mizutani/herald/pkg/domain/model"
)

// TagUseCase publishes insertion notifications for tracked products
type TagUseCase interface {
	// Run walks umbrella builds for each product in order and returns one report per product
	Run(ctx context.Context, products model.Products) []*model.ProductReport
}

// HookUseCase reacts to build completion events
type HookUseCase interface {
	// HandleBuildEvent starts a walk when the umbrella pipeline completed successfully
	HandleBuildEvent(ctx context.Context, event *model.BuildEvent) error

	// Running reports whether a walk is in progress
	Running() bool
}

// Reporter publishes the result of a walk
type Reporter interface {
	Report(ctx context.Context, reports []*model.ProductReport) error
}
