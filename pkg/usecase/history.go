package usecase

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/herald/pkg/domain/interfaces"
	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/m-mizutani/herald/pkg/domain/types"
	"github.com/m-mizutani/herald/pkg/utils/parallel"
)

// History lists umbrella builds together with the umbrella commit preceding each of them
type History struct {
	builds      interfaces.BuildHistory
	commits     interfaces.CommitLookup
	pipeline    string
	limit       int
	concurrency int
}

// NewHistory creates a History for the umbrella pipeline. limit caps the number of builds
// fetched when nothing was published yet; concurrency caps parallel parent lookups.
func NewHistory(builds interfaces.BuildHistory, commits interfaces.CommitLookup, pipeline string, limit, concurrency int) *History {
	return &History{
		builds:      builds,
		commits:     commits,
		pipeline:    pipeline,
		limit:       limit,
		concurrency: concurrency,
	}
}

// Fetch returns succeeded umbrella builds newest first, down to and including the watermark
// build, however many builds that is. An empty watermark fetches up to the configured limit.
func (h *History) Fetch(ctx context.Context, watermark types.BuildNumber) ([]*model.UmbrellaBuild, error) {
	builds, err := h.builds.ListSucceededBuilds(ctx, h.pipeline, watermark, h.limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list umbrella builds", goerr.V("pipeline", h.pipeline))
	}

	ctxlog.From(ctx).Debug("fetched umbrella builds",
		slog.String("pipeline", h.pipeline),
		slog.String("watermark", watermark.String()),
		slog.Int("count", len(builds)),
	)

	return parallel.Map(ctx, h.concurrency, builds, func(ctx context.Context, _ int, b *model.Build) (*model.UmbrellaBuild, error) {
		parent, err := h.commits.FirstParent(ctx, b.SourceCommit)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve parent of umbrella commit",
				goerr.V("build_number", b.Number),
				goerr.V("commit", b.SourceCommit),
			)
		}
		return &model.UmbrellaBuild{
			Number: b.Number,
			Commit: b.SourceCommit,
			Parent: parent,
		}, nil
	})
}
