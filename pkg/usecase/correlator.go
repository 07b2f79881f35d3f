package usecase

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/herald/pkg/domain/interfaces"
	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/m-mizutani/herald/pkg/domain/types"
)

// Correlator resolves the component build and commit that an umbrella commit inserted
type Correlator struct {
	manifest     interfaces.ManifestReader
	manifestPath string
	// lookups are tried in order; the first organization returning a build wins
	lookups []interfaces.BuildLookup
}

// NewCorrelator creates a Correlator. lookups are in priority order.
func NewCorrelator(manifest interfaces.ManifestReader, manifestPath string, lookups []interfaces.BuildLookup) *Correlator {
	return &Correlator{
		manifest:     manifest,
		manifestPath: manifestPath,
		lookups:      lookups,
	}
}

// Resolve returns the product's build and commit as of the umbrella commit. A resolution that
// cannot be completed is returned unresolved with the missing stage; only collaborator faults are
// returned as errors.
func (c *Correlator) Resolve(ctx context.Context, product *model.Product, umbrellaCommit types.CommitSHA) (*model.ComponentResolution, error) {
	logger := ctxlog.From(ctx).With(
		slog.String("product", product.Name),
		slog.String("umbrella_commit", umbrellaCommit.Short()),
	)

	url, err := c.manifest.ComponentURL(ctx, umbrellaCommit, c.manifestPath, product.Component)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up manifest entry",
			goerr.V("product", product.Name),
			goerr.V("umbrella_commit", umbrellaCommit),
		)
	}
	if url == "" {
		logger.Warn("component not found in manifest", slog.String("component", product.Component))
		return &model.ComponentResolution{Missing: model.StageManifest}, nil
	}

	number, err := model.ParseBuildNumberFromURL(url)
	if err != nil {
		logger.Warn("failed to parse build number from manifest URL",
			slog.String("url", url),
			slog.Any("error", err),
		)
		return &model.ComponentResolution{Missing: model.StageBuildNumber}, nil
	}

	for _, lookup := range c.lookups {
		pipeline, ok := product.Pipeline(lookup.Name())
		if !ok {
			continue
		}

		build, err := lookup.FindBuild(ctx, pipeline, number)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to look up component build",
				goerr.V("product", product.Name),
				goerr.V("org", lookup.Name()),
				goerr.V("build_number", number),
			)
		}
		if build == nil {
			logger.Debug("build not found in organization",
				slog.String("org", lookup.Name()),
				slog.String("pipeline", pipeline),
				slog.String("build_number", number.String()),
			)
			continue
		}

		logger.Debug("resolved component build",
			slog.String("org", lookup.Name()),
			slog.String("build_number", number.String()),
			slog.String("commit", build.SourceCommit.Short()),
		)
		return &model.ComponentResolution{
			Build:  number,
			Commit: build.SourceCommit,
		}, nil
	}

	logger.Warn("component build not found in any organization", slog.String("build_number", number.String()))
	return &model.ComponentResolution{Build: number, Missing: model.StageBuildLookup}, nil
}
