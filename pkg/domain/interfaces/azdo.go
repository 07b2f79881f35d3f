package interfaces

import (
	"context"

	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/m-mizutani/herald/pkg/domain/types"
)

// BuildHistory lists successful builds of a pipeline
type BuildHistory interface {
	// ListSucceededBuilds returns builds most-recent-first. With until set, listing stops after the
	// build numbered until (inclusive) or at the end of history, and limit is ignored. With an empty
	// until, listing stops after limit builds.
	ListSucceededBuilds(ctx context.Context, pipeline string, until types.BuildNumber, limit int) ([]*model.Build, error)
}

// CommitLookup resolves umbrella commit ancestry
type CommitLookup interface {
	// FirstParent returns the first parent of the commit
	FirstParent(ctx context.Context, commit types.CommitSHA) (types.CommitSHA, error)
}

// ManifestReader reads the umbrella release manifest
type ManifestReader interface {
	// ComponentURL returns the URL recorded for the component in the manifest at the commit,
	// or an empty string if the manifest has no such entry
	ComponentURL(ctx context.Context, commit types.CommitSHA, manifest, component string) (string, error)
}

// BuildLookup finds component builds in one build organization
type BuildLookup interface {
	// Name is the organization name used as key of model.Product.Pipelines
	Name() string
	// FindBuild returns the build of the pipeline with the number, or nil if there is none
	FindBuild(ctx context.Context, pipeline string, number types.BuildNumber) (*model.Build, error)
}
