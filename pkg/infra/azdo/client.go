package azdo

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"

	"github.com/m-mizutani/herald/pkg/domain/interfaces"
	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/m-mizutani/herald/pkg/domain/types"
)

const defaultPageSize = 50

// Client accesses builds and, when a repository is configured, git data of one Azure DevOps
// organization and project
type Client struct {
	name       string
	project    string
	repository string
	builds     build.Client
	git        git.Client
}

var (
	_ interfaces.BuildHistory   = (*Client)(nil)
	_ interfaces.BuildLookup    = (*Client)(nil)
	_ interfaces.CommitLookup   = (*Client)(nil)
	_ interfaces.ManifestReader = (*Client)(nil)
)

// Option configures Client
type Option func(*Client)

// WithRepository sets the git repository used by FirstParent and ComponentURL
func WithRepository(repository string) Option {
	return func(c *Client) {
		c.repository = repository
	}
}

// WithBuildClient replaces the build API client
func WithBuildClient(b build.Client) Option {
	return func(c *Client) {
		c.builds = b
	}
}

// WithGitClient replaces the git API client
func WithGitClient(g git.Client) Option {
	return func(c *Client) {
		c.git = g
	}
}

// New creates a client for the organization at orgURL authenticated with a personal access token.
// name is the organization key used in product pipeline tables.
func New(ctx context.Context, name, orgURL, project, pat string, opts ...Option) (*Client, error) {
	conn := azuredevops.NewPatConnection(orgURL, pat)

	builds, err := build.NewClient(ctx, conn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Azure DevOps build client", goerr.V("org", orgURL))
	}

	c := &Client{
		name:    name,
		project: project,
		builds:  builds,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.repository != "" && c.git == nil {
		g, err := git.NewClient(ctx, conn)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Azure DevOps git client", goerr.V("org", orgURL))
		}
		c.git = g
	}

	return c, nil
}

// NewWithClients creates a client from existing API clients
func NewWithClients(name, project string, builds build.Client, opts ...Option) *Client {
	c := &Client{
		name:    name,
		project: project,
		builds:  builds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the organization key
func (c *Client) Name() string {
	return c.name
}

// definitionID resolves a pipeline name to its definition ID. It returns false when the
// organization has no such pipeline.
func (c *Client) definitionID(ctx context.Context, pipeline string) (int, bool, error) {
	resp, err := c.builds.GetDefinitions(ctx, build.GetDefinitionsArgs{
		Project: &c.project,
		Name:    &pipeline,
	})
	if err != nil {
		return 0, false, goerr.Wrap(err, "failed to get build definitions",
			goerr.V("org", c.name),
			goerr.V("pipeline", pipeline),
		)
	}

	for _, def := range resp.Value {
		if def.Id != nil && def.Name != nil && *def.Name == pipeline {
			return *def.Id, true, nil
		}
	}
	return 0, false, nil
}

// ListSucceededBuilds returns succeeded builds of the pipeline, most recently finished first.
// With a non-empty until, builds are paged down to and including that build (or to the end of
// history) and limit is ignored. Otherwise at most limit builds are returned.
func (c *Client) ListSucceededBuilds(ctx context.Context, pipeline string, until types.BuildNumber, limit int) ([]*model.Build, error) {
	defID, ok, err := c.definitionID(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, goerr.New("pipeline not found", goerr.V("org", c.name), goerr.V("pipeline", pipeline))
	}

	if until != "" {
		limit = 0
	}

	pageSize := defaultPageSize
	if limit > 0 && limit < pageSize {
		pageSize = limit
	}

	var (
		builds       []*model.Build
		continuation string
	)
	for {
		args := build.GetBuildsArgs{
			Project:      &c.project,
			Definitions:  &[]int{defID},
			ResultFilter: &build.BuildResultValues.Succeeded,
			QueryOrder:   &build.BuildQueryOrderValues.FinishTimeDescending,
			Top:          &pageSize,
		}
		if continuation != "" {
			args.ContinuationToken = &continuation
		}

		resp, err := c.builds.GetBuilds(ctx, args)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get builds",
				goerr.V("org", c.name),
				goerr.V("pipeline", pipeline),
			)
		}

		for _, b := range resp.Value {
			record := toBuild(b)
			if record == nil {
				continue
			}
			builds = append(builds, record)

			if until != "" && record.Number == until {
				return builds, nil
			}
			if limit > 0 && len(builds) >= limit {
				return builds, nil
			}
		}

		if resp.ContinuationToken == "" || len(resp.Value) == 0 {
			return builds, nil
		}
		continuation = resp.ContinuationToken
	}
}

// FindBuild returns the build of the pipeline with the number, or nil if the organization has
// no such pipeline or build
func (c *Client) FindBuild(ctx context.Context, pipeline string, number types.BuildNumber) (*model.Build, error) {
	defID, ok, err := c.definitionID(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	buildNumber := string(number)
	resp, err := c.builds.GetBuilds(ctx, build.GetBuildsArgs{
		Project:     &c.project,
		Definitions: &[]int{defID},
		BuildNumber: &buildNumber,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get build",
			goerr.V("org", c.name),
			goerr.V("pipeline", pipeline),
			goerr.V("build_number", number),
		)
	}

	for _, b := range resp.Value {
		if record := toBuild(b); record != nil {
			return record, nil
		}
	}
	return nil, nil
}

func toBuild(b build.Build) *model.Build {
	if b.BuildNumber == nil || b.SourceVersion == nil || *b.SourceVersion == "" {
		return nil
	}
	return &model.Build{
		Number:       types.BuildNumber(*b.BuildNumber),
		SourceCommit: types.CommitSHA(*b.SourceVersion),
	}
}
