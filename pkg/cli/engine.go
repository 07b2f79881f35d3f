package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/herald/pkg/cli/config"
	"github.com/m-mizutani/herald/pkg/domain/interfaces"
	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/m-mizutani/herald/pkg/infra/azdo"
	"github.com/m-mizutani/herald/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// engineConfig groups the settings shared by the run and serve commands
type engineConfig struct {
	walk   config.Walk
	azdo   config.AzureDevOps
	github config.GitHub
	sentry config.Sentry
	slack  config.Slack
}

func (c *engineConfig) flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, c.walk.Flags()...)
	flags = append(flags, c.azdo.Flags()...)
	flags = append(flags, c.github.Flags()...)
	flags = append(flags, c.sentry.Flags()...)
	flags = append(flags, c.slack.Flags()...)
	return flags
}

// engine is the wired notification walk
type engine struct {
	tagger   *usecase.Tagger
	products model.Products
	umbrella model.Umbrella
}

// newEngine loads the products configuration and connects every client
func newEngine(ctx context.Context, cfg *engineConfig, reporters ...interfaces.Reporter) (*engine, error) {
	logger := ctxlog.From(ctx)

	file, err := config.LoadFile(cfg.walk.ConfigPath)
	if err != nil {
		return nil, err
	}

	products, err := file.ToProducts()
	if err != nil {
		return nil, err
	}
	umbrella := file.ToUmbrella()

	logger.Info("Configuration loaded",
		slog.String("path", cfg.walk.ConfigPath),
		slog.Int("products", len(products)),
		slog.Int("organizations", len(file.Organizations)),
		slog.Any("github", cfg.github),
	)

	lookups := make([]interfaces.BuildLookup, 0, len(file.Organizations))
	for _, org := range file.Organizations {
		client, err := azdo.New(ctx, org.Name, org.URL, org.Project, cfg.azdo.PAT)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to connect organization", goerr.V("organization", org.Name))
		}
		lookups = append(lookups, client)
	}

	umbrellaOrg, err := file.UmbrellaOrganization()
	if err != nil {
		return nil, err
	}
	umbrellaClient, err := azdo.New(ctx, umbrellaOrg.Name, umbrellaOrg.URL, umbrellaOrg.Project, cfg.azdo.PAT,
		azdo.WithRepository(umbrella.Repository),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect umbrella organization", goerr.V("organization", umbrellaOrg.Name))
	}

	githubClient, err := cfg.github.NewClient()
	if err != nil {
		return nil, err
	}

	var opts []usecase.TaggerOption
	for _, r := range reporters {
		opts = append(opts, usecase.WithReporter(r))
	}
	if slackReporter := cfg.slack.NewReporter(); slackReporter != nil {
		opts = append(opts, usecase.WithReporter(slackReporter))
	}

	tagger := usecase.NewTagger(
		usecase.NewHistory(umbrellaClient, umbrellaClient, umbrella.Pipeline, cfg.walk.MaxBuilds, cfg.walk.Concurrency),
		usecase.NewCorrelator(umbrellaClient, umbrella.Manifest, lookups),
		usecase.NewDiffResolver(githubClient),
		usecase.NewLedger(githubClient, usecase.WithDryRun(cfg.walk.DryRun)),
		opts...,
	)

	return &engine{
		tagger:   tagger,
		products: products,
		umbrella: umbrella,
	}, nil
}
