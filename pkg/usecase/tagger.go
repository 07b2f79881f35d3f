package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/herald/pkg/domain/interfaces"
	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/m-mizutani/herald/pkg/domain/types"
	"github.com/m-mizutani/herald/pkg/utils/errutil"
)

// Tagger walks umbrella builds newest to oldest and publishes one notification per umbrella
// build that changed a product's commit
type Tagger struct {
	history    *History
	correlator *Correlator
	diff       interfaces.DiffResolver
	ledger     *Ledger
	reporters  []interfaces.Reporter
}

var _ interfaces.TagUseCase = (*Tagger)(nil)

// TaggerOption configures Tagger
type TaggerOption func(*Tagger)

// WithReporter adds a reporter called after each Run
func WithReporter(r interfaces.Reporter) TaggerOption {
	return func(t *Tagger) {
		t.reporters = append(t.reporters, r)
	}
}

// NewTagger creates a Tagger
func NewTagger(history *History, correlator *Correlator, diff interfaces.DiffResolver, ledger *Ledger, opts ...TaggerOption) *Tagger {
	t := &Tagger{
		history:    history,
		correlator: correlator,
		diff:       diff,
		ledger:     ledger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run processes products one at a time in the given order. A hard error for one product is
// recorded in its report and does not prevent the next product from being processed.
func (t *Tagger) Run(ctx context.Context, products model.Products) []*model.ProductReport {
	runID := types.NewRunID()
	logger := ctxlog.From(ctx).With(slog.String("run_id", runID.String()))
	ctx = ctxlog.With(ctx, logger)

	logger.Info("Start notification walk",
		slog.Int("products", len(products)),
		slog.Bool("dry_run", t.ledger.DryRun()),
	)

	reports := make([]*model.ProductReport, 0, len(products))
	for _, product := range products {
		report, err := t.RunForProduct(ctx, product)
		if err != nil {
			errutil.Handle(ctx, "notification walk aborted", goerr.Wrap(err, "walk failed", goerr.V("product", product.Name)))
		}
		reports = append(reports, report)
	}

	for _, r := range t.reporters {
		if err := r.Report(ctx, reports); err != nil {
			errutil.Handle(ctx, "failed to report walk result", err)
		}
	}

	return reports
}

// RunForProduct walks umbrella builds for one product. It stops at the first build already
// notified or the first failed build. The returned report is never nil.
func (t *Tagger) RunForProduct(ctx context.Context, product *model.Product) (*model.ProductReport, error) {
	logger := ctxlog.From(ctx).With(slog.String("product", product.Name))
	ctx = ctxlog.With(ctx, logger)
	report := &model.ProductReport{Product: product, Stop: model.StopExhausted}

	abort := func(err error) (*model.ProductReport, error) {
		report.Stop = model.StopError
		report.Err = err
		return report, err
	}

	watermark, err := t.ledger.FindLastPublishedBuildNumber(ctx, product.Repository, model.NotificationLabel)
	if err != nil {
		return abort(err)
	}

	builds, err := t.history.Fetch(ctx, watermark)
	if err != nil {
		return abort(err)
	}

	logger.Info("Walking umbrella builds",
		slog.String("watermark", watermark.String()),
		slog.Int("builds", len(builds)),
	)

	for _, build := range builds {
		outcome, err := t.tagBuild(ctx, product, build)
		if err != nil {
			return abort(goerr.Wrap(err, "failed to process umbrella build", goerr.V("build_number", build.Number)))
		}

		report.Add(outcome)
		logOutcome(ctx, outcome)

		if !outcome.Continue() {
			break
		}
	}

	logger.Info("Finished umbrella builds",
		slog.Int("created", report.Created()),
		slog.String("stop_reason", string(report.Stop)),
	)
	return report, nil
}

func (t *Tagger) tagBuild(ctx context.Context, product *model.Product, build *model.UmbrellaBuild) (model.Outcome, error) {
	current, err := t.correlator.Resolve(ctx, product, build.Commit)
	if err != nil {
		return model.Outcome{}, err
	}
	previous, err := t.correlator.Resolve(ctx, product, build.Parent)
	if err != nil {
		return model.Outcome{}, err
	}

	if !current.Resolved() {
		return model.Failed(build, current.Missing, model.SideCurrent,
			goerr.New("component not resolved at umbrella commit", goerr.V("commit", build.Commit))), nil
	}
	if !previous.Resolved() {
		return model.Failed(build, previous.Missing, model.SidePrevious,
			goerr.New("component not resolved at parent umbrella commit", goerr.V("commit", build.Parent))), nil
	}

	if current.Commit == previous.Commit {
		return model.NoChange(build), nil
	}

	diff, err := t.diff.Diff(ctx, product.Repository, previous.Commit, current.Commit)
	if err != nil {
		return model.Failed(build, model.StageDiff, model.SideNone, err), nil
	}

	title := model.NotificationTitle(build.Number)
	exists, err := t.ledger.Exists(ctx, product.Repository, title)
	if err != nil {
		return model.Outcome{}, err
	}
	if exists {
		return model.AlreadyNotified(build), nil
	}

	body := notificationBody(product, build, previous, current, diff)
	url, err := t.ledger.Create(ctx, product.Repository, title, body, model.NotificationLabel)
	if err != nil {
		return model.Failed(build, model.StageCreate, model.SideNone, err), nil
	}

	return model.Succeeded(build, url, t.ledger.DryRun()), nil
}

func notificationBody(product *model.Product, build *model.UmbrellaBuild, previous, current *model.ComponentResolution, diff string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s build %s was inserted in VS build %s (replacing %s).\n\n",
		product.Name, current.Build, build.Number, previous.Build))
	sb.WriteString(fmt.Sprintf("Umbrella commit: `%s`, component commits: `%s` -> `%s`\n\n",
		build.Commit.Short(), previous.Commit.Short(), current.Commit.Short()))
	sb.WriteString("### Pull requests\n\n")
	sb.WriteString(diff)
	return sb.String()
}

func logOutcome(ctx context.Context, o model.Outcome) {
	logger := ctxlog.From(ctx).With(
		slog.String("build_number", o.Build.Number.String()),
		slog.String("outcome", o.Kind.String()),
	)

	switch o.Kind {
	case model.OutcomeSucceeded:
		logger.Info("Notification created", slog.String("url", o.IssueURL), slog.Bool("dry_run", o.DryRun))
	case model.OutcomeNoChange:
		logger.Info("Component unchanged, continue")
	case model.OutcomeAlreadyNotified:
		logger.Info("Reached already notified build, stop")
	case model.OutcomeFailed:
		logger.Warn("Failed to process umbrella build, stop",
			slog.String("stage", string(o.Stage)),
			slog.String("side", string(o.Side)),
			slog.Any("error", o.Reason),
		)
	}
}
