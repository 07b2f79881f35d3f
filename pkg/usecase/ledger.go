package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/herald/pkg/domain/interfaces"
	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/m-mizutani/herald/pkg/domain/types"
)

// Ledger records published notifications as GitHub issues and answers whether one exists
type Ledger struct {
	github interfaces.GitHubClient
	dryRun bool
}

// LedgerOption configures Ledger
type LedgerOption func(*Ledger)

// WithDryRun makes Create log the notification instead of creating it
func WithDryRun(dryRun bool) LedgerOption {
	return func(l *Ledger) {
		l.dryRun = dryRun
	}
}

// NewLedger creates a ledger backed by GitHub issues
func NewLedger(client interfaces.GitHubClient, opts ...LedgerOption) *Ledger {
	l := &Ledger{github: client}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DryRun reports whether Create is disabled
func (l *Ledger) DryRun() bool {
	return l.dryRun
}

func existsQuery(repo model.GitHubRepo, title, label string) string {
	return fmt.Sprintf(`repo:%s is:issue label:%q in:title %q`, repo.FullName(), label, title)
}

func labelQuery(repo model.GitHubRepo, label string) string {
	return fmt.Sprintf(`repo:%s is:issue label:%q`, repo.FullName(), label)
}

// Exists reports whether a notification with the title was already created in the repository
func (l *Ledger) Exists(ctx context.Context, repo model.GitHubRepo, title string) (bool, error) {
	query := existsQuery(repo, title, model.NotificationLabel)
	result, err := l.github.SearchIssues(ctx, query, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return false, goerr.Wrap(err, "failed to search existing notification", goerr.V("title", title))
	}

	ctxlog.From(ctx).Debug("searched notification",
		slog.String("query", query),
		slog.Int("total_count", result.GetTotal()),
	)
	return result.GetTotal() > 0, nil
}

// FindLastPublishedBuildNumber returns the umbrella build number of the most recently created
// notification with the label, or an empty build number if there is none
func (l *Ledger) FindLastPublishedBuildNumber(ctx context.Context, repo model.GitHubRepo, label string) (types.BuildNumber, error) {
	result, err := l.github.SearchIssues(ctx, labelQuery(repo, label), &github.SearchOptions{
		Sort:        "created",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to search last notification", goerr.V("repo", repo.FullName()))
	}

	if result.GetTotal() == 0 || len(result.Issues) == 0 {
		return "", nil
	}

	title := result.Issues[0].GetTitle()
	number, ok := model.BuildNumberFromTitle(title)
	if !ok {
		ctxlog.From(ctx).Warn("latest notification title has no build number",
			slog.String("repo", repo.FullName()),
			slog.String("title", title),
		)
		return "", nil
	}
	return number, nil
}

// Create publishes a notification and returns its URL
func (l *Ledger) Create(ctx context.Context, repo model.GitHubRepo, title, body, label string) (string, error) {
	if l.dryRun {
		ctxlog.From(ctx).Info("dry run: skip creating notification",
			slog.String("repo", repo.FullName()),
			slog.String("title", title),
			slog.Int("body_length", len(body)),
		)
		return "", nil
	}

	issue, err := l.github.CreateIssue(ctx, repo, &github.IssueRequest{
		Title:  &title,
		Body:   &body,
		Labels: &[]string{label},
	})
	if err != nil {
		return "", err
	}
	return issue.GetHTMLURL(), nil
}
