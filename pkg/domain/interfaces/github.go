package interfaces

import (
	"context"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/m-mizutani/herald/pkg/domain/types"
)

// GitHubClient defines operations for interacting with GitHub API
type GitHubClient interface {
	// SearchIssues runs an issue search query
	SearchIssues(ctx context.Context, query string, opts *github.SearchOptions) (*github.IssuesSearchResult, error)

	// CreateIssue creates an issue in the repository
	CreateIssue(ctx context.Context, repo model.GitHubRepo, req *github.IssueRequest) (*github.Issue, error)

	// CompareCommits returns the comparison between two commits
	CompareCommits(ctx context.Context, repo model.GitHubRepo, base, head types.CommitSHA) (*github.CommitsComparison, error)

	// GetPullRequest returns a pull request by number
	GetPullRequest(ctx context.Context, repo model.GitHubRepo, number int) (*github.PullRequest, error)
}

// DiffResolver describes what was merged into a component between two commits
type DiffResolver interface {
	// Diff returns a formatted description of the pull requests merged between from and to
	Diff(ctx context.Context, repo model.GitHubRepo, from, to types.CommitSHA) (string, error)
}
