package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/herald/pkg/domain/interfaces"
	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/m-mizutani/herald/pkg/domain/types"
)

type client struct {
	githubClient *github.Client
}

var _ interfaces.GitHubClient = (*client)(nil)

// Option configures the GitHub client
type Option func(*github.Client) error

// WithBaseURL points the client at another API endpoint, e.g. GitHub Enterprise or a test server
func WithBaseURL(baseURL string) Option {
	return func(c *github.Client) error {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return goerr.Wrap(err, "invalid GitHub API base URL", goerr.V("url", baseURL))
		}
		c.BaseURL = u
		return nil
	}
}

// NewClient creates a new GitHub client with personal access token authentication
func NewClient(token string, opts ...Option) (interfaces.GitHubClient, error) {
	githubClient := github.NewClient(nil)
	if token != "" {
		githubClient = githubClient.WithAuthToken(token)
	}
	return newClient(githubClient, opts...)
}

// NewAppClient creates a new GitHub client with GitHub App installation authentication
func NewAppClient(appID, installationID int64, privateKey []byte, opts ...Option) (interfaces.GitHubClient, error) {
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport",
			goerr.V("app_id", appID),
			goerr.V("installation_id", installationID),
		)
	}

	return newClient(github.NewClient(&http.Client{Transport: itr}), opts...)
}

func newClient(githubClient *github.Client, opts ...Option) (*client, error) {
	for _, opt := range opts {
		if err := opt(githubClient); err != nil {
			return nil, err
		}
	}
	return &client{githubClient: githubClient}, nil
}

// SearchIssues runs an issue search query
func (c *client) SearchIssues(ctx context.Context, query string, opts *github.SearchOptions) (*github.IssuesSearchResult, error) {
	result, _, err := c.githubClient.Search.Issues(ctx, query, opts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search issues", goerr.V("query", query))
	}
	return result, nil
}

// CreateIssue creates an issue in the repository
func (c *client) CreateIssue(ctx context.Context, repo model.GitHubRepo, req *github.IssueRequest) (*github.Issue, error) {
	issue, _, err := c.githubClient.Issues.Create(ctx, repo.Owner, repo.Name, req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create issue",
			goerr.V("repo", repo.FullName()),
			goerr.V("title", req.GetTitle()),
		)
	}
	return issue, nil
}

// CompareCommits returns the comparison between two commits. Commits of every page are collected
// into the returned comparison.
func (c *client) CompareCommits(ctx context.Context, repo model.GitHubRepo, base, head types.CommitSHA) (*github.CommitsComparison, error) {
	opts := &github.ListOptions{PerPage: 250}

	var comparison *github.CommitsComparison
	for {
		page, resp, err := c.githubClient.Repositories.CompareCommits(ctx, repo.Owner, repo.Name, string(base), string(head), opts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to compare commits",
				goerr.V("repo", repo.FullName()),
				goerr.V("base", base),
				goerr.V("head", head),
				goerr.V("page", opts.Page),
			)
		}

		if comparison == nil {
			comparison = page
		} else {
			comparison.Commits = append(comparison.Commits, page.Commits...)
		}

		if resp == nil || resp.NextPage == 0 {
			return comparison, nil
		}
		opts.Page = resp.NextPage
	}
}

// GetPullRequest returns a pull request by number
func (c *client) GetPullRequest(ctx context.Context, repo model.GitHubRepo, number int) (*github.PullRequest, error) {
	pr, _, err := c.githubClient.PullRequests.Get(ctx, repo.Owner, repo.Name, number)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get pull request",
			goerr.V("repo", repo.FullName()),
			goerr.V("number", number),
		)
	}
	return pr, nil
}
