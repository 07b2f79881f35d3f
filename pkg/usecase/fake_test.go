package usecase_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/go-github/v75/github"

	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/m-mizutani/herald/pkg/domain/types"
)

// fakeHistory serves a fixed umbrella build list, newest first
type fakeHistory struct {
	builds []*model.Build
	err    error
	calls  []types.BuildNumber
}

func (f *fakeHistory) ListSucceededBuilds(ctx context.Context, pipeline string, until types.BuildNumber, limit int) ([]*model.Build, error) {
	f.calls = append(f.calls, until)
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.Build
	for _, b := range f.builds {
		out = append(out, b)
		if until != "" && b.Number == until {
			break
		}
		if until == "" && limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// fakeCommits maps an umbrella commit to its parent
type fakeCommits struct {
	mu      sync.Mutex
	parents map[types.CommitSHA]types.CommitSHA
	calls   int
}

func (f *fakeCommits) FirstParent(ctx context.Context, commit types.CommitSHA) (types.CommitSHA, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	parent, ok := f.parents[commit]
	if !ok {
		return "", fmt.Errorf("unknown commit %s", commit)
	}
	return parent, nil
}

// fakeManifest maps an umbrella commit to the component URL in the manifest
type fakeManifest struct {
	urls    map[types.CommitSHA]string
	err     error
	queried []types.CommitSHA
}

func (f *fakeManifest) ComponentURL(ctx context.Context, commit types.CommitSHA, manifest, component string) (string, error) {
	f.queried = append(f.queried, commit)
	if f.err != nil {
		return "", f.err
	}
	return f.urls[commit], nil
}

func (f *fakeManifest) wasQueried(commit types.CommitSHA) bool {
	for _, c := range f.queried {
		if c == commit {
			return true
		}
	}
	return false
}

// fakeLookup is one build organization
type fakeLookup struct {
	name   string
	builds map[types.BuildNumber]types.CommitSHA
	err    error
	calls  []string
}

func (f *fakeLookup) Name() string { return f.name }

func (f *fakeLookup) FindBuild(ctx context.Context, pipeline string, number types.BuildNumber) (*model.Build, error) {
	f.calls = append(f.calls, pipeline+"#"+string(number))
	if f.err != nil {
		return nil, f.err
	}
	commit, ok := f.builds[number]
	if !ok {
		return nil, nil
	}
	return &model.Build{Number: number, SourceCommit: commit}, nil
}

// fakeGitHub is an in-memory issue tracker and component repository
type fakeGitHub struct {
	// titles of issues in creation order
	titles    []string
	created   []*github.IssueRequest
	queries   []string
	searchErr error
	createErr error
	// commit messages returned by CompareCommits, keyed by "base...head"
	comparisons map[string][]string
	compareErr  error
	pulls       map[int]*github.PullRequest
}

func (f *fakeGitHub) SearchIssues(ctx context.Context, query string, opts *github.SearchOptions) (*github.IssuesSearchResult, error) {
	f.queries = append(f.queries, query)
	if f.searchErr != nil {
		return nil, f.searchErr
	}

	var matched []*github.Issue
	if strings.Contains(query, "in:title") {
		for _, title := range f.titles {
			if strings.Contains(query, fmt.Sprintf("%q", title)) {
				matched = append(matched, &github.Issue{Title: github.Ptr(title)})
			}
		}
	} else {
		for i := len(f.titles) - 1; i >= 0; i-- {
			matched = append(matched, &github.Issue{Title: github.Ptr(f.titles[i])})
		}
	}
	if opts != nil && opts.PerPage > 0 && len(matched) > opts.PerPage {
		matched = matched[:opts.PerPage]
	}

	total := len(matched)
	return &github.IssuesSearchResult{Total: &total, Issues: matched}, nil
}

func (f *fakeGitHub) CreateIssue(ctx context.Context, repo model.GitHubRepo, req *github.IssueRequest) (*github.Issue, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	f.titles = append(f.titles, req.GetTitle())
	url := fmt.Sprintf("https://github.com/%s/issues/%d", repo.FullName(), len(f.titles))
	return &github.Issue{Number: github.Ptr(len(f.titles)), HTMLURL: &url}, nil
}

func (f *fakeGitHub) CompareCommits(ctx context.Context, repo model.GitHubRepo, base, head types.CommitSHA) (*github.CommitsComparison, error) {
	if f.compareErr != nil {
		return nil, f.compareErr
	}
	messages, ok := f.comparisons[string(base)+"..."+string(head)]
	if !ok {
		return nil, fmt.Errorf("no comparison for %s...%s", base, head)
	}
	comparison := &github.CommitsComparison{}
	for _, msg := range messages {
		comparison.Commits = append(comparison.Commits, &github.RepositoryCommit{
			Commit: &github.Commit{Message: github.Ptr(msg)},
		})
	}
	return comparison, nil
}

func (f *fakeGitHub) GetPullRequest(ctx context.Context, repo model.GitHubRepo, number int) (*github.PullRequest, error) {
	pr, ok := f.pulls[number]
	if !ok {
		return nil, fmt.Errorf("pull request %d not found", number)
	}
	return pr, nil
}

// fakeDiff returns canned text per commit pair
type fakeDiff struct {
	err   error
	calls []string
}

func (f *fakeDiff) Diff(ctx context.Context, repo model.GitHubRepo, from, to types.CommitSHA) (string, error) {
	f.calls = append(f.calls, string(from)+"..."+string(to))
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("- changes %s...%s\n", from, to), nil
}

func dropURL(number string) string {
	return "https://vsdrop.example.com/file/v1/Products/DevDiv/dotnet/roslyn/main/" + number + ";roslyn.vsman"
}

func testProduct() *model.Product {
	return &model.Product{
		Name:       "Roslyn",
		Repository: model.GitHubRepo{Owner: "dotnet", Name: "roslyn"},
		Component:  "Microsoft.CodeAnalysis.LanguageServices",
		Pipelines: map[string]string{
			"devdiv": "Roslyn-Signed",
		},
	}
}
