package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/herald/pkg/domain/interfaces"
	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/m-mizutani/herald/pkg/domain/types"
)

type githubDiff struct {
	github interfaces.GitHubClient
}

// NewDiffResolver creates a DiffResolver that lists pull requests between two commits with the
// GitHub compare API
func NewDiffResolver(client interfaces.GitHubClient) interfaces.DiffResolver {
	return &githubDiff{github: client}
}

var (
	mergeCommitPattern  = regexp.MustCompile(`^Merge pull request #(\d+) `)
	squashCommitPattern = regexp.MustCompile(`\(#(\d+)\)\s*$`)
)

// pullRequestNumber extracts the PR number from a merge or squash commit message
func pullRequestNumber(message string) int {
	subject, _, _ := strings.Cut(message, "\n")
	subject = strings.TrimSpace(subject)

	for _, p := range []*regexp.Regexp{mergeCommitPattern, squashCommitPattern} {
		if m := p.FindStringSubmatch(subject); len(m) == 2 {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n
			}
		}
	}
	return 0
}

// Diff returns a Markdown list of the pull requests merged between from and to
func (d *githubDiff) Diff(ctx context.Context, repo model.GitHubRepo, from, to types.CommitSHA) (string, error) {
	comparison, err := d.github.CompareCommits(ctx, repo, from, to)
	if err != nil {
		return "", goerr.Wrap(err, "failed to compare component commits")
	}

	var numbers []int
	seen := map[int]bool{}
	for _, commit := range comparison.Commits {
		n := pullRequestNumber(commit.GetCommit().GetMessage())
		if n == 0 || seen[n] {
			continue
		}
		seen[n] = true
		numbers = append(numbers, n)
	}

	var sb strings.Builder
	if len(numbers) == 0 {
		sb.WriteString("No pull requests found.\n")
	}
	for _, n := range numbers {
		pr, err := d.github.GetPullRequest(ctx, repo, n)
		if err != nil {
			return "", goerr.Wrap(err, "failed to get inserted pull request", goerr.V("number", n))
		}
		sb.WriteString(fmt.Sprintf("- [#%d](%s) %s (@%s)\n", n, pr.GetHTMLURL(), pr.GetTitle(), pr.GetUser().GetLogin()))
	}

	compareURL := comparison.GetHTMLURL()
	if compareURL == "" {
		compareURL = fmt.Sprintf("%s/compare/%s...%s", repo.URL(), from, to)
	}
	total := len(comparison.Commits)
	if n := comparison.GetTotalCommits(); n > total {
		total = n
	}
	sb.WriteString(fmt.Sprintf("\n%d commits: [%s...%s](%s)\n", total, from.Short(), to.Short(), compareURL))

	return sb.String(), nil
}
