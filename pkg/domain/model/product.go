package model

import (
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// GitHubRepo identifies a repository hosted on github.com
type GitHubRepo struct {
	Owner string
	Name  string
}

// FullName returns "owner/name"
func (r GitHubRepo) FullName() string {
	return r.Owner + "/" + r.Name
}

// URL returns the web URL of the repository
func (r GitHubRepo) URL() string {
	return "https://github.com/" + r.FullName()
}

// ParseGitHubRepo extracts owner and name from a repository URL. Only github.com is supported.
func ParseGitHubRepo(raw string) (GitHubRepo, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return GitHubRepo{}, goerr.Wrap(err, "invalid repository URL", goerr.V("url", raw))
	}

	if !strings.EqualFold(u.Host, "github.com") && !strings.EqualFold(u.Host, "www.github.com") {
		return GitHubRepo{}, goerr.New("unsupported repository host", goerr.V("url", raw), goerr.V("host", u.Host))
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return GitHubRepo{}, goerr.New("repository URL must be https://github.com/<owner>/<name>", goerr.V("url", raw))
	}

	return GitHubRepo{
		Owner: parts[0],
		Name:  strings.TrimSuffix(parts[1], ".git"),
	}, nil
}

// Product is a component tracked for insertion notifications
type Product struct {
	Name       string
	Repository GitHubRepo
	// Component is the key of the product's entry in the umbrella release manifest
	Component string
	// Pipelines maps a build organization name to the product's pipeline in that organization
	Pipelines map[string]string
}

// Pipeline returns the product's pipeline name in the given organization
func (p *Product) Pipeline(org string) (string, bool) {
	name, ok := p.Pipelines[org]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// Products is the set of tracked products, processed in slice order
type Products []*Product
