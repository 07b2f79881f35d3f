package azdo

import (
	"context"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"
	"github.com/tidwall/gjson"

	"github.com/m-mizutani/herald/pkg/domain/types"
)

func (c *Client) gitClient() (git.Client, error) {
	if c.git == nil || c.repository == "" {
		return nil, goerr.New("git repository is not configured", goerr.V("org", c.name))
	}
	return c.git, nil
}

// FirstParent returns the first parent of the umbrella commit
func (c *Client) FirstParent(ctx context.Context, commit types.CommitSHA) (types.CommitSHA, error) {
	g, err := c.gitClient()
	if err != nil {
		return "", err
	}

	commitID := string(commit)
	resp, err := g.GetCommit(ctx, git.GetCommitArgs{
		CommitId:     &commitID,
		RepositoryId: &c.repository,
		Project:      &c.project,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to get commit",
			goerr.V("repository", c.repository),
			goerr.V("commit", commit),
		)
	}

	if resp.Parents == nil || len(*resp.Parents) == 0 || (*resp.Parents)[0] == "" {
		return "", goerr.New("commit has no parent",
			goerr.V("repository", c.repository),
			goerr.V("commit", commit),
		)
	}
	return types.CommitSHA((*resp.Parents)[0]), nil
}

// ComponentURL reads the release manifest at the commit and returns the component's URL, or an
// empty string if the component has no entry
func (c *Client) ComponentURL(ctx context.Context, commit types.CommitSHA, manifest, component string) (string, error) {
	g, err := c.gitClient()
	if err != nil {
		return "", err
	}

	version := string(commit)
	rc, err := g.GetItemText(ctx, git.GetItemTextArgs{
		RepositoryId: &c.repository,
		Project:      &c.project,
		Path:         &manifest,
		VersionDescriptor: &git.GitVersionDescriptor{
			Version:     &version,
			VersionType: &git.GitVersionTypeValues.Commit,
		},
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to read manifest",
			goerr.V("repository", c.repository),
			goerr.V("manifest", manifest),
			goerr.V("commit", commit),
		)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read manifest body", goerr.V("manifest", manifest))
	}

	return ManifestComponentURL(data, component)
}

var gjsonEscaper = strings.NewReplacer(`\`, `\\`, ".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`)

// ManifestComponentURL extracts Components.<component>.url from a JSON release manifest
func ManifestComponentURL(data []byte, component string) (string, error) {
	if !gjson.ValidBytes(data) {
		return "", goerr.New("manifest is not valid JSON")
	}

	value := gjson.GetBytes(data, "Components."+gjsonEscaper.Replace(component)+".url")
	if !value.Exists() {
		return "", nil
	}
	if value.Type != gjson.String {
		return "", goerr.New("manifest component url is not a string",
			goerr.V("component", component),
			goerr.V("value", value.Raw),
		)
	}
	return value.String(), nil
}
