package azdo_test

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"

	"github.com/m-mizutani/herald/pkg/infra/azdo"
)

// stubBuildClient implements only the build API methods used by azdo.Client
type stubBuildClient struct {
	build.Client
	definitions map[string]int
	// pages of builds returned per call to GetBuilds, in order
	pages     [][]build.Build
	getBuilds []build.GetBuildsArgs
	err       error
}

func (s *stubBuildClient) GetDefinitions(ctx context.Context, args build.GetDefinitionsArgs) (*build.GetDefinitionsResponseValue, error) {
	if s.err != nil {
		return nil, s.err
	}
	resp := &build.GetDefinitionsResponseValue{}
	if id, ok := s.definitions[*args.Name]; ok {
		resp.Value = append(resp.Value, build.BuildDefinitionReference{Id: &id, Name: args.Name})
	}
	return resp, nil
}

func (s *stubBuildClient) GetBuilds(ctx context.Context, args build.GetBuildsArgs) (*build.GetBuildsResponseValue, error) {
	s.getBuilds = append(s.getBuilds, args)
	idx := len(s.getBuilds) - 1
	if idx >= len(s.pages) {
		return &build.GetBuildsResponseValue{}, nil
	}

	resp := &build.GetBuildsResponseValue{Value: s.pages[idx]}
	if idx < len(s.pages)-1 {
		resp.ContinuationToken = "page" + strconv.Itoa(idx+1)
	}
	return resp, nil
}

func newBuild(number, commit string) build.Build {
	return build.Build{BuildNumber: &number, SourceVersion: &commit}
}

func TestClient_ListSucceededBuilds(t *testing.T) {
	ctx := context.Background()

	t.Run("pages until the watermark build, inclusive", func(t *testing.T) {
		stub := &stubBuildClient{
			definitions: map[string]int{"umbrella": 10},
			pages: [][]build.Build{
				{newBuild("20230103.1", "c3"), newBuild("20230102.1", "c2")},
				{newBuild("20230101.1", "c1"), newBuild("20221231.1", "c0")},
			},
		}
		client := azdo.NewWithClients("devdiv", "DevDiv", stub)

		builds, err := client.ListSucceededBuilds(ctx, "umbrella", "20230101.1", 0)
		gt.NoError(t, err)
		gt.Number(t, len(builds)).Equal(3)
		gt.Value(t, string(builds[0].Number)).Equal("20230103.1")
		gt.Value(t, string(builds[2].SourceCommit)).Equal("c1")

		gt.Number(t, len(stub.getBuilds)).Equal(2)
		first := stub.getBuilds[0]
		gt.Value(t, *first.ResultFilter).Equal(build.BuildResultValues.Succeeded)
		gt.Value(t, *first.QueryOrder).Equal(build.BuildQueryOrderValues.FinishTimeDescending)
		gt.Value(t, (*first.Definitions)[0]).Equal(10)
		gt.Value(t, first.ContinuationToken).Nil()
		gt.Value(t, *stub.getBuilds[1].ContinuationToken).Equal("page1")
	})

	t.Run("stops at limit", func(t *testing.T) {
		stub := &stubBuildClient{
			definitions: map[string]int{"umbrella": 10},
			pages: [][]build.Build{
				{newBuild("3", "c3"), newBuild("2", "c2"), newBuild("1", "c1")},
			},
		}
		client := azdo.NewWithClients("devdiv", "DevDiv", stub)

		builds, err := client.ListSucceededBuilds(ctx, "umbrella", "", 2)
		gt.NoError(t, err)
		gt.Number(t, len(builds)).Equal(2)
		gt.Value(t, *stub.getBuilds[0].Top).Equal(2)
	})

	t.Run("watermark overrides limit", func(t *testing.T) {
		stub := &stubBuildClient{
			definitions: map[string]int{"umbrella": 10},
			pages: [][]build.Build{
				{newBuild("5", "c5"), newBuild("4", "c4"), newBuild("3", "c3")},
				{newBuild("2", "c2"), newBuild("1", "c1")},
			},
		}
		client := azdo.NewWithClients("devdiv", "DevDiv", stub)

		builds, err := client.ListSucceededBuilds(ctx, "umbrella", "2", 2)
		gt.NoError(t, err)
		gt.Number(t, len(builds)).Equal(4)
		gt.Value(t, string(builds[3].Number)).Equal("2")
		gt.Number(t, len(stub.getBuilds)).Equal(2)
	})

	t.Run("watermark missing from history pages to the end", func(t *testing.T) {
		stub := &stubBuildClient{
			definitions: map[string]int{"umbrella": 10},
			pages: [][]build.Build{
				{newBuild("5", "c5"), newBuild("4", "c4")},
				{newBuild("3", "c3")},
			},
		}
		client := azdo.NewWithClients("devdiv", "DevDiv", stub)

		builds, err := client.ListSucceededBuilds(ctx, "umbrella", "0", 1)
		gt.NoError(t, err)
		gt.Number(t, len(builds)).Equal(3)
	})

	t.Run("skips builds without source version", func(t *testing.T) {
		number := "4"
		stub := &stubBuildClient{
			definitions: map[string]int{"umbrella": 10},
			pages: [][]build.Build{
				{{BuildNumber: &number}, newBuild("3", "c3")},
			},
		}
		client := azdo.NewWithClients("devdiv", "DevDiv", stub)

		builds, err := client.ListSucceededBuilds(ctx, "umbrella", "", 0)
		gt.NoError(t, err)
		gt.Number(t, len(builds)).Equal(1)
		gt.Value(t, string(builds[0].Number)).Equal("3")
	})

	t.Run("unknown pipeline is an error", func(t *testing.T) {
		client := azdo.NewWithClients("devdiv", "DevDiv", &stubBuildClient{})

		_, err := client.ListSucceededBuilds(ctx, "missing", "", 0)
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains("pipeline not found")
	})
}

func TestClient_FindBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the build with the number", func(t *testing.T) {
		stub := &stubBuildClient{
			definitions: map[string]int{"roslyn-signed": 3},
			pages:       [][]build.Build{{newBuild("20230101.5", "abc")}},
		}
		client := azdo.NewWithClients("devdiv", "DevDiv", stub)

		b, err := client.FindBuild(ctx, "roslyn-signed", "20230101.5")
		gt.NoError(t, err)
		gt.Value(t, string(b.SourceCommit)).Equal("abc")
		gt.Value(t, *stub.getBuilds[0].BuildNumber).Equal("20230101.5")
		gt.Value(t, stub.getBuilds[0].ResultFilter).Nil()
	})

	t.Run("missing pipeline yields nil without error", func(t *testing.T) {
		stub := &stubBuildClient{}
		client := azdo.NewWithClients("dnceng", "internal", stub)

		b, err := client.FindBuild(ctx, "roslyn-signed", "20230101.5")
		gt.NoError(t, err)
		gt.Value(t, b).Nil()
		gt.Number(t, len(stub.getBuilds)).Equal(0)
	})

	t.Run("missing build yields nil without error", func(t *testing.T) {
		stub := &stubBuildClient{definitions: map[string]int{"roslyn-signed": 3}}
		client := azdo.NewWithClients("devdiv", "DevDiv", stub)

		b, err := client.FindBuild(ctx, "roslyn-signed", "20230101.5")
		gt.NoError(t, err)
		gt.Value(t, b).Nil()
	})

	t.Run("transport error is returned", func(t *testing.T) {
		stub := &stubBuildClient{err: errors.New("connection reset")}
		client := azdo.NewWithClients("devdiv", "DevDiv", stub)

		_, err := client.FindBuild(ctx, "roslyn-signed", "20230101.5")
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains("connection reset")
	})
}

// stubGitClient implements only the git API methods used by azdo.Client
type stubGitClient struct {
	git.Client
	parents  map[string][]string
	files    map[string]string // "<commit>:<path>" -> content
	itemArgs []git.GetItemTextArgs
}

func (s *stubGitClient) GetCommit(ctx context.Context, args git.GetCommitArgs) (*git.GitCommit, error) {
	parents, ok := s.parents[*args.CommitId]
	if !ok {
		return nil, errors.New("commit not found")
	}
	return &git.GitCommit{CommitId: args.CommitId, Parents: &parents}, nil
}

func (s *stubGitClient) GetItemText(ctx context.Context, args git.GetItemTextArgs) (io.ReadCloser, error) {
	s.itemArgs = append(s.itemArgs, args)
	content, ok := s.files[*args.VersionDescriptor.Version+":"+*args.Path]
	if !ok {
		return nil, errors.New("item not found")
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func TestClient_FirstParent(t *testing.T) {
	ctx := context.Background()
	stub := &stubGitClient{parents: map[string][]string{
		"merge": {"p1", "p2"},
		"root":  {},
	}}
	client := azdo.NewWithClients("devdiv", "DevDiv", &stubBuildClient{},
		azdo.WithRepository("VS"),
		azdo.WithGitClient(stub),
	)

	parent, err := client.FirstParent(ctx, "merge")
	gt.NoError(t, err)
	gt.Value(t, string(parent)).Equal("p1")

	_, err = client.FirstParent(ctx, "root")
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("commit has no parent")

	_, err = client.FirstParent(ctx, "unknown")
	gt.Error(t, err)
}

func TestClient_ComponentURL(t *testing.T) {
	ctx := context.Background()
	manifest := `{"Components":{"Microsoft.CodeAnalysis.LanguageServices":{"url":"https://vsdrop.example.com/Products/DevDiv/roslyn/main/20230101.5;roslyn.vsman"}}}`
	stub := &stubGitClient{files: map[string]string{
		"c1:.corext/Configs/components.json": manifest,
	}}
	client := azdo.NewWithClients("devdiv", "DevDiv", &stubBuildClient{},
		azdo.WithRepository("VS"),
		azdo.WithGitClient(stub),
	)

	url, err := client.ComponentURL(ctx, "c1", ".corext/Configs/components.json", "Microsoft.CodeAnalysis.LanguageServices")
	gt.NoError(t, err)
	gt.Value(t, url).Equal("https://vsdrop.example.com/Products/DevDiv/roslyn/main/20230101.5;roslyn.vsman")
	gt.Value(t, *stub.itemArgs[0].VersionDescriptor.VersionType).Equal(git.GitVersionTypeValues.Commit)
	gt.Value(t, *stub.itemArgs[0].RepositoryId).Equal("VS")

	_, err = client.ComponentURL(ctx, "c2", ".corext/Configs/components.json", "x")
	gt.Error(t, err)
}

func TestClient_GitWithoutRepository(t *testing.T) {
	client := azdo.NewWithClients("devdiv", "DevDiv", &stubBuildClient{})

	_, err := client.FirstParent(context.Background(), "c1")
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("git repository is not configured")
}

func TestManifestComponentURL(t *testing.T) {
	tests := []struct {
		name      string
		manifest  string
		component string
		want      string
		wantErr   bool
	}{
		{
			name:      "dotted component id",
			manifest:  `{"Components":{"Microsoft.VisualStudio.Foo":{"url":"https://drop/20230101.1"}}}`,
			component: "Microsoft.VisualStudio.Foo",
			want:      "https://drop/20230101.1",
		},
		{
			name:      "missing component",
			manifest:  `{"Components":{"Other":{"url":"https://drop/20230101.1"}}}`,
			component: "Microsoft.VisualStudio.Foo",
			want:      "",
		},
		{
			name:      "url is not a string",
			manifest:  `{"Components":{"Foo":{"url":5}}}`,
			component: "Foo",
			wantErr:   true,
		},
		{
			name:      "invalid JSON",
			manifest:  `{"Components":`,
			component: "Foo",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := azdo.ManifestComponentURL([]byte(tt.manifest), tt.component)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.Value(t, got).Equal(tt.want)
		})
	}
}
