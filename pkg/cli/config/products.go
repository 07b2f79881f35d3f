package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultManifestPath is the release manifest location in the umbrella repository
const DefaultManifestPath = ".corext/Configs/components.json"

// File is the products configuration file
type File struct {
	Umbrella      UmbrellaEntry       `toml:"umbrella" yaml:"umbrella"`
	Organizations []OrganizationEntry `toml:"organizations" yaml:"organizations"`
	Products      []ProductEntry      `toml:"products" yaml:"products"`
}

// UmbrellaEntry locates the umbrella pipeline and repository
type UmbrellaEntry struct {
	Organization string `toml:"organization" yaml:"organization"`
	Pipeline     string `toml:"pipeline" yaml:"pipeline"`
	Repository   string `toml:"repository" yaml:"repository"`
	Manifest     string `toml:"manifest" yaml:"manifest"`
}

// OrganizationEntry is an Azure DevOps organization searched for component builds.
// Organizations are searched in the order they are listed.
type OrganizationEntry struct {
	Name    string `toml:"name" yaml:"name"`
	URL     string `toml:"url" yaml:"url"`
	Project string `toml:"project" yaml:"project"`
}

// ProductEntry is one tracked product
type ProductEntry struct {
	Name       string            `toml:"name" yaml:"name"`
	Repository string            `toml:"repository" yaml:"repository"`
	Component  string            `toml:"component" yaml:"component"`
	Pipelines  map[string]string `toml:"pipelines" yaml:"pipelines"`
}

// LoadFile reads a configuration file. The format is chosen by extension: .toml, .yaml or .yml.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", path))
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, goerr.Wrap(err, "failed to parse YAML config", goerr.V("path", path))
		}
	default:
		return nil, goerr.New("unsupported config file extension", goerr.V("path", path), goerr.V("ext", ext))
	}

	if f.Umbrella.Manifest == "" {
		f.Umbrella.Manifest = DefaultManifestPath
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks that the configuration is complete and consistent
func (f *File) Validate() error {
	if f.Umbrella.Pipeline == "" {
		return goerr.New("umbrella.pipeline is required")
	}
	if f.Umbrella.Repository == "" {
		return goerr.New("umbrella.repository is required")
	}
	if len(f.Organizations) == 0 {
		return goerr.New("at least one organization is required")
	}

	orgs := make(map[string]struct{}, len(f.Organizations))
	for i, org := range f.Organizations {
		if org.Name == "" || org.URL == "" || org.Project == "" {
			return goerr.New("organization requires name, url and project", goerr.V("index", i))
		}
		if _, dup := orgs[org.Name]; dup {
			return goerr.New("duplicated organization", goerr.V("name", org.Name))
		}
		orgs[org.Name] = struct{}{}
	}

	if _, ok := orgs[f.Umbrella.Organization]; !ok {
		return goerr.New("umbrella.organization must name a configured organization",
			goerr.V("organization", f.Umbrella.Organization))
	}

	if len(f.Products) == 0 {
		return goerr.New("at least one product is required")
	}

	names := make(map[string]struct{}, len(f.Products))
	for i, p := range f.Products {
		if p.Name == "" || p.Repository == "" || p.Component == "" {
			return goerr.New("product requires name, repository and component", goerr.V("index", i))
		}
		if _, dup := names[p.Name]; dup {
			return goerr.New("duplicated product", goerr.V("name", p.Name))
		}
		names[p.Name] = struct{}{}

		if len(p.Pipelines) == 0 {
			return goerr.New("product requires at least one pipeline", goerr.V("product", p.Name))
		}
		for org := range p.Pipelines {
			if _, ok := orgs[org]; !ok {
				return goerr.New("product pipeline refers to unknown organization",
					goerr.V("product", p.Name), goerr.V("organization", org))
			}
		}
	}

	return nil
}

// Organization returns the organization entry with the given name
func (f *File) Organization(name string) (OrganizationEntry, bool) {
	for _, org := range f.Organizations {
		if org.Name == name {
			return org, true
		}
	}
	return OrganizationEntry{}, false
}

// UmbrellaOrganization returns the organization hosting the umbrella pipeline
func (f *File) UmbrellaOrganization() (OrganizationEntry, error) {
	org, ok := f.Organization(f.Umbrella.Organization)
	if !ok {
		return OrganizationEntry{}, goerr.New("umbrella organization is not configured",
			goerr.V("organization", f.Umbrella.Organization))
	}
	return org, nil
}

// ToUmbrella converts the umbrella entry into the domain value
func (f *File) ToUmbrella() model.Umbrella {
	return model.Umbrella{
		Pipeline:   f.Umbrella.Pipeline,
		Repository: f.Umbrella.Repository,
		Manifest:   f.Umbrella.Manifest,
	}
}

// ToProducts converts product entries into domain values, keeping the file order
func (f *File) ToProducts() (model.Products, error) {
	products := make(model.Products, 0, len(f.Products))
	for _, p := range f.Products {
		repo, err := model.ParseGitHubRepo(p.Repository)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid product repository", goerr.V("product", p.Name))
		}

		pipelines := make(map[string]string, len(p.Pipelines))
		for org, name := range p.Pipelines {
			pipelines[org] = name
		}

		products = append(products, &model.Product{
			Name:       p.Name,
			Repository: repo,
			Component:  p.Component,
			Pipelines:  pipelines,
		})
	}
	return products, nil
}
