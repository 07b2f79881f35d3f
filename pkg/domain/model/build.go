package model

import "github.com/m-mizutani/herald/pkg/domain/types"

// Build is one build record of a pipeline
type Build struct {
	Number       types.BuildNumber
	SourceCommit types.CommitSHA
}

// UmbrellaBuild is a successful umbrella build with the umbrella commit that preceded it
type UmbrellaBuild struct {
	Number types.BuildNumber
	Commit types.CommitSHA
	Parent types.CommitSHA
}

// ComponentResolution is a product's build and commit as of one umbrella commit.
// Empty Build or Commit means the resolution failed; Missing tells at which stage.
type ComponentResolution struct {
	Build   types.BuildNumber
	Commit  types.CommitSHA
	Missing FailureStage
}

// Resolved reports whether both the component build and commit are known
func (r *ComponentResolution) Resolved() bool {
	return r != nil && r.Build != "" && r.Commit != ""
}
