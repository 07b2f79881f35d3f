package model

import (
	"fmt"
)

// OutcomeKind is the result of processing one umbrella build for one product
type OutcomeKind int

const (
	// OutcomeSucceeded means a notification was created
	OutcomeSucceeded OutcomeKind = iota + 1
	// OutcomeNoChange means the component commit did not change between the two umbrella builds
	OutcomeNoChange
	// OutcomeAlreadyNotified means a notification for the umbrella build already exists
	OutcomeAlreadyNotified
	// OutcomeFailed means the umbrella build could not be processed
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeNoChange:
		return "no-change"
	case OutcomeAlreadyNotified:
		return "already-notified"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// FailureStage names the step that failed for an OutcomeFailed
type FailureStage string

const (
	StageNone        FailureStage = ""
	StageManifest    FailureStage = "manifest"
	StageBuildNumber FailureStage = "build-number"
	StageBuildLookup FailureStage = "build-lookup"
	StageDiff        FailureStage = "diff"
	StageCreate      FailureStage = "create"
)

// ResolutionSide tells which of the two umbrella commits failed to resolve
type ResolutionSide string

const (
	SideNone     ResolutionSide = ""
	SideCurrent  ResolutionSide = "current"
	SidePrevious ResolutionSide = "previous"
)

// Outcome is the tagged result for one (product, umbrella build) pair
type Outcome struct {
	Kind  OutcomeKind
	Build *UmbrellaBuild

	// Set for OutcomeSucceeded
	IssueURL string
	DryRun   bool

	// Set for OutcomeFailed
	Stage  FailureStage
	Side   ResolutionSide
	Reason error
}

// Continue reports whether the walk proceeds to the next (older) umbrella build.
//
// NoChange never stops the walk: this assumes a component's commit only moves forward across
// umbrella history. If a component is rewound between umbrella builds, the walk may notify the
// same pull requests again or miss some.
func (o Outcome) Continue() bool {
	switch o.Kind {
	case OutcomeSucceeded, OutcomeNoChange:
		return true
	case OutcomeAlreadyNotified, OutcomeFailed:
		return false
	default:
		panic(fmt.Sprintf("unhandled outcome kind: %s", o.Kind))
	}
}

// Succeeded returns a successful outcome
func Succeeded(build *UmbrellaBuild, issueURL string, dryRun bool) Outcome {
	return Outcome{Kind: OutcomeSucceeded, Build: build, IssueURL: issueURL, DryRun: dryRun}
}

// NoChange returns an outcome for an unchanged component commit
func NoChange(build *UmbrellaBuild) Outcome {
	return Outcome{Kind: OutcomeNoChange, Build: build}
}

// AlreadyNotified returns the idempotency boundary outcome
func AlreadyNotified(build *UmbrellaBuild) Outcome {
	return Outcome{Kind: OutcomeAlreadyNotified, Build: build}
}

// Failed returns a failed outcome
func Failed(build *UmbrellaBuild, stage FailureStage, side ResolutionSide, reason error) Outcome {
	return Outcome{Kind: OutcomeFailed, Build: build, Stage: stage, Side: side, Reason: reason}
}
