package model

// Umbrella describes the aggregating build whose history is walked
type Umbrella struct {
	// Pipeline is the umbrella build definition name
	Pipeline string
	// Repository is the umbrella git repository holding the release manifest
	Repository string
	// Manifest is the path of the release manifest in Repository
	Manifest string
}
