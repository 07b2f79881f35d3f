package model

import "time"

// BuildEvent is a "build.complete" service hook notification from Azure DevOps
type BuildEvent struct {
	ID          string
	EventType   string
	Pipeline    string
	BuildNumber string
	Result      string
	ReceivedAt  time.Time
}

// IsSucceededCompletion reports whether the event is a successful completion of the pipeline
func (e *BuildEvent) IsSucceededCompletion(pipeline string) bool {
	return e.EventType == "build.complete" &&
		e.Result == "succeeded" &&
		e.Pipeline == pipeline
}
