package types

import "github.com/google/uuid"

// Version is the application version reported by the CLI and the health endpoint
const Version = "0.1.0"

// BuildNumber is an opaque pipeline build number such as "20230101.5"
type BuildNumber string

func (x BuildNumber) String() string { return string(x) }

// CommitSHA is a git commit identifier
type CommitSHA string

func (x CommitSHA) String() string { return string(x) }

// Short returns the abbreviated form used in logs and notification bodies
func (x CommitSHA) Short() string {
	if len(x) > 7 {
		return string(x[:7])
	}
	return string(x)
}

// RunID identifies one invocation of the notification walk
type RunID string

func (x RunID) String() string { return string(x) }

// NewRunID returns a random run identifier
func NewRunID() RunID {
	return RunID(uuid.NewString())
}
