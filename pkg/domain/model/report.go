package model

import "fmt"

// StopReason tells why the walk for a product ended
type StopReason string

const (
	StopExhausted       StopReason = "exhausted"
	StopAlreadyNotified StopReason = "already-notified"
	StopFailed          StopReason = "failed"
	StopError           StopReason = "error"
)

// ProductReport summarizes the walk over umbrella builds for one product
type ProductReport struct {
	Product  *Product
	Outcomes []Outcome
	Stop     StopReason
	// Err is a hard error that aborted the walk
	Err error
}

// Add records an outcome and updates the stop reason
func (r *ProductReport) Add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Kind {
	case OutcomeAlreadyNotified:
		r.Stop = StopAlreadyNotified
	case OutcomeFailed:
		r.Stop = StopFailed
	}
}

// Created returns the number of notifications created (or that would be, in dry run)
func (r *ProductReport) Created() int {
	var n int
	for _, o := range r.Outcomes {
		if o.Kind == OutcomeSucceeded {
			n++
		}
	}
	return n
}

// Last returns the final outcome, or nil when no build was processed
func (r *ProductReport) Last() *Outcome {
	if len(r.Outcomes) == 0 {
		return nil
	}
	return &r.Outcomes[len(r.Outcomes)-1]
}

// Summary returns a one-line description of the walk, used by reporters
func (r *ProductReport) Summary() string {
	s := fmt.Sprintf("%s: %d created, stopped: %s", r.Product.Name, r.Created(), r.Stop)
	switch r.Stop {
	case StopFailed:
		if last := r.Last(); last != nil && last.Build != nil {
			if last.Side != SideNone {
				s += fmt.Sprintf(" (build %s, %s side, stage %s)", last.Build.Number, last.Side, last.Stage)
			} else {
				s += fmt.Sprintf(" (build %s, stage %s)", last.Build.Number, last.Stage)
			}
		}
	case StopError:
		if r.Err != nil {
			s += fmt.Sprintf(" (%v)", r.Err)
		}
	}
	return s
}
