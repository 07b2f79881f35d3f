package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/herald/pkg/domain/model"
)

// consoleReporter prints a per-product summary of a walk
type consoleReporter struct {
	w io.Writer
}

func newConsoleReporter(w io.Writer) *consoleReporter {
	return &consoleReporter{w: w}
}

func stopColor(stop model.StopReason) *color.Color {
	switch stop {
	case model.StopExhausted, model.StopAlreadyNotified:
		return color.New(color.FgGreen)
	case model.StopFailed:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func (r *consoleReporter) Report(_ context.Context, reports []*model.ProductReport) error {
	for _, report := range reports {
		fmt.Fprintf(r.w, "%s %s\n",
			color.New(color.Bold).Sprint(report.Product.Name),
			stopColor(report.Stop).Sprint(report.Stop),
		)
		fmt.Fprintf(r.w, "  created: %d\n", report.Created())

		for _, o := range report.Outcomes {
			if o.Kind != model.OutcomeSucceeded {
				continue
			}
			if o.DryRun {
				fmt.Fprintf(r.w, "  %s %s\n", o.Build.Number, color.New(color.FgCyan).Sprint("(dry run)"))
			} else {
				fmt.Fprintf(r.w, "  %s %s\n", o.Build.Number, o.IssueURL)
			}
		}

		switch report.Stop {
		case model.StopFailed:
			if last := report.Last(); last != nil {
				fmt.Fprintf(r.w, "  failed at %s: stage=%s side=%s: %v\n", last.Build.Number, last.Stage, last.Side, last.Reason)
			}
		case model.StopError:
			fmt.Fprintf(r.w, "  error: %v\n", report.Err)
		}
	}
	return nil
}
