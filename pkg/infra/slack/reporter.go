package slack

import (
	"context"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/slack-go/slack"
)

// Reporter posts a walk summary to a Slack incoming webhook
type Reporter struct {
	webhookURL string
	httpClient *http.Client
}

// Option configures the Reporter
type Option func(*Reporter)

// WithHTTPClient sets the HTTP client used to post messages
func WithHTTPClient(client *http.Client) Option {
	return func(r *Reporter) {
		r.httpClient = client
	}
}

// NewReporter creates a Reporter posting to webhookURL
func NewReporter(webhookURL string, opts ...Option) *Reporter {
	r := &Reporter{
		webhookURL: webhookURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report posts one message listing the summary of each product
func (r *Reporter) Report(ctx context.Context, reports []*model.ProductReport) error {
	if len(reports) == 0 {
		return nil
	}

	msg := &slack.WebhookMessage{
		Text: buildText(reports),
	}

	if err := slack.PostWebhookCustomHTTPContext(ctx, r.webhookURL, r.httpClient, msg); err != nil {
		return goerr.Wrap(err, "failed to post slack webhook")
	}
	return nil
}

func buildText(reports []*model.ProductReport) string {
	var b strings.Builder
	b.WriteString("*VS insertion notifications*\n")
	for _, report := range reports {
		b.WriteString("• ")
		b.WriteString(report.Summary())
		b.WriteString("\n")
		for _, o := range report.Outcomes {
			if o.Kind == model.OutcomeSucceeded && o.IssueURL != "" {
				b.WriteString("    <" + o.IssueURL + "|" + string(o.Build.Number) + ">\n")
			}
		}
	}
	return b.String()
}
