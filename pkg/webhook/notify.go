package webhook

import (
	"context"

	"go.uber.org/zap"

	"github.com/ccollicutt/shiftguard/pkg/config"
	"github.com/ccollicutt/shiftguard/pkg/output"
)

// Delivery records the outcome for one configured webhook.
type Delivery struct {
	Name     string
	Fired    bool
	Response *Response
}

// Notifier fans a report out to configured webhooks.
type Notifier struct {
	client *Client
	logger *zap.Logger
}

// NewNotifier creates a notifier. A nil logger discards output.
func NewNotifier(client *Client, logger *zap.Logger) *Notifier {
	if client == nil {
		client = NewClient()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{client: client, logger: logger}
}

// Notify sends the report to every webhook whose trigger matches. Failures
// are logged and reported in the deliveries; they never abort the run.
func (n *Notifier) Notify(ctx context.Context, report *output.Report, hooks []config.WebhookConfig) []Delivery {
	deliveries := make([]Delivery, 0, len(hooks))

	for _, wh := range hooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		d := Delivery{Name: name}
		if !ShouldFire(wh.Trigger, report.HasIssues()) {
			deliveries = append(deliveries, d)
			continue
		}

		d.Fired = true
		d.Response = n.client.Send(ctx, report, Target{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
			Retries: wh.Retries,
		})

		if d.Response.Success() {
			n.logger.Info("webhook sent",
				zap.String("webhook", name),
				zap.Int("status", d.Response.StatusCode),
				zap.Int("attempts", d.Response.Attempts),
				zap.Duration("elapsed", d.Response.Duration))
		} else {
			n.logger.Warn("webhook failed",
				zap.String("webhook", name),
				zap.Int("status", d.Response.StatusCode),
				zap.Int("attempts", d.Response.Attempts),
				zap.Error(d.Response.Error))
		}

		deliveries = append(deliveries, d)
	}

	return deliveries
}

// ShouldFire determines if a webhook should fire based on trigger and findings.
func ShouldFire(trigger config.WebhookTrigger, hasIssues bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return hasIssues
	}
}
