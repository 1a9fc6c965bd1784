// Package slack posts release notifications to a Slack incoming webhook.
package slack

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// Notifier posts messages to a Slack incoming webhook URL.
type Notifier struct {
	webhookURL string
}

// NewNotifier creates a webhook notifier
func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{webhookURL: webhookURL}
}

// Post sends a plain text message
func (n *Notifier) Post(ctx context.Context, text string) error {
	msg := &slack.WebhookMessage{Text: text}
	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post Slack notification")
	}
	return nil
}
