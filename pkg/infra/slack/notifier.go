package slack

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/labkey/pushdist/pkg/domain/interfaces"
)

type notifier struct {
	webhookURL string
}

// NewNotifier creates a notifier posting to a Slack incoming webhook
func NewNotifier(webhookURL string) interfaces.Notifier {
	return &notifier{webhookURL: webhookURL}
}

// Notify posts text to the webhook channel
func (n *notifier) Notify(ctx context.Context, text string) error {
	msg := &slack.WebhookMessage{Text: text}
	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post Slack notification")
	}
	return nil
}
