package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/slack-go/slack"

	"github.com/dashwatch/internal/models"
)

type SlackNotifier struct {
	WebhookURL string
	Channel    string
	Username   string
	HTTPClient *http.Client
}

func NewSlackNotifier(webhookURL, channel, username string) *SlackNotifier {
	return &SlackNotifier{
		WebhookURL: webhookURL,
		Channel:    channel,
		Username:   username,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SlackNotifier) Notify(ctx context.Context, alert models.Alert) error {
	msg := &slack.WebhookMessage{
		Channel:   s.Channel,
		Username:  s.Username,
		IconEmoji: getAlertEmoji(alert.Severity),
		Attachments: []slack.Attachment{
			{
				Color: getAlertColor(alert.Severity),
				Title: alert.Title,
				Text:  alert.Description,
				Fields: []slack.AttachmentField{
					{
						Title: "Record",
						Value: alert.RecordName,
						Short: true,
					},
					{
						Title: "Rule",
						Value: alert.Rule,
						Short: true,
					},
					{
						Title: "Value",
						Value: strconv.FormatFloat(alert.Value, 'g', -1, 64),
						Short: true,
					},
					{
						Title: "Threshold",
						Value: strconv.FormatFloat(alert.Threshold, 'g', -1, 64),
						Short: true,
					},
				},
				Footer: "dashwatch",
				Ts:     json.Number(strconv.FormatInt(time.Now().Unix(), 10)),
			},
		},
	}

	if err := slack.PostWebhookCustomHTTPContext(ctx, s.WebhookURL, s.HTTPClient, msg); err != nil {
		return fmt.Errorf("failed to send slack message: %w", err)
	}
	return nil
}

func getAlertColor(level models.AlertLevel) string {
	switch level {
	case models.AlertLevelWarning:
		return "#FFA500"
	default:
		return "#808080"
	}
}

func getAlertEmoji(level models.AlertLevel) string {
	switch level {
	case models.AlertLevelWarning:
		return ":warning:"
	default:
		return ":bell:"
	}
}
