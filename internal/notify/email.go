package notify

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/dashwatch/internal/models"
)

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailNotifier struct {
	from      string
	receivers []string
	sender    mailSender
}

func NewEmailNotifier(host string, port int, from, password string, receivers []string) *EmailNotifier {
	return &EmailNotifier{
		from:      from,
		receivers: receivers,
		sender:    gomail.NewDialer(host, port, from, password),
	}
}

func (e *EmailNotifier) Notify(ctx context.Context, alert models.Alert) error {
	if len(e.receivers) == 0 {
		return fmt.Errorf("no email receivers configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", e.receivers...)
	m.SetHeader("Subject", fmt.Sprintf("[%s] %s", alert.Severity, alert.Title))

	body := fmt.Sprintf(`%s

Record: %s
Rule: %s
Value: %g
Threshold: %g
Time: %s
`, alert.Description, alert.RecordName, alert.Rule,
		alert.Value, alert.Threshold, time.Now().Format(time.RFC3339))

	m.SetBody("text/plain", body)

	if err := e.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email alert: %w", err)
	}
	return nil
}
