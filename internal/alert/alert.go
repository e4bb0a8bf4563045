// Package alert delivers stolen-item notifications to campus security
// by mail. Delivery is best effort: the gate verdict never waits on
// the mailer and a failed send is only logged.
package alert

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/inbucket/html2text"
	"github.com/wneessen/go-mail"

	"gatepass-client/internal/config"
)

var bodyTemplate = template.Must(template.New("alert").Parse(`<html>
<body>
<h2>Stolen {{.Subject}} detected at the gate</h2>
<table border="1" cellpadding="4">
<tr><td>Subject</td><td>{{.Subject}}</td></tr>
<tr><td>Identifier</td><td>{{.Detail}}</td></tr>
<tr><td>Location</td><td>{{.Location}}</td></tr>
<tr><td>Detected at</td><td>{{.DetectedAt}}</td></tr>
</table>
<p>Do not release the item or admit the vehicle. Detain if safe to do
so and contact campus security.</p>
</body>
</html>`))

type Mailer struct {
	cfg    config.AlertConfig
	logger *slog.Logger
}

func NewMailer(cfg config.AlertConfig) *Mailer {
	return &Mailer{
		cfg:    cfg,
		logger: slog.With("component", "alert"),
	}
}

// StolenDetected sends one alert mail. subject names the kind checked
// ("asset" or "vehicle"), detail identifies it (asset id or plate).
func (m *Mailer) StolenDetected(ctx context.Context, subject, detail, location string) error {
	if !m.cfg.Enabled() {
		m.logger.Debug("Alert mail not configured, skipping", "subject", subject, "detail", detail)
		return nil
	}

	var html bytes.Buffer
	err := bodyTemplate.Execute(&html, map[string]string{
		"Subject":    subject,
		"Detail":     detail,
		"Location":   location,
		"DetectedAt": time.Now().Format(time.RFC1123),
	})
	if err != nil {
		return fmt.Errorf("failed to render alert body: %w", err)
	}

	text, err := html2text.FromString(html.String(), html2text.Options{PrettyTables: true})
	if err != nil {
		return fmt.Errorf("failed to convert alert body to text: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid alert sender: %w", err)
	}
	if err := msg.To(m.cfg.To...); err != nil {
		return fmt.Errorf("invalid alert recipient: %w", err)
	}
	msg.Subject(fmt.Sprintf("[GATE ALERT] Stolen %s detected: %s", subject, detail))
	msg.SetBodyString(mail.TypeTextPlain, text)
	msg.AddAlternativeString(mail.TypeTextHTML, html.String())

	opts := []mail.Option{mail.WithPort(m.cfg.Port)}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to build mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send alert mail: %w", err)
	}

	m.logger.Info("Stolen alert sent", "subject", subject, "detail", detail, "to", m.cfg.To)
	return nil
}
