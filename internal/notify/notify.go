// Package notify delivers availability alerts.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"

	"github.com/example/slot-sniper/internal/monitor"
)

// LogNotifier writes alerts to the structured log. The default when no SMTP
// settings are configured.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, res monitor.CheckResult) error {
	log := n.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("availability found", "date", res.Date, "total", res.Total, "times", timesOf(res))
	return nil
}

type SMTPConfig struct {
	Server   string
	Port     int
	From     string
	Password string
	To       []string
}

// EmailNotifier sends a plain-text availability alert over SMTP.
type EmailNotifier struct {
	cfg SMTPConfig
}

func NewEmailNotifier(cfg SMTPConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg}
}

func (n *EmailNotifier) Notify(ctx context.Context, res monitor.CheckResult) error {
	mail := email.NewEmail()
	mail.From = n.cfg.From
	mail.To = n.cfg.To
	mail.Subject = fmt.Sprintf("Availability alert: %s", res.Date)

	var b strings.Builder
	fmt.Fprintf(&b, "Slots available for %s!\n", res.Date)
	fmt.Fprintf(&b, "Found %d available times:\n", res.Total)
	for _, t := range timesOf(res) {
		fmt.Fprintf(&b, "- %s\n", t)
	}
	mail.Text = []byte(b.String())

	addr := fmt.Sprintf("%s:%d", n.cfg.Server, n.cfg.Port)
	auth := smtp.PlainAuth("", n.cfg.From, n.cfg.Password, n.cfg.Server)
	if err := mail.Send(addr, auth); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}
	return nil
}

func timesOf(res monitor.CheckResult) []string {
	out := make([]string, 0, len(res.Slots))
	for _, s := range res.Slots {
		out = append(out, s.Time.String())
	}
	return out
}
