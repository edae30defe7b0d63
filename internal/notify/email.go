package notify

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/k2wGG/Check-bot/internal/config"
	"github.com/k2wGG/Check-bot/internal/logbus"
)

const maxPendingEvents = 500

// EmailNotifier mails one summary per cycle listing the successful
// check-ins. Disabled or invalid settings turn every call into a no-op
// with a logged reason.
type EmailNotifier struct {
	cfg config.EmailConfig
	bus *logbus.Bus

	mu      sync.Mutex
	pending []CheckinEvent
}

func NewEmailNotifier(cfg config.EmailConfig, bus *logbus.Bus) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, bus: bus}
}

func (n *EmailNotifier) CheckinSucceeded(_ context.Context, evt CheckinEvent) {
	if !n.cfg.Enabled {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.pending) >= maxPendingEvents {
		if n.bus != nil {
			n.bus.Warn("notify event dropped, batch full", map[string]any{"subject": evt.Subject})
		}
		return
	}
	n.pending = append(n.pending, evt)
}

func (n *EmailNotifier) CycleDone(ctx context.Context) {
	if !n.cfg.Enabled {
		return
	}
	n.mu.Lock()
	events := n.pending
	n.pending = nil
	n.mu.Unlock()
	if len(events) == 0 {
		return
	}

	if err := n.send(ctx, events); err != nil {
		if n.bus != nil {
			n.bus.Warn("summary e-mail failed", map[string]any{
				"error": err.Error(),
				"count": len(events),
			})
		}
		return
	}
	if n.bus != nil {
		n.bus.Info("summary e-mail sent", map[string]any{
			"count": len(events),
			"to":    strings.TrimSpace(n.cfg.Address),
		})
	}
}

func (n *EmailNotifier) send(ctx context.Context, events []CheckinEvent) error {
	if err := validateEmailConfig(n.cfg); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	address := strings.TrimSpace(n.cfg.Address)
	host, port, useSSL, err := smtpConfigForAddress(address)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(address, "Check-bot"))
	msg.SetHeader("To", address)
	msg.SetHeader("Subject", fmt.Sprintf("Check-in summary (%d accounts)", len(events)))
	msg.SetBody("text/plain", buildSummaryBody(events))

	d := gomail.NewDialer(host, port, address, strings.TrimSpace(n.cfg.AuthCode))
	d.SSL = useSSL
	return d.DialAndSend(msg)
}

func validateEmailConfig(cfg config.EmailConfig) error {
	address := strings.TrimSpace(cfg.Address)
	if address == "" {
		return errors.New("notify.email.address is required")
	}
	if _, err := mail.ParseAddress(address); err != nil {
		return errors.New("invalid notify.email.address")
	}
	if strings.TrimSpace(cfg.AuthCode) == "" {
		return errors.New("notify.email.authCode is required")
	}
	return nil
}

func buildSummaryBody(events []CheckinEvent) string {
	var b strings.Builder
	b.WriteString("Daily check-in summary\n\n")
	for _, evt := range events {
		at := time.UnixMilli(evt.At).Format("2006-01-02 15:04:05")
		fmt.Fprintf(&b, "- %s | %s | balance %.2f | award %.2f\n", at, evt.Email, evt.Balance, evt.Award)
	}
	return b.String()
}

func smtpConfigForAddress(address string) (host string, port int, useSSL bool, err error) {
	_, domain, ok := strings.Cut(strings.TrimSpace(address), "@")
	if !ok || strings.TrimSpace(domain) == "" {
		return "", 0, false, errors.New("invalid email format")
	}
	domain = strings.ToLower(strings.TrimSpace(domain))

	switch {
	case domain == "gmail.com":
		return "smtp.gmail.com", 587, false, nil
	case domain == "outlook.com" || domain == "hotmail.com" || domain == "live.com":
		return "smtp.office365.com", 587, false, nil
	case domain == "qq.com" || domain == "foxmail.com":
		return "smtp.qq.com", 465, true, nil
	case domain == "163.com" || domain == "126.com" || domain == "yeah.net":
		return "smtp.163.com", 465, true, nil
	case domain == "yandex.ru" || domain == "yandex.com" || domain == "ya.ru":
		return "smtp.yandex.ru", 465, true, nil
	case domain == "mail.ru" || domain == "bk.ru" || domain == "inbox.ru" || domain == "list.ru":
		return "smtp.mail.ru", 465, true, nil
	default:
		return "smtp." + domain, 465, true, nil
	}
}
