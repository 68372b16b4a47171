// Package notify delivers manager notifications raised by conflict
// resolution. The SMTP mailer is the production path; LogNotifier serves
// environments without a configured mail server.
package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/retailops/shiftbalance/pkg/core/model"
)

// SMTPConfig holds the mail server settings for the Mailer
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// ManagerAddresses maps store ids to the manager inbox for that store.
	// Stores without an entry fall back to DefaultAddress.
	ManagerAddresses map[string]string
	DefaultAddress   string
}

// Mailer sends manager notifications over SMTP
type Mailer struct {
	client *mail.Client
	cfg    SMTPConfig
	logger *zap.Logger
}

// NewMailer creates an SMTP-backed notifier
func NewMailer(cfg SMTPConfig, logger *zap.Logger) (*Mailer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Port),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &Mailer{client: client, cfg: cfg, logger: logger}, nil
}

// Close releases the underlying SMTP connection
func (m *Mailer) Close() error {
	return m.client.Close()
}

// Notify emails the manager responsible for the given store
func (m *Mailer) Notify(ctx context.Context, storeID, message string, severity model.Severity) error {
	to := m.cfg.ManagerAddresses[storeID]
	if to == "" {
		to = m.cfg.DefaultAddress
	}
	if to == "" {
		return fmt.Errorf("no manager address configured for store %s", storeID)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}
	msg.Subject(fmt.Sprintf("[%s] Scheduling alert for store %s", severity, storeID))
	msg.SetBodyString(mail.TypeTextPlain, message)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	m.logger.Info("manager notification sent",
		zap.String("store", storeID),
		zap.String("to", to),
		zap.String("severity", string(severity)))
	return nil
}
