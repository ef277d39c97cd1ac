package mail

import (
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/campushub/timetable-api/pkg/config"
)

// Message is a single outbound email. Either To or Bcc must be set.
type Message struct {
	To      []string
	Bcc     []string
	Subject string
	Body    string
}

// Mailer delivers messages to students and staff.
type Mailer interface {
	Send(msg Message) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTP builds a mailer from config. When mail is disabled a NopMailer is
// returned so callers never need to branch.
func NewSMTP(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if !cfg.Enabled {
		if logger != nil {
			logger.Warn("mail disabled, outbound messages will be dropped")
		}
		return &NopMailer{logger: logger}
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send delivers a single message.
func (m *SMTPMailer) Send(msg Message) error {
	if len(msg.To) == 0 && len(msg.Bcc) == 0 {
		return fmt.Errorf("mail message has no recipients")
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	if len(msg.To) > 0 {
		gm.SetHeader("To", msg.To...)
	}
	if len(msg.Bcc) > 0 {
		gm.SetHeader("Bcc", msg.Bcc...)
	}
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// NopMailer drops messages, logging at debug level.
type NopMailer struct {
	logger *zap.Logger
}

func (m *NopMailer) Send(msg Message) error {
	if m.logger != nil {
		m.logger.Debug("mail dropped",
			zap.String("subject", msg.Subject),
			zap.Int("to", len(msg.To)),
			zap.Int("bcc", len(msg.Bcc)),
		)
	}
	return nil
}
