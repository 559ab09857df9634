package infra

import (
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"github.com/chathuwa-whiz/zors-pos/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends receipt emails through a plain-auth SMTP relay.
// Auth and relay address are fixed at construction; SendReceipt is safe
// for concurrent use from multiple workers.
type Mailer struct {
	from string
	addr string
	auth smtp.Auth
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		from: cfg.SMTPUser,
		addr: net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		auth: smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost),
	}
}

// SendReceipt emails a plain-text body to the customer, attaching the
// rendered PDF when a path is given.
func (m *Mailer) SendReceipt(to, subject, body, pdfPath string) error {
	msg := email.NewEmail()
	msg.From = m.from
	msg.To = []string{to}
	msg.Subject = subject
	msg.Text = []byte(body)

	if pdfPath != "" {
		if _, err := msg.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}
	return msg.Send(m.addr, m.auth)
}
