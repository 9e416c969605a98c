package mailer

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Config holds SMTP connection details. When Mode is "development" no mail
// is sent; messages are written to the log instead.
type Config struct {
	Mode     string
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends HTML notification emails.
type Mailer struct {
	cfg Config
}

// New creates a new Mailer.
func New(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send delivers a single HTML message. In development mode it logs the
// message and reports success, so local flows work without an SMTP server.
func (m *Mailer) Send(toAddress, subject, htmlBody string) error {
	if m.cfg.Mode == "development" {
		log.Printf("[mail:dev] to=%s subject=%q body=%d bytes", toAddress, subject, len(htmlBody))
		return nil
	}

	var msg strings.Builder
	msg.WriteString("From: " + m.cfg.From + "\r\n")
	msg.WriteString("To: " + toAddress + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{toAddress}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", toAddress, err)
	}
	return nil
}
