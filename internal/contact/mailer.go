package contact

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

// ErrMailerNotConfigured is returned when SMTP settings are incomplete.
var ErrMailerNotConfigured = errors.New("mailer not configured")

// Mailer delivers contact form messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one contact form submission.
type Message struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SMTPMailer sends messages over plain SMTP with AUTH.
type SMTPMailer struct {
	Host string
	Port string
	User string
	Pass string
	From string
	To   string
}

// Configured reports whether all required SMTP fields are set.
func (m *SMTPMailer) Configured() bool {
	return m.Host != "" && m.From != "" && m.To != ""
}

// Send delivers the message to the configured recipient.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if !m.Configured() {
		return ErrMailerNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Pass, m.Host)
	}
	addr := m.Host + ":" + m.Port
	return smtp.SendMail(addr, auth, m.From, []string{m.To}, m.compose(msg))
}

// compose renders the RFC 5322 message. Every caller-controlled value placed
// on a header line goes through sanitizeHeader so CRLF sequences cannot start
// new header lines.
func (m *SMTPMailer) compose(msg Message) []byte {
	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		subject = "Contact form message"
	}

	var body strings.Builder
	fmt.Fprintf(&body, "From: %s\r\n", m.From)
	fmt.Fprintf(&body, "To: %s\r\n", m.To)
	fmt.Fprintf(&body, "Reply-To: %s\r\n", sanitizeHeader(msg.Email))
	fmt.Fprintf(&body, "Subject: %s\r\n", sanitizeHeader(subject))
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&body, "Name: %s\nEmail: %s\n\n%s\n", msg.Name, msg.Email, msg.Body)
	return []byte(body.String())
}

// sanitizeHeader strips CR/LF so user input cannot inject extra headers.
func sanitizeHeader(value string) string {
	value = strings.ReplaceAll(value, "\r", " ")
	return strings.ReplaceAll(value, "\n", " ")
}

var _ Mailer = (*SMTPMailer)(nil)
