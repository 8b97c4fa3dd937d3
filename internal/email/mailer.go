// Package email sends candidate and recruiter notifications over SMTP.
// Sending is best effort from the pipeline's point of view: callers log
// failures instead of propagating them.
package email

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	// Load .env file to environments
	_ "github.com/joho/godotenv/autoload"
	"gopkg.in/gomail.v2"
)

// Sender delivers one rendered notification.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Mailer renders templates and delivers them through an SMTP relay.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailerFromEnv builds a Mailer from SMTP_* environment variables.
func NewMailerFromEnv() (*Mailer, error) {
	host := os.Getenv("SMTP_HOST")
	portStr := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USERNAME")
	pass := os.Getenv("SMTP_PASSWORD")
	from := os.Getenv("SMTP_FROM")

	if host == "" || from == "" {
		return nil, fmt.Errorf("SMTP_HOST and SMTP_FROM must be configured")
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = 587
	}

	return &Mailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}, nil
}

// Send renders and delivers one message. The context deadline is honored
// only coarsely: gomail has no context support, so cancellation is checked
// before dialing.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return fmt.Errorf("message has no recipient")
	}

	rendered, err := render(msg)
	if err != nil {
		return err
	}

	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", msg.To)
	mail.SetHeader("Subject", rendered.Subject)
	if msg.ReplyTo != "" {
		mail.SetHeader("Reply-To", msg.ReplyTo)
	}
	mail.SetBody("text/plain", rendered.Body)

	if err := m.dialer.DialAndSend(mail); err != nil {
		return fmt.Errorf("failed to send %s email to %s: %w", msg.Template, msg.To, err)
	}

	log.Printf("sent %s email to %s", msg.Template, msg.To)
	return nil
}
