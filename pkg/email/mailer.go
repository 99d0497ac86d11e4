package email

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrInvalidConfig is returned when required sender configuration is missing.
	ErrInvalidConfig = errors.New("email: invalid config")

	// ErrInvalidMessage is returned when a message fails validation before sending.
	ErrInvalidMessage = errors.New("email: invalid message")

	// ErrSendFailed wraps provider errors.
	ErrSendFailed = errors.New("email: failed to send")
)

var addressRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type Config struct {
	PostmarkServerToken string `env:"POSTMARK_SERVER_TOKEN"`                        // PostmarkServerToken authenticates against the Postmark server API.
	SenderEmail         string `env:"EMAIL_SENDER" envDefault:"no-reply@filingdesk.app"` // SenderEmail is the From address.
	ReplyToEmail        string `env:"EMAIL_REPLY_TO" envDefault:"support@filingdesk.app"` // ReplyToEmail receives customer replies.
}

// Message is one transactional email.
type Message struct {
	To       string
	Subject  string
	BodyHTML string
	Tag      string // Tag groups messages in provider analytics, e.g. "signup-verification".
}

// Validate checks the message can be handed to a provider.
func (m Message) Validate() error {
	if !addressRegex.MatchString(m.To) {
		return fmt.Errorf("%w: recipient %q", ErrInvalidMessage, m.To)
	}
	if m.Subject == "" {
		return fmt.Errorf("%w: empty subject", ErrInvalidMessage)
	}
	if m.BodyHTML == "" {
		return fmt.Errorf("%w: empty body", ErrInvalidMessage)
	}
	return nil
}

// Sender delivers transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
