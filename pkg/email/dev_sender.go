package email

import (
	"context"
	"log/slog"
)

// DevSender logs messages instead of delivering them. Used in development and
// as the fallback when no Postmark token is configured.
type DevSender struct {
	log *slog.Logger
}

// NewDevSender creates a logging Sender.
func NewDevSender(log *slog.Logger) *DevSender {
	if log == nil {
		log = slog.Default()
	}
	return &DevSender{log: log}
}

func (s *DevSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "email suppressed in development",
		"to", msg.To,
		"subject", msg.Subject,
		"tag", msg.Tag,
	)
	return nil
}
