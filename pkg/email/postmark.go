package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

type postmarkSender struct {
	client *postmark.Client
	cfg    Config
}

// NewPostmarkSender creates a Postmark-backed Sender. The server token and a
// valid sender address are required so a misconfigured deployment fails at
// startup instead of silently dropping mail.
func NewPostmarkSender(cfg Config) (Sender, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: PostmarkServerToken is required", ErrInvalidConfig)
	}
	if !addressRegex.MatchString(cfg.SenderEmail) {
		return nil, fmt.Errorf("%w: invalid sender address %q", ErrInvalidConfig, cfg.SenderEmail)
	}
	if cfg.ReplyToEmail != "" && !addressRegex.MatchString(cfg.ReplyToEmail) {
		return nil, fmt.Errorf("%w: invalid reply-to address %q", ErrInvalidConfig, cfg.ReplyToEmail)
	}

	return &postmarkSender{
		client: postmark.NewClient(cfg.PostmarkServerToken, ""),
		cfg:    cfg,
	}, nil
}

func (s *postmarkSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:       s.cfg.SenderEmail,
		ReplyTo:    s.cfg.ReplyToEmail,
		To:         msg.To,
		Subject:    msg.Subject,
		HTMLBody:   msg.BodyHTML,
		Tag:        msg.Tag,
		TrackOpens: true,
	})
	if err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrSendFailed, fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
