package email_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filingdesk/filingdesk/pkg/email"
)

func TestMessageValidate(t *testing.T) {
	t.Parallel()

	valid := email.Message{
		To:       "user@example.com",
		Subject:  "Verify your account",
		BodyHTML: "<p>Welcome</p>",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*email.Message)
	}{
		{"empty recipient", func(m *email.Message) { m.To = "" }},
		{"malformed recipient", func(m *email.Message) { m.To = "not-an-address" }},
		{"empty subject", func(m *email.Message) { m.Subject = "" }},
		{"empty body", func(m *email.Message) { m.BodyHTML = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			msg := valid
			tt.mutate(&msg)
			require.ErrorIs(t, msg.Validate(), email.ErrInvalidMessage)
		})
	}
}

func TestNewPostmarkSender(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		sender, err := email.NewPostmarkSender(email.Config{
			PostmarkServerToken: "token",
			SenderEmail:         "no-reply@filingdesk.app",
			ReplyToEmail:        "support@filingdesk.app",
		})
		require.NoError(t, err)
		require.NotNil(t, sender)
	})

	tests := []struct {
		name string
		cfg  email.Config
	}{
		{"missing token", email.Config{SenderEmail: "no-reply@filingdesk.app"}},
		{"invalid sender", email.Config{PostmarkServerToken: "token", SenderEmail: "nope"}},
		{"invalid reply-to", email.Config{PostmarkServerToken: "token", SenderEmail: "no-reply@filingdesk.app", ReplyToEmail: "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := email.NewPostmarkSender(tt.cfg)
			require.ErrorIs(t, err, email.ErrInvalidConfig)
		})
	}
}

func TestDevSender(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sender := email.NewDevSender(slog.New(slog.NewTextHandler(&buf, nil)))

	err := sender.Send(t.Context(), email.Message{
		To:       "user@example.com",
		Subject:  "Verify your account",
		BodyHTML: "<p>Welcome</p>",
		Tag:      "signup-verification",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "user@example.com")
	assert.Contains(t, buf.String(), "signup-verification")

	err = sender.Send(t.Context(), email.Message{})
	require.ErrorIs(t, err, email.ErrInvalidMessage)
}
