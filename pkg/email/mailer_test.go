package email_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cyphervault/pkg/email"
)

func TestSendEmailParamsValidate(t *testing.T) {
	t.Parallel()

	valid := email.SendEmailParams{
		SendTo:   "user@example.com",
		Subject:  "Confirm your email",
		BodyHTML: "<p>Click the link</p>",
	}

	tests := []struct {
		name    string
		mutate  func(p *email.SendEmailParams)
		wantErr bool
	}{
		{name: "valid params", mutate: func(p *email.SendEmailParams) {}},
		{name: "missing recipient", mutate: func(p *email.SendEmailParams) { p.SendTo = "" }, wantErr: true},
		{name: "malformed recipient", mutate: func(p *email.SendEmailParams) { p.SendTo = "not-an-email" }, wantErr: true},
		{name: "missing subject", mutate: func(p *email.SendEmailParams) { p.Subject = "  " }, wantErr: true},
		{name: "missing body", mutate: func(p *email.SendEmailParams) { p.BodyHTML = "" }, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, email.ErrInvalidParams)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewPostmarkClient(t *testing.T) {
	t.Parallel()

	t.Run("requires tokens", func(t *testing.T) {
		t.Parallel()

		_, err := email.NewPostmarkClient(email.Config{
			SenderEmail:  "noreply@example.com",
			SupportEmail: "support@example.com",
		})
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("requires valid sender address", func(t *testing.T) {
		t.Parallel()

		_, err := email.NewPostmarkClient(email.Config{
			PostmarkServerToken:  "server-token",
			PostmarkAccountToken: "account-token",
			SenderEmail:          "bogus",
			SupportEmail:         "support@example.com",
		})
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("accepts complete config", func(t *testing.T) {
		t.Parallel()

		sender, err := email.NewPostmarkClient(email.Config{
			PostmarkServerToken:  "server-token",
			PostmarkAccountToken: "account-token",
			SenderEmail:          "noreply@example.com",
			SupportEmail:         "support@example.com",
		})
		require.NoError(t, err)
		assert.NotNil(t, sender)
	})
}

func TestDevSender(t *testing.T) {
	t.Parallel()

	t.Run("writes html and metadata", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		sender := email.NewDevSender(dir)

		err := sender.SendEmail(context.Background(), email.SendEmailParams{
			SendTo:   "user@example.com",
			Subject:  "Reset your password",
			BodyHTML: "<p>reset link</p>",
			Tag:      "password-reset",
		})
		require.NoError(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		var htmlFile string
		for _, e := range entries {
			if filepath.Ext(e.Name()) == ".html" {
				htmlFile = e.Name()
			}
		}
		require.NotEmpty(t, htmlFile)
		assert.True(t, strings.Contains(htmlFile, "password-reset"))

		body, err := os.ReadFile(filepath.Join(dir, htmlFile))
		require.NoError(t, err)
		assert.Equal(t, "<p>reset link</p>", string(body))
	})

	t.Run("rejects invalid params", func(t *testing.T) {
		t.Parallel()

		sender := email.NewDevSender(t.TempDir())
		err := sender.SendEmail(context.Background(), email.SendEmailParams{})
		assert.ErrorIs(t, err, email.ErrInvalidParams)
	})
}
