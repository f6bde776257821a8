package handlers

import (
	"context"

	"github.com/caasmo/authrelay/mail"
)

// mailerMock is a mock implementation of the mail.Mailer for testing purposes.
type mailerMock struct {
	SendVerificationEmailFunc  func(ctx context.Context, email, callbackURL string) error
	SendPasswordResetEmailFunc func(ctx context.Context, email, callbackURL string) error
}

func (m *mailerMock) SendVerificationEmail(ctx context.Context, email, callbackURL string) error {
	if m.SendVerificationEmailFunc != nil {
		return m.SendVerificationEmailFunc(ctx, email, callbackURL)
	}
	return nil
}

func (m *mailerMock) SendPasswordResetEmail(ctx context.Context, email, callbackURL string) error {
	if m.SendPasswordResetEmailFunc != nil {
		return m.SendPasswordResetEmailFunc(ctx, email, callbackURL)
	}
	return nil
}

// mailerMock must implement the mail.MailerInterface
var _ mail.MailerInterface = (*mailerMock)(nil)
