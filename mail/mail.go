package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/caasmo/authrelay/config"
	"github.com/domodwyer/mailyak/v3"
)

// MailerInterface is what the queue email handlers depend on. The
// concrete Mailer talks SMTP; tests substitute a mock.
type MailerInterface interface {
	SendVerificationEmail(ctx context.Context, email, callbackURL string) error
	SendPasswordResetEmail(ctx context.Context, email, callbackURL string) error
}

// Mailer handles sending emails over SMTP.
type Mailer struct {
	addr        string
	host        string
	username    string
	password    string
	authMethod  string
	useTLS      bool
	fromName    string
	fromAddress string
}

var _ MailerInterface = (*Mailer)(nil)

// New creates a new Mailer from the smtp config section.
func New(cfg config.Smtp) (*Mailer, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, fmt.Errorf("mail: smtp host and port are required")
	}
	return &Mailer{
		addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		host:        cfg.Host,
		username:    cfg.Username,
		password:    cfg.Password,
		authMethod:  cfg.AuthMethod,
		useTLS:      cfg.UseTLS,
		fromName:    cfg.FromName,
		fromAddress: cfg.FromAddress,
	}, nil
}

func (m *Mailer) auth() smtp.Auth {
	switch m.authMethod {
	case "none":
		return nil
	case "cram-md5":
		return smtp.CRAMMD5Auth(m.username, m.password)
	default:
		return smtp.PlainAuth("", m.username, m.password, m.host)
	}
}

func (m *Mailer) newMail() (*mailyak.MailYak, error) {
	if m.useTLS {
		return mailyak.NewWithTLS(m.addr, m.auth(), nil)
	}
	return mailyak.New(m.addr, m.auth()), nil
}

// send delivers the mail in a goroutine so the caller's context can
// abort the wait. mailyak has no context support of its own.
func (m *Mailer) send(ctx context.Context, mail *mailyak.MailYak) error {
	done := make(chan error, 1)
	go func() {
		done <- mail.Send()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// SendVerificationEmail sends an email verification message with a
// confirmation link.
func (m *Mailer) SendVerificationEmail(ctx context.Context, email, callbackURL string) error {
	mail, err := m.newMail()
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	mail.To(email)
	mail.From(m.fromAddress)
	mail.FromName(m.fromName)
	mail.Subject("Verify your email address")
	mail.HTML().Set(fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h1>Welcome!</h1>
			<p>Thank you for signing up. Please verify your email address by clicking the button below:</p>
			<a href="%[1]s" style="display: inline-block; padding: 12px 24px; margin: 16px 0;">Verify Email</a>
			<p>Or copy and paste this link in your browser:</p>
			<p style="word-break: break-all;">%[1]s</p>
			<p>This link will expire in 24 hours.</p>
			<p>If you didn't create an account, you can safely ignore this email.</p>
		</div>
	`, callbackURL))

	if err := m.send(ctx, mail); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// SendPasswordResetEmail sends a password reset message with a reset link.
func (m *Mailer) SendPasswordResetEmail(ctx context.Context, email, callbackURL string) error {
	mail, err := m.newMail()
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	mail.To(email)
	mail.From(m.fromAddress)
	mail.FromName(m.fromName)
	mail.Subject("Reset your password")
	mail.HTML().Set(fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h1>Password Reset Request</h1>
			<p>You requested to reset your password. Click the button below to create a new password:</p>
			<a href="%[1]s" style="display: inline-block; padding: 12px 24px; margin: 16px 0;">Reset Password</a>
			<p>Or copy and paste this link in your browser:</p>
			<p style="word-break: break-all;">%[1]s</p>
			<p>This link will expire in 1 hour.</p>
			<p>If you didn't request a password reset, you can safely ignore this email.</p>
		</div>
	`, callbackURL))

	if err := m.send(ctx, mail); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}
