package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/caasmo/authrelay/config"
	"github.com/caasmo/authrelay/crypto"
	"github.com/caasmo/authrelay/db"
	"github.com/caasmo/authrelay/mail"
	"github.com/caasmo/authrelay/queue"
)

// EmailVerificationHandler issues a fresh verification token and mails
// the confirmation link.
type EmailVerificationHandler struct {
	dbAuth         db.DbAuth
	dbToken        db.DbToken
	configProvider *config.Provider
	mailer         mail.MailerInterface
}

func NewEmailVerificationHandler(dbAuth db.DbAuth, dbToken db.DbToken, provider *config.Provider, mailer mail.MailerInterface) *EmailVerificationHandler {
	return &EmailVerificationHandler{
		dbAuth:         dbAuth,
		dbToken:        dbToken,
		configProvider: provider,
		mailer:         mailer,
	}
}

// Handle implements the JobHandler interface for email verification requests.
func (h *EmailVerificationHandler) Handle(ctx context.Context, job db.Job) error {
	cfg := h.configProvider.Get()

	var payload queue.PayloadEmailVerification
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse email verification payload: %w", err)
	}

	user, err := h.dbAuth.GetUserByEmail(payload.Email)
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user not found: %s", payload.Email)
	}

	// Nothing to do when the address was verified in the meantime.
	if !user.Verified.IsZero() {
		return nil
	}

	token, err := crypto.NewToken()
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}

	// Old unconsumed tokens for the same address are cleared so only the
	// most recently mailed link works.
	if err := h.dbToken.DeleteTokensByIdentifier(db.TokenKindVerification, user.Email); err != nil {
		return fmt.Errorf("failed to clear previous verification tokens: %w", err)
	}

	err = h.dbToken.InsertToken(db.SingleUseToken{
		Identifier: user.Email,
		Token:      token,
		Kind:       db.TokenKindVerification,
		Expires:    time.Now().Add(cfg.Session.VerificationTokenDuration.Duration),
	})
	if err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}

	callbackURL := fmt.Sprintf("%s/auth/verify-email?token=%s", cfg.PublicBaseURL, token)

	if err := h.mailer.SendVerificationEmail(ctx, user.Email, callbackURL); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	return nil
}
