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

// PasswordResetHandler issues a fresh reset token and mails the reset
// link. Reset tokens carry the user id, not the email, so the token
// stays valid only for the account it was issued for.
type PasswordResetHandler struct {
	dbAuth         db.DbAuth
	dbToken        db.DbToken
	configProvider *config.Provider
	mailer         mail.MailerInterface
}

func NewPasswordResetHandler(dbAuth db.DbAuth, dbToken db.DbToken, provider *config.Provider, mailer mail.MailerInterface) *PasswordResetHandler {
	return &PasswordResetHandler{
		dbAuth:         dbAuth,
		dbToken:        dbToken,
		configProvider: provider,
		mailer:         mailer,
	}
}

// Handle implements the JobHandler interface for password reset requests.
func (h *PasswordResetHandler) Handle(ctx context.Context, job db.Job) error {
	cfg := h.configProvider.Get()

	var payload queue.PayloadPasswordReset
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse password reset payload: %w", err)
	}

	user, err := h.dbAuth.GetUserByEmail(payload.Email)
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}
	if user == nil {
		// The account enumeration guard lives at the HTTP layer; by the
		// time a job exists the user may still have been deleted.
		return nil
	}

	token, err := crypto.NewToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	if err := h.dbToken.DeleteTokensByIdentifier(db.TokenKindPasswordReset, user.ID); err != nil {
		return fmt.Errorf("failed to clear previous reset tokens: %w", err)
	}

	err = h.dbToken.InsertToken(db.SingleUseToken{
		Identifier: user.ID,
		Token:      token,
		Kind:       db.TokenKindPasswordReset,
		Expires:    time.Now().Add(cfg.Session.PasswordResetTokenDuration.Duration),
	})
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	callbackURL := fmt.Sprintf("%s/auth/reset-password?token=%s", cfg.PublicBaseURL, token)

	if err := h.mailer.SendPasswordResetEmail(ctx, user.Email, callbackURL); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	return nil
}
