package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/caasmo/authrelay/crypto"
	"github.com/caasmo/authrelay/db"
)

// RequestPasswordResetHandler schedules a password reset email. The
// response is identical whether or not the address belongs to an
// account, so the endpoint cannot be used to probe for registered
// emails.
//
// Endpoint: POST /api/auth/forgot-password
func (a *App) RequestPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.validator.ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if req.Email == "" {
		writeJsonError(w, errorMissingFields)
		return
	}
	if err := ValidateEmail(req.Email); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	if !a.resetCooldownActive(req.Email) {
		a.enqueuePasswordResetEmail(req.Email)
	}

	writeJsonOk(w, okPasswordResetRequested)
}

// resetCooldownActive consults the in-memory cooldown for the address.
// First sight of an address arms the cooldown and reports it inactive.
// The queue's unique constraint is the durable rate limit; this cache
// just keeps repeat requests from reaching the store at all.
func (a *App) resetCooldownActive(email string) bool {
	if a.cache == nil {
		return false
	}
	key := fmt.Sprintf("pwreset:%s", email)
	if _, found := a.cache.Get(key); found {
		return true
	}
	ttl := a.configProvider.Get().RateLimits.PasswordResetCooldown.Duration
	a.cache.SetWithTTL(key, struct{}{}, 1, ttl)
	return false
}

// ConfirmPasswordResetHandler consumes a reset token and stores the new
// password. All sessions of the owner are revoked afterwards.
//
// Endpoint: POST /api/auth/reset-password
func (a *App) ConfirmPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.validator.ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if req.Token == "" || req.Password == "" {
		writeJsonError(w, errorMissingFields)
		return
	}
	if len(req.Password) < passwordMinLength {
		writeJsonError(w, errorWeakPassword)
		return
	}

	hash, err := crypto.GenerateHash(req.Password)
	if err != nil {
		a.logger.Error("failed to hash password", "err", err)
		writeJsonError(w, errorInternal)
		return
	}

	userId, err := a.dbToken.ConsumePasswordReset(req.Token, time.Now(), hash)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrTokenNotFound):
			writeJsonError(w, errorInvalidToken)
		case errors.Is(err, db.ErrTokenExpired):
			writeJsonError(w, errorExpiredToken)
		default:
			a.logger.Error("password reset failed", "err", err)
			writeJsonError(w, errorInternal)
		}
		return
	}

	// a leaked session should not survive a password change
	if err := a.sessions.RevokeAll(userId); err != nil {
		a.logger.Error("failed to revoke sessions after password reset", "user", userId, "err", err)
	}

	writeJsonOk(w, okPasswordReset)
}
