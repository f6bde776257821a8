package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/caasmo/authrelay/db"
)

// VerifyEmailHandler consumes a verification token and stamps the
// owning account's email as verified.
//
// Endpoint: POST /api/auth/verify-email
func (a *App) VerifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.validator.ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if req.Token == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	_, err := a.dbToken.ConsumeVerification(req.Token, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, db.ErrTokenNotFound):
			writeJsonError(w, errorInvalidToken)
		case errors.Is(err, db.ErrTokenExpired):
			writeJsonError(w, errorExpiredToken)
		default:
			a.logger.Error("email verification failed", "err", err)
			writeJsonError(w, errorInternal)
		}
		return
	}

	writeJsonOk(w, okEmailVerified)
}

// ResendVerificationHandler schedules a fresh verification email. Like
// the password reset request, the response never reveals whether the
// address is registered.
//
// Endpoint: POST /api/auth/resend-verification
func (a *App) ResendVerificationHandler(w http.ResponseWriter, r *http.Request) {
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

	user, err := a.dbAuth.GetUserByEmail(req.Email)
	if err != nil {
		a.logger.Error("user lookup failed", "err", err)
		writeJsonError(w, errorInternal)
		return
	}
	if user != nil && !user.Verified.IsZero() {
		writeJsonOk(w, okAlreadyVerified)
		return
	}
	if user != nil {
		a.enqueueVerificationEmail(user.Email)
	}

	writeJsonOk(w, okVerificationRequested)
}
