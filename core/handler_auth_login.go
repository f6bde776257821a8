package core

import (
	"encoding/json"
	"errors"
	"net/http"
)

// LoginWithPasswordHandler authenticates email and password and sets
// the session cookie.
//
// Endpoint: POST /api/auth/login
func (a *App) LoginWithPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.validator.ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	user, err := a.authenticatePassword(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, errBadCredentials):
			writeJsonError(w, errorInvalidCredentials)
		case errors.Is(err, errDisabledAccount):
			writeJsonError(w, errorAccountDisabled)
		default:
			a.logger.Error("login failed", "err", err)
			writeJsonError(w, errorInternal)
		}
		return
	}

	session, err := a.sessions.Create(user.ID)
	if err != nil {
		a.logger.Error("failed to create session", "err", err)
		writeJsonError(w, errorInternal)
		return
	}
	a.setSessionCookie(w, session.Token)

	writeUserResponse(w, http.StatusOK, CodeOkAuthentication, "Authentication successful", user)
}

// LogoutHandler revokes the current session and clears the cookie.
// Logging out without a session still succeeds.
//
// Endpoint: POST /api/auth/logout
func (a *App) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if token := sessionTokenFromRequest(r); token != "" {
		if err := a.sessions.Revoke(token); err != nil {
			a.logger.Error("failed to revoke session", "err", err)
			writeJsonError(w, errorInternal)
			return
		}
	}
	a.clearSessionCookie(w)
	writeJsonOk(w, okLogout)
}
