package core

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/caasmo/authrelay/db"
)

// RegisterWithPasswordHandler creates a password account and schedules
// the verification email. The caller signs in separately.
//
// Endpoint: POST /api/auth/register
func (a *App) RegisterWithPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.validator.ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email          string `json:"email"`
		Password       string `json:"password"`
		Name           string `json:"name"`
		Role           string `json:"role"`
		AdminSecretKey string `json:"adminSecretKey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		writeJsonError(w, errorMissingFields)
		return
	}
	if err := ValidateEmail(req.Email); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	role := db.Role(req.Role)
	if req.Role != "" && !role.Valid() {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	user, err := a.registerPassword(req.Email, req.Password, req.Name, role, req.AdminSecretKey)
	if err != nil {
		switch {
		case errors.Is(err, errWeakPasswordValue):
			writeJsonError(w, errorWeakPassword)
		case errors.Is(err, errAdminSecretInvalid):
			writeJsonError(w, errorForbidden)
		case errors.Is(err, errDuplicateEmail):
			writeJsonError(w, errorDuplicateEmail)
		default:
			a.logger.Error("registration failed", "err", err)
			writeJsonError(w, errorInternal)
		}
		return
	}

	a.enqueueVerificationEmail(user.Email)

	writeUserResponse(w, http.StatusCreated, CodeOkRegistered, "Account registered successfully", user)
}
