package core

import (
	"encoding/json"
	"net/http"
)

// CurrentUserHandler returns the authenticated caller's own record.
//
// Endpoint: GET /api/me
func (a *App) CurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	id := IdentityFromContext(r.Context())
	writeUserResponse(w, http.StatusOK, CodeOkProfile, "Profile retrieved", id.User)
}

// UpdateProfileHandler updates the caller's display name and avatar.
// Email, role and status are not reachable from here.
//
// Endpoint: PUT /api/user/profile
func (a *App) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.validator.ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	id := IdentityFromContext(r.Context())

	var req struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	user, err := a.dbAuth.UpdateUserProfile(id.User.ID, req.Name, req.Avatar)
	if err != nil {
		a.logger.Error("profile update failed", "user", id.User.ID, "err", err)
		writeJsonError(w, errorInternal)
		return
	}
	if user == nil {
		writeJsonError(w, errorNotFound)
		return
	}

	writeUserResponse(w, http.StatusOK, CodeOkProfile, "Profile updated", user)
}
