package core

import (
	"encoding/json"
	"net/http"

	"github.com/caasmo/authrelay/db"
)

const (
	CodeOkUserList    = "ok_user_list"
	CodeOkUserUpdated = "ok_user_updated"
	CodeOkMetrics     = "ok_metrics"
)

// userStats are the aggregate counts shown next to the admin user list.
type userStats struct {
	Total      int `json:"total"`
	Admins     int `json:"admins"`
	Users      int `json:"users"`
	Active     int `json:"active"`
	Disabled   int `json:"disabled"`
	Verified   int `json:"verified"`
	Unverified int `json:"unverified"`
}

// AdminListUsersHandler returns every user plus aggregate counts by
// role, status and verification.
//
// Endpoint: GET /api/admin/users
func (a *App) AdminListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := a.dbAuth.ListUsers()
	if err != nil {
		a.logger.Error("user listing failed", "err", err)
		writeJsonError(w, errorInternal)
		return
	}

	var stats userStats
	records := make([]UserRecord, 0, len(users))
	for _, u := range users {
		records = append(records, newUserRecord(u))
		stats.Total++
		if u.Role == db.RoleAdmin {
			stats.Admins++
		} else {
			stats.Users++
		}
		if u.Status == db.StatusDisabled {
			stats.Disabled++
		} else {
			stats.Active++
		}
		if u.Verified.IsZero() {
			stats.Unverified++
		} else {
			stats.Verified++
		}
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkUserList,
			Message: "User list retrieved",
		},
		Data: map[string]interface{}{
			"users": records,
			"stats": stats,
		},
	})
}

// AdminUpdateUserHandler changes a user's role or status. Admins cannot
// modify their own account. Disabling revokes every session the user
// holds.
//
// Endpoint: PATCH /api/admin/users/{id}
func (a *App) AdminUpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.validator.ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	id := IdentityFromContext(r.Context())
	targetId := a.pathParam(r, "id")
	if targetId == "" {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if targetId == id.User.ID {
		writeJsonError(w, errorSelfModification)
		return
	}

	var req struct {
		Role   string `json:"role"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	target, err := a.dbAuth.GetUserById(targetId)
	if err != nil {
		a.logger.Error("user lookup failed", "user", targetId, "err", err)
		writeJsonError(w, errorInternal)
		return
	}
	if target == nil {
		writeJsonError(w, errorNotFound)
		return
	}

	role := target.Role
	if req.Role != "" {
		role = db.Role(req.Role)
		if !role.Valid() {
			writeJsonError(w, errorInvalidRequest)
			return
		}
	}
	status := target.Status
	if req.Status != "" {
		status = db.Status(req.Status)
		if !status.Valid() {
			writeJsonError(w, errorInvalidRequest)
			return
		}
	}

	updated, err := a.dbAuth.UpdateUserRoleStatus(targetId, role, status)
	if err != nil {
		a.logger.Error("user update failed", "user", targetId, "err", err)
		writeJsonError(w, errorInternal)
		return
	}
	if updated == nil {
		writeJsonError(w, errorNotFound)
		return
	}

	if updated.Status == db.StatusDisabled {
		if err := a.sessions.RevokeAll(updated.ID); err != nil {
			a.logger.Error("failed to revoke sessions of disabled user", "user", updated.ID, "err", err)
			writeJsonError(w, errorInternal)
			return
		}
	}

	writeUserResponse(w, http.StatusOK, CodeOkUserUpdated, "User updated", updated)
}

// AdminDeleteUserHandler removes a user. Sessions, account links,
// tokens and conversations cascade in the store.
//
// Endpoint: DELETE /api/admin/users/{id}
func (a *App) AdminDeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id := IdentityFromContext(r.Context())
	targetId := a.pathParam(r, "id")
	if targetId == "" {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if targetId == id.User.ID {
		writeJsonError(w, errorSelfModification)
		return
	}

	target, err := a.dbAuth.GetUserById(targetId)
	if err != nil {
		a.logger.Error("user lookup failed", "user", targetId, "err", err)
		writeJsonError(w, errorInternal)
		return
	}
	if target == nil {
		writeJsonError(w, errorNotFound)
		return
	}

	if err := a.dbAuth.DeleteUser(targetId); err != nil {
		a.logger.Error("user deletion failed", "user", targetId, "err", err)
		writeJsonError(w, errorInternal)
		return
	}

	writeJsonOk(w, okUserDeleted)
}

// AdminMetricsHandler exposes the traffic sketch snapshot.
//
// Endpoint: GET /api/admin/metrics
func (a *App) AdminMetricsHandler(w http.ResponseWriter, r *http.Request) {
	if a.sketch == nil {
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkMetrics,
			Message: "Metrics snapshot retrieved",
		},
		Data: map[string]interface{}{"metrics": a.sketch.Snapshot()},
	})
}
