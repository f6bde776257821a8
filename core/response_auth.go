package core

import (
	"net/http"

	"github.com/caasmo/authrelay/db"
)

const (
	// oks for non precomputed, dynamic responses
	CodeOkAuthentication = "ok_authentication"
	CodeOkProfile        = "ok_profile"
)

// UserRecord is the user shape exposed to API clients. Sensitive fields
// (password hash) never appear here.
type UserRecord struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	Role     string `json:"role"`
	Status   string `json:"status"`
	Verified bool   `json:"verified"`
}

func newUserRecord(user *db.User) UserRecord {
	return UserRecord{
		ID:       user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Avatar:   user.Avatar,
		Role:     string(user.Role),
		Status:   string(user.Status),
		Verified: !user.Verified.IsZero(),
	}
}

// writeUserResponse writes a response whose data carries a single user
// record. Session credentials travel in the cookie, never in the body.
func writeUserResponse(w http.ResponseWriter, status int, code, message string, user *db.User) {
	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  status,
			Code:    code,
			Message: message,
		},
		Data: map[string]interface{}{"user": newUserRecord(user)},
	})
}
