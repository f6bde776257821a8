package core

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/caasmo/authrelay/db"
	"github.com/caasmo/authrelay/db/mock"
)

func TestCurrentUserHandler(t *testing.T) {
	app := newTestApp(t, &mock.Db{})

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/api/me", nil), &db.User{
		ID:     "u1",
		Email:  "a@example.com",
		Name:   "Alice",
		Role:   db.RoleUser,
		Status: db.StatusActive,
	})
	rr := httptest.NewRecorder()
	app.CurrentUserHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"email":"a@example.com"`) {
		t.Errorf("expected user email in body: %s", body)
	}
	if strings.Contains(body, "password") {
		t.Error("profile response must not carry password data")
	}
}

func TestUpdateProfileHandler(t *testing.T) {
	t.Run("updates name and avatar", func(t *testing.T) {
		var gotName, gotAvatar string
		mockDb := &mock.Db{
			UpdateUserProfileFunc: func(userId, name, avatar string) (*db.User, error) {
				gotName, gotAvatar = name, avatar
				return &db.User{ID: userId, Name: name, Avatar: avatar, Role: db.RoleUser, Status: db.StatusActive}, nil
			},
		}
		app := newTestApp(t, mockDb)

		req := withIdentity(
			httptest.NewRequest(http.MethodPut, "/api/user/profile", strings.NewReader(`{"name":"Bob","avatar":"https://example.com/b.png"}`)),
			&db.User{ID: "u1", Role: db.RoleUser, Status: db.StatusActive},
		)
		rr := httptest.NewRecorder()
		app.UpdateProfileHandler(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
		}
		if gotName != "Bob" || gotAvatar != "https://example.com/b.png" {
			t.Errorf("unexpected update %q %q", gotName, gotAvatar)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		app := newTestApp(t, &mock.Db{})

		req := withIdentity(
			httptest.NewRequest(http.MethodPut, "/api/user/profile", strings.NewReader(`{`)),
			&db.User{ID: "u1"},
		)
		rr := httptest.NewRecorder()
		app.UpdateProfileHandler(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
		}
	})
}
