package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/caasmo/authrelay/db"
	"github.com/caasmo/authrelay/db/mock"
	"github.com/caasmo/authrelay/metrics"
	"github.com/caasmo/authrelay/router"
)

// stubParams serves fixed path parameters regardless of the request.
type stubParams struct {
	params router.Params
}

func (s *stubParams) Get(ctx context.Context) router.Params {
	return s.params
}

func setPathParam(app *App, key, value string) {
	app.params = &stubParams{params: router.Params{{Key: key, Value: value}}}
}

func adminRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return withIdentity(req, &db.User{ID: "admin1", Role: db.RoleAdmin, Status: db.StatusActive})
}

func TestAdminListUsersHandler(t *testing.T) {
	mockDb := &mock.Db{
		ListUsersFunc: func() ([]*db.User, error) {
			return []*db.User{
				{ID: "u1", Role: db.RoleAdmin, Status: db.StatusActive, Verified: time.Now()},
				{ID: "u2", Role: db.RoleUser, Status: db.StatusActive},
				{ID: "u3", Role: db.RoleUser, Status: db.StatusDisabled},
			}, nil
		},
	}
	app := newTestApp(t, mockDb)

	rr := httptest.NewRecorder()
	app.AdminListUsersHandler(rr, adminRequest(http.MethodGet, "/api/admin/users", ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	body := rr.Body.String()
	for _, want := range []string{`"total":3`, `"admins":1`, `"users":2`, `"active":2`, `"disabled":1`, `"verified":1`, `"unverified":2`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected stats to contain %s, body: %s", want, body)
		}
	}
	if strings.Contains(body, "password") {
		t.Error("user listing must not expose password hashes")
	}
}

func TestAdminUpdateUserHandler(t *testing.T) {
	t.Run("disabling a user revokes their sessions", func(t *testing.T) {
		revoked := ""
		mockDb := &mock.Db{
			GetUserByIdFunc: func(id string) (*db.User, error) {
				return &db.User{ID: id, Role: db.RoleUser, Status: db.StatusActive}, nil
			},
			UpdateUserRoleStatusFunc: func(userId string, role db.Role, status db.Status) (*db.User, error) {
				return &db.User{ID: userId, Role: role, Status: status}, nil
			},
			DeleteSessionsByUserFunc: func(userId string) error {
				revoked = userId
				return nil
			},
		}
		app := newTestApp(t, mockDb)
		setPathParam(app, "id", "u2")

		rr := httptest.NewRecorder()
		app.AdminUpdateUserHandler(rr, adminRequest(http.MethodPatch, "/api/admin/users/u2", `{"status":"disabled"}`))

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
		}
		if revoked != "u2" {
			t.Errorf("expected sessions of u2 revoked, revoked %q", revoked)
		}
	})

	t.Run("self modification is rejected", func(t *testing.T) {
		app := newTestApp(t, &mock.Db{})
		setPathParam(app, "id", "admin1")

		rr := httptest.NewRecorder()
		app.AdminUpdateUserHandler(rr, adminRequest(http.MethodPatch, "/api/admin/users/admin1", `{"role":"user"}`))

		if body := decodeBasic(t, rr); body.Code != CodeErrorSelfModification {
			t.Errorf("expected code %q, got %q", CodeErrorSelfModification, body.Code)
		}
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		mockDb := &mock.Db{
			GetUserByIdFunc: func(id string) (*db.User, error) {
				return &db.User{ID: id, Role: db.RoleUser, Status: db.StatusActive}, nil
			},
		}
		app := newTestApp(t, mockDb)
		setPathParam(app, "id", "u2")

		rr := httptest.NewRecorder()
		app.AdminUpdateUserHandler(rr, adminRequest(http.MethodPatch, "/api/admin/users/u2", `{"role":"superuser"}`))

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		mockDb := &mock.Db{
			GetUserByIdFunc: func(id string) (*db.User, error) {
				return nil, nil
			},
		}
		app := newTestApp(t, mockDb)
		setPathParam(app, "id", "ghost")

		rr := httptest.NewRecorder()
		app.AdminUpdateUserHandler(rr, adminRequest(http.MethodPatch, "/api/admin/users/ghost", `{"role":"user"}`))

		if rr.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rr.Code)
		}
	})
}

func TestAdminDeleteUserHandler(t *testing.T) {
	t.Run("deletes target user", func(t *testing.T) {
		deleted := ""
		mockDb := &mock.Db{
			GetUserByIdFunc: func(id string) (*db.User, error) {
				return &db.User{ID: id}, nil
			},
			DeleteUserFunc: func(userId string) error {
				deleted = userId
				return nil
			},
		}
		app := newTestApp(t, mockDb)
		setPathParam(app, "id", "u2")

		rr := httptest.NewRecorder()
		app.AdminDeleteUserHandler(rr, adminRequest(http.MethodDelete, "/api/admin/users/u2", ""))

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
		}
		if deleted != "u2" {
			t.Errorf("expected u2 deleted, deleted %q", deleted)
		}
	})

	t.Run("self deletion is rejected", func(t *testing.T) {
		app := newTestApp(t, &mock.Db{})
		setPathParam(app, "id", "admin1")

		rr := httptest.NewRecorder()
		app.AdminDeleteUserHandler(rr, adminRequest(http.MethodDelete, "/api/admin/users/admin1", ""))

		if body := decodeBasic(t, rr); body.Code != CodeErrorSelfModification {
			t.Errorf("expected code %q, got %q", CodeErrorSelfModification, body.Code)
		}
	})
}

func TestAdminMetricsHandler(t *testing.T) {
	t.Run("returns sketch snapshot", func(t *testing.T) {
		app := newTestApp(t, &mock.Db{})
		app.sketch = metrics.New(5, 100)
		app.sketch.Observe("/api/chat")
		app.sketch.Observe("/api/chat")
		app.sketch.Observe("/api/me")

		rr := httptest.NewRecorder()
		app.AdminMetricsHandler(rr, adminRequest(http.MethodGet, "/api/admin/metrics", ""))

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "/api/chat") {
			t.Errorf("expected snapshot to contain observed path, body: %s", rr.Body.String())
		}
	})

	t.Run("unavailable without a sketch", func(t *testing.T) {
		app := newTestApp(t, &mock.Db{})

		rr := httptest.NewRecorder()
		app.AdminMetricsHandler(rr, adminRequest(http.MethodGet, "/api/admin/metrics", ""))

		if rr.Code != http.StatusServiceUnavailable {
			t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
		}
	})
}
