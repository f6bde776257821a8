package core

import (
	"errors"
	"testing"
	"time"

	"github.com/caasmo/authrelay/db"
	"github.com/caasmo/authrelay/db/mock"
)

func TestSessionCreate(t *testing.T) {
	t.Run("persists token with configured lifetime", func(t *testing.T) {
		var inserted db.Session
		mockDb := &mock.Db{
			InsertSessionFunc: func(s db.Session) error {
				inserted = s
				return nil
			},
		}
		app := newTestApp(t, mockDb)

		session, err := app.Sessions().Create("user1")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if session.Token == "" {
			t.Error("expected a non-empty token")
		}
		if session.UserID != "user1" {
			t.Errorf("expected owner user1, got %q", session.UserID)
		}
		if inserted.Token != session.Token {
			t.Error("returned session does not match persisted session")
		}

		wantExpiry := time.Now().Add(app.Config().Session.SessionDuration.Duration)
		if session.Expires.Before(wantExpiry.Add(-time.Minute)) || session.Expires.After(wantExpiry.Add(time.Minute)) {
			t.Errorf("expiry %v not near %v", session.Expires, wantExpiry)
		}
	})

	t.Run("retries with fresh token on collision", func(t *testing.T) {
		var tokens []string
		mockDb := &mock.Db{
			InsertSessionFunc: func(s db.Session) error {
				tokens = append(tokens, s.Token)
				if len(tokens) == 1 {
					return db.ErrConstraintUnique
				}
				return nil
			},
		}
		app := newTestApp(t, mockDb)

		session, err := app.Sessions().Create("user1")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if len(tokens) != 2 {
			t.Fatalf("expected 2 insert attempts, got %d", len(tokens))
		}
		if tokens[0] == tokens[1] {
			t.Error("retry reused the colliding token")
		}
		if session.Token != tokens[1] {
			t.Error("returned session does not carry the retried token")
		}
	})

	t.Run("gives up after repeated collisions", func(t *testing.T) {
		attempts := 0
		mockDb := &mock.Db{
			InsertSessionFunc: func(s db.Session) error {
				attempts++
				return db.ErrConstraintUnique
			},
		}
		app := newTestApp(t, mockDb)

		if _, err := app.Sessions().Create("user1"); err == nil {
			t.Fatal("expected an error")
		}
		if attempts != sessionCreateRetries {
			t.Errorf("expected %d attempts, got %d", sessionCreateRetries, attempts)
		}
	})

	t.Run("store errors are not retried", func(t *testing.T) {
		attempts := 0
		mockDb := &mock.Db{
			InsertSessionFunc: func(s db.Session) error {
				attempts++
				return errors.New("disk full")
			},
		}
		app := newTestApp(t, mockDb)

		if _, err := app.Sessions().Create("user1"); err == nil {
			t.Fatal("expected an error")
		}
		if attempts != 1 {
			t.Errorf("expected 1 attempt, got %d", attempts)
		}
	})
}

func TestSessionValidate(t *testing.T) {
	activeUser := &db.User{ID: "user1", Email: "a@example.com", Status: db.StatusActive}

	t.Run("empty token is absent", func(t *testing.T) {
		app := newTestApp(t, &mock.Db{})
		user, session, err := app.Sessions().Validate("")
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if user != nil || session != nil {
			t.Error("expected absent identity")
		}
	})

	t.Run("unknown token is absent", func(t *testing.T) {
		mockDb := &mock.Db{
			GetSessionByTokenFunc: func(token string) (*db.Session, error) {
				return nil, nil
			},
		}
		app := newTestApp(t, mockDb)

		user, session, err := app.Sessions().Validate("missing")
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if user != nil || session != nil {
			t.Error("expected absent identity")
		}
	})

	t.Run("expired session is deleted and absent", func(t *testing.T) {
		deleted := ""
		mockDb := &mock.Db{
			GetSessionByTokenFunc: func(token string) (*db.Session, error) {
				return &db.Session{Token: token, UserID: "user1", Expires: time.Now().Add(-time.Hour)}, nil
			},
			DeleteSessionByTokenFunc: func(token string) error {
				deleted = token
				return nil
			},
		}
		app := newTestApp(t, mockDb)

		user, session, err := app.Sessions().Validate("stale")
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if user != nil || session != nil {
			t.Error("expected absent identity")
		}
		if deleted != "stale" {
			t.Errorf("expected expired session to be deleted, deleted %q", deleted)
		}
	})

	t.Run("disabled owner purges all sessions", func(t *testing.T) {
		purged := ""
		mockDb := &mock.Db{
			GetSessionByTokenFunc: func(token string) (*db.Session, error) {
				return &db.Session{Token: token, UserID: "user1", Expires: time.Now().Add(time.Hour)}, nil
			},
			GetUserByIdFunc: func(id string) (*db.User, error) {
				return &db.User{ID: id, Status: db.StatusDisabled}, nil
			},
			DeleteSessionsByUserFunc: func(userId string) error {
				purged = userId
				return nil
			},
		}
		app := newTestApp(t, mockDb)

		user, session, err := app.Sessions().Validate("tok")
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if user != nil || session != nil {
			t.Error("expected absent identity")
		}
		if purged != "user1" {
			t.Errorf("expected sessions of user1 purged, purged %q", purged)
		}
	})

	t.Run("deleted owner removes orphaned session", func(t *testing.T) {
		deleted := ""
		mockDb := &mock.Db{
			GetSessionByTokenFunc: func(token string) (*db.Session, error) {
				return &db.Session{Token: token, UserID: "ghost", Expires: time.Now().Add(time.Hour)}, nil
			},
			GetUserByIdFunc: func(id string) (*db.User, error) {
				return nil, nil
			},
			DeleteSessionByTokenFunc: func(token string) error {
				deleted = token
				return nil
			},
		}
		app := newTestApp(t, mockDb)

		user, session, err := app.Sessions().Validate("tok")
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if user != nil || session != nil {
			t.Error("expected absent identity")
		}
		if deleted != "tok" {
			t.Errorf("expected orphaned session deleted, deleted %q", deleted)
		}
	})

	t.Run("valid session returns user and session", func(t *testing.T) {
		mockDb := &mock.Db{
			GetSessionByTokenFunc: func(token string) (*db.Session, error) {
				return &db.Session{Token: token, UserID: "user1", Expires: time.Now().Add(time.Hour)}, nil
			},
			GetUserByIdFunc: func(id string) (*db.User, error) {
				return activeUser, nil
			},
		}
		app := newTestApp(t, mockDb)

		user, session, err := app.Sessions().Validate("tok")
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if user == nil || session == nil {
			t.Fatal("expected identity")
		}
		if user.ID != "user1" || session.Token != "tok" {
			t.Errorf("unexpected identity: user %q session %q", user.ID, session.Token)
		}
	})
}

func TestSessionRevoke(t *testing.T) {
	deleted := ""
	mockDb := &mock.Db{
		DeleteSessionByTokenFunc: func(token string) error {
			deleted = token
			return nil
		},
	}
	app := newTestApp(t, mockDb)

	if err := app.Sessions().Revoke("tok"); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if deleted != "tok" {
		t.Errorf("expected token tok deleted, deleted %q", deleted)
	}
}
