package zombiezen

import (
	"errors"
	"testing"
	"time"

	"github.com/caasmo/authrelay/db"
)

func seedUser(t *testing.T, testDB *Db, id, email string) *db.User {
	t.Helper()
	user, err := testDB.CreateUser(db.User{
		ID: id, Email: email, Role: db.RoleUser, Status: db.StatusActive,
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func TestSessionLifecycle(t *testing.T) {
	testDB := newTestDB(t)
	user := seedUser(t, testDB, "u1", "session@example.com")

	expires := time.Now().UTC().Add(30 * 24 * time.Hour).Truncate(time.Second)

	t.Run("Insert", func(t *testing.T) {
		err := testDB.InsertSession(db.Session{
			Token: "tok1", UserID: user.ID, Expires: expires,
		})
		if err != nil {
			t.Fatalf("InsertSession failed: %v", err)
		}
	})

	t.Run("InsertDuplicateToken", func(t *testing.T) {
		err := testDB.InsertSession(db.Session{
			Token: "tok1", UserID: user.ID, Expires: expires,
		})
		if !errors.Is(err, db.ErrConstraintUnique) {
			t.Fatalf("expected ErrConstraintUnique, got %v", err)
		}
	})

	t.Run("Get", func(t *testing.T) {
		session, err := testDB.GetSessionByToken("tok1")
		if err != nil {
			t.Fatalf("GetSessionByToken failed: %v", err)
		}
		if session == nil {
			t.Fatal("expected session, got nil")
		}
		if session.UserID != user.ID {
			t.Errorf("expected user %q, got %q", user.ID, session.UserID)
		}
		if !session.Expires.Equal(expires) {
			t.Errorf("expected expires %v, got %v", expires, session.Expires)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		session, err := testDB.GetSessionByToken("no-such-token")
		if err != nil {
			t.Fatalf("GetSessionByToken failed: %v", err)
		}
		if session != nil {
			t.Fatalf("expected nil, got %+v", session)
		}
	})

	t.Run("DeleteByToken", func(t *testing.T) {
		if err := testDB.DeleteSessionByToken("tok1"); err != nil {
			t.Fatalf("DeleteSessionByToken failed: %v", err)
		}
		session, _ := testDB.GetSessionByToken("tok1")
		if session != nil {
			t.Fatal("expected session to be deleted")
		}
	})

	t.Run("DeleteByTokenIdempotent", func(t *testing.T) {
		if err := testDB.DeleteSessionByToken("tok1"); err != nil {
			t.Fatalf("expected nil error for missing token, got %v", err)
		}
	})
}

func TestDeleteSessionsByUser(t *testing.T) {
	testDB := newTestDB(t)
	user := seedUser(t, testDB, "u1", "revoke@example.com")
	other := seedUser(t, testDB, "u2", "other@example.com")

	expires := time.Now().Add(time.Hour)
	for _, tok := range []string{"a", "b", "c"} {
		if err := testDB.InsertSession(db.Session{Token: tok, UserID: user.ID, Expires: expires}); err != nil {
			t.Fatalf("InsertSession failed: %v", err)
		}
	}
	if err := testDB.InsertSession(db.Session{Token: "keep", UserID: other.ID, Expires: expires}); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}

	if err := testDB.DeleteSessionsByUser(user.ID); err != nil {
		t.Fatalf("DeleteSessionsByUser failed: %v", err)
	}

	for _, tok := range []string{"a", "b", "c"} {
		if session, _ := testDB.GetSessionByToken(tok); session != nil {
			t.Errorf("expected session %q to be revoked", tok)
		}
	}
	if session, _ := testDB.GetSessionByToken("keep"); session == nil {
		t.Error("expected other user's session to survive")
	}
}
