package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/caasmo/authrelay/config"
	"github.com/caasmo/authrelay/crypto"
	"github.com/caasmo/authrelay/db"
)

// sessionCreateRetries bounds the retry loop on token collisions. With
// 256 bits of token entropy a collision is effectively impossible, so
// hitting the bound indicates a store problem rather than bad luck.
const sessionCreateRetries = 3

// SessionManager mints, validates and revokes server-side sessions.
// The token is the bearer credential; nothing about the session state
// lives client-side beyond it.
type SessionManager struct {
	dbSession      db.DbSession
	dbAuth         db.DbAuth
	configProvider *config.Provider
}

func NewSessionManager(dbSession db.DbSession, dbAuth db.DbAuth, provider *config.Provider) *SessionManager {
	return &SessionManager{
		dbSession:      dbSession,
		dbAuth:         dbAuth,
		configProvider: provider,
	}
}

// Create mints a session for the user with a fixed lifetime. There is
// no sliding renewal; the expiry set here is final.
func (m *SessionManager) Create(userId string) (*db.Session, error) {
	duration := m.configProvider.Get().Session.SessionDuration.Duration

	for i := 0; i < sessionCreateRetries; i++ {
		token, err := crypto.NewToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate session token: %w", err)
		}

		session := db.Session{
			Token:   token,
			UserID:  userId,
			Expires: time.Now().Add(duration),
		}

		err = m.dbSession.InsertSession(session)
		if err == nil {
			return &session, nil
		}
		if !errors.Is(err, db.ErrConstraintUnique) {
			return nil, fmt.Errorf("failed to persist session: %w", err)
		}
		// collision: retry with fresh entropy
	}

	return nil, errors.New("failed to create session: token collisions exhausted retries")
}

// Validate resolves a token to its user and session. A missing row, an
// expired row or a disabled owner all return (nil, nil, nil); expiry
// detection deletes the row as a side effect (lazy expiry, no
// background sweep) and a disabled owner's sessions are all purged.
func (m *SessionManager) Validate(token string) (*db.User, *db.Session, error) {
	if token == "" {
		return nil, nil, nil
	}

	session, err := m.dbSession.GetSessionByToken(token)
	if err != nil {
		return nil, nil, fmt.Errorf("session lookup failed: %w", err)
	}
	if session == nil {
		return nil, nil, nil
	}

	if session.Expires.Before(time.Now()) {
		if err := m.dbSession.DeleteSessionByToken(token); err != nil {
			return nil, nil, fmt.Errorf("failed to delete expired session: %w", err)
		}
		return nil, nil, nil
	}

	user, err := m.dbAuth.GetUserById(session.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("session owner lookup failed: %w", err)
	}
	if user == nil {
		// owner deleted, session row is stale
		if err := m.dbSession.DeleteSessionByToken(token); err != nil {
			return nil, nil, fmt.Errorf("failed to delete orphaned session: %w", err)
		}
		return nil, nil, nil
	}

	if user.Status == db.StatusDisabled {
		if err := m.dbSession.DeleteSessionsByUser(user.ID); err != nil {
			return nil, nil, fmt.Errorf("failed to purge sessions of disabled user: %w", err)
		}
		return nil, nil, nil
	}

	return user, session, nil
}

// Revoke deletes a session. Revoking an unknown token is a no-op.
func (m *SessionManager) Revoke(token string) error {
	return m.dbSession.DeleteSessionByToken(token)
}

// RevokeAll deletes every session the user holds.
func (m *SessionManager) RevokeAll(userId string) error {
	return m.dbSession.DeleteSessionsByUser(userId)
}
