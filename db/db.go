package db

import (
	"errors"
	"time"
)

// Sentinel errors surfaced by store implementations. Lookups that simply
// find nothing return (nil, nil); errors are reserved for real failures
// and for the typed conditions below.
var (
	// ErrConstraintUnique is returned when an insert violates a unique
	// constraint (duplicate email, duplicate account link, duplicate
	// queue job in the same cooldown bucket).
	ErrConstraintUnique = errors.New("unique constraint violation")

	// ErrTokenNotFound is returned by token consumption when no row
	// matches the token value.
	ErrTokenNotFound = errors.New("token not found")

	// ErrTokenExpired is returned by token consumption when the row
	// exists but is past its expiry. The row is deleted as a side effect.
	ErrTokenExpired = errors.New("token expired")
)

// DbAuth provides typed access to user records.
type DbAuth interface {
	// GetUserByEmail returns nil, nil when no user matches.
	GetUserByEmail(email string) (*User, error)
	// GetUserById returns nil, nil when no user matches.
	GetUserById(id string) (*User, error)
	// ListUsers returns all users ordered by creation time ascending.
	ListUsers() ([]*User, error)
	// CreateUser inserts a new user. Returns ErrConstraintUnique when the
	// email is already registered.
	CreateUser(user User) (*User, error)
	// UpdateUserProfile sets name and avatar and bumps updated.
	UpdateUserProfile(userId, name, avatar string) (*User, error)
	// UpdateUserRoleStatus sets role and status and bumps updated.
	// Returns nil, nil when the user does not exist.
	UpdateUserRoleStatus(userId string, role Role, status Status) (*User, error)
	// UpdatePassword stores a new password hash and bumps updated.
	UpdatePassword(userId string, newPassword string) error
	// MarkEmailVerified stamps the verification time for the address.
	MarkEmailVerified(email string, when time.Time) error
	// DeleteUser removes the user. Sessions, account links, tokens and
	// conversations cascade.
	DeleteUser(userId string) error
}

// DbSession provides access to session records.
type DbSession interface {
	// GetSessionByToken returns nil, nil when no session matches.
	GetSessionByToken(token string) (*Session, error)
	// InsertSession persists a new session. Returns ErrConstraintUnique
	// on a token collision so the caller can retry with fresh entropy.
	InsertSession(s Session) error
	// DeleteSessionByToken is idempotent; deleting an unknown token is
	// not an error.
	DeleteSessionByToken(token string) error
	DeleteSessionsByUser(userId string) error
}

// DbAccount provides access to oauth2 account links.
type DbAccount interface {
	// GetAccountLink returns nil, nil when no link matches.
	GetAccountLink(provider, providerAccountID string) (*AccountLink, error)
	// InsertAccountLink returns ErrConstraintUnique when the
	// (provider, providerAccountID) pair already exists.
	InsertAccountLink(l AccountLink) error
}

// DbToken provides access to single-use tokens. Consumption is
// exactly-once: the row is removed in the same transaction as the
// dependent user mutation.
type DbToken interface {
	// InsertToken persists a fresh token row.
	InsertToken(t SingleUseToken) error
	// DeleteTokensByIdentifier clears prior unconsumed tokens for the
	// same owner before a new one is issued.
	DeleteTokensByIdentifier(kind TokenKind, identifier string) error
	// ConsumeVerification deletes the token row and stamps the owning
	// user's email as verified, in one transaction. Returns the email.
	// Expired rows are deleted and reported as ErrTokenExpired.
	ConsumeVerification(token string, now time.Time) (string, error)
	// ConsumePasswordReset deletes the token row and stores the new
	// password hash, in one transaction. Returns the owning user id.
	// Expired rows are deleted and reported as ErrTokenExpired.
	ConsumePasswordReset(token string, now time.Time, newPasswordHash string) (string, error)
}

// DbChat provides ownership-scoped access to conversations and messages.
// Every read of a conversation filters by (id, userId); a conversation
// owned by someone else is indistinguishable from a missing one.
type DbChat interface {
	CreateConversation(c Conversation) (*Conversation, error)
	// GetConversation returns nil, nil when no owned conversation matches.
	GetConversation(id, userId string) (*Conversation, error)
	// ListConversations returns the user's conversations, updated descending.
	ListConversations(userId string) ([]*Conversation, error)
	// DeleteConversation reports whether a row was removed. Messages cascade.
	DeleteConversation(id, userId string) (bool, error)
	// ListMessages returns messages created ascending. Callers must have
	// checked ownership of the conversation first.
	ListMessages(conversationId string) ([]*Message, error)
	// InsertMessage appends a message and bumps the parent conversation's
	// updated timestamp.
	InsertMessage(m Message) (*Message, error)
	UpdateConversationTitle(id, userId, title string) error
}

// DbQueue provides access to the background job queue.
type DbQueue interface {
	// InsertJob returns ErrConstraintUnique when an identical pending
	// payload of the same type already exists.
	InsertJob(job Job) error
	Claim(limit int) ([]*Job, error)
	MarkCompleted(jobID int64) error
	MarkFailed(jobID int64, errMsg string) error
}

// DbApp is the full set of store roles the application needs. The
// concrete implementation (*zombiezen.Db) satisfies it.
type DbApp interface {
	DbAuth
	DbSession
	DbAccount
	DbToken
	DbChat
	DbQueue
}
