package db

import (
	"encoding/json"
	"time"
)

// Role is the closed set of user roles. Free-form strings are rejected at
// the boundary with Valid().
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Status is the closed set of account states. A disabled user can hold no
// valid session; validation purges sessions of disabled owners.
type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusDisabled
}

// User represents a user from the database.
// Timestamps (Created and Updated) use RFC3339 format in UTC timezone.
// Example: "2024-03-07T15:04:05Z"
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	// Verified is the moment the email address was confirmed. Zero means
	// unverified.
	Verified time.Time `json:"verified,omitzero"`
	Avatar   string    `json:"avatar,omitempty"`
	// Password is the bcrypt hash. Empty for oauth2-only accounts.
	Password string    `json:"-"`
	Role     Role      `json:"role"`
	Status   Status    `json:"status"`
	Created  time.Time `json:"created"`
	Updated  time.Time `json:"updated"`
}

// Session is the server side proof of authentication. The token is the
// bearer credential and the primary key.
type Session struct {
	Token   string
	UserID  string
	Expires time.Time
}

// AccountLink ties one external oauth2 identity to one local user.
// (Provider, ProviderAccountID) is unique; the constraint is the
// concurrency guard against duplicate identity creation.
type AccountLink struct {
	Provider          string
	ProviderAccountID string
	UserID            string
	AccessToken       string
	Created           time.Time
}

// TokenKind selects the single-use token table.
type TokenKind string

const (
	TokenKindVerification  TokenKind = "verification"
	TokenKindPasswordReset TokenKind = "password_reset"
)

// SingleUseToken authorizes exactly one email verification or password
// reset. Identifier is the email address for verification tokens and the
// user id for reset tokens. The row is deleted on consumption or on
// expiry detection.
type SingleUseToken struct {
	Identifier string
	Token      string
	Kind       TokenKind
	Expires    time.Time
}

// MessageRole is the closed set of chat message authors.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Conversation is a user-owned chat thread. Listing order is Updated
// descending; Updated is bumped whenever a message is appended.
type Conversation struct {
	ID      string    `json:"id"`
	UserID  string    `json:"-"`
	Title   string    `json:"title"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// Message belongs to a conversation. Ordering is Created ascending.
type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"-"`
	UserID         string      `json:"-"`
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	Created        time.Time   `json:"created"`
}

// Job represents a job in the processing queue
type Job struct {
	ID           int64           `json:"id"`
	JobType      string          `json:"job_type"`
	Payload      json.RawMessage `json:"payload"`
	Status       string          `json:"status"`
	Attempts     int             `json:"attempts"`
	MaxAttempts  int             `json:"max_attempts"`
	CreatedAt    time.Time       `json:"created_at"`
	ScheduledFor time.Time       `json:"scheduled_for"`
	CompletedAt  time.Time       `json:"completed_at,omitempty"`
	LastError    string          `json:"last_error,omitempty"`
}
