package mock

import (
	"time"

	"github.com/caasmo/authrelay/db"
)

// Compile-time check to ensure Db implements the DbApp interface
var _ db.DbApp = (*Db)(nil)

// Db implements db.DbApp for testing purposes.
// Use function fields to allow overriding behavior in specific tests.
type Db struct {
	// --- Mock DbAuth Methods ---
	GetUserByEmailFunc       func(email string) (*db.User, error)
	GetUserByIdFunc          func(id string) (*db.User, error)
	ListUsersFunc            func() ([]*db.User, error)
	CreateUserFunc           func(user db.User) (*db.User, error)
	UpdateUserProfileFunc    func(userId, name, avatar string) (*db.User, error)
	UpdateUserRoleStatusFunc func(userId string, role db.Role, status db.Status) (*db.User, error)
	UpdatePasswordFunc       func(userId string, newPassword string) error
	MarkEmailVerifiedFunc    func(email string, when time.Time) error
	DeleteUserFunc           func(userId string) error

	// --- Mock DbSession Methods ---
	GetSessionByTokenFunc    func(token string) (*db.Session, error)
	InsertSessionFunc        func(s db.Session) error
	DeleteSessionByTokenFunc func(token string) error
	DeleteSessionsByUserFunc func(userId string) error

	// --- Mock DbAccount Methods ---
	GetAccountLinkFunc    func(provider, providerAccountID string) (*db.AccountLink, error)
	InsertAccountLinkFunc func(l db.AccountLink) error

	// --- Mock DbToken Methods ---
	InsertTokenFunc              func(t db.SingleUseToken) error
	DeleteTokensByIdentifierFunc func(kind db.TokenKind, identifier string) error
	ConsumeVerificationFunc      func(token string, now time.Time) (string, error)
	ConsumePasswordResetFunc     func(token string, now time.Time, newPasswordHash string) (string, error)

	// --- Mock DbChat Methods ---
	CreateConversationFunc      func(c db.Conversation) (*db.Conversation, error)
	GetConversationFunc         func(id, userId string) (*db.Conversation, error)
	ListConversationsFunc       func(userId string) ([]*db.Conversation, error)
	DeleteConversationFunc      func(id, userId string) (bool, error)
	ListMessagesFunc            func(conversationId string) ([]*db.Message, error)
	InsertMessageFunc           func(m db.Message) (*db.Message, error)
	UpdateConversationTitleFunc func(id, userId, title string) error

	// --- Mock DbQueue Methods ---
	InsertJobFunc     func(job db.Job) error
	ClaimFunc         func(limit int) ([]*db.Job, error)
	MarkCompletedFunc func(jobID int64) error
	MarkFailedFunc    func(jobID int64, errMsg string) error
}

// --- Implement DbAuth ---
func (m *Db) GetUserByEmail(email string) (*db.User, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(email)
	}
	return nil, nil // Default: Not found
}
func (m *Db) GetUserById(id string) (*db.User, error) {
	if m.GetUserByIdFunc != nil {
		return m.GetUserByIdFunc(id)
	}
	return nil, nil // Default: Not found
}
func (m *Db) ListUsers() ([]*db.User, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc()
	}
	return []*db.User{}, nil // Default: No users
}
func (m *Db) CreateUser(user db.User) (*db.User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(user)
	}
	// Default: Return the user passed in, assuming success
	if user.ID == "" {
		user.ID = "mock-user-id"
	}
	return &user, nil
}
func (m *Db) UpdateUserProfile(userId, name, avatar string) (*db.User, error) {
	if m.UpdateUserProfileFunc != nil {
		return m.UpdateUserProfileFunc(userId, name, avatar)
	}
	return &db.User{ID: userId, Name: name, Avatar: avatar}, nil
}
func (m *Db) UpdateUserRoleStatus(userId string, role db.Role, status db.Status) (*db.User, error) {
	if m.UpdateUserRoleStatusFunc != nil {
		return m.UpdateUserRoleStatusFunc(userId, role, status)
	}
	return &db.User{ID: userId, Role: role, Status: status}, nil
}
func (m *Db) UpdatePassword(userId string, newPassword string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(userId, newPassword)
	}
	return nil // Default: Success
}
func (m *Db) MarkEmailVerified(email string, when time.Time) error {
	if m.MarkEmailVerifiedFunc != nil {
		return m.MarkEmailVerifiedFunc(email, when)
	}
	return nil // Default: Success
}
func (m *Db) DeleteUser(userId string) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(userId)
	}
	return nil // Default: Success
}

// --- Implement DbSession ---
func (m *Db) GetSessionByToken(token string) (*db.Session, error) {
	if m.GetSessionByTokenFunc != nil {
		return m.GetSessionByTokenFunc(token)
	}
	return nil, nil // Default: Not found
}
func (m *Db) InsertSession(s db.Session) error {
	if m.InsertSessionFunc != nil {
		return m.InsertSessionFunc(s)
	}
	return nil // Default: Success
}
func (m *Db) DeleteSessionByToken(token string) error {
	if m.DeleteSessionByTokenFunc != nil {
		return m.DeleteSessionByTokenFunc(token)
	}
	return nil // Default: Success
}
func (m *Db) DeleteSessionsByUser(userId string) error {
	if m.DeleteSessionsByUserFunc != nil {
		return m.DeleteSessionsByUserFunc(userId)
	}
	return nil // Default: Success
}

// --- Implement DbAccount ---
func (m *Db) GetAccountLink(provider, providerAccountID string) (*db.AccountLink, error) {
	if m.GetAccountLinkFunc != nil {
		return m.GetAccountLinkFunc(provider, providerAccountID)
	}
	return nil, nil // Default: Not found
}
func (m *Db) InsertAccountLink(l db.AccountLink) error {
	if m.InsertAccountLinkFunc != nil {
		return m.InsertAccountLinkFunc(l)
	}
	return nil // Default: Success
}

// --- Implement DbToken ---
func (m *Db) InsertToken(t db.SingleUseToken) error {
	if m.InsertTokenFunc != nil {
		return m.InsertTokenFunc(t)
	}
	return nil // Default: Success
}
func (m *Db) DeleteTokensByIdentifier(kind db.TokenKind, identifier string) error {
	if m.DeleteTokensByIdentifierFunc != nil {
		return m.DeleteTokensByIdentifierFunc(kind, identifier)
	}
	return nil // Default: Success
}
func (m *Db) ConsumeVerification(token string, now time.Time) (string, error) {
	if m.ConsumeVerificationFunc != nil {
		return m.ConsumeVerificationFunc(token, now)
	}
	return "", db.ErrTokenNotFound // Default: Not found
}
func (m *Db) ConsumePasswordReset(token string, now time.Time, newPasswordHash string) (string, error) {
	if m.ConsumePasswordResetFunc != nil {
		return m.ConsumePasswordResetFunc(token, now, newPasswordHash)
	}
	return "", db.ErrTokenNotFound // Default: Not found
}

// --- Implement DbChat ---
func (m *Db) CreateConversation(c db.Conversation) (*db.Conversation, error) {
	if m.CreateConversationFunc != nil {
		return m.CreateConversationFunc(c)
	}
	return &c, nil // Default: Echo back
}
func (m *Db) GetConversation(id, userId string) (*db.Conversation, error) {
	if m.GetConversationFunc != nil {
		return m.GetConversationFunc(id, userId)
	}
	return nil, nil // Default: Not found
}
func (m *Db) ListConversations(userId string) ([]*db.Conversation, error) {
	if m.ListConversationsFunc != nil {
		return m.ListConversationsFunc(userId)
	}
	return []*db.Conversation{}, nil // Default: No conversations
}
func (m *Db) DeleteConversation(id, userId string) (bool, error) {
	if m.DeleteConversationFunc != nil {
		return m.DeleteConversationFunc(id, userId)
	}
	return false, nil // Default: Nothing deleted
}
func (m *Db) ListMessages(conversationId string) ([]*db.Message, error) {
	if m.ListMessagesFunc != nil {
		return m.ListMessagesFunc(conversationId)
	}
	return []*db.Message{}, nil // Default: No messages
}
func (m *Db) InsertMessage(msg db.Message) (*db.Message, error) {
	if m.InsertMessageFunc != nil {
		return m.InsertMessageFunc(msg)
	}
	return &msg, nil // Default: Echo back
}
func (m *Db) UpdateConversationTitle(id, userId, title string) error {
	if m.UpdateConversationTitleFunc != nil {
		return m.UpdateConversationTitleFunc(id, userId, title)
	}
	return nil // Default: Success
}

// --- Implement DbQueue ---
func (m *Db) InsertJob(job db.Job) error {
	if m.InsertJobFunc != nil {
		return m.InsertJobFunc(job)
	}
	return nil // Default: Success
}
func (m *Db) Claim(limit int) ([]*db.Job, error) {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(limit)
	}
	return []*db.Job{}, nil // Default: No jobs claimed
}
func (m *Db) MarkCompleted(jobID int64) error {
	if m.MarkCompletedFunc != nil {
		return m.MarkCompletedFunc(jobID)
	}
	return nil // Default: Success
}
func (m *Db) MarkFailed(jobID int64, errMsg string) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(jobID, errMsg)
	}
	return nil // Default: Success
}
