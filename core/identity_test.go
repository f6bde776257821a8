package core

import (
	"errors"
	"testing"
	"time"

	"github.com/caasmo/authrelay/crypto"
	"github.com/caasmo/authrelay/db"
	"github.com/caasmo/authrelay/db/mock"
	"github.com/caasmo/authrelay/oauth2"
)

func TestRegisterPassword(t *testing.T) {
	t.Run("creates active user with hashed password", func(t *testing.T) {
		var created db.User
		mockDb := &mock.Db{
			CreateUserFunc: func(user db.User) (*db.User, error) {
				created = user
				return &user, nil
			},
		}
		app := newTestApp(t, mockDb)

		user, err := app.registerPassword("a@example.com", "longpass1", "Alice", "", "")
		if err != nil {
			t.Fatalf("registerPassword failed: %v", err)
		}
		if user.ID == "" {
			t.Error("expected a generated user id")
		}
		if created.Role != db.RoleUser || created.Status != db.StatusActive {
			t.Errorf("expected active user role, got %s/%s", created.Role, created.Status)
		}
		if created.Password == "longpass1" || created.Password == "" {
			t.Error("password was not hashed")
		}
		if !crypto.CheckPassword("longpass1", created.Password) {
			t.Error("stored hash does not verify against the password")
		}
		if !created.Verified.IsZero() {
			t.Error("new password accounts must start unverified")
		}
	})

	t.Run("short password", func(t *testing.T) {
		app := newTestApp(t, &mock.Db{})
		if _, err := app.registerPassword("a@example.com", "short", "", "", ""); !errors.Is(err, errWeakPasswordValue) {
			t.Errorf("expected weak password error, got %v", err)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		mockDb := &mock.Db{
			CreateUserFunc: func(user db.User) (*db.User, error) {
				return nil, db.ErrConstraintUnique
			},
		}
		app := newTestApp(t, mockDb)
		if _, err := app.registerPassword("a@example.com", "longpass1", "", "", ""); !errors.Is(err, errDuplicateEmail) {
			t.Errorf("expected duplicate email error, got %v", err)
		}
	})

	t.Run("admin role requires matching secret", func(t *testing.T) {
		tests := []struct {
			name       string
			configured string
			presented  string
			wantErr    bool
		}{
			{"secret matches", "s3cret", "s3cret", false},
			{"secret mismatch", "s3cret", "wrong", true},
			{"secret unset disables admin registration", "", "anything", true},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				mockDb := &mock.Db{
					CreateUserFunc: func(user db.User) (*db.User, error) {
						return &user, nil
					},
				}
				app := newTestApp(t, mockDb)
				cfg := app.Config()
				cfg.AdminSecret = tc.configured

				_, err := app.registerPassword("a@example.com", "longpass1", "", db.RoleAdmin, tc.presented)
				if tc.wantErr {
					if !errors.Is(err, errAdminSecretInvalid) {
						t.Errorf("expected admin secret error, got %v", err)
					}
					return
				}
				if err != nil {
					t.Fatalf("registerPassword failed: %v", err)
				}
			})
		}
	})
}

func TestAuthenticatePassword(t *testing.T) {
	hash, err := crypto.GenerateHash("longpass1")
	if err != nil {
		t.Fatalf("failed to hash fixture password: %v", err)
	}

	tests := []struct {
		name     string
		user     *db.User
		password string
		wantErr  error
	}{
		{
			name:     "unknown email",
			user:     nil,
			password: "longpass1",
			wantErr:  errBadCredentials,
		},
		{
			name:     "oauth2 only account",
			user:     &db.User{ID: "u1", Status: db.StatusActive},
			password: "longpass1",
			wantErr:  errBadCredentials,
		},
		{
			name:     "wrong password",
			user:     &db.User{ID: "u1", Password: hash, Status: db.StatusActive},
			password: "wrongpass1",
			wantErr:  errBadCredentials,
		},
		{
			name:     "disabled account",
			user:     &db.User{ID: "u1", Password: hash, Status: db.StatusDisabled},
			password: "longpass1",
			wantErr:  errDisabledAccount,
		},
		{
			name:     "valid credentials",
			user:     &db.User{ID: "u1", Password: hash, Status: db.StatusActive},
			password: "longpass1",
			wantErr:  nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockDb := &mock.Db{
				GetUserByEmailFunc: func(email string) (*db.User, error) {
					return tc.user, nil
				},
			}
			app := newTestApp(t, mockDb)

			user, err := app.authenticatePassword("a@example.com", tc.password)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Errorf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("authenticatePassword failed: %v", err)
			}
			if user.ID != "u1" {
				t.Errorf("expected user u1, got %q", user.ID)
			}
		})
	}
}

func TestResolveOAuthIdentity(t *testing.T) {
	profile := &oauth2.Profile{
		Provider:      "google",
		ExternalID:    "ext1",
		Email:         "a@example.com",
		EmailVerified: true,
		Name:          "Alice",
	}

	t.Run("existing link returns its owner", func(t *testing.T) {
		mockDb := &mock.Db{
			GetAccountLinkFunc: func(provider, providerAccountID string) (*db.AccountLink, error) {
				return &db.AccountLink{Provider: provider, ProviderAccountID: providerAccountID, UserID: "u1"}, nil
			},
			GetUserByIdFunc: func(id string) (*db.User, error) {
				return &db.User{ID: id, Status: db.StatusActive}, nil
			},
		}
		app := newTestApp(t, mockDb)

		user, err := app.resolveOAuthIdentity(profile, "at")
		if err != nil {
			t.Fatalf("resolveOAuthIdentity failed: %v", err)
		}
		if user.ID != "u1" {
			t.Errorf("expected user u1, got %q", user.ID)
		}
	})

	t.Run("link to disabled owner is rejected", func(t *testing.T) {
		mockDb := &mock.Db{
			GetAccountLinkFunc: func(provider, providerAccountID string) (*db.AccountLink, error) {
				return &db.AccountLink{UserID: "u1"}, nil
			},
			GetUserByIdFunc: func(id string) (*db.User, error) {
				return &db.User{ID: id, Status: db.StatusDisabled}, nil
			},
		}
		app := newTestApp(t, mockDb)

		if _, err := app.resolveOAuthIdentity(profile, "at"); !errors.Is(err, errDisabledAccount) {
			t.Errorf("expected disabled account error, got %v", err)
		}
	})

	t.Run("matching email links existing user and stamps verification", func(t *testing.T) {
		var link db.AccountLink
		stamped := ""
		mockDb := &mock.Db{
			GetAccountLinkFunc: func(provider, providerAccountID string) (*db.AccountLink, error) {
				return nil, nil
			},
			GetUserByEmailFunc: func(email string) (*db.User, error) {
				return &db.User{ID: "u1", Email: email, Status: db.StatusActive}, nil
			},
			MarkEmailVerifiedFunc: func(email string, when time.Time) error {
				stamped = email
				return nil
			},
			InsertAccountLinkFunc: func(l db.AccountLink) error {
				link = l
				return nil
			},
		}
		app := newTestApp(t, mockDb)

		user, err := app.resolveOAuthIdentity(profile, "at")
		if err != nil {
			t.Fatalf("resolveOAuthIdentity failed: %v", err)
		}
		if user.ID != "u1" {
			t.Errorf("expected user u1, got %q", user.ID)
		}
		if link.UserID != "u1" || link.Provider != "google" || link.ProviderAccountID != "ext1" {
			t.Errorf("unexpected link %+v", link)
		}
		if link.AccessToken != "at" {
			t.Errorf("expected access token stored, got %q", link.AccessToken)
		}
		if stamped != "a@example.com" {
			t.Errorf("expected email verification stamped, stamped %q", stamped)
		}
	})

	t.Run("unknown identity creates user and link", func(t *testing.T) {
		var created db.User
		var link db.AccountLink
		mockDb := &mock.Db{
			GetAccountLinkFunc: func(provider, providerAccountID string) (*db.AccountLink, error) {
				return nil, nil
			},
			GetUserByEmailFunc: func(email string) (*db.User, error) {
				return nil, nil
			},
			CreateUserFunc: func(user db.User) (*db.User, error) {
				created = user
				return &user, nil
			},
			InsertAccountLinkFunc: func(l db.AccountLink) error {
				link = l
				return nil
			},
		}
		app := newTestApp(t, mockDb)

		user, err := app.resolveOAuthIdentity(profile, "at")
		if err != nil {
			t.Fatalf("resolveOAuthIdentity failed: %v", err)
		}
		if created.Email != "a@example.com" || created.Name != "Alice" {
			t.Errorf("unexpected created user %+v", created)
		}
		if created.Verified.IsZero() {
			t.Error("provider-verified email must be stamped on creation")
		}
		if created.Password != "" {
			t.Error("oauth2 users must not carry a password hash")
		}
		if link.UserID != user.ID {
			t.Error("link does not point at the created user")
		}
	})

	t.Run("losing the link race converges on the winner", func(t *testing.T) {
		calls := 0
		mockDb := &mock.Db{
			GetAccountLinkFunc: func(provider, providerAccountID string) (*db.AccountLink, error) {
				calls++
				if calls == 1 {
					return nil, nil
				}
				return &db.AccountLink{UserID: "winner"}, nil
			},
			GetUserByEmailFunc: func(email string) (*db.User, error) {
				return nil, nil
			},
			CreateUserFunc: func(user db.User) (*db.User, error) {
				return &user, nil
			},
			InsertAccountLinkFunc: func(l db.AccountLink) error {
				return db.ErrConstraintUnique
			},
			GetUserByIdFunc: func(id string) (*db.User, error) {
				return &db.User{ID: id, Status: db.StatusActive}, nil
			},
		}
		app := newTestApp(t, mockDb)

		user, err := app.resolveOAuthIdentity(profile, "at")
		if err != nil {
			t.Fatalf("resolveOAuthIdentity failed: %v", err)
		}
		if user.ID != "winner" {
			t.Errorf("expected the winner's user, got %q", user.ID)
		}
	})
}
