package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/caasmo/authrelay/crypto"
	"github.com/caasmo/authrelay/db"
	"github.com/caasmo/authrelay/oauth2"
	"github.com/google/uuid"
)

// passwordMinLength applies to registration and password reset alike.
const passwordMinLength = 8

// Typed outcomes of identity resolution. Handlers map these onto the
// precomputed responses; anything else is an internal failure.
var (
	errDuplicateEmail     = errors.New("email address already registered")
	errWeakPasswordValue  = errors.New("password shorter than minimum length")
	errAdminSecretInvalid = errors.New("admin secret mismatch")
	errBadCredentials     = errors.New("invalid credentials")
	errDisabledAccount    = errors.New("account disabled")
)

// registerPassword creates a password account. The admin role requires
// the caller to present the server-held provisioning secret; an unset
// secret disables admin registration entirely.
func (a *App) registerPassword(email, password, name string, role db.Role, adminSecret string) (*db.User, error) {
	if len(password) < passwordMinLength {
		return nil, errWeakPasswordValue
	}

	if role == "" {
		role = db.RoleUser
	}
	if role == db.RoleAdmin {
		configured := a.configProvider.Get().AdminSecret
		if configured == "" || adminSecret != configured {
			return nil, errAdminSecretInvalid
		}
	}

	hash, err := crypto.GenerateHash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := a.dbAuth.CreateUser(db.User{
		ID:       uuid.NewString(),
		Email:    email,
		Name:     name,
		Password: hash,
		Role:     role,
		Status:   db.StatusActive,
	})
	if err != nil {
		if errors.Is(err, db.ErrConstraintUnique) {
			return nil, errDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// authenticatePassword verifies email and password. An unknown email,
// an oauth2-only account and a wrong password are indistinguishable to
// the caller.
func (a *App) authenticatePassword(email, password string) (*db.User, error) {
	user, err := a.dbAuth.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	if user == nil || user.Password == "" {
		return nil, errBadCredentials
	}
	if !crypto.CheckPassword(password, user.Password) {
		return nil, errBadCredentials
	}
	if user.Status == db.StatusDisabled {
		return nil, errDisabledAccount
	}
	return user, nil
}

// resolveOAuthIdentity maps an external profile to a local user,
// linking or creating as needed. The unique constraint on
// (provider, providerAccountId) is the concurrency guard: a losing
// concurrent insert falls back to re-reading the link, so duplicate
// callbacks for the same external identity converge on one user.
func (a *App) resolveOAuthIdentity(profile *oauth2.Profile, accessToken string) (*db.User, error) {
	link, err := a.dbAccount.GetAccountLink(profile.Provider, profile.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("account link lookup failed: %w", err)
	}
	if link != nil {
		return a.userForLink(link)
	}

	user, err := a.dbAuth.GetUserByEmail(profile.Email)
	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	if user == nil {
		user, err = a.createOAuthUser(profile)
		if err != nil {
			return nil, err
		}
	} else if user.Verified.IsZero() && profile.EmailVerified {
		if err := a.dbAuth.MarkEmailVerified(user.Email, time.Now()); err != nil {
			return nil, fmt.Errorf("failed to stamp email verification: %w", err)
		}
	}

	err = a.dbAccount.InsertAccountLink(db.AccountLink{
		Provider:          profile.Provider,
		ProviderAccountID: profile.ExternalID,
		UserID:            user.ID,
		AccessToken:       accessToken,
	})
	if err != nil {
		if !errors.Is(err, db.ErrConstraintUnique) {
			return nil, fmt.Errorf("failed to create account link: %w", err)
		}
		// lost the race, the winner's link decides the user
		link, err = a.dbAccount.GetAccountLink(profile.Provider, profile.ExternalID)
		if err != nil {
			return nil, fmt.Errorf("account link re-read failed: %w", err)
		}
		if link == nil {
			return nil, errors.New("account link vanished after unique constraint violation")
		}
		return a.userForLink(link)
	}

	if user.Status == db.StatusDisabled {
		return nil, errDisabledAccount
	}
	return user, nil
}

func (a *App) userForLink(link *db.AccountLink) (*db.User, error) {
	user, err := a.dbAuth.GetUserById(link.UserID)
	if err != nil {
		return nil, fmt.Errorf("link owner lookup failed: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("account link points at missing user %s", link.UserID)
	}
	if user.Status == db.StatusDisabled {
		return nil, errDisabledAccount
	}
	return user, nil
}

func (a *App) createOAuthUser(profile *oauth2.Profile) (*db.User, error) {
	u := db.User{
		ID:     uuid.NewString(),
		Email:  profile.Email,
		Name:   profile.Name,
		Avatar: profile.AvatarURL,
		Role:   db.RoleUser,
		Status: db.StatusActive,
	}
	if profile.EmailVerified {
		u.Verified = time.Now()
	}

	user, err := a.dbAuth.CreateUser(u)
	if err != nil {
		if !errors.Is(err, db.ErrConstraintUnique) {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		// concurrent registration with the same email
		user, err = a.dbAuth.GetUserByEmail(profile.Email)
		if err != nil {
			return nil, fmt.Errorf("user re-read failed: %w", err)
		}
		if user == nil {
			return nil, errors.New("user vanished after unique constraint violation")
		}
	}
	return user, nil
}
