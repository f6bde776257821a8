package core

import (
	"context"
	"net/http"
	"strings"

	"github.com/caasmo/authrelay/db"
)

// Identity is the authenticated caller, attached to the request context
// by LoadIdentity. Handlers behind RequireAuth can assume it is present.
type Identity struct {
	User    *db.User
	Session *db.Session
}

type contextKey int

const identityContextKey contextKey = 0

// IdentityFromContext returns the caller's identity or nil when the
// request carries no valid session.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey).(*Identity)
	return id
}

// LoadIdentity resolves the session cookie into an Identity. A missing,
// expired or otherwise invalid session is not an error here; the
// request continues anonymous and the gates decide what that means.
func (a *App) LoadIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionTokenFromRequest(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, session, err := a.sessions.Validate(token)
		if err != nil {
			a.logger.Error("session validation failed", "err", err)
			writeJsonError(w, errorInternal)
			return
		}
		if user == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, &Identity{User: user, Session: session})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// isApiRequest decides between the two rejection styles of the gates.
// Programmatic endpoints get JSON; everything else is treated as a
// browser navigation and redirected.
func isApiRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// RequireAuth rejects anonymous requests. API paths get 401 JSON,
// browser paths are redirected to the sign-in page.
func (a *App) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromContext(r.Context()) == nil {
			if isApiRequest(r) {
				writeJsonError(w, errorUnauthorized)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects callers without the admin role. The anonymous
// case is handled the same way as RequireAuth so the gate can stand
// alone on a route.
func (a *App) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := IdentityFromContext(r.Context())
		if id == nil {
			if isApiRequest(r) {
				writeJsonError(w, errorUnauthorized)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if id.User.Role != db.RoleAdmin {
			if isApiRequest(r) {
				writeJsonError(w, errorForbidden)
				return
			}
			http.Redirect(w, r, "/?error=unauthorized", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RedirectIfAuthenticated sends signed-in users away from auth entry
// points like the sign-in and registration pages.
func (a *App) RedirectIfAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromContext(r.Context()) != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ObserveTraffic feeds the request path into the traffic sketch. No-op
// when metrics are not wired.
func (a *App) ObserveTraffic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.sketch != nil {
			a.sketch.Observe(r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

// Recoverer converts handler panics into a 500 instead of killing the
// connection.
func (a *App) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				a.logger.Error("panic recovered", "err", rec, "path", r.URL.Path)
				writeJsonError(w, errorInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
