package core

import (
	"net/http"
	"time"
)

const (
	sessionCookieName       = "session_token"
	oauthStateCookieName    = "oauth_state"
	oauthVerifierCookieName = "oauth_verifier"

	// oauthFlowTTL bounds one round trip to the provider and back.
	oauthFlowTTL = 10 * time.Minute
)

func (a *App) setSessionCookie(w http.ResponseWriter, token string) {
	cfg := a.configProvider.Get()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.Session.SessionDuration.Duration.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *App) clearSessionCookie(w http.ResponseWriter) {
	cfg := a.configProvider.Get()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionTokenFromRequest returns the bearer token or "" when the
// cookie is absent.
func sessionTokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (a *App) setOAuthFlowCookie(w http.ResponseWriter, name, value string) {
	cfg := a.configProvider.Get()

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(oauthFlowTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *App) clearOAuthFlowCookie(w http.ResponseWriter, name string) {
	cfg := a.configProvider.Get()

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
