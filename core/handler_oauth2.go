package core

import (
	"errors"
	"net/http"

	"github.com/caasmo/authrelay/crypto"
)

// oauthFailureURL is where the browser lands when any step of the
// callback fails. Provider error detail never reaches the browser.
const oauthFailureURL = "/login?error=oauth"

// OAuth2LoginHandler starts the authorization code flow for one
// provider. State and, for PKCE providers, the code verifier travel in
// short-lived cookies.
//
// Endpoint: GET /auth/login/{provider}
func (a *App) OAuth2LoginHandler(w http.ResponseWriter, r *http.Request) {
	name := a.pathParam(r, "provider")
	provider, ok := a.providers[name]
	if !ok {
		http.Redirect(w, r, oauthFailureURL, http.StatusSeeOther)
		return
	}

	state := crypto.Oauth2State()
	a.setOAuthFlowCookie(w, oauthStateCookieName, state)

	verifier := ""
	if provider.PKCE() {
		verifier = crypto.Oauth2CodeVerifier()
		a.setOAuthFlowCookie(w, oauthVerifierCookieName, verifier)
	}

	http.Redirect(w, r, provider.BuildAuthURL(state, verifier), http.StatusSeeOther)
}

// OAuth2CallbackHandler finishes the flow: state check, code exchange,
// profile fetch, identity resolution, session cookie. Every failure
// redirects to sign-in with a generic marker.
//
// Endpoint: GET /auth/callback/{provider}
func (a *App) OAuth2CallbackHandler(w http.ResponseWriter, r *http.Request) {
	name := a.pathParam(r, "provider")
	provider, ok := a.providers[name]
	if !ok {
		http.Redirect(w, r, oauthFailureURL, http.StatusSeeOther)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		a.logger.Warn("oauth2 state mismatch", "provider", name)
		http.Redirect(w, r, oauthFailureURL, http.StatusSeeOther)
		return
	}
	a.clearOAuthFlowCookie(w, oauthStateCookieName)

	verifier := ""
	if provider.PKCE() {
		verifierCookie, err := r.Cookie(oauthVerifierCookieName)
		if err != nil || verifierCookie.Value == "" {
			a.logger.Warn("oauth2 verifier cookie missing", "provider", name)
			http.Redirect(w, r, oauthFailureURL, http.StatusSeeOther)
			return
		}
		verifier = verifierCookie.Value
		a.clearOAuthFlowCookie(w, oauthVerifierCookieName)
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, oauthFailureURL, http.StatusSeeOther)
		return
	}

	token, err := provider.Exchange(r.Context(), code, verifier)
	if err != nil {
		a.logger.Error("oauth2 code exchange failed", "provider", name, "err", err)
		http.Redirect(w, r, oauthFailureURL, http.StatusSeeOther)
		return
	}

	profile, err := provider.FetchProfile(r.Context(), token)
	if err != nil {
		a.logger.Error("oauth2 profile fetch failed", "provider", name, "err", err)
		http.Redirect(w, r, oauthFailureURL, http.StatusSeeOther)
		return
	}
	if profile.Email == "" {
		a.logger.Warn("oauth2 profile has no email", "provider", name)
		http.Redirect(w, r, oauthFailureURL, http.StatusSeeOther)
		return
	}

	user, err := a.resolveOAuthIdentity(profile, token.AccessToken)
	if err != nil {
		if !errors.Is(err, errDisabledAccount) {
			a.logger.Error("oauth2 identity resolution failed", "provider", name, "err", err)
		}
		http.Redirect(w, r, oauthFailureURL, http.StatusSeeOther)
		return
	}

	session, err := a.sessions.Create(user.ID)
	if err != nil {
		a.logger.Error("failed to create session", "err", err)
		http.Redirect(w, r, oauthFailureURL, http.StatusSeeOther)
		return
	}
	a.setSessionCookie(w, session.Token)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
