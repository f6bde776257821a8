package authrelay

import (
	"net/http"

	"github.com/caasmo/authrelay/core"
)

// route wires every endpoint to its handler and access gate. The
// identity middleware itself wraps the whole router; the gates here
// only decide what an anonymous or non-admin caller may reach.
func route(app *core.App) {
	rt := app.Router()

	protected := func(h http.HandlerFunc) http.Handler {
		return app.RequireAuth(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return app.RequireAdmin(h)
	}

	// --- authentication ---
	rt.HandleFunc("POST /api/auth/register", app.RegisterWithPasswordHandler)
	rt.HandleFunc("POST /api/auth/login", app.LoginWithPasswordHandler)
	rt.HandleFunc("POST /api/auth/logout", app.LogoutHandler)
	rt.HandleFunc("POST /api/auth/forgot-password", app.RequestPasswordResetHandler)
	rt.HandleFunc("POST /api/auth/reset-password", app.ConfirmPasswordResetHandler)
	rt.HandleFunc("POST /api/auth/verify-email", app.VerifyEmailHandler)
	rt.HandleFunc("POST /api/auth/resend-verification", app.ResendVerificationHandler)

	// --- oauth2 flow ---
	rt.Handle("GET /auth/login/:provider", app.RedirectIfAuthenticated(http.HandlerFunc(app.OAuth2LoginHandler)))
	rt.HandleFunc("GET /auth/callback/:provider", app.OAuth2CallbackHandler)

	// --- profile ---
	rt.Handle("GET /api/me", protected(app.CurrentUserHandler))
	rt.Handle("PUT /api/user/profile", protected(app.UpdateProfileHandler))

	// --- chat ---
	rt.Handle("POST /api/chat", protected(app.ChatHandler))
	rt.Handle("GET /api/chat/conversations", protected(app.ListConversationsHandler))
	rt.Handle("GET /api/chat/conversations/:id", protected(app.GetConversationHandler))
	rt.Handle("DELETE /api/chat/conversations/:id", protected(app.DeleteConversationHandler))

	// --- administration ---
	rt.Handle("GET /api/admin/users", admin(app.AdminListUsersHandler))
	rt.Handle("PATCH /api/admin/users/:id", admin(app.AdminUpdateUserHandler))
	rt.Handle("DELETE /api/admin/users/:id", admin(app.AdminDeleteUserHandler))
	rt.Handle("GET /api/admin/metrics", admin(app.AdminMetricsHandler))
}
