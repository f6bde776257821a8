package config

import (
	"time"
)

// NewDefaultConfig creates a new Config with sensible defaults.
// Secrets (oauth2 client credentials, smtp password, admin secret, llm
// api key) are left empty and expected to arrive via environment.
func NewDefaultConfig() *Config {
	return &Config{
		DBFile:        "authrelay.db",
		PublicBaseURL: "http://localhost:8080",
		Server: Server{
			Addr:                    ":8080",
			ShutdownGracefulTimeout: Duration{Duration: 15 * time.Second},
			ReadTimeout:             Duration{Duration: 2 * time.Second},
			ReadHeaderTimeout:       Duration{Duration: 2 * time.Second},
			WriteTimeout:            Duration{Duration: 5 * time.Minute},
			IdleTimeout:             Duration{Duration: 1 * time.Minute},
			ClientIpProxyHeader:     "",
			EnableTLS:               false,
			CertFile:                "",
			KeyFile:                 "",
		},
		Session: Session{
			SessionDuration:            Duration{Duration: 30 * 24 * time.Hour},
			VerificationTokenDuration:  Duration{Duration: 24 * time.Hour},
			PasswordResetTokenDuration: Duration{Duration: 1 * time.Hour},
			CookieSecure:               false,
		},
		Scheduler: Scheduler{
			Interval:              Duration{Duration: 60 * time.Second},
			MaxJobsPerTick:        10,
			ConcurrencyMultiplier: 2,
		},
		RateLimits: RateLimits{
			PasswordResetCooldown:     Duration{Duration: 2 * time.Hour},
			EmailVerificationCooldown: Duration{Duration: 1 * time.Hour},
		},
		OAuth2Providers: map[string]OAuth2Provider{
			OAuth2ProviderGoogle: {
				Name:            OAuth2ProviderGoogle,
				DisplayName:     "Google",
				RedirectURL:     "",
				RedirectURLPath: "/auth/callback/google",
				AuthURL:         "https://accounts.google.com/o/oauth2/v2/auth",
				TokenURL:        "https://oauth2.googleapis.com/token",
				UserInfoURL:     "https://openidconnect.googleapis.com/v1/userinfo",
				Scopes:          []string{"openid", "email", "profile"},
				PKCE:            true,
				ClientID:        "",
				ClientSecret:    "",
			},
			OAuth2ProviderGitHub: {
				Name:            OAuth2ProviderGitHub,
				DisplayName:     "GitHub",
				RedirectURL:     "",
				RedirectURLPath: "/auth/callback/github",
				AuthURL:         "https://github.com/login/oauth/authorize",
				TokenURL:        "https://github.com/login/oauth/access_token",
				UserInfoURL:     "https://api.github.com/user",
				Scopes:          []string{"read:user", "user:email"},
				PKCE:            false,
				ClientID:        "",
				ClientSecret:    "",
			},
		},
		Smtp: Smtp{
			Enabled:     false,
			Host:        "smtp.gmail.com",
			Port:        587,
			FromName:    "Auth Relay",
			FromAddress: "",
			LocalName:   "",
			AuthMethod:  "plain",
			UseTLS:      false,
			UseStartTLS: true,
			Username:    "",
			Password:    "",
		},
		Llm: Llm{
			Provider:        "gemini",
			Model:           "gemini-2.0-flash",
			Endpoint:        "https://generativelanguage.googleapis.com/v1beta",
			ApiKey:          "",
			RequestTimeout:  Duration{Duration: 2 * time.Minute},
			TitleMaxLength:  80,
			HistoryMaxTurns: 40,
		},
		Metrics: Metrics{
			Enabled: true,
			TopK:    20,
		},
	}
}
