package config

import (
	"fmt"
	"net"
)

func Validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := validateSession(&cfg.Session); err != nil {
		return fmt.Errorf("session config validation failed: %w", err)
	}
	if err := validateOAuth2Providers(cfg.OAuth2Providers); err != nil {
		return fmt.Errorf("oauth2 config validation failed: %w", err)
	}
	if cfg.Scheduler.Interval.Duration <= 0 {
		return fmt.Errorf("scheduler interval must be positive")
	}
	if cfg.Scheduler.MaxJobsPerTick <= 0 {
		return fmt.Errorf("scheduler max_jobs_per_tick must be positive")
	}
	return nil
}

// validateServer checks the Server configuration section.
// It ensures the Addr field is not empty and contains a valid host:port or :port format.
// If only a port is provided (e.g., ":8080"), it defaults the host to "localhost".
//
// Allowed formats:
//   - "host:port" (e.g., "example.com:8080", "127.0.0.1:8080", "[::1]:8080")
//   - ":port"     (e.g., ":8080" becomes "localhost:8080")
//
// The port part is mandatory.
func validateServer(server *Server) error {
	if server.Addr == "" {
		return fmt.Errorf("server address (Addr) cannot be empty")
	}

	host, port, err := net.SplitHostPort(server.Addr)
	if err != nil {
		return fmt.Errorf("invalid server address format '%s': %w", server.Addr, err)
	}
	// SplitHostPort accepts ":8080" with an empty host
	if host == "" {
		host = "localhost"
	}

	if port == "" {
		return fmt.Errorf("server address '%s' must include a port", server.Addr)
	}

	// Reconstruct the address with the defaulted host if necessary
	server.Addr = net.JoinHostPort(host, port)

	if _, err := net.LookupPort("tcp", port); err != nil {
		return fmt.Errorf("invalid port '%s' in server address '%s': %w", port, server.Addr, err)
	}

	if server.EnableTLS && (server.CertFile == "" || server.KeyFile == "") {
		return fmt.Errorf("enable_tls requires cert_file and key_file")
	}

	return nil
}

func validateSession(session *Session) error {
	if session.SessionDuration.Duration <= 0 {
		return fmt.Errorf("session_duration must be positive")
	}
	if session.VerificationTokenDuration.Duration <= 0 {
		return fmt.Errorf("verification_token_duration must be positive")
	}
	if session.PasswordResetTokenDuration.Duration <= 0 {
		return fmt.Errorf("password_reset_token_duration must be positive")
	}
	return nil
}

// validateOAuth2Providers checks the static shape of each configured
// provider. Missing client credentials are not an error here; a
// provider without credentials is simply not offered at runtime.
func validateOAuth2Providers(providers map[string]OAuth2Provider) error {
	for name, p := range providers {
		if p.Name != name {
			return fmt.Errorf("provider %q: name field %q does not match map key", name, p.Name)
		}
		if p.AuthURL == "" || p.TokenURL == "" {
			return fmt.Errorf("provider %q: auth_url and token_url are required", name)
		}
		if p.UserInfoURL == "" {
			return fmt.Errorf("provider %q: user_info_url is required", name)
		}
	}
	return nil
}
