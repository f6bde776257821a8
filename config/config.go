package config

import (
	"fmt"
	"time"
)

const (
	OAuth2ProviderGoogle = "google"
	OAuth2ProviderGitHub = "github"
)

// Duration wraps time.Duration so TOML files can use human readable
// values like "30s" or "720h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Server struct {
	Addr                    string   `toml:"addr"`
	ShutdownGracefulTimeout Duration `toml:"shutdown_graceful_timeout"`
	ReadTimeout             Duration `toml:"read_timeout"`
	ReadHeaderTimeout       Duration `toml:"read_header_timeout"`
	WriteTimeout            Duration `toml:"write_timeout"`
	IdleTimeout             Duration `toml:"idle_timeout"`
	ClientIpProxyHeader     string   `toml:"client_ip_proxy_header"`
	EnableTLS               bool     `toml:"enable_tls"`
	CertFile                string   `toml:"cert_file"`
	KeyFile                 string   `toml:"key_file"`
}

// Session controls the opaque token lifetimes. Session cookies use
// SessionDuration; the email token durations bound how long a
// verification or reset link stays valid.
type Session struct {
	SessionDuration            Duration `toml:"session_duration"`
	VerificationTokenDuration  Duration `toml:"verification_token_duration"`
	PasswordResetTokenDuration Duration `toml:"password_reset_token_duration"`
	CookieSecure               bool     `toml:"cookie_secure"`
}

type Smtp struct {
	Enabled     bool   `toml:"enabled"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	FromName    string `toml:"from_name"`
	FromAddress string `toml:"from_address"`
	LocalName   string `toml:"local_name"`
	AuthMethod  string `toml:"auth_method"`
	UseTLS      bool   `toml:"use_tls"`
	UseStartTLS bool   `toml:"use_start_tls"`
	Username    string `toml:"username"`
	Password    string `toml:"password"`
}

type OAuth2Provider struct {
	Name            string   `toml:"name"`
	DisplayName     string   `toml:"display_name"`
	RedirectURL     string   `toml:"redirect_url"`
	RedirectURLPath string   `toml:"redirect_url_path"`
	AuthURL         string   `toml:"auth_url"`
	TokenURL        string   `toml:"token_url"`
	UserInfoURL     string   `toml:"user_info_url"`
	Scopes          []string `toml:"scopes"`
	PKCE            bool     `toml:"pkce"`
	ClientID        string   `toml:"client_id"`
	ClientSecret    string   `toml:"client_secret"`
}

type Scheduler struct {
	Interval              Duration `toml:"interval"`
	MaxJobsPerTick        int      `toml:"max_jobs_per_tick"`
	ConcurrencyMultiplier int      `toml:"concurrency_multiplier"`
}

// RateLimits are cooldowns between repeated email dispatches for the
// same address, enforced in-memory in front of the job queue.
type RateLimits struct {
	PasswordResetCooldown     Duration `toml:"password_reset_cooldown"`
	EmailVerificationCooldown Duration `toml:"email_verification_cooldown"`
}

// Llm configures the chat relay's upstream text generation service.
type Llm struct {
	Provider        string   `toml:"provider"`
	Model           string   `toml:"model"`
	Endpoint        string   `toml:"endpoint"`
	ApiKey          string   `toml:"api_key"`
	RequestTimeout  Duration `toml:"request_timeout"`
	TitleMaxLength  int      `toml:"title_max_length"`
	HistoryMaxTurns int      `toml:"history_max_turns"`
}

type Metrics struct {
	Enabled bool `toml:"enabled"`
	TopK    int  `toml:"top_k"`
}

type Config struct {
	DBFile        string `toml:"db_file"`
	PublicBaseURL string `toml:"public_base_url"`

	// AdminSecret authorizes registration of admin accounts. Empty
	// disables admin registration entirely. Set via environment, not
	// the TOML file.
	AdminSecret string `toml:"-"`

	Server          Server                    `toml:"server"`
	Session         Session                   `toml:"session"`
	Smtp            Smtp                      `toml:"smtp"`
	OAuth2Providers map[string]OAuth2Provider `toml:"oauth2_providers"`
	Scheduler       Scheduler                 `toml:"scheduler"`
	RateLimits      RateLimits                `toml:"rate_limits"`
	Llm             Llm                       `toml:"llm"`
	Metrics         Metrics                   `toml:"metrics"`

	// Source records the TOML file the config was loaded from, empty
	// for the built-in defaults.
	Source string `toml:"-"`
}
