package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Secrets are the values that never live in the TOML file. They are
// read from the environment and overlaid onto the loaded Config.
type Secrets struct {
	AdminSecretKey     string `env:"ADMIN_SECRET_KEY"`
	SmtpUsername       string `env:"SMTP_USERNAME"`
	SmtpPassword       string `env:"SMTP_PASSWORD"`
	GoogleClientID     string `env:"OAUTH2_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"OAUTH2_GOOGLE_CLIENT_SECRET"`
	GithubClientID     string `env:"OAUTH2_GITHUB_CLIENT_ID"`
	GithubClientSecret string `env:"OAUTH2_GITHUB_CLIENT_SECRET"`
	LlmApiKey          string `env:"GEMINI_API_KEY"`
}

// Load builds the runtime configuration: defaults, then the TOML file
// if path is non-empty, then environment secrets, then validation.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
		cfg.Source = path
	}

	if err := applyEnvSecrets(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

func applyEnvSecrets(cfg *Config) error {
	var secrets Secrets
	if err := env.Parse(&secrets); err != nil {
		return fmt.Errorf("config: failed to parse environment: %w", err)
	}

	cfg.AdminSecret = secrets.AdminSecretKey

	if secrets.SmtpUsername != "" {
		cfg.Smtp.Username = secrets.SmtpUsername
	}
	if secrets.SmtpPassword != "" {
		cfg.Smtp.Password = secrets.SmtpPassword
	}
	if secrets.LlmApiKey != "" {
		cfg.Llm.ApiKey = secrets.LlmApiKey
	}

	setProviderCredentials(cfg, OAuth2ProviderGoogle, secrets.GoogleClientID, secrets.GoogleClientSecret)
	setProviderCredentials(cfg, OAuth2ProviderGitHub, secrets.GithubClientID, secrets.GithubClientSecret)
	return nil
}

func setProviderCredentials(cfg *Config, name, clientID, clientSecret string) {
	provider, ok := cfg.OAuth2Providers[name]
	if !ok {
		return
	}
	if clientID != "" {
		provider.ClientID = clientID
	}
	if clientSecret != "" {
		provider.ClientSecret = clientSecret
	}
	cfg.OAuth2Providers[name] = provider
}
