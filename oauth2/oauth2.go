package oauth2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/caasmo/authrelay/config"
	"github.com/caasmo/authrelay/crypto"
	"golang.org/x/oauth2"
)

// exchangeTimeout bounds the provider's token exchange and the userinfo
// fetch. It prevents a request from hanging when the provider is
// unresponsive.
const exchangeTimeout = 10 * time.Second

// Profile is the normalized identity a provider reports after a
// successful exchange. ExternalID is the provider's stable account id;
// the (provider, ExternalID) pair keys account links.
type Profile struct {
	Provider      string
	ExternalID    string
	Email         string
	EmailVerified bool
	Name          string
	AvatarURL     string
}

// Provider wraps one configured oauth2 identity provider.
type Provider struct {
	cfg    config.OAuth2Provider
	oauth2 oauth2.Config
}

// NewProviders builds the provider set from configuration. Providers
// without credentials are left out rather than rejected, so a deployment
// can offer only the providers it registered with.
func NewProviders(providers map[string]config.OAuth2Provider, publicBaseURL string) map[string]*Provider {
	out := make(map[string]*Provider, len(providers))
	for name, p := range providers {
		if p.ClientID == "" || p.ClientSecret == "" {
			continue
		}
		redirectURL := p.RedirectURL
		if redirectURL == "" {
			redirectURL = publicBaseURL + p.RedirectURLPath
		}
		out[name] = &Provider{
			cfg: p,
			oauth2: oauth2.Config{
				ClientID:     p.ClientID,
				ClientSecret: p.ClientSecret,
				RedirectURL:  redirectURL,
				Scopes:       p.Scopes,
				Endpoint: oauth2.Endpoint{
					AuthURL:  p.AuthURL,
					TokenURL: p.TokenURL,
				},
			},
		}
	}
	return out
}

func (p *Provider) Name() string {
	return p.cfg.Name
}

func (p *Provider) DisplayName() string {
	return p.cfg.DisplayName
}

// PKCE reports whether the provider requires a code challenge.
func (p *Provider) PKCE() bool {
	return p.cfg.PKCE
}

// BuildAuthURL constructs the authorization redirect. For PKCE providers
// the verifier's S256 challenge is attached; the caller keeps the
// verifier for the exchange.
func (p *Provider) BuildAuthURL(state, codeVerifier string) string {
	if p.cfg.PKCE && codeVerifier != "" {
		return p.oauth2.AuthCodeURL(state,
			oauth2.SetAuthURLParam("code_challenge", crypto.S256Challenge(codeVerifier)),
			oauth2.SetAuthURLParam("code_challenge_method", crypto.PKCECodeChallengeMethod),
		)
	}
	return p.oauth2.AuthCodeURL(state)
}

// Exchange trades the authorization code for an access token.
func (p *Provider) Exchange(ctx context.Context, code, codeVerifier string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	var opts []oauth2.AuthCodeOption
	if p.cfg.PKCE && codeVerifier != "" {
		opts = append(opts, oauth2.SetAuthURLParam("code_verifier", codeVerifier))
	}

	token, err := p.oauth2.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s token exchange failed: %w", p.cfg.Name, err)
	}
	return token, nil
}

// FetchProfile retrieves and normalizes the provider's user info using
// the exchanged token.
func (p *Provider) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	client := p.oauth2.Client(ctx, token)
	resp, err := client.Get(p.cfg.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("%s user info request failed: %w", p.cfg.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s user info request returned status %d", p.cfg.Name, resp.StatusCode)
	}

	profile, err := ProfileFromResponse(resp, p.cfg.Name)
	if err != nil {
		return nil, err
	}

	// GitHub hides the primary address from /user when the user marked
	// it private; a second call to /user/emails recovers it.
	if p.cfg.Name == config.OAuth2ProviderGitHub && profile.Email == "" {
		email, verified, err := githubPrimaryEmail(ctx, client)
		if err != nil {
			return nil, err
		}
		profile.Email = email
		profile.EmailVerified = verified
	}

	return profile, nil
}

// ProfileFromResponse maps a provider's user info response body to a
// normalized Profile.
func ProfileFromResponse(resp *http.Response, providerName string) (*Profile, error) {
	switch providerName {
	case config.OAuth2ProviderGoogle:
		return googleProfile(resp.Body)
	case config.OAuth2ProviderGitHub:
		return githubProfile(resp.Body)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}

func googleProfile(body io.Reader) (*Profile, error) {
	extracted := struct {
		Sub           string `json:"sub"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}{}
	if err := json.NewDecoder(body).Decode(&extracted); err != nil {
		return nil, fmt.Errorf("failed to decode google user info: %w", err)
	}
	if extracted.Sub == "" {
		return nil, errors.New("google user info missing subject")
	}

	return &Profile{
		Provider:      config.OAuth2ProviderGoogle,
		ExternalID:    extracted.Sub,
		Email:         extracted.Email,
		EmailVerified: extracted.EmailVerified,
		Name:          extracted.Name,
		AvatarURL:     extracted.Picture,
	}, nil
}

func githubProfile(body io.Reader) (*Profile, error) {
	extracted := struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
		Email     string `json:"email"`
	}{}
	if err := json.NewDecoder(body).Decode(&extracted); err != nil {
		return nil, fmt.Errorf("failed to decode github user info: %w", err)
	}
	if extracted.ID == 0 {
		return nil, errors.New("github user info missing id")
	}

	name := extracted.Name
	if name == "" {
		name = extracted.Login
	}

	return &Profile{
		Provider:   config.OAuth2ProviderGitHub,
		ExternalID: fmt.Sprintf("%d", extracted.ID),
		Email:      extracted.Email,
		// GitHub only exposes verified addresses over its API.
		EmailVerified: extracted.Email != "",
		Name:          name,
		AvatarURL:     extracted.AvatarURL,
	}, nil
}

func githubPrimaryEmail(ctx context.Context, client *http.Client) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/user/emails", nil)
	if err != nil {
		return "", false, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("github email request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("github email request returned status %d", resp.StatusCode)
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", false, fmt.Errorf("failed to decode github emails: %w", err)
	}

	for _, e := range emails {
		if e.Primary {
			return e.Email, e.Verified, nil
		}
	}
	return "", false, errors.New("github account has no primary email")
}
