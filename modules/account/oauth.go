package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	// ErrOAuthExchange is returned when the authorization code cannot be redeemed.
	ErrOAuthExchange = errors.New("account: oauth code exchange failed")

	// ErrOAuthNoEmail is returned when the provider does not yield a usable email.
	ErrOAuthNoEmail = errors.New("account: oauth profile has no email")
)

// OAuthProfile is the normalized identity returned by a provider.
type OAuthProfile struct {
	ProviderUserID string
	Email          string
	EmailVerified  bool
	Name           string
}

// OAuthConfig holds Google OAuth client settings.
type OAuthConfig struct {
	ClientID     string `env:"GOOGLE_OAUTH_CLIENT_ID"`     // ClientID from the Google console.
	ClientSecret string `env:"GOOGLE_OAUTH_CLIENT_SECRET"` // ClientSecret paired with ClientID.
	RedirectURL  string `env:"GOOGLE_OAUTH_REDIRECT_URL"`  // RedirectURL must match the console registration.
}

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// GoogleProvider resolves Google sign-in codes to profiles.
type GoogleProvider struct {
	cfg         oauth2.Config
	userinfoURL string
}

// NewGoogleProvider builds a provider from client configuration.
func NewGoogleProvider(cfg OAuthConfig) *GoogleProvider {
	return &GoogleProvider{
		cfg: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userinfoURL: googleUserinfoURL,
	}
}

// AuthURL builds the authorization URL carrying the opaque state token.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// ResolveProfile exchanges an authorization code and fetches the userinfo
// document, returning a normalized profile.
func (p *GoogleProvider) ResolveProfile(ctx context.Context, code string) (OAuthProfile, error) {
	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return OAuthProfile{}, errors.Join(ErrOAuthExchange, err)
	}

	client := p.cfg.Client(ctx, token)
	resp, err := client.Get(p.userinfoURL)
	if err != nil {
		return OAuthProfile{}, errors.Join(ErrOAuthExchange, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return OAuthProfile{}, fmt.Errorf("%w: userinfo returned %d", ErrOAuthExchange, resp.StatusCode)
	}

	var info struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return OAuthProfile{}, errors.Join(ErrOAuthExchange, err)
	}
	if info.Email == "" {
		return OAuthProfile{}, ErrOAuthNoEmail
	}

	return OAuthProfile{
		ProviderUserID: info.Sub,
		Email:          info.Email,
		EmailVerified:  info.EmailVerified,
		Name:           info.Name,
	}, nil
}
