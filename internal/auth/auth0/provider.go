// Package auth0 implements the provider flow against an Auth0-style
// tenant: authorization-code exchange with PKCE, userinfo lookup, and the
// v2 logout redirect.
package auth0

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/pcms-live/auth-gateway/internal/auth"
	"github.com/pcms-live/auth-gateway/internal/config"
)

// Userinfo retry policy: a 429 gets exactly one retry after a fixed delay.
// Any other failure is final and the login degrades to id_token claims.
const (
	userInfoMaxAttempts = 2
	userInfoBackoff     = 2 * time.Second
)

type Provider struct {
	cfg         config.ProviderConfig
	oauth       oauth2.Config
	userInfoURL string
	audience    string
	client      *http.Client

	sleep func(time.Duration)
}

// New resolves endpoints either through OIDC discovery (when issuer is
// configured) or from the tenant domain directly, and pins the redirect
// URI to <base_url>/callback so initiation and exchange always byte-match.
func New(ctx context.Context, cfg config.ProviderConfig, baseURL string) (*Provider, error) {
	if !cfg.Complete() {
		return nil, errors.New("provider domain and client_id are required")
	}

	var endpoint oauth2.Endpoint
	var userInfoURL string

	if cfg.Issuer != "" {
		discovered, err := oidc.NewProvider(ctx, cfg.Issuer)
		if err != nil {
			return nil, fmt.Errorf("oidc discovery failed: %w", err)
		}
		endpoint = discovered.Endpoint()

		var extra struct {
			UserInfoEndpoint string `json:"userinfo_endpoint"`
		}
		if err := discovered.Claims(&extra); err == nil {
			userInfoURL = extra.UserInfoEndpoint
		}
	} else {
		endpoint = oauth2.Endpoint{
			AuthURL:  "https://" + cfg.Domain + "/authorize",
			TokenURL: "https://" + cfg.Domain + "/oauth/token",
		}
	}

	// Client credentials go in the form body alongside the code and
	// verifier, matching the provider's token endpoint contract.
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	if userInfoURL == "" {
		userInfoURL = "https://" + cfg.Domain + "/userinfo"
	}

	return &Provider{
		cfg: cfg,
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  strings.TrimRight(baseURL, "/") + "/callback",
			Scopes:       cfg.Scopes,
		},
		userInfoURL: userInfoURL,
		audience:    auth.ResolveAudience(cfg.Audience, baseURL),
		client:      &http.Client{Timeout: 10 * time.Second},
		sleep:       time.Sleep,
	}, nil
}

func (p *Provider) Audience() string {
	return p.audience
}

func (p *Provider) AuthCodeURL(state, codeChallenge string) string {
	return p.oauth.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("audience", p.audience),
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// Exchange trades the authorization code for tokens. The verifier is
// forwarded when present; a response without an access token is an error,
// never a usable result.
func (p *Provider) Exchange(ctx context.Context, code, codeVerifier string) (*oauth2.Token, error) {
	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("audience", p.audience),
	}
	if codeVerifier != "" {
		opts = append(opts, oauth2.SetAuthURLParam("code_verifier", codeVerifier))
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)

	token, err := p.oauth.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	if token.AccessToken == "" {
		return nil, errors.New("token response missing access_token")
	}

	return token, nil
}

// FetchUserInfo queries the userinfo endpoint with the access token as
// bearer credential, applying the bounded 429 retry policy.
func (p *Provider) FetchUserInfo(ctx context.Context, accessToken string) (map[string]any, error) {
	var lastErr error
	for attempt := 1; attempt <= userInfoMaxAttempts; attempt++ {
		claims, retryable, err := p.fetchUserInfoOnce(ctx, accessToken)
		if err == nil {
			return claims, nil
		}
		lastErr = err
		if !retryable || attempt == userInfoMaxAttempts {
			break
		}
		p.sleep(userInfoBackoff)
	}
	return nil, lastErr
}

func (p *Provider) fetchUserInfoOnce(ctx context.Context, accessToken string) (map[string]any, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return nil, true, errors.New("userinfo rate limited")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, false, fmt.Errorf("userinfo returned status %d: %s", resp.StatusCode, body)
	}

	var claims map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return nil, false, fmt.Errorf("failed to decode userinfo response: %w", err)
	}

	return claims, false, nil
}

func (p *Provider) LogoutURL(returnTo string) string {
	q := url.Values{}
	q.Set("client_id", p.cfg.ClientID)
	q.Set("returnTo", returnTo)
	return "https://" + p.cfg.Domain + "/v2/logout?" + q.Encode()
}
