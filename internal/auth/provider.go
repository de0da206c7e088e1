package auth

import (
	"context"

	"golang.org/x/oauth2"
)

// Provider is the identity-provider surface the handlers depend on.
type Provider interface {
	AuthCodeURL(state, codeChallenge string) string
	Exchange(ctx context.Context, code, codeVerifier string) (*oauth2.Token, error)
	FetchUserInfo(ctx context.Context, accessToken string) (map[string]any, error)
	LogoutURL(returnTo string) string
}
