package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/pcms-live/auth-gateway/pkg/security"
)

const (
	verifierLength = 32
	stateLength    = 16
)

// AuthorizationRequest carries the per-login PKCE pair and the anti-CSRF
// state. It lives in two short-lived cookies between the redirect to the
// provider and the callback, and is consumed exactly once.
type AuthorizationRequest struct {
	CodeVerifier  string
	CodeChallenge string
	State         string
}

func NewAuthorizationRequest() (*AuthorizationRequest, error) {
	verifier, err := security.GenerateRandomString(verifierLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}

	state, err := security.GenerateRandomString(stateLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}

	return &AuthorizationRequest{
		CodeVerifier:  verifier,
		CodeChallenge: ChallengeFor(verifier),
		State:         state,
	}, nil
}

// ChallengeFor derives the S256 code challenge for a verifier.
func ChallengeFor(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
