package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthorizationRequest(t *testing.T) {
	req, err := NewAuthorizationRequest()
	require.NoError(t, err)

	// 32 random bytes -> 43 chars of unpadded base64url, 16 -> 22.
	assert.Len(t, req.CodeVerifier, 43)
	assert.Len(t, req.State, 22)
	assert.NotContains(t, req.CodeChallenge, "=")

	hash := sha256.Sum256([]byte(req.CodeVerifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(hash[:]), req.CodeChallenge)
}

func TestNewAuthorizationRequest_Unique(t *testing.T) {
	first, err := NewAuthorizationRequest()
	require.NoError(t, err)
	second, err := NewAuthorizationRequest()
	require.NoError(t, err)

	assert.NotEqual(t, first.CodeVerifier, second.CodeVerifier)
	assert.NotEqual(t, first.State, second.State)
}

func TestChallengeFor(t *testing.T) {
	// RFC 7636 appendix B test vector.
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", ChallengeFor(verifier))
}
