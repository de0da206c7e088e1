package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoAccessToken    = errors.New("session requires an access token")
	ErrMalformedSession = errors.New("malformed session cookie")
	ErrBadSignature     = errors.New("session cookie signature mismatch")
)

// User holds the display identity and provider tokens carried by the
// session cookie. Field names match what the frontend reads.
type User struct {
	ID                 string `json:"id"`
	Username           string `json:"username"`
	Email              string `json:"email"`
	ProfileImage       string `json:"profile_image"`
	AccessToken        string `json:"accessToken"`
	RefreshToken       string `json:"refreshToken,omitempty"`
	AccessTokenExpires int64  `json:"accessTokenExpires"`
}

// Session is the application's post-login identity record, serialized as
// JSON inside the session cookie. Expiry fields are epoch milliseconds.
type Session struct {
	SID     string `json:"sid"`
	User    User   `json:"user"`
	Expires int64  `json:"expires"`
}

// NewSession builds a session around a provider-confirmed token. An empty
// access token is rejected: no code path may issue a session without one.
func NewSession(user User, expires time.Time) (*Session, error) {
	if user.AccessToken == "" {
		return nil, ErrNoAccessToken
	}

	return &Session{
		SID:     uuid.New().String(),
		User:    user,
		Expires: expires.UnixMilli(),
	}, nil
}

func (s *Session) Expired(now time.Time) bool {
	ms := now.UnixMilli()
	if s.User.AccessTokenExpires > 0 && ms > s.User.AccessTokenExpires {
		return true
	}
	return s.Expires > 0 && ms > s.Expires
}

// Encode serializes the session for cookie transport: base64url JSON,
// followed by an HMAC-SHA256 trailer when a cookie secret is configured.
func (s *Session) Encode(secret string) (string, error) {
	if s.User.AccessToken == "" {
		return "", ErrNoAccessToken
	}

	payload, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	if secret == "" {
		return encoded, nil
	}
	return encoded + "." + sign(encoded, secret), nil
}

// DecodeSession reverses Encode. Every failure mode maps to a sentinel so
// callers can treat anything short of a valid record as unauthenticated.
func DecodeSession(value, secret string) (*Session, error) {
	encoded := value
	if secret != "" {
		i := strings.LastIndexByte(value, '.')
		if i < 0 {
			return nil, ErrBadSignature
		}
		encoded = value[:i]
		want := sign(encoded, secret)
		if subtle.ConstantTimeCompare([]byte(want), []byte(value[i+1:])) != 1 {
			return nil, ErrBadSignature
		}
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}

	if session.User.AccessToken == "" {
		return nil, ErrNoAccessToken
	}

	return &session, nil
}

// RevocationKey names the cache entry that marks a logged-out session.
func RevocationKey(sid string) string {
	return "revoked:" + sid
}

func sign(data, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
