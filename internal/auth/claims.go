package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultUsername  = "user"
	placeholderEmail = "unknown@pcms.invalid"
)

// DecodeIDToken extracts the payload claims of an ID token without
// verifying its signature. The claims are display-only fallback data when
// the userinfo endpoint is unavailable; the access token has already
// authenticated the login, so these never feed an authorization decision.
func DecodeIDToken(raw string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("failed to decode id_token: %w", err)
	}
	return claims, nil
}

// UserFromClaims maps provider claims onto the session display fields.
// Tokens are filled in by the caller.
//
// Precedence: id from sub (provider namespace separators normalized, e.g.
// "auth0|x" becomes "auth0_x") else a generated placeholder; username from
// given_name, name, nickname, then the local part of email; email from the
// provider else a sentinel.
func UserFromClaims(claims map[string]any) User {
	var user User

	if sub := stringClaim(claims, "sub"); sub != "" {
		user.ID = strings.ReplaceAll(sub, "|", "_")
	} else {
		user.ID = uuid.New().String()
	}

	email := stringClaim(claims, "email")
	user.Username = firstNonEmpty(
		stringClaim(claims, "given_name"),
		stringClaim(claims, "name"),
		stringClaim(claims, "nickname"),
		localPart(email),
		defaultUsername,
	)

	if email != "" {
		user.Email = email
	} else {
		user.Email = placeholderEmail
	}

	user.ProfileImage = stringClaim(claims, "picture")

	return user
}

func stringClaim(claims map[string]any, name string) string {
	if claims == nil {
		return ""
	}
	value, _ := claims[name].(string)
	return value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func localPart(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found {
		return ""
	}
	return local
}
