package auth

import (
	"strings"

	apperrors "comparecarts/internal/errors"
)

const (
	// MsgNoToken is returned when the Authorization header is missing or not a bearer credential.
	MsgNoToken = "No token provided"
	// MsgInvalidToken is returned for malformed, expired or forged tokens.
	MsgInvalidToken = "Invalid or expired token"

	bearerPrefix = "Bearer "
)

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", apperrors.Unauthorized(MsgNoToken)
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", apperrors.Unauthorized(MsgNoToken)
	}
	return token, nil
}

// Authenticate verifies the bearer credential carried by an Authorization header.
func (s *TokenService) Authenticate(header string) (*Claims, error) {
	token, err := BearerToken(header)
	if err != nil {
		return nil, err
	}
	return s.Verify(token)
}
