package auth

import (
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "comparecarts/internal/errors"
)

const (
	claimsContextKey    = "claims"
	authErrorContextKey = "auth_error"
)

// Middleware guards a route group with bearer authentication. Verified claims
// are stored on the echo context for ClaimsFromContext.
func Middleware(tokens *TokenService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":" + bearerPrefix,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := tokens.Verify(token)
			if err != nil {
				c.Set(authErrorContextKey, err)
				return nil, err
			}
			return claims, nil
		},
		// Header missing or without the Bearer prefix never reaches ParseTokenFunc.
		ErrorHandler: func(c echo.Context, err error) error {
			if verifyErr, ok := c.Get(authErrorContextKey).(error); ok {
				return verifyErr
			}
			return apperrors.Unauthorized(MsgNoToken)
		},
	})
}

// ClaimsFromContext returns the claims stored by Middleware.
func ClaimsFromContext(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(claimsContextKey).(*Claims)
	return claims, ok && claims != nil
}
