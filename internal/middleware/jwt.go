package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-api/internal/utils"
)

// Context keys set by JWTAuth.
const (
	ContextUsername = "username"
	ContextTokenID  = "jti"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// against the configured secret, issuer and audience.  On success the
// token's subject and id are stored in the context under ContextUsername
// and ContextTokenID; otherwise the request is rejected with 401.
func JWTAuth(p utils.TokenParams) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			claims, err := utils.ParseAccessToken(p, raw)
			if err != nil || claims.Subject == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(ContextUsername, claims.Subject)
			c.Set(ContextTokenID, claims.ID)
			return next(c)
		}
	}
}
