package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-gate/internal/infrastructure/auth"
)

// RequireAdmin reject tokens the authorizer does not recognize as admin, must be chained after VerifyToken
func RequireAdmin(ju *auth.JWTUtil, authorizer auth.Authorizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ju.GetContextToken(c)
			if claims == nil {
				return c.NoContent(http.StatusUnauthorized)
			}
			if !authorizer.IsAdmin(claims) {
				return c.NoContent(http.StatusForbidden)
			}
			return next(c)
		}
	}
}
