package middleware // middleware contains reusable HTTP middleware functions

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/bhevents/souq-stall-booking/internal/utils"
)

// SessionCookieName is the cookie carrying the signed admin session token.
const SessionCookieName = "souq_session"

// AdminAuth returns an Echo middleware that validates the admin session
// cookie and rejects the request with 401 when it is missing, expired or
// forged.  The admin dashboard and the privileged stall operations sit
// behind it; the public booking flow never does.
func AdminAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            cookie, err := c.Cookie(SessionCookieName)
            if err != nil || cookie.Value == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing session"})
            }
            claims, err := utils.ParseSessionToken(secret, cookie.Value)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid session"})
            }
            if role, _ := claims["role"].(string); role != "admin" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid session"})
            }
            c.Set("role", "admin")
            return next(c)
        }
    }
}
