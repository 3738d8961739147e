package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/bhevents/souq-stall-booking/internal/middleware"
    "github.com/bhevents/souq-stall-booking/internal/utils"
)

// AuthHandler implements the admin login.  There is exactly one admin
// identity, authenticated by a bcrypt hash from configuration; a successful
// login sets an HttpOnly session cookie holding a signed token.
type AuthHandler struct {
    JWTSecret     string
    AdminPassHash string
    SessionTTLMin int
    SecureCookies bool
}

// NewAuthHandler constructs an AuthHandler.  secureCookies should be true
// everywhere except local development over plain HTTP.
func NewAuthHandler(jwtSecret, adminPassHash string, ttlMin int, secureCookies bool) *AuthHandler {
    return &AuthHandler{
        JWTSecret:     jwtSecret,
        AdminPassHash: adminPassHash,
        SessionTTLMin: ttlMin,
        SecureCookies: secureCookies,
    }
}

// Login handles POST /v1/auth/login.  The body carries only a password;
// a match mints the session cookie.  Wrong passwords and malformed bodies
// are both answered 401/400 without detail.
func (h *AuthHandler) Login(c echo.Context) error {
    var body struct {
        Password string `json:"password"`
    }
    if err := c.Bind(&body); err != nil || body.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "password is required"})
    }
    if !utils.VerifyPassword(h.AdminPassHash, body.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }
    token, exp, err := utils.NewSessionToken(h.JWTSecret, h.SessionTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create session"})
    }
    c.SetCookie(&http.Cookie{
        Name:     middleware.SessionCookieName,
        Value:    token,
        Path:     "/",
        Expires:  exp,
        HttpOnly: true,
        Secure:   h.SecureCookies,
        SameSite: http.SameSiteLaxMode,
    })
    return c.JSON(http.StatusOK, echo.Map{"expires_at": exp.Format(time.RFC3339)})
}

// Logout handles POST /v1/auth/logout by expiring the session cookie.  The
// token itself is not tracked server-side, so expiry is the whole story.
func (h *AuthHandler) Logout(c echo.Context) error {
    c.SetCookie(&http.Cookie{
        Name:     middleware.SessionCookieName,
        Value:    "",
        Path:     "/",
        MaxAge:   -1,
        HttpOnly: true,
        Secure:   h.SecureCookies,
        SameSite: http.SameSiteLaxMode,
    })
    return c.NoContent(http.StatusNoContent)
}

// Me handles GET /v1/me behind AdminAuth; it confirms the session is live.
func (h *AuthHandler) Me(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"role": c.Get("role")})
}
