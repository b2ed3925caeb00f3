package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/techind/novalink-admin/internal/domain"
	"github.com/techind/novalink-admin/internal/service"
	"github.com/techind/novalink-admin/internal/util"
)

const (
	// SessionCookieName is the browser cookie carrying the session token.
	SessionCookieName = "session_token"

	contextSessionKey = "session"
)

// RequireSession validates the session cookie, renews the sliding window, and
// binds the session (and through it the tenant database) to the request
// context. Invalid and expired sessions get a 401 with a reauthenticate hint
// so the client can route back to the login page.
func RequireSession(sessions *service.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return reauthenticate(c, "authentication required")
			}

			outcome := sessions.Validate(c.Request().Context(), cookie.Value)
			switch outcome.State {
			case domain.SessionValidState:
				c.Set(contextSessionKey, outcome.Session)
				return next(c)
			case domain.SessionExpiredState:
				clearSessionCookie(c)
				return reauthenticate(c, "session expired")
			default:
				clearSessionCookie(c)
				return reauthenticate(c, "invalid session")
			}
		}
	}
}

// CurrentSession returns the session bound by RequireSession.
func CurrentSession(c echo.Context) (*domain.Session, bool) {
	session, ok := c.Get(contextSessionKey).(*domain.Session)
	return session, ok && session != nil
}

// BoundDatabase returns the tenant database of the current session, or empty
// when the request is unauthenticated.
func BoundDatabase(c echo.Context) string {
	if session, ok := CurrentSession(c); ok {
		return session.DatabaseID
	}
	return ""
}

func reauthenticate(c echo.Context, message string) error {
	body := util.Error(message)
	body["reauthenticate"] = true
	return c.JSON(http.StatusUnauthorized, body)
}

func setSessionCookie(c echo.Context, token string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
