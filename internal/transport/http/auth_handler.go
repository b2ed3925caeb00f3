package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/techind/novalink-admin/internal/domain"
	"github.com/techind/novalink-admin/internal/repository/ports"
	"github.com/techind/novalink-admin/internal/service"
	"github.com/techind/novalink-admin/internal/util"
)

// genericLoginError is what every credential failure collapses into so the
// response does not reveal whether the tenant, user, or password was wrong.
const genericLoginError = "invalid company, user or password"

type AuthHandler struct {
	auth     *service.AuthService
	sessions *service.SessionService
	tenants  *service.TenantService
	users    ports.UserRepository
}

func NewAuthHandler(auth *service.AuthService, sessions *service.SessionService, tenants *service.TenantService, users ports.UserRepository) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, tenants: tenants, users: users}
}

func (h *AuthHandler) Register(e *echo.Echo) {
	e.GET("/v1/auth/tenants", h.listTenants)
	e.POST("/v1/auth/login", h.login)
	e.POST("/v1/auth/logout", h.logout)
	e.GET("/v1/auth/session", h.session, RequireSession(h.sessions))
}

// listTenants godoc
// @Summary List selectable tenants
// @Description Returns tenants whose name matches the search text. Search is opt-in: fewer than 3 characters yields an empty list.
// @Tags auth
// @Param search query string false "Name fragment, minimum 3 characters"
// @Produce json
// @Success 200 {array} TenantItem
// @Router /v1/auth/tenants [get]
func (h *AuthHandler) listTenants(c echo.Context) error {
	tenants := h.tenants.List(c.Request().Context(), c.QueryParam("search"))
	items := make([]TenantItem, 0, len(tenants))
	for _, t := range tenants {
		items = append(items, TenantItem{ID: t.ID, Name: t.Name, DatabaseID: t.DatabaseID})
	}
	return c.JSON(http.StatusOK, items)
}

// login godoc
// @Summary Authenticate against a tenant database
// @Description On success sets the session cookie and binds the session to the tenant database.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login form"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /v1/auth/login [post]
func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("malformed request body"))
	}
	req.Tenant = strings.TrimSpace(req.Tenant)
	req.Username = strings.TrimSpace(req.Username)
	if req.Tenant == "" || req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, util.Error("all fields are required"))
	}

	result, err := h.auth.Authenticate(
		c.Request().Context(),
		req.Tenant, req.Username, req.Password,
		c.RealIP(), c.Request().UserAgent(),
	)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserInactive):
			return c.JSON(http.StatusForbidden, util.Error("user account is inactive"))
		case errors.Is(err, domain.ErrConnectionUnavailable):
			return c.JSON(http.StatusServiceUnavailable, util.Error("database connection error"))
		case errors.Is(err, domain.ErrTenantNotFound),
			errors.Is(err, domain.ErrUserNotFound),
			errors.Is(err, domain.ErrBadPassword):
			return c.JSON(http.StatusUnauthorized, util.Error(genericLoginError))
		default:
			log.Error().Err(err).Msg("login failed")
			return c.JSON(http.StatusInternalServerError, util.Error("login failed"))
		}
	}

	setSessionCookie(c, result.Session.Token, h.sessions.Window())
	return c.JSON(http.StatusOK, LoginResponse{
		User: AuthUser{
			ID:          result.User.ID,
			Name:        result.User.Name,
			Description: result.User.Description,
		},
		Tenant: TenantItem{
			ID:         result.Tenant.ID,
			Name:       result.Tenant.Name,
			DatabaseID: result.Tenant.DatabaseID,
		},
		MustChangePassword: result.MustChangePassword,
		ExpiresAt:          result.Session.ExpiresAt,
	})
}

// logout godoc
// @Summary Close the current session
// @Description Idempotent: succeeds with or without a live session and always clears the cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /v1/auth/logout [post]
func (h *AuthHandler) logout(c echo.Context) error {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Close(c.Request().Context(), cookie.Value); err != nil {
			log.Warn().Err(err).Msg("closing session on logout failed")
		}
	}
	clearSessionCookie(c)
	return c.JSON(http.StatusOK, util.OK())
}

// session godoc
// @Summary Describe the current session
// @Description Validates and renews the session, re-hydrating user display fields from the bound tenant database.
// @Tags auth
// @Produce json
// @Success 200 {object} SessionResponse
// @Failure 401 {object} ErrorResponse
// @Router /v1/auth/session [get]
func (h *AuthHandler) session(c echo.Context) error {
	session, _ := CurrentSession(c)

	resp := SessionResponse{
		User:      AuthUser{ID: session.UserID},
		Database:  session.DatabaseID,
		ExpiresAt: session.ExpiresAt,
	}
	// Display fields live in the tenant database; their absence is not worth
	// failing the request over.
	user, err := h.users.FindByID(c.Request().Context(), session.DatabaseID, session.UserID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", session.UserID).Msg("could not re-hydrate user details")
	} else {
		resp.User.Name = user.Name
		resp.User.Description = user.Description
	}
	return c.JSON(http.StatusOK, resp)
}
