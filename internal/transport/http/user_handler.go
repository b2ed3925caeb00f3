package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/techind/novalink-admin/internal/domain"
	"github.com/techind/novalink-admin/internal/service"
	"github.com/techind/novalink-admin/internal/util"
)

type UserHandler struct {
	auth     *service.AuthService
	sessions *service.SessionService
}

func NewUserHandler(auth *service.AuthService, sessions *service.SessionService) *UserHandler {
	return &UserHandler{auth: auth, sessions: sessions}
}

func (h *UserHandler) Register(e *echo.Echo) {
	e.POST("/v1/users/password", h.changePassword, RequireSession(h.sessions))
}

// changePassword godoc
// @Summary Change the current user's password
// @Description Verifies the current password and writes the new one to the tenant database, resetting the password age.
// @Tags users
// @Accept json
// @Produce json
// @Param request body ChangePasswordRequest true "Password change"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /v1/users/password [post]
func (h *UserHandler) changePassword(c echo.Context) error {
	session, _ := CurrentSession(c)

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("malformed request body"))
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, util.Error("all fields are required"))
	}

	err := h.auth.ChangePassword(c.Request().Context(), session.DatabaseID, session.UserID, req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, util.OK())
	case errors.Is(err, domain.ErrBadPassword):
		return c.JSON(http.StatusBadRequest, util.Error("current password is incorrect"))
	case errors.Is(err, domain.ErrPasswordReused):
		return c.JSON(http.StatusBadRequest, util.Error("new password must differ from the current one"))
	default:
		log.Error().Err(err).Int64("user_id", session.UserID).Msg("password change failed")
		return c.JSON(http.StatusInternalServerError, util.Error("password change failed"))
	}
}
