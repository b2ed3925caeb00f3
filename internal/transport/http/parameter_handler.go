package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/techind/novalink-admin/internal/db"
	"github.com/techind/novalink-admin/internal/service"
	"github.com/techind/novalink-admin/internal/util"
)

// ParameterItem is one entry of a tenant's general parameter table.
type ParameterItem struct {
	Code  int64  `json:"code" example:"80"`
	Value string `json:"value" example:"90"`
}

// ParameterUpdateRequest carries a parameter value update.
type ParameterUpdateRequest struct {
	Value string `json:"value" example:"120"`
}

// ParameterHandler is page glue over the facade surface, like the original
// general-parameters page.
type ParameterHandler struct {
	facade   *db.Facade
	sessions *service.SessionService
}

func NewParameterHandler(facade *db.Facade, sessions *service.SessionService) *ParameterHandler {
	return &ParameterHandler{facade: facade, sessions: sessions}
}

func (h *ParameterHandler) Register(e *echo.Echo) {
	g := e.Group("/v1/parameters", RequireSession(h.sessions))
	g.GET("", h.list)
	g.PUT("/:code", h.update)
}

// list godoc
// @Summary List the tenant's general parameters
// @Description Returns an empty list when the parameter table has not been provisioned for the tenant.
// @Tags parameters
// @Produce json
// @Success 200 {array} ParameterItem
// @Router /v1/parameters [get]
func (h *ParameterHandler) list(c echo.Context) error {
	const query = `SELECT codigo, valor FROM public.parametros ORDER BY codigo`

	rows, err := h.facade.Query(c.Request().Context(), BoundDatabase(c), query)
	if err != nil {
		log.Error().Err(err).Msg("listing parameters failed")
		return c.JSON(http.StatusServiceUnavailable, util.Error("database connection error"))
	}

	items := make([]ParameterItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, ParameterItem{
			Code:  intField(row, "codigo"),
			Value: stringField(row, "valor"),
		})
	}
	return c.JSON(http.StatusOK, items)
}

// update godoc
// @Summary Update one general parameter
// @Tags parameters
// @Accept json
// @Produce json
// @Param code path int true "Parameter code"
// @Param request body ParameterUpdateRequest true "New value"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /v1/parameters/{code} [put]
func (h *ParameterHandler) update(c echo.Context) error {
	code, err := strconv.ParseInt(c.Param("code"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid parameter code"))
	}
	var req ParameterUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("malformed request body"))
	}
	req.Value = strings.TrimSpace(req.Value)

	const query = `UPDATE public.parametros SET valor = $2 WHERE codigo = $1`
	if err := h.facade.Exec(c.Request().Context(), BoundDatabase(c), query, code, req.Value); err != nil {
		log.Error().Err(err).Int64("code", code).Msg("updating parameter failed")
		if db.IsSchemaMissing(err) {
			return c.JSON(http.StatusConflict, util.Error("parameter table not provisioned for this tenant"))
		}
		return c.JSON(http.StatusServiceUnavailable, util.Error("database connection error"))
	}
	return c.JSON(http.StatusOK, util.OK())
}

func intField(row db.Row, key string) int64 {
	switch v := row[key].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	default:
		return 0
	}
}
