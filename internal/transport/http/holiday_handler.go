package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/techind/novalink-admin/internal/db"
	"github.com/techind/novalink-admin/internal/service"
	"github.com/techind/novalink-admin/internal/util"
)

// nationalHolidayLevel is the administrative level of country-wide holidays.
const nationalHolidayLevel = -1

// HolidayItem is one calendar entry.
type HolidayItem struct {
	Date string `json:"date" example:"2024-12-25"`
	Type string `json:"type" example:"N"`
}

// HolidaySetRequest replaces the holiday set of one year and administrative
// level.
type HolidaySetRequest struct {
	Year     int           `json:"year" example:"2024"`
	Level    int           `json:"level" example:"-1"`
	Holidays []HolidayItem `json:"holidays"`
}

// HolidayHandler is page glue: it talks to the bound tenant database through
// the facade surface only.
type HolidayHandler struct {
	facade   *db.Facade
	sessions *service.SessionService
}

func NewHolidayHandler(facade *db.Facade, sessions *service.SessionService) *HolidayHandler {
	return &HolidayHandler{facade: facade, sessions: sessions}
}

func (h *HolidayHandler) Register(e *echo.Echo) {
	g := e.Group("/v1/holidays", RequireSession(h.sessions))
	g.GET("", h.list)
	g.PUT("", h.replace)
}

// list godoc
// @Summary List holidays for a year
// @Description Returns an empty list when the holiday table has not been provisioned for the tenant.
// @Tags holidays
// @Param year query int true "Calendar year"
// @Param level query int false "Administrative level, defaults to -1 (national)"
// @Produce json
// @Success 200 {array} HolidayItem
// @Failure 400 {object} ErrorResponse
// @Router /v1/holidays [get]
func (h *HolidayHandler) list(c echo.Context) error {
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil || year <= 0 {
		return c.JSON(http.StatusBadRequest, util.Error("year is required"))
	}
	level := nationalHolidayLevel
	if raw := c.QueryParam("level"); raw != "" {
		if level, err = strconv.Atoi(raw); err != nil {
			return c.JSON(http.StatusBadRequest, util.Error("invalid level"))
		}
	}

	const query = `
        SELECT fecha::text AS fecha, tipo
        FROM public.feriados
        WHERE anio = $1 AND codigoniveladm = $2
        ORDER BY fecha
    `
	rows, err := h.facade.Query(c.Request().Context(), BoundDatabase(c), query, year, level)
	if err != nil {
		log.Error().Err(err).Msg("listing holidays failed")
		return c.JSON(http.StatusServiceUnavailable, util.Error("database connection error"))
	}

	items := make([]HolidayItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, HolidayItem{
			Date: stringField(row, "fecha"),
			Type: stringField(row, "tipo"),
		})
	}
	return c.JSON(http.StatusOK, items)
}

// replace godoc
// @Summary Replace the holiday set of a year
// @Description Deletes the year's holidays at the given level and writes the submitted set. Write failures surface to the caller.
// @Tags holidays
// @Accept json
// @Produce json
// @Param request body HolidaySetRequest true "Holiday set"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /v1/holidays [put]
func (h *HolidayHandler) replace(c echo.Context) error {
	var req HolidaySetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("malformed request body"))
	}
	if req.Year <= 0 {
		return c.JSON(http.StatusBadRequest, util.Error("year is required"))
	}
	if req.Level == 0 {
		req.Level = nationalHolidayLevel
	}

	ctx := c.Request().Context()
	database := BoundDatabase(c)

	const deleteQuery = `DELETE FROM public.feriados WHERE anio = $1 AND codigoniveladm = $2`
	if err := h.facade.Exec(ctx, database, deleteQuery, req.Year, req.Level); err != nil {
		return h.writeError(c, err)
	}

	const insertQuery = `
        INSERT INTO public.feriados (anio, codigoniveladm, fecha, tipo)
        VALUES ($1, $2, $3::date, $4)
    `
	for _, item := range req.Holidays {
		if err := h.facade.Exec(ctx, database, insertQuery, req.Year, req.Level, item.Date, item.Type); err != nil {
			return h.writeError(c, err)
		}
	}
	return c.JSON(http.StatusOK, util.OK())
}

func (h *HolidayHandler) writeError(c echo.Context, err error) error {
	log.Error().Err(err).Msg("writing holidays failed")
	if db.IsSchemaMissing(err) {
		return c.JSON(http.StatusConflict, util.Error("holiday table not provisioned for this tenant"))
	}
	return c.JSON(http.StatusServiceUnavailable, util.Error("database connection error"))
}

func stringField(row db.Row, key string) string {
	switch v := row[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return ""
	}
}
