package http

import (
	"net/http"
	"strconv"

	"loan-pipeline/internal/usecase/stats"

	"github.com/labstack/echo/v4"
)

const (
	defaultMonthsBack = 12
	defaultDaysBack   = 30
	defaultClosings   = 10
)

type StatsHandler struct{ agg *stats.Aggregator }

func NewStatsHandler(agg *stats.Aggregator) *StatsHandler { return &StatsHandler{agg: agg} }

func (h *StatsHandler) PipelineStats(c echo.Context) error {
	out, err := h.agg.ComputeStats(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StatsHandler) MonthlyHistory(c echo.Context) error {
	n, ok := intQuery(c, "months", defaultMonthsBack)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "months must be an integer"})
	}
	out, err := h.agg.ComputeMonthlyHistory(c.Request().Context(), n)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StatsHandler) DailyHistory(c echo.Context) error {
	n, ok := intQuery(c, "days", defaultDaysBack)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "days must be an integer"})
	}
	out, err := h.agg.ComputeDailyHistory(c.Request().Context(), n)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StatsHandler) RecentClosings(c echo.Context) error {
	n, ok := intQuery(c, "limit", defaultClosings)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be an integer"})
	}
	out, err := h.agg.ComputeRecentClosings(c.Request().Context(), n)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"closings": out})
}

func intQuery(c echo.Context, name string, def int) (int, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}
