package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rowanholt/vesta/internal/domain"
	"github.com/rowanholt/vesta/internal/service"
)

// StatsHandler exposes the admin revenue report.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Get handles GET /admin/stats?days=N. The window is the last N days ending
// now, defaulting to 30.
func (h *StatsHandler) Get(c echo.Context) error {
	days := 30
	if raw := c.QueryParam("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 365 {
			return domain.Invalid("api.stats", "days must be an integer between 1 and 365")
		}
		days = v
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	report, err := h.stats.Stats(c.Request().Context(), start, end)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newStatsResponse(report))
}
