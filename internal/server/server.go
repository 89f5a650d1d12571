// Package server exposes the pipeline over HTTP: a thin proxy in front of
// the upstream population API plus on-demand statistics. Responses follow
// the upstream envelope convention of a status string and a data payload.
package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/populytics/populytics/internal/analysis"
	"github.com/populytics/populytics/internal/dataset"
	"github.com/populytics/populytics/internal/logger"
	"github.com/populytics/populytics/internal/models"
)

// Fetcher retrieves the raw population payload from upstream.
type Fetcher interface {
	FetchPopulation(ctx context.Context) ([]models.PopulationRecord, error)
}

// Handler serves the population proxy endpoints.
type Handler struct {
	fetcher Fetcher
	log     *logger.Logger
}

// NewHandler creates a Handler backed by the given upstream fetcher.
func NewHandler(fetcher Fetcher, log *logger.Logger) *Handler {
	return &Handler{fetcher: fetcher, log: log}
}

// RegisterRoutes attaches the API routes to an echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/population", h.GetPopulation)
	api.GET("/statistics", h.GetStatistics)
}

// NewEcho builds an echo instance with the standard middleware and routes.
func NewEcho(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	h.RegisterRoutes(e)
	return e
}

// GetPopulation proxies the upstream dataset, optionally filtered by a
// country query parameter and a start_year/end_year window.
func (h *Handler) GetPopulation(c echo.Context) error {
	country := c.QueryParam("country")
	startYear, err := yearParam(c, "start_year")
	if err != nil {
		return badRequest(c, "start_year must be an integer")
	}
	endYear, err := yearParam(c, "end_year")
	if err != nil {
		return badRequest(c, "end_year must be an integer")
	}

	payload, err := h.fetcher.FetchPopulation(c.Request().Context())
	if err != nil {
		h.log.Error("Upstream fetch failed: %v", err)
		return c.JSON(http.StatusBadGateway, map[string]any{
			"status":  "error",
			"message": "failed to fetch population data",
		})
	}

	filtered := filterRecords(payload, country, startYear, endYear)
	if country != "" && len(filtered) == 0 {
		return c.JSON(http.StatusNotFound, map[string]any{
			"status":  "error",
			"message": "country not found",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": "success",
		"count":  len(filtered),
		"data":   filtered,
	})
}

// GetStatistics runs the in-memory pipeline over the upstream dataset and
// returns the aggregate summary.
func (h *Handler) GetStatistics(c echo.Context) error {
	payload, err := h.fetcher.FetchPopulation(c.Request().Context())
	if err != nil {
		h.log.Error("Upstream fetch failed: %v", err)
		return c.JSON(http.StatusBadGateway, map[string]any{
			"status":  "error",
			"message": "failed to fetch population data",
		})
	}

	table, err := dataset.Normalize(payload)
	if err != nil {
		h.log.Error("Upstream payload is malformed: %v", err)
		return c.JSON(http.StatusBadGateway, map[string]any{
			"status":  "error",
			"message": "upstream returned malformed data",
		})
	}

	summary, err := analysis.Summarize(table.Annotate())
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{
			"status":  "error",
			"message": "no data to summarize",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": "success",
		"data":   summary,
	})
}

// filterRecords keeps records matching country (all when empty) and trims
// each record's counts to the year window. Zero bounds leave that side open.
func filterRecords(payload []models.PopulationRecord, country string, startYear, endYear int) []models.PopulationRecord {
	var out []models.PopulationRecord
	for _, rec := range payload {
		if country != "" && rec.Country != country {
			continue
		}
		if startYear == 0 && endYear == 0 {
			out = append(out, rec)
			continue
		}
		trimmed := rec
		trimmed.Counts = nil
		for _, count := range rec.Counts {
			if count.Year == nil {
				continue
			}
			if startYear != 0 && *count.Year < startYear {
				continue
			}
			if endYear != 0 && *count.Year > endYear {
				continue
			}
			trimmed.Counts = append(trimmed.Counts, count)
		}
		if len(trimmed.Counts) > 0 {
			out = append(out, trimmed)
		}
	}
	return out
}

func yearParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]any{
		"status":  "error",
		"message": message,
	})
}
