package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cinemahub/cinema-booking/internal/aggregate"
	"github.com/cinemahub/cinema-booking/internal/remote"
)

// ScheduleHandler serves aggregated seat-slot reads.
type ScheduleHandler struct {
	Schedules *aggregate.Schedules
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(schedules *aggregate.Schedules) *ScheduleHandler {
	if schedules == nil {
		panic("nil aggregator passed to NewScheduleHandler")
	}
	return &ScheduleHandler{Schedules: schedules}
}

// List handles GET /v1/schedules: every seat-slot with movie, venue chain
// and optional invoice resolved.
func (h *ScheduleHandler) List(c echo.Context) error {
	views, err := h.Schedules.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, views)
}

// Overview handles GET /v1/schedules/overview: distinct screenings, cached.
func (h *ScheduleHandler) Overview(c echo.Context) error {
	rows, err := h.Schedules.Overview(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, rows)
}

// SeatVenue handles GET /v1/seats/:id/venue: the strict seat -> room ->
// theater chain. A broken chain is 404; an unreachable theater service is
// 502, since the subject may well exist.
func (h *ScheduleHandler) SeatVenue(c echo.Context) error {
	seatID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || seatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	view, err := h.Schedules.SeatVenue(c.Request().Context(), seatID)
	if err != nil {
		switch {
		case errors.Is(err, aggregate.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat venue not found"})
		case errors.Is(err, remote.ErrTransient):
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "theater service unavailable"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
		}
	}
	return c.JSON(http.StatusOK, view)
}

// MovieShowtimes handles GET /v1/movies/:id/showtimes.
func (h *ScheduleHandler) MovieShowtimes(c echo.Context) error {
	movieID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || movieID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	result, err := h.Schedules.ByMovie(c.Request().Context(), movieID)
	if err != nil {
		switch {
		case errors.Is(err, aggregate.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		case errors.Is(err, remote.ErrTransient):
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "movie service unavailable"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
		}
	}
	return c.JSON(http.StatusOK, result)
}
