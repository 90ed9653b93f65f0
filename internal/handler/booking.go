// Package handler exposes the core's surface over HTTP. Handlers stay thin:
// they bind input, call into the saga or aggregation layer and translate
// typed errors into status codes. Raw transport errors never reach clients.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cinemahub/cinema-booking/internal/repository"
	"github.com/cinemahub/cinema-booking/internal/saga"
)

// BookingHandler serves the booking write path.
type BookingHandler struct {
	Saga *saga.Booking
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(s *saga.Booking) *BookingHandler {
	if s == nil {
		panic("nil saga passed to NewBookingHandler")
	}
	return &BookingHandler{Saga: s}
}

// Create handles POST /v1/bookings. A malformed or empty body is rejected
// before any write happens. A 201 with warnings means the invoice committed
// but some line items or linkage messages did not make it; clients should
// surface that rather than retry blindly.
func (h *BookingHandler) Create(c echo.Context) error {
	var req saga.BookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	result, err := h.Saga.Create(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, saga.ErrInvalidRequest) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking could not be created"})
	}
	return c.JSON(http.StatusCreated, result)
}

// Cancel handles DELETE /v1/bookings/:invoiceID. The seat context arrives in
// query parameters (movie_id, date, time, seat_id), mirroring the linkage
// message that booked the seat. All of them are required: a cancel without a
// complete seat context is rejected before any delete happens, because the
// unlink message it would produce could never be applied. The response names
// the step that failed so operators can tell a missing invoice from a broker
// outage.
func (h *BookingHandler) Cancel(c echo.Context) error {
	invoiceID, err := strconv.ParseUint(c.Param("invoiceID"), 10, 64)
	if err != nil || invoiceID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invoice id"})
	}
	movieID, err := strconv.ParseUint(c.QueryParam("movie_id"), 10, 64)
	if err != nil || movieID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	seatID, err := strconv.ParseUint(c.QueryParam("seat_id"), 10, 64)
	if err != nil || seatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	req := saga.CancelRequest{
		InvoiceID: invoiceID,
		MovieID:   movieID,
		Date:      c.QueryParam("date"),
		Time:      c.QueryParam("time"),
		SeatID:    seatID,
	}

	if err := h.Saga.Cancel(c.Request().Context(), req); err != nil {
		var step *saga.StepError
		switch {
		case errors.Is(err, saga.ErrInvalidRequest):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrInvoiceNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
		case errors.As(err, &step):
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error":       "cancellation failed",
				"failed_step": string(step.Step),
			})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancellation failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"cancelled": invoiceID})
}
