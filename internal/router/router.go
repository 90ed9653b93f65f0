// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/cinemahub/cinema-booking/internal/handler"
)

// RegisterRoutes registers the health check on the provided Echo instance.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterBooking registers the booking write path under /v1.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler) {
	g := e.Group("/v1")
	g.POST("/bookings", b.Create)
	g.DELETE("/bookings/:invoiceID", b.Cancel)
}

// RegisterReads registers the aggregated read endpoints under /v1.
func RegisterReads(e *echo.Echo, inv *handler.InvoiceHandler, sch *handler.ScheduleHandler) {
	g := e.Group("/v1")
	g.GET("/invoices", inv.List)
	g.GET("/invoices/:id", inv.Detail)
	g.GET("/customers/:id/invoices", inv.ByCustomer)

	g.GET("/schedules", sch.List)
	g.GET("/schedules/overview", sch.Overview)
	g.GET("/seats/:id/venue", sch.SeatVenue)
	g.GET("/movies/:id/showtimes", sch.MovieShowtimes)
}
