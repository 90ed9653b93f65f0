package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cinemahub/cinema-booking/internal/aggregate"
	"github.com/cinemahub/cinema-booking/internal/repository"
)

// InvoiceHandler serves aggregated invoice reads.
type InvoiceHandler struct {
	Invoices *aggregate.Invoices
}

// NewInvoiceHandler constructs an InvoiceHandler.
func NewInvoiceHandler(invoices *aggregate.Invoices) *InvoiceHandler {
	if invoices == nil {
		panic("nil aggregator passed to NewInvoiceHandler")
	}
	return &InvoiceHandler{Invoices: invoices}
}

// List handles GET /v1/invoices.
func (h *InvoiceHandler) List(c echo.Context) error {
	views, err := h.Invoices.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, views)
}

// Detail handles GET /v1/invoices/:id.
func (h *InvoiceHandler) Detail(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invoice id"})
	}
	view, err := h.Invoices.Detail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) || errors.Is(err, aggregate.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, view)
}

// ByCustomer handles GET /v1/customers/:id/invoices. No invoices for the
// customer is a 404, matching the list-or-nothing contract of this endpoint.
func (h *InvoiceHandler) ByCustomer(c echo.Context) error {
	customerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || customerID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}
	views, err := h.Invoices.ByCustomer(c.Request().Context(), customerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if len(views) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no invoices for customer"})
	}
	return c.JSON(http.StatusOK, views)
}
