package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health responds 200 so load balancers can verify the service is up.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
