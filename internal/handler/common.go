package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-api/internal/validator"
)

const requestTimeout = 5 * time.Second

// requestContext bounds store calls made on behalf of a request.
func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// pathID parses the :id route parameter.  Only a non-integer is rejected;
// zero and negative ids are looked up like any other and end up absent.
func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func validationFailed(c echo.Context, errs validator.Errors) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "errors": errs})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
