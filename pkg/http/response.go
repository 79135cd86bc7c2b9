package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DataResponse writes data in the envelope with status as the HTTP code.
func DataResponse(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, APIResponse{Status: status, Message: http.StatusText(status), Data: data})
}

func SuccessResponse(c echo.Context, data interface{}) error { return DataResponse(c, http.StatusOK, data) }
func CreatedResponse(c echo.Context, data interface{}) error { return DataResponse(c, http.StatusCreated, data) }

// MultiStatusResponse reports a batch in which some items failed.
func MultiStatusResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusMultiStatus, data)
}

func BadRequestResponse(c echo.Context, errs []ValidationError) error {
	return DataResponse(c, http.StatusBadRequest, errs)
}

// AppErrorResponse writes an *AppError under its own status. Other errors
// are hidden behind a generic 500.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = internal.errorf("internal error")
	}
	return DataResponse(c, appErr.Status, []*AppError{appErr})
}
