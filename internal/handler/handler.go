package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "taskboard/internal/errors"
)

// httpError renders a domain error through the shared taxonomy mapping.
func httpError(err error) *echo.HTTPError {
	herr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(herr.StatusCode, herr.ToErrorResponse())
}

// bindError is returned when the request body does not parse at all.
func bindError() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
		Error: "invalid request body",
		Code:  "INVALID_REQUEST",
	})
}

// dateLayouts accepted for dueDate values.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// parseDate parses an ISO 8601 date or timestamp.
func parseDate(value string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
