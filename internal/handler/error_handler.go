package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "comparecarts/internal/errors"
)

// ErrorHandler renders every failure as an ErrorResponse. It replaces echo's
// default handler so route misses, bind errors and recovered panics share the
// same body shape as domain errors.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		httpErr := toHTTPError(err)
		if httpErr.StatusCode >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(httpErr.StatusCode)
		} else {
			err = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}

func toHTTPError(err error) *apperrors.HTTPError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return apperrors.MapErrorToHTTP(appErr)
	}

	var httpErr *apperrors.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		message := http.StatusText(echoErr.Code)
		if s, ok := echoErr.Message.(string); ok && s != "" {
			message = s
		}
		if echoErr.Code >= http.StatusInternalServerError {
			message = "internal server error"
		}
		return apperrors.NewHTTPError(echoErr.Code, message, statusCode(echoErr.Code))
	}

	return apperrors.MapErrorToHTTP(err)
}

// statusCode turns 404 into "NOT_FOUND", 405 into "METHOD_NOT_ALLOWED" and so on.
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "HTTP_ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}

func invalidBody() error {
	return apperrors.NewHTTPError(http.StatusBadRequest, "invalid request body", "INVALID_REQUEST")
}
