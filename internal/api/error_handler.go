package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/devcrm/crm-service/internal/api/handler"
	"github.com/devcrm/crm-service/internal/api/i18n"
	"github.com/devcrm/crm-service/internal/api/metrics"
	"github.com/devcrm/crm-service/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error kinds to their HTTP status codes.
//   - Localizes the message from the request's Accept-Language.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		tag := i18n.Negotiate(c.Request().Header.Get("Accept-Language"))
		code, body := resolveError(err, tag, log, c)
		metrics.ErrorsTotal.WithLabelValues(strconv.Itoa(code), body.Code).Inc()

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, tag language.Tag, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	var ve *handler.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error:   i18n.Text(tag, i18n.KeyValidationFailed),
			Code:    i18n.KeyValidationFailed,
			Details: ve.Fields,
		}
	}

	// Echo's own errors (bind failures, 404 from router, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		key := httpErrorKey(he)
		if i18n.Has(key) {
			return he.Code, errorResponse{Error: i18n.Text(tag, key), Code: key}
		}
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message), Code: key}
	}

	if de, ok := domain.AsError(err); ok {
		if status, ok := statusFor(de.Kind); ok {
			return status, errorResponse{Error: i18n.Error(tag, de), Code: string(de.Reason)}
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{
		Error: i18n.Text(tag, i18n.KeyInternal),
		Code:  i18n.KeyInternal,
	}
}

// statusFor maps a domain error kind to its HTTP status.
func statusFor(kind error) (int, bool) {
	switch {
	case errors.Is(kind, domain.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(kind, domain.ErrConflict):
		return http.StatusConflict, true
	case errors.Is(kind, domain.ErrAuthentication):
		return http.StatusUnauthorized, true
	case errors.Is(kind, domain.ErrAuthorization):
		return http.StatusForbidden, true
	case errors.Is(kind, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity, true
	case errors.Is(kind, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, true
	}
	return 0, false
}

// httpErrorKey returns the catalog key carried by an echo.HTTPError, falling
// back to a key derived from the status for echo's built-in errors.
func httpErrorKey(he *echo.HTTPError) string {
	if s, ok := he.Message.(string); ok && i18n.Has(s) {
		return s
	}
	switch he.Code {
	case http.StatusNotFound:
		return i18n.KeyRouteNotFound
	case http.StatusMethodNotAllowed:
		return i18n.KeyMethodNotAllowed
	case http.StatusUnauthorized:
		return i18n.KeyUnauthorized
	case http.StatusForbidden:
		return i18n.KeyForbidden
	case http.StatusBadRequest, http.StatusUnsupportedMediaType:
		return i18n.KeyInvalidPayload
	}
	return "http_" + strconv.Itoa(he.Code)
}
