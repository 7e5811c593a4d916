package errors

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// NewHTTPErrorHandler renders every error returned by a handler or
// middleware as the JSON error envelope.
func NewHTTPErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		httpErr := resolve(err)
		if httpErr.StatusCode >= http.StatusInternalServerError {
			log.Printf("request_id=%s method=%s path=%s error=%v",
				c.Response().Header().Get(echo.HeaderXRequestID),
				c.Request().Method,
				c.Path(),
				err,
			)
		}

		var sendErr error
		if c.Request().Method == http.MethodHead {
			sendErr = c.NoContent(httpErr.StatusCode)
		} else {
			sendErr = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		if sendErr != nil {
			log.Printf("write error response: %v", sendErr)
		}
	}
}

// resolve turns echo's own errors (routing, binding, body limit) into
// HTTPErrors and hands everything else to MapErrorToHTTP.
func resolve(err error) *HTTPError {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if echoErr.Internal != nil {
			if mapped := MapErrorToHTTP(echoErr.Internal); mapped.StatusCode != http.StatusInternalServerError {
				return mapped
			}
		}
		if echoErr.Code >= http.StatusInternalServerError {
			return NewHTTPError(echoErr.Code, "internal server error", "INTERNAL_ERROR")
		}
		message := http.StatusText(echoErr.Code)
		switch m := echoErr.Message.(type) {
		case string:
			message = m
		case error:
			message = m.Error()
		case fmt.Stringer:
			message = m.String()
		}
		return NewHTTPError(echoErr.Code, message, codeForStatus(echoErr.Code))
	}
	return MapErrorToHTTP(err)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case http.StatusUnsupportedMediaType:
		return "UNSUPPORTED_MEDIA_TYPE"
	default:
		return ""
	}
}
