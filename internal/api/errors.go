package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Verdenroz/buff-ai/pkg/errors"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Error string `json:"error"`
}

// StatusFor maps a domain error to an HTTP status. Routing and synthesis
// failures are checked first: a routing failure caused by malformed model
// output also matches ErrInvalidInput, but it is not the client's fault.
func StatusFor(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, errors.ErrRoutingFailed), errors.Is(err, errors.ErrSynthesisFailed):
		return http.StatusInternalServerError
	case errors.Is(err, errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, errors.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, errors.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return msg
		}
		return http.StatusText(he.Code)
	}
	return err.Error()
}

// newErrorHandler writes {"error": msg} with the mapped status
func newErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := StatusFor(err)
		req := c.Request()

		if code >= http.StatusInternalServerError {
			log.ErrorWithContext(req.Context(), err, map[string]string{
				"method": req.Method,
				"path":   c.Path(),
			})
		} else {
			log.Debugw("request rejected", "status", code, "method", req.Method, "path", req.URL.Path, "error", err)
		}

		if c.Response().Committed {
			return
		}
		if req.Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: errorMessage(err)})
	}
}
