package middleware

import (
	"time"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/docbridge/http/server"
	"github.com/rise-and-shine/docbridge/observability/logger"
)

// NewLoggerMW creates a middleware that logs every request with its status,
// route and duration. The level follows the status: info for 2xx/3xx,
// warn for 4xx and error for 5xx.
func NewLoggerMW(log logger.Logger) server.Middleware {
	return server.Middleware{
		Priority: 500,
		Handler: func(c *fiber.Ctx) error {
			start := time.Now()

			err := handleWithRecovery(c)

			statusCode := c.Response().StatusCode()
			if err != nil && statusCode < 400 {
				statusCode = fiber.StatusInternalServerError
			}

			l := log.Named("middleware.logger").
				WithContext(c.UserContext()).
				With("http_status_code", statusCode).
				With("http_method", c.Method()).
				With("http_path", c.Path()).
				With("http_route", c.Route().Path).
				With("hostname", c.Hostname()).
				With("duration", time.Since(start).String()).
				With("query_params", c.Queries()).
				With("request_size", len(c.Body())).
				With("response_size", len(c.Response().Body()))

			if err != nil {
				e := errx.AsErrorX(err)
				l = l.With("error", map[string]any{
					"code":    e.Code(),
					"message": e.Error(),
					"type":    e.Type().String(),
					"trace":   e.Trace(),
					"fields":  e.Fields(),
					"details": e.Details(),
				})
			}

			switch {
			case statusCode >= 500:
				l.Error("request failed")
			case statusCode >= 400:
				l.Warn("request rejected")
			default:
				l.Info("request processed successfully")
			}

			return err
		},
	}
}

// handleWithRecovery executes the next middleware and recovers from panics.
func handleWithRecovery(c *fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errx.New(
				"panic recovered at logger middleware",
				errx.WithCode(server.CodeServerError),
				errx.WithDetails(errx.D{
					"stack_trace":   panicStack(),
					"panic_message": r,
				}),
			)
		}
	}()

	return c.Next()
}
