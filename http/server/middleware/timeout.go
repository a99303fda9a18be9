package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/docbridge/http/server"
)

const codeRequestTimeout = "request_timeout"

// NewTimeoutMW bounds the request context by duration. A handler error caused
// by the expired deadline is tagged request_timeout. It runs inside the error
// handler so the tag reaches the response.
func NewTimeoutMW(duration time.Duration) server.Middleware {
	return server.Middleware{
		Priority: 350,
		Handler: func(c *fiber.Ctx) error {
			ctx, cancel := context.WithTimeout(c.UserContext(), duration)
			defer cancel()
			c.SetUserContext(ctx)

			err := c.Next()
			if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return errx.Wrap(err,
					errx.WithCode(codeRequestTimeout),
					errx.WithType(errx.T_Internal),
					errx.WithDetails(errx.D{"timeout": duration.String()}),
				)
			}
			return err
		},
	}
}
