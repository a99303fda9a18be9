package middleware

import (
	"runtime"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/docbridge/http/server"
	"github.com/rise-and-shine/docbridge/observability/logger"
)

// NewRecoveryMW creates a middleware that turns panics in the handling chain
// into server_error errors.
func NewRecoveryMW(log logger.Logger) server.Middleware {
	return server.Middleware{
		Priority: 1000,
		Handler: func(c *fiber.Ctx) (err error) {
			defer func() {
				if r := recover(); r != nil {
					stackTrace := panicStack()

					log.Named("middleware.recovery").
						WithContext(c.UserContext()).
						With("stack_trace", stackTrace).
						With("panic_message", r).
						Error("recovered from panic")

					err = errx.New("panic recovered",
						errx.WithCode(server.CodeServerError),
						errx.WithDetails(errx.D{
							"stack_trace":   stackTrace,
							"panic_message": r,
						}),
					)
				}
			}()

			return c.Next()
		},
	}
}

func panicStack() string {
	const traceSize = 4096 // 4KB
	stackTrace := make([]byte, traceSize)
	return string(stackTrace[:runtime.Stack(stackTrace, false)])
}
