package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/docbridge/http/server"
	"github.com/rise-and-shine/docbridge/meta"
	"github.com/rise-and-shine/docbridge/observability/alert"
	"github.com/rise-and-shine/docbridge/observability/logger"
)

const alertSendTimeout = 5 * time.Second

// NewAlertingMW creates a middleware that reports internal errors through
// the global alert provider. Only errors of type errx.T_Internal are sent.
func NewAlertingMW() server.Middleware {
	return server.Middleware{
		Priority: 600,
		Handler: func(c *fiber.Ctx) error {
			err := c.Next()
			if err == nil {
				return nil
			}

			e := errx.AsErrorX(err)
			if e.Type() != errx.T_Internal {
				return err
			}

			ctx := c.UserContext()
			operation := fmt.Sprintf("%s %s", c.Method(), c.Route().Path)

			details := map[string]string{"error_trace": e.Trace()}
			for k, v := range meta.ExtractMetaFromContext(ctx) {
				details[string(k)] = v
			}

			sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertSendTimeout)
			go func() {
				defer cancel()

				if sendErr := alert.SendError(sendCtx, e.Code(), e.Error(), operation, details); sendErr != nil {
					logger.Named("http.alerting").WithContext(sendCtx).
						With("alert_send_error", sendErr.Error()).
						Warn("failed to send alert")
				}
			}()

			return err
		},
	}
}
