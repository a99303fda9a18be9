package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/docbridge/http/server"
)

// NewErrorHandlerMW creates a middleware that renders errors returned by
// handlers through responder.
//
// The error is still returned so outer middlewares (logging, alerting,
// tracing) can see it.
func NewErrorHandlerMW(responder server.ErrorResponder) server.Middleware {
	return server.Middleware{
		Priority: 400,
		Handler: func(c *fiber.Ctx) error {
			err := c.Next()
			if err == nil {
				return nil
			}

			if c.Response() != nil && c.Response().StatusCode() >= 400 {
				return err
			}

			return responder.Write(c, err)
		},
	}
}
