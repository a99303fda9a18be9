package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/rise-and-shine/docbridge/http/server"
)

// NewCORSMW creates a middleware that answers preflight requests and sets
// CORS headers. With allowOrigins "*" the request Origin is echoed back.
func NewCORSMW(allowOrigins string) server.Middleware {
	if allowOrigins == "" {
		allowOrigins = "*"
	}

	handler := cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: strings.Join([]string{fiber.MethodPost, fiber.MethodOptions}, ","),
		AllowHeaders: "authorization,x-client-info,apikey,content-type",
	})

	return server.Middleware{
		Priority: 850,
		Handler: func(c *fiber.Ctx) error {
			err := handler(c)

			origin := c.Get(fiber.HeaderOrigin)
			if origin != "" && string(c.Response().Header.Peek(fiber.HeaderAccessControlAllowOrigin)) == "*" {
				c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
				c.Vary(fiber.HeaderOrigin)
			}

			return err
		},
	}
}
