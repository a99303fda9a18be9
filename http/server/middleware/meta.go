package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/docbridge/http/server"
	"github.com/rise-and-shine/docbridge/meta"
	"github.com/rise-and-shine/docbridge/observability/tracing"
)

// NewMetaInjectMW creates a middleware that injects request metadata into the
// request context: trace id, client address, user agent, origin and the
// bucket/key query parameters of callback requests.
func NewMetaInjectMW() server.Middleware {
	return server.Middleware{
		Priority: 700,
		Handler: func(c *fiber.Ctx) error {
			ctx := c.UserContext()

			traceID := meta.Find(ctx, meta.TraceID)
			if traceID == "" {
				traceID = tracing.GetStartingTraceID(ctx)
			}

			metaData := map[meta.ContextKey]string{
				meta.TraceID:        traceID,
				meta.IPAddress:      c.IP(),
				meta.UserAgent:      c.Get(fiber.HeaderUserAgent),
				meta.RemoteAddr:     c.Context().RemoteAddr().String(),
				meta.Origin:         c.Get(fiber.HeaderOrigin),
				meta.AcceptLanguage: c.Get(fiber.HeaderAcceptLanguage),
				meta.Bucket:         c.Query("bucket"),
				meta.DocumentKey:    c.Query("key"),
			}

			c.SetUserContext(meta.InjectMetaToContext(ctx, metaData))

			return c.Next()
		},
	}
}
