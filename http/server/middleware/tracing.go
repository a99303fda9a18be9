package middleware

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/rise-and-shine/docbridge/http/server"
	"github.com/rise-and-shine/docbridge/meta"
	"github.com/rise-and-shine/docbridge/observability/tracing"
)

// NewTracingMW creates a middleware that starts a server span for each request,
// continuing a trace propagated in the request headers.
func NewTracingMW() server.Middleware {
	return server.Middleware{
		Priority: 900,
		Handler: func(c *fiber.Ctx) error {
			carrier := make(http.Header)
			for k, values := range c.GetReqHeaders() {
				for _, v := range values {
					carrier.Add(k, v)
				}
			}
			parent := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(carrier))

			ctx, span := otel.Tracer("http-server").Start(parent, c.Method()+" /",
				trace.WithSpanKind(trace.SpanKindServer),
			)
			defer span.End()

			traceID := tracing.GetStartingTraceID(ctx)
			c.Set("X-Trace-ID", traceID)
			c.SetUserContext(meta.InjectMetaToContext(ctx, map[meta.ContextKey]string{meta.TraceID: traceID}))

			err := c.Next()

			route := c.Route().Path
			if route != "" && route != "/" {
				span.SetName(fmt.Sprintf("%s %s", c.Method(), route))
			}

			span.SetAttributes(
				attribute.String("http.request.method", c.Method()),
				attribute.String("http.route", route),
				attribute.String("url.path", c.Path()),
				attribute.Int("http.response.status_code", c.Response().StatusCode()),
			)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}

			return err
		},
	}
}
