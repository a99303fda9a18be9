package tracing

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// localTracePrefix marks ids minted when no span carries a trace id,
// e.g. while the exporter is disabled.
const localTracePrefix = "db-"

// GetStartingTraceID returns the trace id of the span in ctx, or a fresh
// time-ordered local id when there is none.
func GetStartingTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.TraceID().IsValid() {
		return sc.TraceID().String()
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return localTracePrefix + strings.ReplaceAll(id.String(), "-", "")
}

