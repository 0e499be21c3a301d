package goCart

import (
	"context"

	"github.com/MrEthical07/goCart/api"
)

// WithTraceID attaches a trace id to ctx. It is sent to the backend as the
// X-Trace-ID header and copied into log lines and audit events.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return api.WithTraceID(ctx, traceID)
}

func traceIDFromContext(ctx context.Context) string {
	return api.TraceID(ctx)
}
