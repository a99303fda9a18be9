// Package middleware holds the Fiber middlewares docbridge runs in front of
// the editor endpoints.
//
// Execution order follows Priority, highest first:
//
//	1000 recovery      panics become server_error responses
//	 900 tracing       server span, X-Trace-ID response header
//	 850 cors          preflight answers, request origin echoed
//	 700 meta          trace id, client info, bucket and key in the context
//	 600 alerting      internal errors reported to the alert provider
//	 500 logger        one line per request, level by status
//	 400 error handler errors rendered as tagged JSON bodies
//	 350 timeout       request context deadline (covers conversion polling)
package middleware
