package tracing

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// The tracing package provides request tracing via a RequestTrace struct shared via
// contexts. Other parts of the application can safely retrieve a trace from a context
// even if it was not set before.

// Header used to propagate the request id to and from clients.
const RequestIDHeader = "X-Request-Id"

type privateKey string

const requestTraceKey privateKey = "requestTrace"

// Will contain several data about the request lifecycle.
type RequestTrace struct {
	ID         string
	Start      time.Time
	HttpStatus int
	PubMessage interface{}
	PrivateErr error
}

// Enrich the HTTP request with a newly initialized trace. A well formed request id
// sent by the client is kept, otherwise a new random one is generated.
func NewTraceToRequest(r *http.Request) *http.Request {
	id := r.Header.Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	trace := RequestTrace{
		ID:    id,
		Start: time.Now().UTC(),
	}
	return r.WithContext(TraceToCtx(r.Context(), &trace))
}

// Get the trace of an HTTP request.
func TraceFromRequestCtx(r *http.Request) *RequestTrace {
	return TraceFromCtx(r.Context())
}

// Put a trace into a context object.
func TraceToCtx(ctx context.Context, tr *RequestTrace) context.Context {
	return context.WithValue(ctx, requestTraceKey, tr)
}

// Retrieve a trace from a context object. If the context doesn't have any trace
// return a default trace with no ID.
func TraceFromCtx(ctx context.Context) *RequestTrace {
	if trace, ok := ctx.Value(requestTraceKey).(*RequestTrace); ok {
		return trace
	}
	return &RequestTrace{
		ID: "<no request id>",
	}
}
