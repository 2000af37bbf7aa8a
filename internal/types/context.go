package types

import (
	"context"

	"github.com/google/uuid"
)

type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
)

// GenerateRequestID returns a new opaque request identifier.
func GenerateRequestID() string {
	return uuid.New().String()
}

// WithRequestID returns a context carrying the given request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}

// GetRequestID returns the request id from the context or an empty string.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}

	return ""
}
