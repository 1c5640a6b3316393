package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type requestDataKey struct{}

// RequestData is the per-request identity attached by the auth middleware.
type RequestData struct {
	TokenString string
	UserID      uuid.UUID
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

type genaiKeyKey struct{}

// WithGenAIKey carries a per-request generation API key override. The
// configured key remains the default when no override is present.
func WithGenAIKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, genaiKeyKey{}, key)
}

func GetGenAIKey(ctx context.Context) string {
	if k, ok := ctx.Value(genaiKeyKey{}).(string); ok {
		return k
	}
	return ""
}
