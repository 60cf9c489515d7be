package utils

import (
	"context"

	"github.com/google/uuid"
	"github.com/qamisdata/inspections_backend/appctx"
)

// Alias the shared context key type so existing code keeps working.
type contextKey = appctx.ContextKey

var (
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
	ContextKeyTrigger       = appctx.ContextKeyTrigger
)

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func GetTriggerFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyTrigger)
}

func SetTriggerInContext(ctx context.Context, trigger string) context.Context {
	return appctx.Set(ctx, ContextKeyTrigger, trigger)
}

// CorrelationIdFromContextOrNew returns the request correlation id, minting
// one for background runs that did not come through the HTTP middleware.
func CorrelationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
