package middleware

import (
	"context"
	"log/slog"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// contextKey is used for values stored in the request context.
// Using a custom type prevents collisions.
type contextKey string

const (
	loggerCtxKey = contextKey("logger")
	callerKey    = contextKey("caller")
)

// GetLoggerFromCtx retrieves the request-scoped logger from a standard context.
// It returns the default logger when none was stored.
func GetLoggerFromCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if logger, ok := ctx.Value(loggerCtxKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, logger)
}

// WithCaller returns a copy of ctx carrying the authenticated account.
func WithCaller(ctx context.Context, caller domain.Address) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// GetCallerFromCtx retrieves the authenticated account from a standard context.
func GetCallerFromCtx(ctx context.Context) (domain.Address, bool) {
	caller, ok := ctx.Value(callerKey).(domain.Address)
	return caller, ok && !caller.IsZero()
}

// GetCallerFromContext retrieves the authenticated account from the Gin context.
// It returns the address and a boolean indicating if it was found.
func GetCallerFromContext(c *gin.Context) (domain.Address, bool) {
	if v, exists := c.Get(string(callerKey)); exists {
		if caller, ok := v.(domain.Address); ok {
			return caller, true
		}
	}
	// check in the request context as well
	return GetCallerFromCtx(c.Request.Context())
}
