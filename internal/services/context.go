package services

import (
	"context"
	"strconv"

	"github.com/emanuuele/girls-chat-api/pkg/logger"
)

type userIDKey struct{}

// WithUserContext attaches the authenticated user to the request context and
// tags log lines made with the context-aware logger methods.
func WithUserContext(ctx context.Context, userID int64) context.Context {
	ctx = context.WithValue(ctx, userIDKey{}, userID)
	return context.WithValue(ctx, logger.UserIdKey, strconv.FormatInt(userID, 10))
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey{}).(int64)
	return userID, ok
}
