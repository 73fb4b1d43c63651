package auth

import "context"

type ctxKey struct{}

func ContextWithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func UserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(ctxKey{}).(int)
	return userID, ok
}
