// Package rest exposes the kanban HTTP API.
package rest

import "context"

type ctxKey string

const usernameKey ctxKey = "kanban.username"

// WithUsername stores the authenticated principal in context.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// UsernameFromCtx fetches the authenticated principal from context.
func UsernameFromCtx(ctx context.Context) (string, bool) {
	v := ctx.Value(usernameKey)
	if v == nil {
		return "", false
	}
	name, ok := v.(string)
	return name, ok && name != ""
}
