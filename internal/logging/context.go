package logging

import "context"

type contextKey string

const (
	opKey     contextKey = "op"
	itemIDKey contextKey = "item_id"
)

// WithOp tags the context with the operation being performed (list, create, ...).
func WithOp(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, opKey, op)
}

// WithItemID tags the context with the item an operation targets.
func WithItemID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, itemIDKey, id)
}

// GetOp returns the operation tag, or "".
func GetOp(ctx context.Context) string {
	if op, ok := ctx.Value(opKey).(string); ok {
		return op
	}
	return ""
}

// GetItemID returns the item tag, or "".
func GetItemID(ctx context.Context) string {
	if id, ok := ctx.Value(itemIDKey).(string); ok {
		return id
	}
	return ""
}
