package runctx

import (
	"context"

	"github.com/google/uuid"
)

type runIDKey struct{}

// New returns a context tagged with a fresh run ID.
func New(parent context.Context) context.Context {
	return context.WithValue(parent, runIDKey{}, uuid.NewString())
}

// RunID returns the run ID stored in ctx, or "" if there is none.
func RunID(ctx context.Context) string {
	id, ok := ctx.Value(runIDKey{}).(string)
	if !ok {
		return ""
	}
	return id
}
