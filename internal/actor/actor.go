// Package actor carries the name of whoever is making a change through a
// request context so audit fields can be filled in.
package actor

import "context"

type ctxKey struct{}

// System is recorded when no caller identified itself.
const System = "system"

// NewContext returns a copy of ctx carrying name.
func NewContext(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ctxKey{}, name)
}

// FromContext returns the actor stored in ctx, or System.
func FromContext(ctx context.Context) string {
	if name, ok := ctx.Value(ctxKey{}).(string); ok && name != "" {
		return name
	}
	return System
}
