// Package http provides HTTP middleware and handlers for two-factor enforcement.
package http

import (
	"context"

	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
)

// actorKey is a context key type for storing the authenticated actor.
type actorKey struct{}

// WithActor stores the acting principal and session in the context.
// This is typically called by the actor middleware after header extraction.
func WithActor(ctx context.Context, actor twofactorDomain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor retrieves the acting principal and session from the context.
// Returns (actor, true) if an actor is present, or (zero, false) if no actor
// was set. Handlers rely on this after the actor middleware has run.
func GetActor(ctx context.Context) (twofactorDomain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(twofactorDomain.Actor)
	return actor, ok
}
