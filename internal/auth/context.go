package auth

import (
	"context"

	"github.com/google/uuid"
)

// DemoUserID is the identity every demo session resolves to.
var DemoUserID = uuid.MustParse("00000000-0000-0000-0000-00000000de30")

// Actor is the caller as resolved by the identity provider. Demo selects
// the offline sandbox engine instead of the live one.
type Actor struct {
	UserID uuid.UUID
	Email  string
	Demo   bool
}

func (a Actor) Authenticated() bool {
	return a.UserID != uuid.Nil
}

type actorKey struct{}

func ContextWithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	a, ok := ActorFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return a.UserID, true
}
