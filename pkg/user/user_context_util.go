package user

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/uangsakti/uangsakti/internal/rest"
)

type contextKey string

const UserKey contextKey = "user"

// CurrentId retrieves the current user's ID from the context. Returns
// rest.ErrUnauthenticated if no user is present.
func CurrentId(ctx context.Context) (string, error) {
	user, ok := ctx.Value(UserKey).(User)
	if !ok {
		log.Trace("user not found in context")
		return "", rest.ErrUnauthenticated
	}
	return user.ID, nil
}

func CurrentUser(ctx context.Context) (User, error) {
	user, ok := ctx.Value(UserKey).(User)
	if !ok {
		log.Trace("user not found in context")
		return User{}, rest.ErrUnauthenticated
	}
	return user, nil
}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}
