package gateway

import "context"

// User is the authenticated identity score history belongs to.
type User struct {
	ID string
}

type userKey struct{}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the user stored by WithUser.
// ok is false when no user or an empty id was stored.
func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userKey{}).(User)
	if !ok || user.ID == "" {
		return User{}, false
	}
	return user, true
}
