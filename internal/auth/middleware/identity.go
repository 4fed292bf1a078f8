package auth

import "context"

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Identity is resolved once at the boundary from the validated token; business
// logic never re-derives who is calling.
type Identity struct {
	ID   string
	Role Role
}

func (i Identity) Valid() bool {
	return i.ID != "" && (i.Role == RoleStudent || i.Role == RoleTeacher || i.Role == RoleAdmin)
}

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if v := ctx.Value(ctxKeyIdentity); v != nil {
		if id, ok := v.(Identity); ok {
			return id, true
		}
	}
	return Identity{}, false
}
