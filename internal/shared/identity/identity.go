// Package identity models the caller that owns a cart: either an authenticated
// user or an anonymous session, never both.
package identity

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrMissing signals that an operation requires a caller identity.
	ErrMissing = errors.New("caller identity is required")
	// ErrAmbiguous signals that both a user id and a session id were supplied.
	ErrAmbiguous = errors.New("identity must carry a user id or a session id, not both")
)

// Identity scopes carts and orders to a caller.
type Identity struct {
	UserID    string
	SessionID string
}

// User builds an authenticated identity.
func User(id string) Identity {
	return Identity{UserID: strings.TrimSpace(id)}
}

// Session builds an anonymous identity.
func Session(id string) Identity {
	return Identity{SessionID: strings.TrimSpace(id)}
}

// IsZero reports whether neither a user nor a session is present.
func (i Identity) IsZero() bool {
	return i.UserID == "" && i.SessionID == ""
}

// IsUser reports whether the identity belongs to an authenticated user.
func (i Identity) IsUser() bool {
	return i.UserID != "" && i.SessionID == ""
}

// Validate enforces the exactly-one invariant.
func (i Identity) Validate() error {
	switch {
	case i.UserID != "" && i.SessionID != "":
		return ErrAmbiguous
	case i.IsZero():
		return ErrMissing
	default:
		return nil
	}
}

// Key renders a stable, namespaced key usable as a map or lock key.
func (i Identity) Key() string {
	if i.UserID != "" {
		return "user:" + i.UserID
	}
	if i.SessionID != "" {
		return "session:" + i.SessionID
	}
	return ""
}

// Actor names the identity in audit rows.
func (i Identity) Actor() string {
	if i.UserID != "" {
		return i.UserID
	}
	if i.SessionID != "" {
		return "session:" + i.SessionID
	}
	return "system"
}

type contextKey struct{}

// WithContext stores the identity on the context.
func WithContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity stored on the context, or the zero identity.
func FromContext(ctx context.Context) Identity {
	if ctx == nil {
		return Identity{}
	}
	id, _ := ctx.Value(contextKey{}).(Identity)
	return id
}
