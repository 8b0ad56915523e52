// Package session carries the caller's identity on the request context.
package session

import "context"

type contextKey struct{}

// Context is the identity of the caller for one request. It is built by the
// auth middleware and never stored globally.
type Context struct {
	UserID   string `json:"userId"`
	OrgID    string `json:"orgId,omitempty"`
	OrgRole  string `json:"orgRole,omitempty"`
	Email    string `json:"email,omitempty"`
	DemoMode bool   `json:"demoMode"`
}

// Demo is the fixed session installed when identity verification is off.
func Demo() Context {
	return Context{
		UserID:   "demo-user",
		OrgID:    "demo-org",
		OrgRole:  "admin",
		Email:    "demo@hospital.local",
		DemoMode: true,
	}
}

func WithContext(ctx context.Context, s Context) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (Context, bool) {
	s, ok := ctx.Value(contextKey{}).(Context)
	return s, ok
}
