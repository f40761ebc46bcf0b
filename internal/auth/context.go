package auth

import "context"

type ctxKey string

const callerKey ctxKey = "auth_caller"

// Caller is the verified seller context the upstream auth layer supplies.
// Everything past the middleware trusts these fields.
type Caller struct {
	UserID  string
	OrgID   string
	OrgCode string // Short unique code used as the SKU prefix for the org
}

// WithCaller binds the verified caller to the context.
func WithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// CallerFrom returns the verified caller, or nil when the request is
// unauthenticated.
func CallerFrom(ctx context.Context) *Caller {
	if c, ok := ctx.Value(callerKey).(*Caller); ok {
		return c
	}
	return nil
}

// OrgID is a convenience accessor; empty string means unauthenticated.
func OrgID(ctx context.Context) string {
	if c := CallerFrom(ctx); c != nil {
		return c.OrgID
	}
	return ""
}
