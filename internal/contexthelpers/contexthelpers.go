// Package contexthelpers provides typed accessors for the request-scoped
// values the middleware chain stores on the context.
package contexthelpers

import (
	"context"
	"net/http"
)

type contextKey string

const IsAuthenticatedContextKey = contextKey("isAuthenticated")
const AuthenticatedEmailContextKey = contextKey("authenticatedEmail")
const CurrentPathContextKey = contextKey("currentPath")

// AuthenticateContext marks the request as authenticated for the given email.
func AuthenticateContext(r *http.Request, email string) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, IsAuthenticatedContextKey, true)
	ctx = context.WithValue(ctx, AuthenticatedEmailContextKey, email)
	return r.WithContext(ctx)
}

// SetCurrentPath records the request path for logging and navigation.
func SetCurrentPath(r *http.Request, currentPath string) *http.Request {
	ctx := context.WithValue(r.Context(), CurrentPathContextKey, currentPath)
	return r.WithContext(ctx)
}

func IsAuthenticated(ctx context.Context) bool {
	isAuthenticated, ok := ctx.Value(IsAuthenticatedContextKey).(bool)
	if !ok {
		return false
	}
	return isAuthenticated
}

// AuthenticatedEmail returns the email of the logged-in user or the empty
// string when the request is anonymous.
func AuthenticatedEmail(ctx context.Context) string {
	email, ok := ctx.Value(AuthenticatedEmailContextKey).(string)
	if !ok {
		return ""
	}
	return email
}

func CurrentPath(ctx context.Context) string {
	currentPath, ok := ctx.Value(CurrentPathContextKey).(string)
	if !ok {
		return ""
	}
	return currentPath
}
