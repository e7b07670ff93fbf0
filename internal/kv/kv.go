// Package kv stores per-user JSON documents keyed by well-known names.
package kv

import (
	"context"

	"github.com/apexfit/apexfit/internal/errors"
)

// Well-known document keys.
const (
	KeyProfile         = "profile"
	KeyOnboardingDraft = "onboarding-draft"
	KeyActiveSession   = "active-session"
	KeyUserPosts       = "user-posts"
)

// ErrNotFound is returned when no document exists for the given user and key.
var ErrNotFound = errors.NewSentinel("document not found")

// Store persists raw JSON documents per user.
type Store interface {
	// Get returns the stored document or ErrNotFound.
	Get(ctx context.Context, userEmail, key string) ([]byte, error)
	// Set upserts the document.
	Set(ctx context.Context, userEmail, key string, value []byte) error
	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context, userEmail, key string) error
}
