// Package session stores web UI sessions server-side. The browser holds only
// the session ID in a cookie.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NomadCrew/feedback-collector/types"
	"github.com/google/uuid"
)

// ErrNotFound is returned for an unknown or expired session.
var ErrNotFound = errors.New("session not found")

// Store persists sessions for their lifetime.
type Store interface {
	// Create starts a session for username that expires after the store TTL.
	Create(ctx context.Context, username string) (*types.Session, error)
	// Get returns a live session or ErrNotFound.
	Get(ctx context.Context, id string) (*types.Session, error)
	// Save writes back a changed session without extending its lifetime.
	Save(ctx context.Context, s *types.Session) error
	// Delete ends a session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, id string) error
}

type clock func() time.Time

func newSession(username string, ttl time.Duration, now time.Time) (*types.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("session username is required")
	}
	return &types.Session{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}
