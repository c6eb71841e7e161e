// Package store persists per-chat conversation records.
package store

import (
	"context"

	"github.com/roadbuddy/quizbot/internal/model"
)

// Store loads and saves users. Implementations are safe for concurrent use;
// per-chat ordering is the caller's responsibility.
type Store interface {
	// GetOrCreate returns the user of chatID, creating an onboarding record for unseen chats.
	GetOrCreate(ctx context.Context, chatID int64) (*model.User, error)
	// Save persists every field of u. Unknown chats yield model.ErrNotFound.
	Save(ctx context.Context, u *model.User) error
}
