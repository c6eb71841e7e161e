// Package chatlock serialises work per chat.
package chatlock

import (
	"context"
	"errors"
)

// ErrTimeout is returned when a lock could not be acquired in time.
var ErrTimeout = errors.New("chat lock wait timed out")

// Locker grants exclusive access to a chat. The returned release func is idempotent.
type Locker interface {
	Lock(ctx context.Context, chatID int64) (release func(), err error)
}
