package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/roadbuddy/quizbot/internal/model"
)

// Store keeps users in memory. State is lost on restart.
type Store struct {
	mu     sync.RWMutex
	users  map[int64]*model.User
	nextID int64
	now    func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{users: make(map[int64]*model.User), now: time.Now}
}

func (s *Store) GetOrCreate(_ context.Context, chatID int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[chatID]; ok {
		return u.Clone(), nil
	}
	s.nextID++
	u := model.NewUser(chatID)
	u.ID = s.nextID
	u.CreatedAt = s.now().UTC()
	u.UpdatedAt = u.CreatedAt
	s.users[chatID] = u
	return u.Clone(), nil
}

func (s *Store) Save(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.ChatID]
	if !ok {
		return fmt.Errorf("save chat %d: %w", u.ChatID, model.ErrNotFound)
	}
	saved := u.Clone()
	saved.ID = cur.ID
	saved.CreatedAt = cur.CreatedAt
	saved.UpdatedAt = s.now().UTC()
	s.users[u.ChatID] = saved
	u.UpdatedAt = saved.UpdatedAt
	return nil
}

// Get returns a copy of the stored user.
func (s *Store) Get(chatID int64) (*model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[chatID]
	return u.Clone(), ok
}
