package chatlock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type entry struct {
	ch   chan struct{}
	refs int
}

// Memory is an in-process keyed lock. Entries are dropped once no caller holds or waits for them.
type Memory struct {
	mu    sync.Mutex
	locks map[int64]*entry
	wait  time.Duration
}

// NewMemory returns an empty in-process locker. Callers wait at most wait for a busy chat;
// zero selects the default.
func NewMemory(wait time.Duration) *Memory {
	if wait <= 0 {
		wait = defaultWait
	}
	return &Memory{locks: make(map[int64]*entry), wait: wait}
}

// Lock blocks until the chat is free, the wait budget is spent or ctx is done.
func (m *Memory) Lock(ctx context.Context, chatID int64) (func(), error) {
	m.mu.Lock()
	e, ok := m.locks[chatID]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		m.locks[chatID] = e
	}
	e.refs++
	m.mu.Unlock()

	timer := time.NewTimer(m.wait)
	defer timer.Stop()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		m.unref(chatID, e)
		return nil, ctx.Err()
	case <-timer.C:
		m.unref(chatID, e)
		return nil, fmt.Errorf("chatlock: chat %d: %w", chatID, ErrTimeout)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			m.unref(chatID, e)
		})
	}, nil
}

func (m *Memory) unref(chatID int64, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.locks, chatID)
	}
}

func (m *Memory) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
