package chatlock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type heldKey struct {
	token   string
	expires time.Time
}

// fakeRedis honours key expiry and understands the release and renew scripts.
type fakeRedis struct {
	mu       sync.Mutex
	held     map[string]heldKey
	setCalls int
	releases int
	renewals int
}

func newFakeRedis() *fakeRedis { return &fakeRedis{held: map[string]heldKey{}} }

func (f *fakeRedis) live(key string) (heldKey, bool) {
	h, ok := f.held[key]
	if ok && time.Now().After(h.expires) {
		delete(f.held, key)
		return heldKey{}, false
	}
	return h, ok
}

func (f *fakeRedis) token(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, _ := f.live(key)
	return h.token
}

func (f *fakeRedis) put(key, token string, ttl time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.held[key] = heldKey{token: token, expires: time.Now().Add(ttl)}
}

func (f *fakeRedis) counts() (releases, renewals int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.releases, f.renewals
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	if _, ok := f.live(key); ok {
		return redis.NewBoolResult(false, nil)
	}
	f.held[key] = heldKey{token: value.(string), expires: time.Now().Add(ttl)}
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Eval(_ context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.live(keys[0])
	owned := ok && h.token == args[0].(string)

	switch script {
	case releaseScript:
		f.releases++
		if owned {
			delete(f.held, keys[0])
			return redis.NewCmdResult(int64(1), nil)
		}
	case renewScript:
		f.renewals++
		if owned {
			h.expires = time.Now().Add(time.Duration(args[1].(int64)) * time.Millisecond)
			f.held[keys[0]] = h
			return redis.NewCmdResult(int64(1), nil)
		}
	}
	return redis.NewCmdResult(int64(0), nil)
}

func TestRedisLockAcquireAndRelease(t *testing.T) {
	rc := newFakeRedis()
	l := NewRedis(rc, RedisOptions{Prefix: "test:", Poll: time.Millisecond, Wait: 50 * time.Millisecond})

	release, err := l.Lock(context.Background(), 42)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if rc.token("test:42") == "" {
		t.Fatal("key not set")
	}
	release()
	release()
	if rc.token("test:42") != "" {
		t.Fatal("key not released")
	}
	if releases, _ := rc.counts(); releases != 1 {
		t.Fatalf("releases = %d, want 1", releases)
	}
}

func TestRedisLockRenewsLeaseWhileHeld(t *testing.T) {
	rc := newFakeRedis()
	ttl := 30 * time.Millisecond
	l := NewRedis(rc, RedisOptions{Prefix: "test:", TTL: ttl, Poll: time.Millisecond, Wait: 20 * time.Millisecond})

	release, err := l.Lock(context.Background(), 42)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	time.Sleep(4 * ttl)
	if _, err := l.Lock(context.Background(), 42); !errors.Is(err, ErrTimeout) {
		t.Fatalf("second holder: err = %v, want ErrTimeout while the first still holds chat 42", err)
	}
	if _, renewals := rc.counts(); renewals == 0 {
		t.Fatal("lease was never renewed")
	}

	release()
	_, renewed := rc.counts()
	time.Sleep(2 * ttl)
	if _, after := rc.counts(); after != renewed {
		t.Fatalf("renewals continued after release: %d -> %d", renewed, after)
	}

	next, err := l.Lock(context.Background(), 42)
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	next()
}

func TestRedisLockStopsRenewingLostLease(t *testing.T) {
	rc := newFakeRedis()
	ttl := 15 * time.Millisecond
	l := NewRedis(rc, RedisOptions{Prefix: "test:", TTL: ttl, Poll: time.Millisecond})

	release, err := l.Lock(context.Background(), 5)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	rc.put("test:5", "someone-else", time.Minute)

	time.Sleep(4 * ttl)
	_, renewals := rc.counts()
	time.Sleep(4 * ttl)
	if _, after := rc.counts(); after != renewals {
		t.Fatalf("renewals continued on a lost lease: %d -> %d", renewals, after)
	}

	release()
	if rc.token("test:5") != "someone-else" {
		t.Fatal("release deleted a foreign lock")
	}
}

func TestRedisLockTimesOut(t *testing.T) {
	rc := newFakeRedis()
	rc.put("test:9", "someone-else", time.Minute)
	l := NewRedis(rc, RedisOptions{Prefix: "test:", Poll: time.Millisecond, Wait: 20 * time.Millisecond})

	_, err := l.Lock(context.Background(), 9)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	rc.mu.Lock()
	calls := rc.setCalls
	rc.mu.Unlock()
	if calls < 2 {
		t.Fatalf("set calls = %d, want polling", calls)
	}
	if rc.token("test:9") != "someone-else" {
		t.Fatal("foreign lock was modified")
	}
}

func TestRedisLockPropagatesErrors(t *testing.T) {
	boom := errors.New("connection refused")
	l := NewRedis(errRedis{err: boom}, RedisOptions{})
	if _, err := l.Lock(context.Background(), 1); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

type errRedis struct{ err error }

func (e errRedis) SetNX(context.Context, string, interface{}, time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(false, e.err)
}

func (e errRedis) Eval(context.Context, string, []string, ...interface{}) *redis.Cmd {
	return redis.NewCmdResult(nil, e.err)
}
