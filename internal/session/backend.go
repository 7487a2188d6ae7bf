package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/propconsole/internal/model"
)

// ErrNoSession is returned by a Backend when no session is stored under
// the requested id.
var ErrNoSession = errors.New("no session")

// Backend persists sessions by id.
type Backend interface {
	Get(ctx context.Context, id string) (*model.Session, error)
	Put(ctx context.Context, s *model.Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// RedisBackend stores each session as JSON under "<prefix>:<id>" with a
// TTL, so abandoned sessions disappear on their own.
type RedisBackend struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisBackend(rdb *redis.Client, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = "sess"
	}
	return &RedisBackend{rdb: rdb, prefix: prefix}
}

func (b *RedisBackend) key(id string) string { return b.prefix + ":" + id }

func (b *RedisBackend) Get(ctx context.Context, id string) (*model.Session, error) {
	bs, err := b.rdb.Get(ctx, b.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	var s model.Session
	if err := json.Unmarshal(bs, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (b *RedisBackend) Put(ctx context.Context, s *model.Session, ttl time.Duration) error {
	bs, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return b.rdb.Set(ctx, b.key(s.ID), bs, ttl).Err()
}

func (b *RedisBackend) Delete(ctx context.Context, id string) error {
	return b.rdb.Del(ctx, b.key(id)).Err()
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}

// MemoryBackend keeps sessions in process memory.  It is used when Redis
// is unavailable and in tests.
type MemoryBackend struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

type memoryEntry struct {
	s   model.Session
	exp time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{sessions: make(map[string]memoryEntry), now: time.Now}
}

func (b *MemoryBackend) Get(_ context.Context, id string) (*model.Session, error) {
	b.mu.RLock()
	e, ok := b.sessions[id]
	b.mu.RUnlock()
	if !ok || (!e.exp.IsZero() && !b.now().Before(e.exp)) {
		return nil, ErrNoSession
	}
	s := e.s
	return &s, nil
}

func (b *MemoryBackend) Put(_ context.Context, s *model.Session, ttl time.Duration) error {
	e := memoryEntry{s: *s}
	if ttl > 0 {
		e.exp = b.now().Add(ttl)
	}
	b.mu.Lock()
	b.sessions[s.ID] = e
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	delete(b.sessions, id)
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Ping(context.Context) error { return nil }
