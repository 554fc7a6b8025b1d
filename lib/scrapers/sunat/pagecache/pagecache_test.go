package pagecache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sunatscraper/lib/telemetry"

	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
	gets   int
	err    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		values: map[string]string{},
		ttls:   map[string]time.Duration{},
	}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.err != nil {
		return "", false, s.err
	}
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.values[key] = value
	s.ttls[key] = ttl
	return nil
}

func newCache(t *testing.T, opts Options, tel telemetry.API) *Cache {
	t.Helper()
	cache, err := New(opts, tel)
	require.NoError(t, err)
	return cache
}

func TestGetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	cache := newCache(t, Options{}, &telemetry.Recorder{})

	_, ok := cache.Get(ctx, `{"accion":"consPorRuc","nroRuc":"20100070970"}`)
	require.False(t, ok)

	cache.Put(ctx, `{"accion":"consPorRuc","nroRuc":"20100070970"}`, "<html>page</html>")
	for i := 0; i < 2; i++ {
		page, ok := cache.Get(ctx, `{"accion":"consPorRuc","nroRuc":"20100070970"}`)
		require.True(t, ok)
		require.Equal(t, "<html>page</html>", page)
	}
}

func TestLocalOnly(t *testing.T) {
	ctx := context.Background()
	cache := newCache(t, Options{LocalSize: 1}, &telemetry.Recorder{})

	cache.Put(ctx, "a", "A")
	cache.Put(ctx, "b", "B")

	_, ok := cache.Get(ctx, "a")
	require.False(t, ok, "a should have been evicted")
	page, ok := cache.Get(ctx, "b")
	require.True(t, ok)
	require.Equal(t, "B", page)
}

func TestLocalExpiry(t *testing.T) {
	ctx := context.Background()
	cache := newCache(t, Options{LocalTTL: 20 * time.Millisecond}, &telemetry.Recorder{})

	cache.Put(ctx, "k", "v")
	time.Sleep(60 * time.Millisecond)
	_, ok := cache.Get(ctx, "k")
	require.False(t, ok)
}

func TestStoreTier(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	cache := newCache(t, Options{Store: store}, &telemetry.Recorder{})

	cache.Put(ctx, "k", "v")
	require.Equal(t, "v", store.values["k"])
	require.Equal(t, DefaultStoreTTL, store.ttls["k"])

	// a second instance sharing the store sees the page
	other := newCache(t, Options{Store: store}, &telemetry.Recorder{})
	page, ok := other.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, "v", page)

	// store hits are not promoted into the local tier
	store.values["k"] = "changed"
	page, ok = other.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, "changed", page)

	// local hits never reach the store
	gets := store.gets
	page, ok = cache.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, "v", page)
	require.Equal(t, gets, store.gets)
}

func TestStoreErrorsAreMisses(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.err = errors.New("connection refused")
	tel := &telemetry.Recorder{}
	cache := newCache(t, Options{Store: store}, tel)

	_, ok := cache.Get(ctx, "k")
	require.False(t, ok)
	require.Equal(t, 1, tel.Count("warning", "store-get"))

	cache.Put(ctx, "k", "v")
	require.Equal(t, 1, tel.Count("warning", "store-set"))

	page, ok := cache.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, "v", page)
}
