package media

import (
	"bytes"
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestChunkStore(t *testing.T, ttl time.Duration) (*ChunkStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		cache.Close()
		mr.Close()
	})
	return NewChunkStore(cache, ttl), mr
}

func TestChunkStoreSaveAndAssemble(t *testing.T) {
	store, _ := newTestChunkStore(t, time.Minute)
	ctx := context.Background()

	// Out-of-order arrival must not matter.
	if n, err := store.Save(ctx, "u1", 1, []byte("world")); err != nil || n != 1 {
		t.Fatalf("save: n=%d err=%v", n, err)
	}
	if n, err := store.Save(ctx, "u1", 0, []byte("hello ")); err != nil || n != 2 {
		t.Fatalf("save: n=%d err=%v", n, err)
	}

	data, err := store.Assemble(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !bytes.Equal(data, []byte("hello world")) {
		t.Fatalf("unexpected assembly %q", data)
	}

	// Assembly drops the buffered state.
	if _, err := store.Assemble(ctx, "u1", 2); err == nil {
		t.Fatalf("expected assembled upload to be gone")
	}
}

func TestChunkStoreRewriteSameIndex(t *testing.T) {
	store, _ := newTestChunkStore(t, time.Minute)
	ctx := context.Background()

	if _, err := store.Save(ctx, "u1", 0, []byte("aaa")); err != nil {
		t.Fatalf("save: %v", err)
	}
	// A retried chunk overwrites, not appends.
	n, err := store.Save(ctx, "u1", 0, []byte("bbb"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one distinct chunk, got %d", n)
	}

	data, err := store.Assemble(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if string(data) != "bbb" {
		t.Fatalf("expected retry to win, got %q", data)
	}
}

func TestChunkStoreMissingChunk(t *testing.T) {
	store, _ := newTestChunkStore(t, time.Minute)
	ctx := context.Background()

	if _, err := store.Save(ctx, "u1", 0, []byte("aaa")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.Assemble(ctx, "u1", 2); err == nil {
		t.Fatalf("expected missing-chunk error")
	}
}

func TestChunkStoreExpiry(t *testing.T) {
	store, mr := newTestChunkStore(t, time.Minute)
	ctx := context.Background()

	if _, err := store.Save(ctx, "u1", 0, []byte("aaa")); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	// Abandoned upload state expires instead of accumulating.
	if _, err := store.Assemble(ctx, "u1", 1); err == nil {
		t.Fatalf("expected expired upload to be gone")
	}
}
