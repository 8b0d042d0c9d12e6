package media

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const chunkKeyPrefix = "upload:v1:"

// ChunkStore buffers chunked-upload parts in Redis. Every write refreshes the
// TTL, so state from abandoned uploads expires instead of accumulating.
type ChunkStore struct {
	cache *redis.Client
	ttl   time.Duration
}

// NewChunkStore builds a chunk buffer with the given retention for pending
// uploads.
func NewChunkStore(cache *redis.Client, ttl time.Duration) *ChunkStore {
	return &ChunkStore{cache: cache, ttl: ttl}
}

// Save stores one chunk and returns how many distinct chunks have arrived for
// the upload.
func (s *ChunkStore) Save(ctx context.Context, uploadID string, index int, data []byte) (int, error) {
	key := chunkKeyPrefix + uploadID
	pipe := s.cache.TxPipeline()
	pipe.HSet(ctx, key, strconv.Itoa(index), data)
	pipe.Expire(ctx, key, s.ttl)
	count := pipe.HLen(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("save chunk %d of %s: %w", index, uploadID, err)
	}
	return int(count.Val()), nil
}

// Assemble concatenates all chunks in index order and drops the buffered
// state. It fails when any index in [0, total) is missing.
func (s *ChunkStore) Assemble(ctx context.Context, uploadID string, total int) ([]byte, error) {
	key := chunkKeyPrefix + uploadID
	fields, err := s.cache.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("load chunks of %s: %w", uploadID, err)
	}

	var size int
	parts := make([][]byte, total)
	for i := 0; i < total; i++ {
		part, ok := fields[strconv.Itoa(i)]
		if !ok {
			return nil, fmt.Errorf("upload %s is missing chunk %d", uploadID, i)
		}
		parts[i] = []byte(part)
		size += len(part)
	}

	buf := make([]byte, 0, size)
	for _, part := range parts {
		buf = append(buf, part...)
	}

	if err := s.cache.Del(ctx, key).Err(); err != nil {
		return nil, fmt.Errorf("drop chunks of %s: %w", uploadID, err)
	}
	return buf, nil
}
