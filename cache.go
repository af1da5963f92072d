package s3fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss reports that a record is not in the cache. It never escapes
// the CachedAdapter.
var ErrCacheMiss = errors.New("metadata not found in cache")

// MetadataCache defines the interface for caching normalized records.
type MetadataCache interface {
	Get(ctx context.Context, key string) (*FileMetadata, error)
	Set(ctx context.Context, key string, meta *FileMetadata) error
	Delete(ctx context.Context, key string) error
}

// NoOpCache implements the MetadataCache interface but does nothing.
type NoOpCache struct{}

// Get always misses.
func (c *NoOpCache) Get(ctx context.Context, key string) (*FileMetadata, error) {
	return nil, ErrCacheMiss
}

// Set does nothing.
func (c *NoOpCache) Set(ctx context.Context, key string, meta *FileMetadata) error {
	return nil
}

// Delete does nothing.
func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

// RedisCache implements the MetadataCache interface using Redis. Records
// are stored as JSON with a fixed TTL; Contents and Stream never
// serialize.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a new Redis cache and verifies connectivity before
// returning.
func NewRedisCache(ctx context.Context, address string, ttlSeconds int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        address,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &RedisCache{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}, nil
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Get gets a record from the cache.
func (c *RedisCache) Get(ctx context.Context, key string) (*FileMetadata, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var meta FileMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// Set sets a record in the cache.
func (c *RedisCache) Set(ctx context.Context, key string, meta *FileMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Delete deletes a record from the cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// CachedAdapter wraps an Adapter with a metadata cache. Read operations on
// metadata consult the cache first; write operations refresh or invalidate
// the affected entries. Cache failures are logged and treated as misses,
// never surfaced as filesystem errors. Blob contents are never cached.
type CachedAdapter struct {
	*Adapter
	cache MetadataCache
}

// NewCachedAdapter wraps adapter with cache.
func NewCachedAdapter(adapter *Adapter, cache MetadataCache) *CachedAdapter {
	return &CachedAdapter{Adapter: adapter, cache: cache}
}

func (c *CachedAdapter) cacheKey(path string) string {
	return fmt.Sprintf("s3fs:meta:%s:%s", c.container, c.key(path))
}

// lookup consults the cache, logging anything other than a miss.
func (c *CachedAdapter) lookup(ctx context.Context, path string) *FileMetadata {
	meta, err := c.cache.Get(ctx, c.cacheKey(path))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.log.WithError(err).Warn("metadata cache read failed")
		}
		return nil
	}
	return meta
}

// store caches a record, logging failures.
func (c *CachedAdapter) store(ctx context.Context, path string, meta *FileMetadata) {
	if err := c.cache.Set(ctx, c.cacheKey(path), meta); err != nil {
		c.log.WithError(err).Warn("metadata cache write failed")
	}
}

// invalidate drops a cached record, logging failures.
func (c *CachedAdapter) invalidate(ctx context.Context, path string) {
	if err := c.cache.Delete(ctx, c.cacheKey(path)); err != nil {
		c.log.WithError(err).Warn("metadata cache delete failed")
	}
}

// GetMetadata returns the cached record for path when present, otherwise
// probes the store and caches the result.
func (c *CachedAdapter) GetMetadata(ctx context.Context, path string) (*FileMetadata, error) {
	if meta := c.lookup(ctx, path); meta != nil {
		return meta, nil
	}
	meta, err := c.Adapter.GetMetadata(ctx, path)
	if err != nil {
		return nil, err
	}
	c.store(ctx, path, meta)
	return meta, nil
}

// GetSize routes through the cached GetMetadata.
func (c *CachedAdapter) GetSize(ctx context.Context, path string) (*FileMetadata, error) {
	return c.GetMetadata(ctx, path)
}

// GetMimetype routes through the cached GetMetadata.
func (c *CachedAdapter) GetMimetype(ctx context.Context, path string) (*FileMetadata, error) {
	return c.GetMetadata(ctx, path)
}

// GetTimestamp routes through the cached GetMetadata.
func (c *CachedAdapter) GetTimestamp(ctx context.Context, path string) (*FileMetadata, error) {
	return c.GetMetadata(ctx, path)
}

// Has treats a cached record as existence proof and falls back to the
// store probe on a miss.
func (c *CachedAdapter) Has(ctx context.Context, path string) (bool, error) {
	if meta := c.lookup(ctx, path); meta != nil {
		return true, nil
	}
	return c.Adapter.Has(ctx, path)
}

// Read fetches the blob and refreshes the cached record from the result.
func (c *CachedAdapter) Read(ctx context.Context, path string) (*FileMetadata, error) {
	meta, err := c.Adapter.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	c.store(ctx, path, meta)
	return meta, nil
}

// Write uploads and refreshes the cached record from the result.
func (c *CachedAdapter) Write(ctx context.Context, path string, contents []byte, opts UploadOptions) (*FileMetadata, error) {
	meta, err := c.Adapter.Write(ctx, path, contents, opts)
	if err != nil {
		return nil, err
	}
	c.store(ctx, path, meta)
	return meta, nil
}

// Update replaces the blob at path. Same routine as Write.
func (c *CachedAdapter) Update(ctx context.Context, path string, contents []byte, opts UploadOptions) (*FileMetadata, error) {
	return c.Write(ctx, path, contents, opts)
}

// WriteStream uploads from r and refreshes the cached record from the
// result.
func (c *CachedAdapter) WriteStream(ctx context.Context, path string, r io.Reader, opts UploadOptions) (*FileMetadata, error) {
	meta, err := c.Adapter.WriteStream(ctx, path, r, opts)
	if err != nil {
		return nil, err
	}
	c.store(ctx, path, meta)
	return meta, nil
}

// UpdateStream replaces the blob at path from r. Same routine as
// WriteStream.
func (c *CachedAdapter) UpdateStream(ctx context.Context, path string, r io.Reader, opts UploadOptions) (*FileMetadata, error) {
	return c.WriteStream(ctx, path, r, opts)
}

// Delete removes the blob and invalidates its cached record.
func (c *CachedAdapter) Delete(ctx context.Context, path string) (bool, error) {
	ok, err := c.Adapter.Delete(ctx, path)
	if err != nil {
		return ok, err
	}
	c.invalidate(ctx, path)
	return ok, nil
}

// DeleteDir removes every blob under dirname. The contained paths are not
// known to this layer without a second listing, so their cached records are
// left to expire with the TTL rather than invalidated eagerly.
func (c *CachedAdapter) DeleteDir(ctx context.Context, dirname string) (bool, error) {
	return c.Adapter.DeleteDir(ctx, dirname)
}

// Copy copies the blob and invalidates any stale record at the
// destination.
func (c *CachedAdapter) Copy(ctx context.Context, path, newpath string) (bool, error) {
	ok, err := c.Adapter.Copy(ctx, path, newpath)
	if err != nil {
		return ok, err
	}
	c.invalidate(ctx, newpath)
	return ok, nil
}

// Rename copies then deletes, invalidating both paths on success.
func (c *CachedAdapter) Rename(ctx context.Context, path, newpath string) (bool, error) {
	if ok, err := c.Copy(ctx, path, newpath); !ok {
		return false, err
	}
	return c.Delete(ctx, path)
}
