package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// DriverCacheTTL bounds snapshot staleness; availability changes frequently.
const DriverCacheTTL = 30 * time.Second

const driverCachePrefix = "cache:driver:"

// CachedDriver represents a cached driver entity.
type CachedDriver struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	Status      string  `json:"status"`
	IsAvailable bool    `json:"is_available"`
	Rating      float64 `json:"rating"`
}

// SetDriver stores a driver snapshot in cache.
func (s *CacheStore) SetDriver(ctx context.Context, driver *CachedDriver) error {
	key := driverCachePrefix + driver.ID
	data, err := json.Marshal(driver)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, DriverCacheTTL).Err()
}

// InvalidateDriver removes a driver from cache.
func (s *CacheStore) InvalidateDriver(ctx context.Context, driverID string) error {
	key := driverCachePrefix + driverID
	return s.client.Del(ctx, key).Err()
}

// GetDriversBatch retrieves multiple drivers from cache using pipeline.
// Returns a map of driverID -> CachedDriver, and a slice of missing IDs.
func (s *CacheStore) GetDriversBatch(ctx context.Context, driverIDs []string) (map[string]*CachedDriver, []string, error) {
	if len(driverIDs) == 0 {
		return make(map[string]*CachedDriver), nil, nil
	}

	// Use pipeline for batch get
	pipe := s.client.Pipeline()
	cmds := make(map[string]*redis.StringCmd, len(driverIDs))

	for _, id := range driverIDs {
		key := driverCachePrefix + id
		cmds[id] = pipe.Get(ctx, key)
	}

	// Pipeline returns redis.Nil when any key is missing; handled per-cmd.
	_, _ = pipe.Exec(ctx)

	result := make(map[string]*CachedDriver)
	var missing []string

	for id, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			missing = append(missing, id)
			continue
		}

		var driver CachedDriver
		if err := json.Unmarshal(data, &driver); err != nil {
			missing = append(missing, id)
			continue
		}
		result[id] = &driver
	}

	return result, missing, nil
}

// SetDriversBatch stores multiple drivers in cache using pipeline.
func (s *CacheStore) SetDriversBatch(ctx context.Context, drivers []*CachedDriver) error {
	if len(drivers) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()

	for _, driver := range drivers {
		key := driverCachePrefix + driver.ID
		data, err := json.Marshal(driver)
		if err != nil {
			continue // Skip invalid entries
		}
		pipe.Set(ctx, key, data, DriverCacheTTL)
	}

	_, err := pipe.Exec(ctx)
	return err
}
