package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs in seconds. County counts use the short TTL because every
// approval mutation invalidates the key anyway.
const (
	CacheTTLDefault = 3600 * time.Second
	CacheTTLShort   = 300 * time.Second
)

// CacheKeyCountiesWithCounts holds the county list with open-client counts.
const CacheKeyCountiesWithCounts = "counties_with_counts"

var Cache *redis.Client

// InitCache connects the aggregate cache. The cache is optional: if Redis is
// unreachable the API keeps running and every lookup is a miss.
func InitCache() {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		log.Println("REDIS_HOST not set, aggregate cache disabled")
		return
	}

	port, _ := strconv.Atoi(os.Getenv("REDIS_PORT"))
	if port == 0 {
		port = 6379
	}
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis ping failed, aggregate cache disabled: %v", err)
		return
	}

	Cache = client
	log.Println("Aggregate cache connected successfully")
}

// CacheGet loads a cached JSON value into dest. Returns false on a miss,
// on a decode error, or when the cache is disabled.
func CacheGet(ctx context.Context, key string, dest interface{}) bool {
	if Cache == nil {
		return false
	}
	data, err := Cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Cache get error for key %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("Cache decode error for key %s: %v", key, err)
		CacheDelete(ctx, key)
		return false
	}
	return true
}

// CacheSet stores a JSON value under key with the given TTL.
func CacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if Cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("Cache encode error for key %s: %v", key, err)
		return
	}
	if err := Cache.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("Cache set error for key %s: %v", key, err)
	}
}

// CacheDelete invalidates a key. Missing keys are not an error.
func CacheDelete(ctx context.Context, key string) {
	if Cache == nil {
		return
	}
	if err := Cache.Del(ctx, key).Err(); err != nil {
		log.Printf("Cache delete error for key %s: %v", key, err)
	}
}
