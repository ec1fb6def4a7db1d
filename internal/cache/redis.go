package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	notificationsKeyFmt = "notifications:user:%d"
	reportKeyFmt        = "report:range:%s"
)

var client *redis.Client

// Init initializes the Redis connection. The server degrades gracefully
// when Redis is unavailable: every helper below is a no-op on a nil client.
func Init() error {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client (nil when cache is disabled)
func GetClient() *redis.Client {
	return client
}

// hashCredentials creates a hash of email+password for cache key
func hashCredentials(email, password string) string {
	h := sha256.New()
	h.Write([]byte(email + ":" + password))
	return "auth:" + hex.EncodeToString(h.Sum(nil))[:32]
}

// GetCachedAuth checks if credentials are cached and valid
func GetCachedAuth(ctx context.Context, email, password string) (int, bool) {
	if client == nil {
		return 0, false
	}
	key := hashCredentials(email, password)
	userID, err := client.Get(ctx, key).Int()
	if err != nil {
		return 0, false
	}
	return userID, true
}

// CacheAuth caches valid credentials for 15 minutes
func CacheAuth(ctx context.Context, email, password string, userID int) {
	if client == nil {
		return
	}
	key := hashCredentials(email, password)
	client.Set(ctx, key, userID, 15*time.Minute)
}

// InvalidateAuth removes cached auth for a credential pair (on password change)
func InvalidateAuth(ctx context.Context, email, password string) {
	if client == nil {
		return
	}
	key := hashCredentials(email, password)
	client.Del(ctx, key)
}

// GetCachedNotifications returns a user's cached notification feed
func GetCachedNotifications(ctx context.Context, userID int) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, fmt.Sprintf(notificationsKeyFmt, userID)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// CacheNotifications caches a user's notification feed for 30 seconds
func CacheNotifications(ctx context.Context, userID int, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, fmt.Sprintf(notificationsKeyFmt, userID), data, 30*time.Second)
}

// GetCachedReport returns a cached report summary for a range
func GetCachedReport(ctx context.Context, rng string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, fmt.Sprintf(reportKeyFmt, rng)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// CacheReport caches a report summary for 5 minutes
func CacheReport(ctx context.Context, rng string, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, fmt.Sprintf(reportKeyFmt, rng), data, 5*time.Minute)
}
