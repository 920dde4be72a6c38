package support

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisDialTimeout = 5 * time.Second

var (
	redisMu      sync.Mutex
	redisClients = make(map[string]*redis.Client)
)

// GetRedisClient returns a shared client for the given URL, dialing and
// pinging it on first use.
func GetRedisClient(url string) (*redis.Client, error) {
	redisMu.Lock()
	defer redisMu.Unlock()

	if client, ok := redisClients[url]; ok {
		return client, nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL %q: %w", url, err)
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	redisClients[url] = client
	return client, nil
}

// CloseRedisClients closes every shared client. Safe to call on shutdown even
// when no client was ever dialed.
func CloseRedisClients() error {
	redisMu.Lock()
	defer redisMu.Unlock()

	var firstErr error
	for url, client := range redisClients {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(redisClients, url)
	}
	return firstErr
}
