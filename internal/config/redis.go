package config

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the Redis instance backing rate limiting and
// the directory cache, using REDIS_ADDR, REDIS_PASSWORD and REDIS_DB.  A
// nil return means Redis is unreachable; both middlewares treat a nil
// client as "disabled", so the server still comes up without it.
func NewRedisClient() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     envStr("REDIS_ADDR", "localhost:6379"),
		Password: envStr("REDIS_PASSWORD", ""),
		DB:       envInt("REDIS_DB", 0),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable, caching and rate limiting disabled: %v", err)
		return nil
	}
	return client
}
