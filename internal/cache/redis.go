package cache

import (
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"
)

// RedisCache is a Redis implementation of Cache backed by a redigo pool.
type RedisCache struct {
	pool *redis.Pool
}

// NewRedisCache creates a RedisCache connected to addr (host:port).
func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{
		pool: &redis.Pool{
			MaxIdle:     10,
			IdleTimeout: 240 * time.Second,
			Dial: func() (redis.Conn, error) {
				return redis.Dial("tcp", addr)
			},
		},
	}
}

// Get returns the value for key and whether it was present
func (c *RedisCache) Get(key string) (string, bool, error) {
	conn := c.pool.Get()
	defer conn.Close()

	value, err := redis.String(conn.Do("GET", key))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key with the given expiry
func (c *RedisCache) Set(key, value string, ttl time.Duration) error {
	conn := c.pool.Get()
	defer conn.Close()

	if ttl > 0 {
		_, err := conn.Do("SETEX", key, int(ttl.Seconds()), value)
		return err
	}
	_, err := conn.Do("SET", key, value)
	return err
}

// Delete removes a single key
func (c *RedisCache) Delete(key string) error {
	conn := c.pool.Get()
	defer conn.Close()

	_, err := conn.Do("DEL", key)
	return err
}

// DeletePattern removes every key matching a glob-style pattern using SCAN,
// so large keyspaces are walked without blocking the server.
func (c *RedisCache) DeletePattern(pattern string) error {
	conn := c.pool.Get()
	defer conn.Close()

	cursor := 0
	for {
		values, err := redis.Values(conn.Do("SCAN", cursor, "MATCH", pattern, "COUNT", 100))
		if err != nil {
			return err
		}

		var keys []string
		if _, err := redis.Scan(values, &cursor, &keys); err != nil {
			return err
		}

		if len(keys) > 0 {
			args := make([]interface{}, len(keys))
			for i, k := range keys {
				args[i] = k
			}
			if _, err := conn.Do("DEL", args...); err != nil {
				return err
			}
		}

		if cursor == 0 {
			return nil
		}
	}
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.pool.Close()
}
