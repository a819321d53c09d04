package cache

import (
	"encoding/json"
	"time"
)

// Cache is a best-effort key-value store with time-based expiry. Callers must
// treat every error as degradable: a cache failure never fails the operation
// that consulted it.
type Cache interface {
	// Get returns the value for key and whether it was present and unexpired
	Get(key string) (string, bool, error)

	// Set stores value under key with the given expiry
	Set(key, value string, ttl time.Duration) error

	// Delete removes a single key
	Delete(key string) error

	// DeletePattern removes every key matching a glob-style pattern
	DeletePattern(pattern string) error
}

// GetJSON reads key and unmarshals it into dest, reporting a hit.
func GetJSON(c Cache, key string, dest any) (bool, error) {
	value, ok, err := c.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(value), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and stores it under key.
func SetJSON(c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(key, string(data), ttl)
}
