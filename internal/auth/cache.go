package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

type CachedSession struct {
	AdminID string `json:"adminId"`
	Name    string `json:"name"`
}

// SessionCache is a read-through cache in front of the session table. The
// TTL only bounds how long a logout issued elsewhere can go unnoticed;
// session validity itself lives in the store.
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionCache(client *redis.Client, ttl time.Duration) *SessionCache {
	return &SessionCache{client: client, ttl: ttl}
}

func (c *SessionCache) Get(ctx context.Context, token string) (CachedSession, bool) {
	if c == nil || c.client == nil {
		return CachedSession{}, false
	}
	raw, err := c.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		return CachedSession{}, false
	}
	var session CachedSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return CachedSession{}, false
	}
	return session, true
}

// Set is best-effort; a cache write failure never fails the request.
func (c *SessionCache) Set(ctx context.Context, token string, session CachedSession) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, sessionKeyPrefix+token, raw, c.ttl).Err()
}

func (c *SessionCache) Delete(ctx context.Context, token string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, sessionKeyPrefix+token).Err()
}
