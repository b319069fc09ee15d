package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	portsclients "github.com/contactkeeper/contacts_backend/internal/core/ports/clients"
	"github.com/contactkeeper/contacts_backend/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

// snapshotVersion tags stored entries. A mismatch (after a schema change)
// reads as a cache miss instead of a decode of stale bytes.
const snapshotVersion = 1

const keyPrefix = "user:"

// userSnapshot is the authorization subset of a user stored in the cache.
// The password hash and refresh token deliberately never enter the cache;
// the store stays authoritative for both.
type userSnapshot struct {
	Version   int     `json:"v"`
	UserID    string  `json:"user_id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Confirmed bool    `json:"confirmed"`
	Avatar    *string `json:"avatar,omitempty"`
}

type UserCache struct {
	client *redis.Client
}

func NewUserCache(client *redis.Client) portsclients.UserCache {
	return &UserCache{client: client}
}

var _ portsclients.UserCache = (*UserCache)(nil)

// Get returns (nil, nil) on a miss. A Redis error or an undecodable/outdated
// entry is reported so the caller can log it, but callers must treat any
// error identically to a miss.
func (c *UserCache) Get(ctx context.Context, email string) (*domain.User, error) {
	raw, err := c.client.Get(ctx, keyPrefix+email).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get failed: %w", err)
	}

	var snap userSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("cache entry undecodable: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, nil
	}

	return &domain.User{
		UserID:    snap.UserID,
		Username:  snap.Username,
		Email:     snap.Email,
		Confirmed: snap.Confirmed,
		Avatar:    snap.Avatar,
	}, nil
}

func (c *UserCache) Set(ctx context.Context, user *domain.User, ttl time.Duration) error {
	snap := userSnapshot{
		Version:   snapshotVersion,
		UserID:    user.UserID,
		Username:  user.Username,
		Email:     user.Email,
		Confirmed: user.Confirmed,
		Avatar:    user.Avatar,
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode user snapshot: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+user.Email, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

func (c *UserCache) Invalidate(ctx context.Context, email string) error {
	if err := c.client.Del(ctx, keyPrefix+email).Err(); err != nil {
		return fmt.Errorf("cache invalidate failed: %w", err)
	}
	return nil
}
