package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// PresenceStore tracks which users currently hold a live WebSocket
// connection. The push dispatcher consults it: a message to a user with no
// connection triggers a push notification instead of relying on fan-out.
type PresenceStore struct {
	client *goredis.Client
	ttl    time.Duration
}

const (
	presenceOnlineSet        = "presence:online"
	presenceConnectionPrefix = "connections:"
)

func NewPresenceStore(client *goredis.Client, ttl time.Duration) *PresenceStore {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &PresenceStore{client: client, ttl: ttl}
}

// TrackConnection records one live connection for a user and marks the user
// online.
func (p *PresenceStore) TrackConnection(ctx context.Context, userID int64, clientID string) error {
	key := connectionsKey(userID)

	pipe := p.client.Pipeline()
	pipe.SAdd(ctx, key, clientID)
	pipe.Expire(ctx, key, p.ttl)
	pipe.SAdd(ctx, presenceOnlineSet, userID)
	_, err := pipe.Exec(ctx)
	return err
}

// RemoveConnection drops one connection; when it was the user's last, the
// user leaves the online set.
func (p *PresenceStore) RemoveConnection(ctx context.Context, userID int64, clientID string) error {
	key := connectionsKey(userID)

	if err := p.client.SRem(ctx, key, clientID).Err(); err != nil {
		return err
	}
	count, err := p.client.SCard(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 0 {
		return p.client.SRem(ctx, presenceOnlineSet, userID).Err()
	}
	return nil
}

// Heartbeat refreshes the connection-set TTL so an idle but connected client
// stays online.
func (p *PresenceStore) Heartbeat(ctx context.Context, userID int64) error {
	return p.client.Expire(ctx, connectionsKey(userID), p.ttl).Err()
}

// IsOnline reports whether the user holds at least one live connection, read
// from the TTL'd connection set. A client that died without deregistering
// goes offline when its set expires; the stale roster entry is pruned here.
func (p *PresenceStore) IsOnline(ctx context.Context, userID int64) (bool, error) {
	count, err := p.client.SCard(ctx, connectionsKey(userID)).Result()
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := p.client.SRem(ctx, presenceOnlineSet, userID).Err(); err != nil {
		return false, err
	}
	return false, nil
}

func (p *PresenceStore) OnlineCount(ctx context.Context) (int64, error) {
	return p.client.SCard(ctx, presenceOnlineSet).Result()
}

func connectionsKey(userID int64) string {
	return fmt.Sprintf("%s%d", presenceConnectionPrefix, userID)
}
