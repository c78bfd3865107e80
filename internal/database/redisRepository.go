package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/assitosante/notification-agent/internal/entity"

	"github.com/go-redis/redis/v8"
)

type redisInboxCache struct {
	client *redis.Client
	userID string
	ttl    time.Duration
}

func NewRedisInboxCache(client *redis.Client, userID string, ttl time.Duration) InboxCache {
	return &redisInboxCache{client: client, userID: userID, ttl: ttl}
}

func (r *redisInboxCache) key() string {
	return fmt.Sprintf("notifications:inbox:%s", r.userID)
}

func (r *redisInboxCache) Save(ctx context.Context, notifications []entity.Notification) error {
	data, err := json.Marshal(notifications)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, r.key(), data, r.ttl).Err()
}

func (r *redisInboxCache) Load(ctx context.Context) ([]entity.Notification, error) {
	data, err := r.client.Get(ctx, r.key()).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var notifications []entity.Notification
	if err := json.Unmarshal([]byte(data), &notifications); err != nil {
		return nil, err
	}

	return notifications, nil
}
