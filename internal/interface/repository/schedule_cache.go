package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"railmail-service/internal/domain/entity"
	"railmail-service/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

const scheduleKeyPrefix = "railmail:schedule:"

// RedisScheduleCache keeps network schedule results in Redis
type RedisScheduleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisScheduleCache creates a schedule cache. Entries expire after ttl.
func NewRedisScheduleCache(client *redis.Client, ttl time.Duration) repository.ScheduleCache {
	return &RedisScheduleCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns a cached schedule or repository.ErrNotFound
func (c *RedisScheduleCache) Get(ctx context.Context, trainNumber string) (*entity.TrainSchedule, error) {
	data, err := c.client.Get(ctx, scheduleKeyPrefix+trainNumber).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read cached schedule: %w", err)
	}

	var schedule entity.TrainSchedule
	if err := json.Unmarshal(data, &schedule); err != nil {
		return nil, fmt.Errorf("failed to decode cached schedule: %w", err)
	}
	return &schedule, nil
}

// Set stores a schedule under its train number
func (c *RedisScheduleCache) Set(ctx context.Context, schedule *entity.TrainSchedule) error {
	data, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("failed to encode schedule: %w", err)
	}
	if err := c.client.Set(ctx, scheduleKeyPrefix+schedule.TrainNumber, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache schedule: %w", err)
	}
	return nil
}
