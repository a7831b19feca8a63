package redis

import (
	"context"
	"fmt"
	"time"

	redis "github.com/go-redis/redis/v8"
)

func Set(ctx context.Context, key, value string, expiration time.Duration) error {
	inst := GetRedisInst()
	if inst == nil {
		return nil
	}

	err := inst.Set(ctx, key, value, expiration).Err()
	if err != nil {
		return fmt.Errorf("failed to set %s: %v", key, err)
	}
	return nil
}

func Get(ctx context.Context, key string) (string, error) {
	inst := GetRedisInst()
	if inst == nil {
		return "", redis.Nil
	}

	val, err := inst.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", redis.Nil
	} else if err != nil {
		return "", fmt.Errorf("failed to get %s: %v", key, err)
	}

	return val, nil
}

func Exists(ctx context.Context, key string) (bool, error) {
	inst := GetRedisInst()
	if inst == nil {
		return false, nil
	}

	val, err := inst.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %v", key, err)
	}

	return val > 0, nil
}
