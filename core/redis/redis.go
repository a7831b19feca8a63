package redis

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/wavetradeapp/wave_trader/config"
	"github.com/wavetradeapp/wave_trader/utils/logger"

	redis "github.com/go-redis/redis/v8"
)

const Nil = redis.Nil

// one DB one client
var redisClient *redis.Client
var once sync.Once

// Enabled reports whether a redis host is configured. Callers skip
// caching entirely when it is not.
func Enabled() bool {
	return config.GetRedisConfig().Host != ""
}

func GetRedisInst() *redis.Client {
	once.Do(func() {
		redisConfig := config.GetRedisConfig()
		if redisConfig.Host == "" {
			return
		}

		options := &redis.Options{
			Addr:         redisConfig.Host,
			Password:     redisConfig.Password,
			DB:           int(redisConfig.DB),
			MinIdleConns: int(redisConfig.MinIdleConns),
			PoolSize:     100,
		}

		client := redis.NewClient(options)

		pong, err := client.Ping(context.Background()).Result()
		if err != nil {
			logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err}).Error("connect redis failed")
			return
		}

		logger.Logrus.WithFields(logrus.Fields{"PongMsg": pong}).Info("connect redis success")

		redisClient = client
	})
	return redisClient
}
