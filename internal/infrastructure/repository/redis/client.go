package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/domain"
)

func ConnectToRedis(addr string, database int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   database,
	})

	ctx, cancelFunc := context.WithTimeout(context.Background(), time.Minute*5)
	defer cancelFunc()

	_, err := rdb.Ping(ctx).Result()
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeExternal, "failed to connect to redis", err)
	}

	return rdb, nil
}
