package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"tutor_match_server/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Init 连接 Redis 并返回带 worker pool 的缓存服务
// 未配置 host 时退回进程内缓存，仅适合单实例部署
func Init(cfg *config.RedisConfig) (AsyncCacheService, error) {
	if cfg.Host == "" {
		zap.L().Warn("redis host not configured, using in-process cache")
		return NewMemoryCache(cfg.WorkerNum, cfg.TaskChanSize), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.Db,
		PoolSize:     50,
		MinIdleConns: cfg.WorkerNum,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return NewRedisCache(client, cfg.WorkerNum, cfg.TaskChanSize), nil
}
