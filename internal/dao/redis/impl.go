package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	"tutor_match_server/pkg/errorx"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache 基于 go-redis 的缓存实现，自带一个 worker pool
type RedisCache struct {
	client *redis.Client
	*taskPool
}

// NewRedisCache 创建 Redis 缓存实例并启动 workerNum 个后台 worker
func NewRedisCache(client *redis.Client, workerNum, taskChanSize int) *RedisCache {
	return &RedisCache{
		client:   client,
		taskPool: newTaskPool(workerNum, taskChanSize),
	}
}

func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis set key %s", key)
	}
	return nil
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", errorx.Wrapf(err, errorx.CodeCacheError, "redis get key %s", key)
	}
	return value, nil
}

func (r *RedisCache) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, errorx.Wrapf(err, errorx.CodeCacheError, "redis setnx key %s", key)
	}
	return ok, nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Unlink(ctx, key).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis unlink key %s", key)
	}
	return nil
}

// Close 停止 worker 后关闭连接
func (r *RedisCache) Close() {
	r.taskPool.Close()
	if err := r.client.Close(); err != nil {
		zap.L().Warn("close redis client", zap.Error(err))
	}
}

var _ AsyncCacheService = (*RedisCache)(nil)

// taskPool 固定数量 worker 消费的任务队列
type taskPool struct {
	taskChan chan func()
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
}

func newTaskPool(workerNum, taskChanSize int) *taskPool {
	if workerNum <= 0 {
		workerNum = 1
	}
	p := &taskPool{taskChan: make(chan func(), taskChanSize)}
	p.wg.Add(workerNum)
	for i := 0; i < workerNum; i++ {
		go p.worker()
	}
	zap.L().Info("cache workers started", zap.Int("workers", workerNum), zap.Int("buffer", taskChanSize))
	return p
}

func (p *taskPool) worker() {
	defer p.wg.Done()
	for task := range p.taskChan {
		p.run(task)
	}
}

// run 单个任务 panic 不影响 worker
func (p *taskPool) run(task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("cache task panic", zap.Any("recover", rec))
		}
	}()
	task()
}

// SubmitTask 队列满或已关闭时降级为同步执行
func (p *taskPool) SubmitTask(action func()) {
	if action == nil {
		return
	}
	p.mu.RLock()
	if !p.closed {
		select {
		case p.taskChan <- action:
			p.mu.RUnlock()
			return
		default:
			zap.L().Warn("cache task channel full, executing synchronously")
		}
	}
	p.mu.RUnlock()
	p.run(action)
}

func (p *taskPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.taskChan)
	p.mu.Unlock()
	p.wg.Wait()
}
