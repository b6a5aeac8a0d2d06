// Package redis 定义缓存服务接口及其 Redis 实现
// Service 层依赖接口而非具体实现
package redis

import (
	"context"
	"time"
)

// CacheService 缓存服务接口
type CacheService interface {
	// Set 设置键值对并指定过期时间
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Get 获取键对应的值（键不存在返回空字符串和 nil）
	Get(ctx context.Context, key string) (string, error)
	// SetNX 键不存在时写入并返回 true，已存在返回 false
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)

	// Delete 删除键（如果存在）
	Delete(ctx context.Context, key string) error
}

// AsyncCacheService 在 CacheService 之上提供后台任务池
// 缓存失效、短信通知等不影响响应的工作通过 SubmitTask 异步执行
type AsyncCacheService interface {
	CacheService
	// SubmitTask 提交异步任务，队列满时同步执行
	SubmitTask(action func())
	// Close 停止接收任务并等待已提交的任务执行完
	Close()
}
