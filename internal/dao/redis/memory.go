package redis

import (
	"context"
	"sync"
	"time"
)

// MemoryCache 进程内缓存，未配置 Redis 的单机部署和测试使用
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
	*taskPool
}

type memoryItem struct {
	value    string
	expireAt time.Time // 零值表示不过期
}

// NewMemoryCache 创建进程内缓存
func NewMemoryCache(workerNum, taskChanSize int) *MemoryCache {
	return &MemoryCache{
		items:    make(map[string]memoryItem),
		now:      time.Now,
		taskPool: newTaskPool(workerNum, taskChanSize),
	}
}

// getLocked 调用方持有锁；过期的键顺便删除
func (m *MemoryCache) getLocked(key string) (string, bool) {
	item, ok := m.items[key]
	if !ok {
		return "", false
	}
	if !item.expireAt.IsZero() && !m.now().Before(item.expireAt) {
		delete(m.items, key)
		return "", false
	}
	return item.value, true
}

func (m *MemoryCache) expireAt(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}

func (m *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = memoryItem{value: value, expireAt: m.expireAt(ttl)}
	return nil
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, _ := m.getLocked(key)
	return v, nil
}

func (m *MemoryCache) SetNX(_ context.Context, key string, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.getLocked(key); ok {
		return false, nil
	}
	m.items[key] = memoryItem{value: value, expireAt: m.expireAt(ttl)}
	return true, nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

var _ AsyncCacheService = (*MemoryCache)(nil)
