// Package live 实时视图：订阅表变更，收到通知后重新执行列表查询
// 写操作走 Mutate：先改本地快照让界面立即响应，写库失败时重新拉取权威数据
package live

import (
	"context"
	"sync"

	"tutor_match_server/internal/infrastructure/metrics"
	"tutor_match_server/internal/realtime"

	"go.uber.org/zap"
)

// QueryFunc 视图的列表查询
type QueryFunc[T any] func(ctx context.Context) (T, error)

// View 一个实时视图
// onUpdate 在每次快照变化后调用（初次加载、通知刷新、乐观更新、失败回滚）
type View[T any] struct {
	name     string
	hub      *realtime.Hub
	query    QueryFunc[T]
	onUpdate func(T)

	mu       sync.RWMutex
	snapshot T
	lastErr  error

	refreshMu sync.Mutex
	subs      []*realtime.Subscription
	wg        sync.WaitGroup
	cancel    context.CancelFunc
	started   bool
	closeOnce sync.Once
}

// New 创建视图，Watch 声明依赖的表后再 Start
func New[T any](hub *realtime.Hub, name string, query QueryFunc[T], onUpdate func(T)) *View[T] {
	if onUpdate == nil {
		onUpdate = func(T) {}
	}
	return &View[T]{name: name, hub: hub, query: query, onUpdate: onUpdate}
}

// Watch 订阅一张表，filter 为 nil 表示整表
func (v *View[T]) Watch(table string, filter *realtime.Filter) *View[T] {
	v.subs = append(v.subs, v.hub.Subscribe(table, filter))
	return v
}

// Start 先加载一次快照，之后每次通知都重新查询，直到 ctx 取消或 Close
func (v *View[T]) Start(ctx context.Context) error {
	ctx, v.cancel = context.WithCancel(ctx)
	v.started = true
	metrics.LiveViewOpened()
	if err := v.Refresh(ctx); err != nil {
		v.Close()
		return err
	}
	for _, sub := range v.subs {
		v.wg.Add(1)
		go v.loop(ctx, sub)
	}
	return nil
}

func (v *View[T]) loop(ctx context.Context, sub *realtime.Subscription) {
	defer v.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.C():
			if !ok {
				return
			}
			if err := v.Refresh(ctx); err != nil && ctx.Err() == nil {
				zap.L().Warn("live view refresh failed",
					zap.String("view", v.name),
					zap.String("table", sub.Table()),
					zap.Error(err),
				)
			}
		}
	}
}

// Refresh 重新查询并替换快照；失败时保留旧快照
func (v *View[T]) Refresh(ctx context.Context) error {
	v.refreshMu.Lock()
	defer v.refreshMu.Unlock()

	data, err := v.query(ctx)
	v.mu.Lock()
	v.lastErr = err
	if err == nil {
		v.snapshot = data
	}
	v.mu.Unlock()
	if err != nil {
		return err
	}
	v.onUpdate(data)
	return nil
}

// Snapshot 当前快照
func (v *View[T]) Snapshot() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snapshot
}

// Err 最近一次查询的错误
func (v *View[T]) Err() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.lastErr
}

// Mutate 乐观更新
// optimistic 基于当前快照返回新快照，不能原地修改入参；
// write 失败时重新拉取权威快照，并把 write 的原始错误返回给调用方
func (v *View[T]) Mutate(ctx context.Context, optimistic func(T) T, write func(ctx context.Context) error) error {
	if optimistic != nil {
		v.mu.Lock()
		v.snapshot = optimistic(v.snapshot)
		next := v.snapshot
		v.mu.Unlock()
		v.onUpdate(next)
	}

	err := write(ctx)
	if err == nil {
		return nil
	}
	if rerr := v.Refresh(ctx); rerr != nil {
		zap.L().Warn("live view reconcile failed", zap.String("view", v.name), zap.Error(rerr))
	}
	return err
}

// Close 取消订阅并等待刷新协程退出，可重复调用
func (v *View[T]) Close() {
	v.closeOnce.Do(func() {
		if v.cancel != nil {
			v.cancel()
		}
		for _, sub := range v.subs {
			sub.Unsubscribe()
		}
		v.wg.Wait()
		if v.started {
			metrics.LiveViewClosed()
		}
	})
}
