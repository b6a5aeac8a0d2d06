package realtime

import (
	"sync"
)

// Hub 进程内的按表订阅中心
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]*Subscription
}

// NewHub 创建 Hub
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[uint64]*Subscription)}
}

// Subscription 一个订阅
// C 的缓冲为 1：订阅方处理期间到达的多次通知合并为一次
type Subscription struct {
	id     uint64
	table  string
	filter *Filter
	notify chan struct{}
	hub    *Hub
	once   sync.Once
}

// C 通知通道，Unsubscribe 后关闭
func (s *Subscription) C() <-chan struct{} {
	return s.notify
}

// Table 订阅的表
func (s *Subscription) Table() string {
	return s.table
}

// Unsubscribe 取消订阅，可重复调用
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.notify)
	})
}

// Subscribe 订阅某张表的变更，filter 为 nil 表示不过滤
func (h *Hub) Subscribe(table string, filter *Filter) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	sub := &Subscription{
		id:     h.nextID,
		table:  table,
		filter: filter,
		notify: make(chan struct{}, 1),
		hub:    h,
	}
	if h.subs[table] == nil {
		h.subs[table] = make(map[uint64]*Subscription)
	}
	h.subs[table][sub.id] = sub
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.subs[sub.table]; m != nil {
		delete(m, sub.id)
		if len(m) == 0 {
			delete(h.subs, sub.table)
		}
	}
}

// Dispatch 通知所有匹配的订阅，不阻塞；返回被通知的订阅数
func (h *Hub) Dispatch(ev ChangeEvent) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, sub := range h.subs[ev.Table] {
		if !sub.filter.Match(ev) {
			continue
		}
		select {
		case sub.notify <- struct{}{}:
		default:
			// 已有未处理的通知，合并
		}
		n++
	}
	return n
}

// Count 当前订阅数
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, m := range h.subs {
		n += len(m)
	}
	return n
}
