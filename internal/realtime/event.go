// Package realtime 表变更通知：本地 Hub 按表分发，Broker 负责跨实例投递
// 通知只表示“某张表变了”，订阅方收到后自行重新查询
package realtime

import (
	"time"

	"tutor_match_server/pkg/util/snowflake"
)

// 被订阅的表
const (
	TableJobs     = "jobs"
	TableOrders   = "orders"
	TableProfiles = "profiles"
)

// Op 变更类型
type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// ChangeEvent 一次写操作产生的变更事件
// Columns 只携带用于过滤的列（如 student_contact、job_id），不保证是完整行
type ChangeEvent struct {
	ID      string            `json:"id"`
	Origin  string            `json:"origin"` // 产生事件的实例
	Table   string            `json:"table"`
	Op      Op                `json:"op"`
	Columns map[string]string `json:"columns,omitempty"`
	At      time.Time         `json:"at"`
}

// NewEvent 生成带雪花 ID 的事件
func NewEvent(table string, op Op, columns map[string]string) ChangeEvent {
	return ChangeEvent{
		ID:      snowflake.GenerateIDString(),
		Table:   table,
		Op:      op,
		Columns: columns,
		At:      time.Now(),
	}
}

// Filter 单列等值过滤
type Filter struct {
	Column string
	Value  string
}

// Eq 构造过滤条件
func Eq(column, value string) *Filter {
	return &Filter{Column: column, Value: value}
}

// Match 事件不带该列时视为命中，宁可多刷新一次
func (f *Filter) Match(ev ChangeEvent) bool {
	if f == nil {
		return true
	}
	v, ok := ev.Columns[f.Column]
	return !ok || v == f.Value
}
