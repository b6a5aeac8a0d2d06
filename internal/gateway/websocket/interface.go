package websocket

import "context"

// 下行帧类型
const (
	FrameSnapshot = "snapshot" // 完整快照
	FrameAck      = "ack"      // 指令已执行
	FrameError    = "error"    // 指令失败或会话无法建立
)

// 上行指令
const (
	ActionRefresh     = "refresh"
	ActionUpdateOrder = "update_order"
	ActionUpdateJob   = "update_job"
)

// Frame 推送给浏览器的消息
type Frame struct {
	Type string `json:"type"`
	View string `json:"view"`
	Code int    `json:"code,omitempty"`
	Msg  string `json:"msg,omitempty"`
	Data any    `json:"data,omitempty"`
}

// Command 浏览器发来的指令，状态变更只有管理后台会话支持
type Command struct {
	Action string `json:"action"`
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// Feed 会话背后的实时数据源
// Start 推送首个快照后开始监听变更，Close 可重复调用
type Feed interface {
	Start(ctx context.Context) error
	Handle(ctx context.Context, cmd Command) error
	Close()
}

// FeedFactory 连接升级后用推送函数构造 Feed
type FeedFactory func(push func(data any)) Feed
