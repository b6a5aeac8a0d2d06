// Package sms 订单状态变更的短信通知
// 配置了阿里云 AccessKey 时调用阿里云短信，否则只写日志
package sms

import "context"

// Kind 通知类型，对应短信模板里的 kind 变量
type Kind string

const (
	KindNewCandidate    Kind = "new_candidate"    // 通知家长有新的申请
	KindPayRequired     Kind = "pay_required"     // 家长已同意，提醒学生支付信息费
	KindContactUnlocked Kind = "contact_unlocked" // 终审通过，学生可查看家长联系方式
)

// Notice 一条待发送的通知
// Ref 用于去重，同一 Ref 在去重窗口内只发送一次
type Notice struct {
	Phone string
	Kind  Kind
	Ref   string
	Title string // 职位标题，填入模板
}

// Notifier 短信通知接口
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}
