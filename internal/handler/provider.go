// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
// 遵循依赖倒置原则，通过构造函数注入 Service 依赖
package handler

import (
	"tutor_match_server/internal/realtime"
	"tutor_match_server/internal/service"
)

// Handlers 聚合所有 Handler 实例
// 作为依赖注入的入口，Router 层通过此结构访问各个 Handler
type Handlers struct {
	Job     *JobHandler
	Order   *OrderHandler
	Profile *ProfileHandler
	Admin   *AdminHandler
	Ws      *WsHandler
}

// NewHandlers 创建并注入所有 Handler 实例
// 实时视图需要 hub 订阅本实例收到的变更通知
func NewHandlers(svc *service.Services, hub *realtime.Hub) *Handlers {
	return &Handlers{
		Job:     NewJobHandler(svc.Job),
		Order:   NewOrderHandler(svc.Order),
		Profile: NewProfileHandler(svc.Profile),
		Admin:   NewAdminHandler(svc.Admin),
		Ws:      NewWsHandler(svc, hub),
	}
}
