// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"tutor_match_server/internal/handler"
	"tutor_match_server/internal/infrastructure/metrics"

	"github.com/gin-gonic/gin"
)

// Router 路由管理器，持有注入的 Handler 聚合
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	rt.RegisterJobRoutes(api)     // 职位广场、发布、试算
	rt.RegisterStudentRoutes(api) // 学生登录、简历、申请、订单
	rt.RegisterParentRoutes(api)  // 家长后台
	rt.RegisterAdminRoutes(api)   // 管理后台（登录之外需要会话 Token）

	rt.RegisterWebSocketRoutes(r.Group("/ws"))

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}
