// Package router 提供 HTTP 路由注册
// 本文件定义实时视图的 WebSocket 路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes 注册 WebSocket 路由
// 请求示例: ws://host:port/ws/view?view=student_orders&phone=13800000000
// 管理后台视图需带 ?token=，在 handler 中校验
func (rt *Router) RegisterWebSocketRoutes(rg *gin.RouterGroup) {
	rg.GET("/view", rt.handlers.Ws.View)
}
