// Package router 提供 HTTP 路由注册
// 本文件定义管理员相关的路由
package router

import (
	"tutor_match_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAdminRoutes 注册管理员相关路由
// 除登录外都需要会话 Token
func (rt *Router) RegisterAdminRoutes(rg *gin.RouterGroup) {
	adminGroup := rg.Group("/admin")
	adminGroup.POST("/login", rt.handlers.Admin.Login)

	authed := adminGroup.Group("")
	authed.Use(middleware.AdminAuth())
	{
		authed.GET("/dashboard", rt.handlers.Admin.Dashboard)

		// ===== 职位审核 =====
		jobGroup := authed.Group("/job")
		{
			jobGroup.GET("/pending", rt.handlers.Job.PendingJobs)     // 待审核职位
			jobGroup.POST("/status", rt.handlers.Job.UpdateJobStatus) // 上架 / 拒绝
			jobGroup.POST("/relist", rt.handlers.Job.RelistJob)       // 重新上架
			jobGroup.POST("/delete", rt.handlers.Job.DeleteJob)       // 删除职位及订单
		}

		// ===== 订单审核 =====
		orderGroup := authed.Group("/order")
		{
			orderGroup.GET("/list", rt.handlers.Order.AdminOrders)          // 按状态查询
			orderGroup.POST("/status", rt.handlers.Order.UpdateOrderStatus) // 变更状态
		}
	}
}
