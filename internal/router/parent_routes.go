package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterParentRoutes 注册家长后台路由，每个请求都带联系电话和管理密码
func (rt *Router) RegisterParentRoutes(rg *gin.RouterGroup) {
	parentGroup := rg.Group("/parent")
	{
		parentGroup.POST("/login", rt.handlers.Job.ParentLogin)
		parentGroup.POST("/job/delete", rt.handlers.Job.ParentDeleteJob)
		parentGroup.POST("/order/status", rt.handlers.Order.ParentDecide)
	}
}
