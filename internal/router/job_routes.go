package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterJobRoutes 注册职位相关的公开路由
func (rt *Router) RegisterJobRoutes(rg *gin.RouterGroup) {
	h := rt.handlers.Job
	jobGroup := rg.Group("/job")
	{
		jobGroup.POST("/post", h.PostJob)      // 家长发布职位
		jobGroup.GET("/market", h.Marketplace) // 职位广场
		jobGroup.POST("/suggest", h.Suggest)   // AI 生成标题和价格
	}
	rg.GET("/fee/quote", h.QuoteFee) // 信息费试算
}
