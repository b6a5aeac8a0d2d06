package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterStudentRoutes 注册学生相关路由
// 学生没有会话，凭手机号（和密码）识别
func (rt *Router) RegisterStudentRoutes(rg *gin.RouterGroup) {
	studentGroup := rg.Group("/student")
	{
		studentGroup.POST("/login", rt.handlers.Profile.Login)
		studentGroup.GET("/profile", rt.handlers.Profile.GetProfile)
		studentGroup.POST("/profile", rt.handlers.Profile.UpsertProfile)

		studentGroup.POST("/apply", rt.handlers.Order.Apply)
		studentGroup.GET("/orders", rt.handlers.Order.StudentOrders)
		studentGroup.POST("/order/pay", rt.handlers.Order.ConfirmPayment)
	}
}
