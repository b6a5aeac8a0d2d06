package handler

import (
	"tutor_match_server/internal/dto/request"
	"tutor_match_server/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler 管理入口请求处理器
type AdminHandler struct {
	adminSvc service.AdminService
}

// NewAdminHandler 创建管理入口处理器实例
func NewAdminHandler(adminSvc service.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

// Login 管理员口令登录
// POST /admin/login
// 请求体: request.AdminLoginRequest
// 响应: respond.AdminLoginRespond（会话 Token 及过期时间）
func (h *AdminHandler) Login(c *gin.Context) {
	var req request.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.adminSvc.Login(c.Request.Context(), req.Surface, req.Code)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Dashboard 管理后台
// GET /admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	data, err := h.adminSvc.Dashboard(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
