// Package handler 提供 HTTP 请求处理器
// 本文件处理实时视图的 WebSocket 连接
package handler

import (
	"tutor_match_server/internal/dto/request"
	"tutor_match_server/internal/gateway/websocket"
	"tutor_match_server/internal/infrastructure/middleware"
	"tutor_match_server/internal/realtime"
	"tutor_match_server/internal/service"
	"tutor_match_server/pkg/errorx"
	"tutor_match_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// WsHandler 实时视图处理器
type WsHandler struct {
	svc *service.Services
	hub *realtime.Hub
}

// NewWsHandler 创建实时视图处理器实例
func NewWsHandler(svc *service.Services, hub *realtime.Hub) *WsHandler {
	return &WsHandler{svc: svc, hub: hub}
}

// View 建立实时视图会话
// GET /ws/view?view=marketplace&phone=xxx
// 参数错误在升级前以普通 JSON 响应返回；升级后每次数据变化推送完整快照
func (h *WsHandler) View(c *gin.Context) {
	var req request.ViewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if req.View == websocket.ViewAdminDashboard {
		if _, err := jwt.ParseToken(middleware.BearerToken(c)); err != nil {
			HandleError(c, errorx.New(errorx.CodeUnauthorized, "请先登录管理后台"))
			return
		}
	}
	factory, err := websocket.NewFeedFactory(h.svc, h.hub, websocket.Params{
		View:     req.View,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	websocket.Serve(c, req.View, factory)
}
