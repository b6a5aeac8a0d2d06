package handler

import (
	"tutor_match_server/internal/dto/request"
	"tutor_match_server/internal/service"

	"github.com/gin-gonic/gin"
)

// ProfileHandler 学生简历请求处理器
type ProfileHandler struct {
	profileSvc service.ProfileService
}

func NewProfileHandler(profileSvc service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc}
}

// Login 学生登录
// POST /student/login
// 手机号没有简历时 has_profile 为 false，前端在首次申请时收集简历
func (h *ProfileHandler) Login(c *gin.Context) {
	var req request.StudentLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.profileSvc.Login(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetProfile GET /student/profile?phone=xxx
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	var req request.PhoneRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.profileSvc.GetProfile(c.Request.Context(), req.Phone)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpsertProfile POST /student/profile
func (h *ProfileHandler) UpsertProfile(c *gin.Context) {
	var req request.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.profileSvc.UpsertProfile(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
