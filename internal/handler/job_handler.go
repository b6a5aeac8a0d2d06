// Package handler 提供 HTTP 请求处理器
// 本文件处理职位相关的 API 请求：家长发布、职位广场、AI 建议、信息费试算和管理员审核
package handler

import (
	"tutor_match_server/internal/dto/request"
	"tutor_match_server/internal/service"

	"github.com/gin-gonic/gin"
)

// JobHandler 职位请求处理器
type JobHandler struct {
	jobSvc service.JobService
}

// NewJobHandler 创建职位处理器实例
func NewJobHandler(jobSvc service.JobService) *JobHandler {
	return &JobHandler{jobSvc: jobSvc}
}

// PostJob 家长发布职位
// POST /job/post
// 请求体: request.PostJobRequest
// 响应: respond.PostJobRespond（状态为 pending，等待管理员审核）
func (h *JobHandler) PostJob(c *gin.Context) {
	var req request.PostJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.jobSvc.PostJob(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Marketplace 职位广场
// GET /job/market?phone=xxx
// 带学生手机号时过滤已申请职位并标注推荐
func (h *JobHandler) Marketplace(c *gin.Context) {
	var req request.MarketplaceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.jobSvc.ListMarketplace(c.Request.Context(), req.Phone)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// QuoteFee 信息费试算
// GET /fee/quote?grade=高一&frequency=2&price=¥100/小时
func (h *JobHandler) QuoteFee(c *gin.Context) {
	var req request.FeeQuoteRequest
	if err := c.ShouldBind(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	HandleSuccess(c, h.jobSvc.QuoteFee(req.Grade, req.Frequency, req.Price))
}

// Suggest AI 生成职位标题和参考价格
// POST /job/suggest
func (h *JobHandler) Suggest(c *gin.Context) {
	var req request.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.jobSvc.SuggestJobDetails(c.Request.Context(), req.Grade, req.Subject)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ParentLogin 家长后台
// POST /parent/login
// 响应: respond.ParentDashboardRespond（职位及候选人简历）
func (h *JobHandler) ParentLogin(c *gin.Context) {
	var req request.ParentLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.jobSvc.ParentLogin(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ParentDeleteJob 家长删除自己的职位
// POST /parent/job/delete
func (h *JobHandler) ParentDeleteJob(c *gin.Context) {
	var req request.ParentDeleteJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.jobSvc.ParentDeleteJob(c.Request.Context(), req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// PendingJobs 待审核职位
// GET /admin/job/pending
func (h *JobHandler) PendingJobs(c *gin.Context) {
	data, err := h.jobSvc.ListPendingJobs(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateJobStatus 审核、拒绝职位
// POST /admin/job/status
func (h *JobHandler) UpdateJobStatus(c *gin.Context) {
	var req request.UpdateJobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.jobSvc.UpdateJobStatus(c.Request.Context(), req.JobId, req.Status); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// RelistJob 重新上架
// POST /admin/job/relist
func (h *JobHandler) RelistJob(c *gin.Context) {
	var req request.JobIdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.jobSvc.RelistJob(c.Request.Context(), req.JobId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// DeleteJob 删除职位及其订单
// POST /admin/job/delete
func (h *JobHandler) DeleteJob(c *gin.Context) {
	var req request.JobIdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.jobSvc.DeleteJob(c.Request.Context(), req.JobId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
