package handler

import (
	"tutor_match_server/internal/dto/request"
	"tutor_match_server/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderHandler 订单请求处理器
type OrderHandler struct {
	orderSvc service.OrderService
}

// NewOrderHandler 创建订单处理器实例
func NewOrderHandler(orderSvc service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// Apply 学生申请职位
// POST /student/apply
// 首次申请时请求体需带上简历
func (h *OrderHandler) Apply(c *gin.Context) {
	var req request.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.orderSvc.SubmitApplication(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// StudentOrders 学生订单页
// GET /student/orders?phone=xxx
func (h *OrderHandler) StudentOrders(c *gin.Context) {
	var req request.StudentOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.orderSvc.ListOrdersForStudent(c.Request.Context(), req.Phone)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ConfirmPayment 学生声明已支付信息费
// POST /student/order/pay
func (h *OrderHandler) ConfirmPayment(c *gin.Context) {
	var req request.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.orderSvc.ConfirmPayment(c.Request.Context(), req.OrderId, req.Phone); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// ParentDecide 家长同意或拒绝候选人
// POST /parent/order/status
func (h *OrderHandler) ParentDecide(c *gin.Context) {
	var req request.ParentDecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.orderSvc.ParentUpdateOrderStatus(c.Request.Context(), req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// AdminOrders 管理员按状态查询订单
// GET /admin/order/list?status=applying&status=parent_approved
func (h *OrderHandler) AdminOrders(c *gin.Context) {
	var req request.AdminOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.orderSvc.ListOrdersForAdmin(c.Request.Context(), req.Statuses)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateOrderStatus 管理员变更订单状态
// POST /admin/order/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req request.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.orderSvc.UpdateOrderStatus(c.Request.Context(), req.OrderId, req.Status); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
