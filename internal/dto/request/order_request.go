package request

// ApplyRequest 学生申请职位
// 首次申请（手机号没有简历）时必须带上 Profile，至少填写姓名和学校
type ApplyRequest struct {
	JobId   int64           `json:"job_id" binding:"required"`
	Phone   string          `json:"phone"`
	Profile *ProfileRequest `json:"profile"`
}

// StudentOrdersRequest 学生查看自己的订单
type StudentOrdersRequest struct {
	Phone string `form:"phone" binding:"required,mobile"`
}

// ConfirmPaymentRequest 学生声明已支付信息费
type ConfirmPaymentRequest struct {
	OrderId int64  `json:"order_id" binding:"required"`
	Phone   string `json:"phone" binding:"required,mobile"`
}

// AdminOrdersRequest 管理员按状态筛选订单，status 可重复，为空表示全部
type AdminOrdersRequest struct {
	Statuses []string `form:"status"`
}

// UpdateOrderStatusRequest 管理员变更订单状态
type UpdateOrderStatusRequest struct {
	OrderId int64  `json:"order_id" binding:"required"`
	Status  string `json:"status" binding:"required"`
}
