package request

// ViewRequest 建立实时视图会话
// 管理后台视图的 Token 放在 ?token=，握手时浏览器无法自定义请求头
type ViewRequest struct {
	View     string `form:"view" binding:"required,oneof=marketplace student_orders parent_jobs admin_dashboard"`
	Phone    string `form:"phone"`
	Password string `form:"password"`
}
