package request

// AdminLoginRequest 管理入口口令校验
// Surface 区分桌面端与移动端，两者口令独立配置
type AdminLoginRequest struct {
	Surface string `json:"surface" binding:"required,oneof=desktop mobile"`
	Code    string `json:"code" binding:"required"`
}
