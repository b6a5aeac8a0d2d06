package request

// PostJobRequest 家长发布家教职位
// 必填项和手机号格式在 Service 层校验，提示文案与前端保持一致
type PostJobRequest struct {
	Title          string `json:"title"`
	Grade          string `json:"grade"`
	Subject        string `json:"subject"`
	Price          string `json:"price"`
	Frequency      int    `json:"frequency" binding:"omitempty,min=1,max=7"`
	Address        string `json:"address"`
	ContactName    string `json:"contact_name"`
	ContactPhone   string `json:"contact_phone"`
	ManagePassword string `json:"manage_password"`
	SexRequirement string `json:"sex_requirement" binding:"omitempty,oneof=male female unlimited"`
}

// MarketplaceRequest 职位广场；带上学生手机号时过滤已申请职位并标注推荐
type MarketplaceRequest struct {
	Phone string `form:"phone" binding:"omitempty,mobile"`
}

// JobIdRequest 只带职位 ID 的请求
type JobIdRequest struct {
	JobId int64 `json:"job_id" form:"job_id" binding:"required"`
}

// UpdateJobStatusRequest 管理员审核/重新上架职位
type UpdateJobStatusRequest struct {
	JobId  int64  `json:"job_id" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// SuggestRequest AI 生成职位标题与价格
type SuggestRequest struct {
	Grade   string `json:"grade" binding:"required"`
	Subject string `json:"subject" binding:"required"`
}

// FeeQuoteRequest 信息费试算
type FeeQuoteRequest struct {
	Grade     string `form:"grade" json:"grade"`
	Frequency int    `form:"frequency" json:"frequency"`
	Price     string `form:"price" json:"price"`
}

// ParentLoginRequest 家长凭联系电话和管理密码登录
type ParentLoginRequest struct {
	Phone    string `json:"phone" binding:"required,mobile"`
	Password string `json:"password" binding:"required"`
}

// ParentDecideRequest 家长同意或拒绝候选人
type ParentDecideRequest struct {
	Phone    string `json:"phone" binding:"required,mobile"`
	Password string `json:"password" binding:"required"`
	OrderId  int64  `json:"order_id" binding:"required"`
	Status   string `json:"status" binding:"required,oneof=parent_approved rejected"`
}

// ParentDeleteJobRequest 家长删除自己发布的职位
type ParentDeleteJobRequest struct {
	Phone    string `json:"phone" binding:"required,mobile"`
	Password string `json:"password" binding:"required"`
	JobId    int64  `json:"job_id" binding:"required"`
}
