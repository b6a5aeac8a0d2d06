package respond

// OrderRespond 订单信息，Job 与 Profile 视场景填充
type OrderRespond struct {
	ID             int64           `json:"id"`
	JobId          int64           `json:"job_id"`
	StudentContact string          `json:"student_contact"`
	Status         string          `json:"status"`
	CreatedAt      string          `json:"created_at"`
	Job            *JobRespond     `json:"job,omitempty"`
	Profile        *ProfileRespond `json:"profile"`
}

// StudentOrdersRespond 学生订单页
type StudentOrdersRespond struct {
	Orders    []OrderRespond `json:"orders"`
	ServiceQQ string         `json:"service_qq"`
}

// ApplyRespond 申请结果
type ApplyRespond struct {
	OrderId int64  `json:"order_id"`
	Status  string `json:"status"`
}
