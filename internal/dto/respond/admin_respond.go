package respond

// AdminLoginRespond 管理员会话
type AdminLoginRespond struct {
	Token     string `json:"token"`
	Surface   string `json:"surface"`
	ExpiresAt int64  `json:"expires_at"` // Unix 秒
}

// JobApplicationsRespond 按职位分组的申请
type JobApplicationsRespond struct {
	Job    JobRespond     `json:"job"`
	Orders []OrderRespond `json:"orders"`
}

// AdminDashboardRespond 管理后台
//   - Applications: applying 与 parent_approved，按职位分组
//   - Finance: payment_pending 与 final_approved
//   - PendingJobs: 待审核职位，最早的在前
type AdminDashboardRespond struct {
	Applications []JobApplicationsRespond `json:"applications"`
	Finance      []OrderRespond           `json:"finance"`
	PendingJobs  []JobRespond             `json:"pending_jobs"`
	LegacySchema bool                     `json:"legacy_schema"`
}
