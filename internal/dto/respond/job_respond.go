package respond

import "tutor_match_server/internal/fee"

// JobRespond 职位信息
// 联系方式只在家长自己、管理员和终审通过的学生面前出现，其余场景为空
type JobRespond struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Grade          string `json:"grade"`
	Subject        string `json:"subject"`
	Price          string `json:"price"`
	Frequency      int    `json:"frequency"`
	Address        string `json:"address"`
	Status         string `json:"status"`
	SexRequirement string `json:"sex_requirement,omitempty"`
	ContactName    string `json:"contact_name,omitempty"`
	ContactPhone   string `json:"contact_phone,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// MarketJobRespond 职位广场条目，附带信息费报价和推荐标记
type MarketJobRespond struct {
	JobRespond
	Fee         fee.Quote `json:"fee"`
	Recommended bool      `json:"recommended"`
}

// PostJobRespond 发布结果
type PostJobRespond struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// SuggestionRespond AI 建议；Fallback 表示使用了默认文案
type SuggestionRespond struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	Fallback bool   `json:"fallback"`
}

// ParentJobRespond 家长后台的一个职位及其候选人
type ParentJobRespond struct {
	Job        JobRespond     `json:"job"`
	Candidates []OrderRespond `json:"candidates"`
}

// ParentDashboardRespond 家长后台
type ParentDashboardRespond struct {
	Phone string             `json:"phone"`
	Jobs  []ParentJobRespond `json:"jobs"`
}
