package respond

// ProfileRespond 学生简历（不含密码）
type ProfileRespond struct {
	Phone             string `json:"phone"`
	Name              string `json:"name"`
	School            string `json:"school"`
	Major             string `json:"major"`
	Grade             string `json:"grade"`
	Experience        string `json:"experience"`
	Gender            string `json:"gender"`
	PreferredGrades   string `json:"preferred_grades"`
	PreferredSubjects string `json:"preferred_subjects"`
}

// StudentLoginRespond 学生登录结果
// HasProfile 为 false 表示首次申请时需要补全简历
type StudentLoginRespond struct {
	Phone      string          `json:"phone"`
	HasProfile bool            `json:"has_profile"`
	Profile    *ProfileRespond `json:"profile,omitempty"`
}
