package request

// ProfileRequest 学生简历
type ProfileRequest struct {
	Phone             string `json:"phone"`
	Password          string `json:"password"`
	Name              string `json:"name"`
	School            string `json:"school"`
	Major             string `json:"major"`
	Grade             string `json:"grade"`
	Experience        string `json:"experience"`
	Gender            string `json:"gender" binding:"omitempty,oneof=male female"`
	PreferredGrades   string `json:"preferred_grades"`
	PreferredSubjects string `json:"preferred_subjects"`
}

// StudentLoginRequest 学生手机号 + 密码登录
type StudentLoginRequest struct {
	Phone    string `json:"phone" binding:"required,mobile"`
	Password string `json:"password" binding:"required"`
}

// PhoneRequest 只带手机号的查询
type PhoneRequest struct {
	Phone string `form:"phone" binding:"required,mobile"`
}
