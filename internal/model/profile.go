package model

import (
	"time"

	"gorm.io/gorm"
)

// StudentProfile 学生简历，以手机号为主键
// 对应数据库 profiles 表
type StudentProfile struct {
	Phone string `gorm:"column:phone;primaryKey;type:char(11);comment:手机号" json:"phone"`

	// Password 回访登录密码（bcrypt 哈希）
	Password string `gorm:"column:password;type:varchar(100);comment:登录密码" json:"-"`

	Name       string `gorm:"column:name;type:varchar(30);comment:姓名" json:"name"`
	School     string `gorm:"column:school;type:varchar(50);comment:学校" json:"school"`
	Major      string `gorm:"column:major;type:varchar(50);comment:专业" json:"major"`
	Grade      string `gorm:"column:grade;type:varchar(20);comment:年级" json:"grade"`
	Experience string `gorm:"column:experience;type:text;comment:家教经历" json:"experience"`

	// Gender 性别 male/female，空表示未填写
	Gender string `gorm:"column:gender;type:varchar(10);comment:性别" json:"gender"`

	// PreferredGrades/PreferredSubjects 逗号分隔的偏好，仅用于推荐高亮
	PreferredGrades   string `gorm:"column:preferred_grades;type:varchar(200);comment:意向年级" json:"preferred_grades"`
	PreferredSubjects string `gorm:"column:preferred_subjects;type:varchar(200);comment:意向科目" json:"preferred_subjects"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	// RawPassword 明文密码（不存入数据库）
	RawPassword string `gorm:"-" json:"-"`
}

// TableName 指定表名
func (StudentProfile) TableName() string {
	return "profiles"
}

// BeforeSave GORM Hook：将 RawPassword 加密后存入 Password
func (p *StudentProfile) BeforeSave(tx *gorm.DB) error {
	if p.RawPassword != "" {
		hash, err := hashSecret(p.RawPassword)
		if err != nil {
			return err
		}
		p.Password = hash
		p.RawPassword = ""
	}
	return nil
}

// CheckPassword 校验登录密码
func (p *StudentProfile) CheckPassword(plaintext string) bool {
	return checkSecret(p.Password, plaintext)
}

// HasResume 首次申请要求至少填写姓名和学校
func (p *StudentProfile) HasResume() bool {
	return p.Name != "" && p.School != ""
}
