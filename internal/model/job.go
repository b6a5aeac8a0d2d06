// Package model 定义数据库实体模型
// 本文件定义家教职位模型，由家长发布、管理员审核
package model

import (
	"time"

	"tutor_match_server/internal/workflow"

	"gorm.io/gorm"
)

// 家教性别要求
const (
	SexRequirementMale      = "male"
	SexRequirementFemale    = "female"
	SexRequirementUnlimited = "unlimited"
)

// Job 家教职位
// 对应数据库 jobs 表
type Job struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`

	Title     string `gorm:"column:title;type:varchar(100);not null;comment:标题" json:"title"`
	Grade     string `gorm:"column:grade;type:varchar(30);comment:年级" json:"grade"`
	Subject   string `gorm:"column:subject;type:varchar(50);comment:科目" json:"subject"`
	Price     string `gorm:"column:price;type:varchar(50);not null;comment:课时费展示文案，如 ¥100/小时" json:"price"`
	Frequency int    `gorm:"column:frequency;not null;default:1;comment:每周次数 1-7" json:"frequency"`
	Address   string `gorm:"column:address;type:varchar(200);comment:上课地址" json:"address"`

	// ContactName/ContactPhone 家长联系方式，只对终审通过的学生可见
	ContactName  string `gorm:"column:contact_name;type:varchar(30);comment:联系人" json:"contact_name"`
	ContactPhone string `gorm:"column:contact_phone;index;type:char(11);not null;comment:联系电话" json:"contact_phone"`

	// ManagePassword 家长管理密码（bcrypt 哈希），用于家长登录查看候选人
	ManagePassword string `gorm:"column:manage_password;type:varchar(100);comment:管理密码" json:"-"`

	// IsActive 旧版上架标记，与 status=published 保持一致
	IsActive bool `gorm:"column:is_active;not null;default:false;comment:是否上架(旧字段)" json:"is_active"`

	// Status 生命周期 pending/published/rejected/taken
	Status workflow.JobStatus `gorm:"column:status;type:varchar(20);index;not null;default:pending;comment:职位状态" json:"status"`

	// SexRequirement 对家教性别的要求 male/female/unlimited
	SexRequirement string `gorm:"column:sex_requirement;type:varchar(10);comment:性别要求" json:"sex_requirement,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`

	// RawManagePassword 明文管理密码，BeforeSave 中加密，不落库
	RawManagePassword string `gorm:"-" json:"-"`
}

// TableName 指定表名
func (Job) TableName() string {
	return "jobs"
}

// BeforeSave GORM Hook：加密管理密码
func (j *Job) BeforeSave(tx *gorm.DB) error {
	if j.RawManagePassword != "" {
		hash, err := hashSecret(j.RawManagePassword)
		if err != nil {
			return err
		}
		j.ManagePassword = hash
		j.RawManagePassword = ""
	}
	return nil
}

// AfterFind GORM Hook：旧表结构没有 status 列，按 is_active 推断
func (j *Job) AfterFind(tx *gorm.DB) error {
	if j.Status == "" {
		if j.IsActive {
			j.Status = workflow.JobPublished
		} else {
			j.Status = workflow.JobPending
		}
	}
	return nil
}

// CheckManagePassword 校验家长管理密码
func (j *Job) CheckManagePassword(plaintext string) bool {
	return checkSecret(j.ManagePassword, plaintext)
}

// RequiresGender 职位是否限定了家教性别
func (j *Job) RequiresGender() bool {
	return j.SexRequirement == SexRequirementMale || j.SexRequirement == SexRequirementFemale
}
