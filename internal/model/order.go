package model

import (
	"time"

	"tutor_match_server/internal/workflow"

	"gorm.io/gorm"
)

// Order 学生对职位的申请，承载审核流程
// 对应数据库 orders 表
type Order struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`

	// JobId 关联职位，删除职位前必须先删除其订单
	JobId int64 `gorm:"column:job_id;index;not null;comment:职位ID" json:"job_id"`

	// StudentContact 申请学生的手机号，即学生身份
	StudentContact string `gorm:"column:student_contact;index;type:char(11);not null;comment:学生手机号" json:"student_contact"`

	Status workflow.OrderStatus `gorm:"column:status;type:varchar(20);index;not null;comment:订单状态" json:"status"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`

	// Job 关联查询时填充
	Job *Job `gorm:"foreignKey:JobId;references:ID" json:"jobs,omitempty"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// AfterFind GORM Hook：遗留的 pending/approved 在读取时统一转换为新版状态
func (o *Order) AfterFind(tx *gorm.DB) error {
	o.Status = o.Status.Canonical()
	return nil
}
