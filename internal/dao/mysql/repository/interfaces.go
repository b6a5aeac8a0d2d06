// Package repository 定义数据访问层接口和聚合结构
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"context"

	"tutor_match_server/internal/model"
	"tutor_match_server/internal/workflow"
)

// SchemaCaps 启动时探测到的表结构能力
type SchemaCaps struct {
	// HasJobStatus jobs 表是否有 status 列；没有时退回只看 is_active 的旧逻辑
	HasJobStatus bool
}

// JobRepository 职位数据访问接口
type JobRepository interface {
	// Create 新建职位，状态固定为 pending 且未上架
	Create(ctx context.Context, job *model.Job) error
	// FindById 根据 ID 查找职位
	FindById(ctx context.Context, id int64) (*model.Job, error)
	// FindByIds 批量查找职位
	FindByIds(ctx context.Context, ids []int64) ([]model.Job, error)
	// FindPublished 已发布职位，最新的在前
	FindPublished(ctx context.Context) ([]model.Job, error)
	// FindPending 待审核职位，最早的在前；旧表结构下恒为空
	FindPending(ctx context.Context) ([]model.Job, error)
	// FindByContactPhone 家长发布的全部职位，最新的在前
	FindByContactPhone(ctx context.Context, phone string) ([]model.Job, error)
	// UpdateStatus 按状态机给出的 JobStep 写入状态
	UpdateStatus(ctx context.Context, id int64, step workflow.JobStep) error
	// Delete 删除职位（调用方需先删除订单）
	Delete(ctx context.Context, id int64) error
	// Caps 表结构能力
	Caps() SchemaCaps
}

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	// Create 新建申请，状态取自 workflow.Apply 给出的 Step
	Create(ctx context.Context, order *model.Order, step workflow.Step) error
	// FindById 根据 ID 查找订单（含职位）
	FindById(ctx context.Context, id int64) (*model.Order, error)
	// FindByStudent 学生的全部订单（含职位），最新的在前
	FindByStudent(ctx context.Context, phone string) ([]model.Order, error)
	// FindByStatuses 按状态筛选订单（含职位），statuses 为空表示全部
	FindByStatuses(ctx context.Context, statuses []workflow.OrderStatus) ([]model.Order, error)
	// FindByJobIds 若干职位下的全部订单，最新的在前
	FindByJobIds(ctx context.Context, jobIds []int64) ([]model.Order, error)
	// FindActive 查找 (职位, 学生) 的有效订单，没有时返回 CodeNotFound
	FindActive(ctx context.Context, jobId int64, phone string) (*model.Order, error)
	// JobIdsByStudent 学生申请过的职位 ID（任意状态）
	JobIdsByStudent(ctx context.Context, phone string) ([]int64, error)
	// UpdateStatus 按状态机给出的 Step 写入状态，后写覆盖先写
	UpdateStatus(ctx context.Context, id int64, step workflow.Step) error
	// DeleteByJobId 删除职位下的全部订单
	DeleteByJobId(ctx context.Context, jobId int64) error
	// MigrateLegacyStatuses 把遗留的 pending/approved 改写为新版状态，返回改写行数
	MigrateLegacyStatuses(ctx context.Context) (int64, error)
}

// ProfileRepository 学生简历数据访问接口
type ProfileRepository interface {
	// FindByPhone 根据手机号查找简历
	FindByPhone(ctx context.Context, phone string) (*model.StudentProfile, error)
	// FindByPhones 批量查找简历，不存在的手机号直接跳过
	FindByPhones(ctx context.Context, phones []string) ([]model.StudentProfile, error)
	// Upsert 以手机号为键新建或覆盖简历；RawPassword 为空时保留原密码
	Upsert(ctx context.Context, profile *model.StudentProfile) error
}
