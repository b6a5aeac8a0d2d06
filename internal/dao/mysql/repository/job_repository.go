// Package repository 提供数据访问层的具体实现
// 本文件实现 JobRepository 接口
package repository

import (
	"context"

	"tutor_match_server/internal/model"
	"tutor_match_server/internal/workflow"

	"gorm.io/gorm"
)

// jobRepository JobRepository 接口的实现
// caps 在构造时确定，之后不再探测
type jobRepository struct {
	db   *gorm.DB
	caps SchemaCaps
}

// NewJobRepository 创建 JobRepository 实例
func NewJobRepository(db *gorm.DB, caps SchemaCaps) JobRepository {
	return &jobRepository{db: db, caps: caps}
}

func (r *jobRepository) Caps() SchemaCaps {
	return r.caps
}

// Create 新建职位，状态固定为 pending 且未上架
func (r *jobRepository) Create(ctx context.Context, job *model.Job) error {
	job.Status = workflow.JobPending
	job.IsActive = false
	db := r.db.WithContext(ctx)
	if !r.caps.HasJobStatus {
		db = db.Omit("status")
	}
	if err := db.Create(job).Error; err != nil {
		return wrapDBError(err, "创建职位")
	}
	return nil
}

func (r *jobRepository) FindById(ctx context.Context, id int64) (*model.Job, error) {
	var job model.Job
	if err := r.db.WithContext(ctx).First(&job, id).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询职位 id=%d", id)
	}
	return &job, nil
}

func (r *jobRepository) FindByIds(ctx context.Context, ids []int64) ([]model.Job, error) {
	if len(ids) == 0 {
		return []model.Job{}, nil
	}
	var jobs []model.Job
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&jobs).Error; err != nil {
		return nil, wrapDBError(err, "批量查询职位")
	}
	return jobs, nil
}

// FindPublished 已发布职位，最新的在前
// 旧表结构下以 is_active 为准
func (r *jobRepository) FindPublished(ctx context.Context) ([]model.Job, error) {
	db := r.db.WithContext(ctx)
	if r.caps.HasJobStatus {
		db = db.Where("status = ?", workflow.JobPublished)
	} else {
		db = db.Where("is_active = ?", true)
	}
	var jobs []model.Job
	if err := db.Order("created_at DESC").Order("id DESC").Find(&jobs).Error; err != nil {
		return nil, wrapDBError(err, "查询已发布职位")
	}
	return jobs, nil
}

// FindPending 待审核职位，最早的在前
func (r *jobRepository) FindPending(ctx context.Context) ([]model.Job, error) {
	if !r.caps.HasJobStatus {
		return []model.Job{}, nil
	}
	var jobs []model.Job
	if err := r.db.WithContext(ctx).
		Where("status = ?", workflow.JobPending).
		Order("created_at ASC").Order("id ASC").
		Find(&jobs).Error; err != nil {
		return nil, wrapDBError(err, "查询待审核职位")
	}
	return jobs, nil
}

func (r *jobRepository) FindByContactPhone(ctx context.Context, phone string) ([]model.Job, error) {
	var jobs []model.Job
	if err := r.db.WithContext(ctx).
		Where("contact_phone = ?", phone).
		Order("created_at DESC").Order("id DESC").
		Find(&jobs).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询家长职位 phone=%s", phone)
	}
	return jobs, nil
}

// UpdateStatus 写入状态，is_active 同步为 status == published
// 旧表结构下只写 is_active
func (r *jobRepository) UpdateStatus(ctx context.Context, id int64, step workflow.JobStep) error {
	db := r.db.WithContext(ctx).Model(&model.Job{}).Where("id = ?", id)
	var res *gorm.DB
	if r.caps.HasJobStatus {
		res = db.Updates(map[string]any{
			"status":    step.To(),
			"is_active": step.Active(),
		})
	} else {
		res = db.Update("is_active", step.Active())
	}
	// MySQL 默认返回实际变更的行数，值未变时为 0，这里不据此判断是否存在
	return wrapDBErrorf(res.Error, "更新职位状态 id=%d", id)
}

func (r *jobRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Job{}, id)
	return notFoundIfNoRows(res, "删除职位 id=%d", id)
}
