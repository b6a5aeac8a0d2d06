package repository

import (
	"context"

	"tutor_match_server/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories 聚合所有 Repository 实例
// Service 层通过它访问数据层
type Repositories struct {
	db      *gorm.DB
	caps    SchemaCaps
	Job     JobRepository
	Order   OrderRepository
	Profile ProfileRepository
}

// NewRepositories 探测表结构后创建所有 Repository
func NewRepositories(db *gorm.DB) *Repositories {
	caps := ProbeSchema(db)
	if !caps.HasJobStatus {
		zap.L().Warn("jobs.status column not found, falling back to is_active")
	}
	return newRepositories(db, caps)
}

func newRepositories(db *gorm.DB, caps SchemaCaps) *Repositories {
	return &Repositories{
		db:      db,
		caps:    caps,
		Job:     NewJobRepository(db, caps),
		Order:   NewOrderRepository(db),
		Profile: NewProfileRepository(db),
	}
}

// ProbeSchema 检查 jobs 表是否有 status 列
func ProbeSchema(db *gorm.DB) SchemaCaps {
	return SchemaCaps{HasJobStatus: db.Migrator().HasColumn(&model.Job{}, "status")}
}

// Caps 启动时探测到的表结构能力
func (r *Repositories) Caps() SchemaCaps {
	return r.caps
}

// Transaction 在数据库事务中执行函数
// fn 返回错误时整个事务回滚；事务内复用启动时的探测结果
func (r *Repositories) Transaction(ctx context.Context, fn func(txRepos *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepositories(tx, r.caps))
	})
}
