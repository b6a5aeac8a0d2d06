// Package testutil 测试公用的内存数据库、缓存、Hub 与短信记录器
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	dao "tutor_match_server/internal/dao/mysql"
	"tutor_match_server/internal/dao/mysql/repository"
	myredis "tutor_match_server/internal/dao/redis"
	"tutor_match_server/internal/infrastructure/sms"
	"tutor_match_server/internal/model"
	"tutor_match_server/internal/realtime"
	"tutor_match_server/internal/workflow"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB 每个测试独立的内存 SQLite 库，已建表
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, dao.Migrate(db))
	return db
}

// Env 一组测试依赖
type Env struct {
	DB       *gorm.DB
	Repos    *repository.Repositories
	Cache    *myredis.MemoryCache
	Hub      *realtime.Hub
	Broker   realtime.Broker
	Notifier *Notifier
}

// NewEnv 内存库 + 进程内缓存 + 单机 Broker
func NewEnv(t testing.TB) *Env {
	t.Helper()
	db := OpenDB(t)
	hub := realtime.NewHub()
	cache := myredis.NewMemoryCache(1, 16)
	t.Cleanup(cache.Close)
	return &Env{
		DB:       db,
		Repos:    repository.NewRepositories(db),
		Cache:    cache,
		Hub:      hub,
		Broker:   realtime.NewChannelBroker(hub),
		Notifier: &Notifier{},
	}
}

// Drain 等待缓存 worker 执行完已提交的任务（如短信）
// 之后 SubmitTask 会同步执行
func (e *Env) Drain() {
	e.Cache.Close()
}

// SeedJob 写入一条职位；published 为 true 时经过状态机发布
func (e *Env) SeedJob(t testing.TB, job *model.Job, published bool) *model.Job {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.Repos.Job.Create(ctx, job))
	if published {
		step, err := workflow.JobTransition(workflow.JobPending, workflow.JobPublished, workflow.RoleAdmin)
		require.NoError(t, err)
		require.NoError(t, e.Repos.Job.UpdateStatus(ctx, job.ID, step))
		job.Status = workflow.JobPublished
		job.IsActive = true
	}
	return job
}

// NewJob 一条默认职位
func NewJob(title, parentPhone string) *model.Job {
	return &model.Job{
		Title:             title,
		Grade:             "高一",
		Subject:           "数学",
		Price:             "¥100/小时",
		Frequency:         2,
		Address:           "市中心",
		ContactName:       "王女士",
		ContactPhone:      parentPhone,
		SexRequirement:    model.SexRequirementUnlimited,
		RawManagePassword: "secret",
	}
}

// Notifier 记录发送过的短信
type Notifier struct {
	mu      sync.Mutex
	notices []sms.Notice
	Err     error
}

func (n *Notifier) Notify(_ context.Context, notice sms.Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return n.Err
}

// Sent 已发送的短信副本
func (n *Notifier) Sent() []sms.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sms.Notice(nil), n.notices...)
}

var _ sms.Notifier = (*Notifier)(nil)
