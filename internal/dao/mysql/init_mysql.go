// Package mysql 负责建立数据库连接、迁移表结构、初始化 Repository 层
// 生产使用 MySQL，本地开发和测试可切换为 SQLite
package mysql

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tutor_match_server/internal/config"
	"tutor_match_server/internal/dao/mysql/repository"
	"tutor_match_server/internal/model"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open 按配置的驱动打开数据库
func Open(cfg *config.MysqlConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.New(zapWriter{}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}

	switch cfg.Driver {
	case "sqlite":
		path := cfg.SqlitePath
		if path == "" {
			path = "tutor_match.db"
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		db, err := gorm.Open(sqlite.Open(path), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return db, nil
	case "mysql", "":
		// 格式：user:password@tcp(host:port)/database?params
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DatabaseName,
		)
		db, err := gorm.Open(mysqldriver.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
	}
}

// Migrate 建表或补齐缺失的列，不会删除已有字段
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Job{},
		&model.Order{},
		&model.StudentProfile{},
	)
}

// Init 打开数据库、按需迁移，并创建 Repository 实例
// 关闭 autoMigrate 时沿用现有表结构，由 Repository 探测 status 列是否存在
func Init(cfg *config.MysqlConfig) (*repository.Repositories, *gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("auto migrate: %w", err)
		}
	}
	repos := repository.NewRepositories(db)
	zap.L().Info("database ready",
		zap.String("driver", cfg.Driver),
		zap.Bool("jobStatusColumn", repos.Caps().HasJobStatus),
	)
	return repos, db, nil
}

// MigrateAll migrate 子命令：建表后把遗留订单状态改写为新版取值
func MigrateAll(ctx context.Context, db *gorm.DB) (int64, error) {
	if err := Migrate(db); err != nil {
		return 0, fmt.Errorf("auto migrate: %w", err)
	}
	repos := repository.NewRepositories(db)
	return repos.Order.MigrateLegacyStatuses(ctx)
}

// Close 关闭底层连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// zapWriter 把 gorm 的慢查询和错误日志转到 zap
type zapWriter struct{}

func (zapWriter) Printf(format string, args ...interface{}) {
	zap.L().Sugar().Warnf(format, args...)
}
