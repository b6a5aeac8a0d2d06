package repository

import (
	"fmt"
	"strings"
	"testing"

	"tutor_match_server/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB 每个测试独立的内存 SQLite 库
func openTestDB(t *testing.T) *gorm.DB {
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
	return db
}

// newTestRepos 建好全部表
func newTestRepos(t *testing.T) *Repositories {
	t.Helper()
	db := openTestDB(t)
	require.NoError(t, db.AutoMigrate(&model.Job{}, &model.Order{}, &model.StudentProfile{}))
	return NewRepositories(db)
}

// legacyJobsDDL 早期部署的 jobs 表，没有 status 列
const legacyJobsDDL = `CREATE TABLE jobs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	grade TEXT,
	subject TEXT,
	price TEXT NOT NULL,
	frequency INTEGER NOT NULL DEFAULT 1,
	address TEXT,
	contact_name TEXT,
	contact_phone TEXT NOT NULL,
	manage_password TEXT,
	is_active NUMERIC NOT NULL DEFAULT 0,
	sex_requirement TEXT,
	created_at DATETIME
)`

func newLegacyRepos(t *testing.T) *Repositories {
	t.Helper()
	db := openTestDB(t)
	require.NoError(t, db.Exec(legacyJobsDDL).Error)
	require.NoError(t, db.AutoMigrate(&model.Order{}, &model.StudentProfile{}))
	return NewRepositories(db)
}

func newJob(title, phone string) *model.Job {
	return &model.Job{
		Title:        title,
		Grade:        "高二",
		Subject:      "数学",
		Price:        "¥100/小时",
		Frequency:    2,
		ContactName:  "王女士",
		ContactPhone: phone,
	}
}
