package repository

import (
	"context"

	"tutor_match_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建 ProfileRepository 实例
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByPhone(ctx context.Context, phone string) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&profile).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询简历 phone=%s", phone)
	}
	return &profile, nil
}

func (r *profileRepository) FindByPhones(ctx context.Context, phones []string) ([]model.StudentProfile, error) {
	if len(phones) == 0 {
		return []model.StudentProfile{}, nil
	}
	var profiles []model.StudentProfile
	if err := r.db.WithContext(ctx).Where("phone IN ?", phones).Find(&profiles).Error; err != nil {
		return nil, wrapDBError(err, "批量查询简历")
	}
	return profiles, nil
}

// profileColumns 覆盖写入的简历字段
var profileColumns = []string{
	"name", "school", "major", "grade", "experience", "gender",
	"preferred_grades", "preferred_subjects",
}

// Upsert 以手机号为冲突键插入或更新
// 只有本次带了新密码才覆盖 password
func (r *profileRepository) Upsert(ctx context.Context, profile *model.StudentProfile) error {
	columns := profileColumns
	if profile.RawPassword != "" {
		columns = append(append([]string{}, profileColumns...), "password")
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(profile).Error
	return wrapDBErrorf(err, "保存简历 phone=%s", profile.Phone)
}
