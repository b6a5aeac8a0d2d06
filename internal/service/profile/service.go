package profile

import (
	"context"

	"tutor_match_server/internal/dao/mysql/repository"
	"tutor_match_server/internal/dto/request"
	"tutor_match_server/internal/dto/respond"
	"tutor_match_server/internal/realtime"
	"tutor_match_server/internal/service/assemble"
	"tutor_match_server/pkg/errorx"
	"tutor_match_server/pkg/util/phone"

	"go.uber.org/zap"
)

// profileService 学生简历与登录
type profileService struct {
	repos  *repository.Repositories
	broker realtime.Broker
}

// NewProfileService 构造函数
func NewProfileService(repos *repository.Repositories, broker realtime.Broker) *profileService {
	return &profileService{repos: repos, broker: broker}
}

// Login 学生手机号 + 密码登录
// 手机号没有简历视为首次使用，返回 HasProfile=false，由首次申请补全；
// 早期简历没有设置密码，此时只凭手机号进入
func (s *profileService) Login(ctx context.Context, req request.StudentLoginRequest) (*respond.StudentLoginRespond, error) {
	p, err := s.repos.Profile.FindByPhone(ctx, req.Phone)
	if err != nil {
		if errorx.IsNotFound(err) {
			return &respond.StudentLoginRespond{Phone: req.Phone}, nil
		}
		zap.L().Error("find profile failed", zap.String("phone", req.Phone), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if p.Password != "" && !p.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeInvalidPassword, "密码不正确，请重试")
	}
	return &respond.StudentLoginRespond{
		Phone:      p.Phone,
		HasProfile: p.HasResume(),
		Profile:    assemble.Profile(p),
	}, nil
}

// GetProfile 查询简历
func (s *profileService) GetProfile(ctx context.Context, studentPhone string) (*respond.ProfileRespond, error) {
	p, err := s.repos.Profile.FindByPhone(ctx, studentPhone)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "尚未填写简历")
		}
		zap.L().Error("find profile failed", zap.String("phone", studentPhone), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return assemble.Profile(p), nil
}

// UpsertProfile 新建或更新简历，姓名和学校必填
func (s *profileService) UpsertProfile(ctx context.Context, req request.ProfileRequest) (*respond.ProfileRespond, error) {
	studentPhone := phone.Normalize(req.Phone)
	if !phone.Valid(studentPhone) {
		return nil, errorx.ErrInvalidPhone
	}
	p := assemble.ProfileModel(studentPhone, &req)
	if !p.HasResume() {
		return nil, errorx.New(errorx.CodeProfileRequired, "请填写必填项")
	}
	if err := s.repos.Profile.Upsert(ctx, p); err != nil {
		zap.L().Error("upsert profile failed", zap.String("phone", studentPhone), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	realtime.Emit(ctx, s.broker, realtime.TableProfiles, realtime.OpUpdate, map[string]string{"phone": studentPhone})
	return assemble.Profile(p), nil
}
