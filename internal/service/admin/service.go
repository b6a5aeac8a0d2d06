package admin

import (
	"context"
	"crypto/subtle"

	"tutor_match_server/internal/config"
	"tutor_match_server/internal/dao/mysql/repository"
	"tutor_match_server/internal/dto/respond"
	"tutor_match_server/internal/service/assemble"
	"tutor_match_server/internal/workflow"
	"tutor_match_server/pkg/errorx"
	"tutor_match_server/pkg/util/jwt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 管理入口
const (
	SurfaceDesktop = "desktop"
	SurfaceMobile  = "mobile"
)

// 管理后台各栏目对应的订单状态
var (
	applicationStatuses = []workflow.OrderStatus{workflow.OrderApplying, workflow.OrderParentApproved}
	financeStatuses     = []workflow.OrderStatus{workflow.OrderPaymentPending, workflow.OrderFinalApproved}
)

// adminService 管理入口与管理后台
type adminService struct {
	repos *repository.Repositories
	codes map[string]string
}

// NewAdminService 构造函数，口令为空的入口视为关闭
func NewAdminService(repos *repository.Repositories, cfg config.AdminConfig) *adminService {
	return &adminService{
		repos: repos,
		codes: map[string]string{
			SurfaceDesktop: cfg.DesktopCode,
			SurfaceMobile:  cfg.MobileCode,
		},
	}
}

// Login 校验管理口令并签发会话 Token
func (s *adminService) Login(ctx context.Context, surface, code string) (*respond.AdminLoginRespond, error) {
	expected, ok := s.codes[surface]
	if !ok {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "未知的管理入口: %s", surface)
	}
	if expected == "" {
		return nil, errorx.New(errorx.CodeAdminDisabled, "该管理入口未启用")
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) != 1 {
		zap.L().Warn("admin login rejected", zap.String("surface", surface))
		return nil, errorx.New(errorx.CodeUnauthorized, "口令错误")
	}

	token, expiresAt, err := jwt.GenerateAdminToken(surface)
	if err != nil {
		zap.L().Error("generate admin token failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return &respond.AdminLoginRespond{Token: token, Surface: surface, ExpiresAt: expiresAt.Unix()}, nil
}

// Dashboard 管理后台：申请（按职位分组）、财务、待审核职位
// 三个查询互不依赖，并行执行
func (s *adminService) Dashboard(ctx context.Context) (*respond.AdminDashboardRespond, error) {
	var (
		applications []respond.OrderRespond
		finance      []respond.OrderRespond
		pending      []respond.JobRespond
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		applications, err = s.ordersWithProfiles(egCtx, applicationStatuses)
		return err
	})
	eg.Go(func() error {
		var err error
		finance, err = s.ordersWithProfiles(egCtx, financeStatuses)
		return err
	})
	eg.Go(func() error {
		jobs, err := s.repos.Job.FindPending(egCtx)
		if err != nil {
			return err
		}
		pending = assemble.Jobs(jobs, true)
		return nil
	})
	if err := eg.Wait(); err != nil {
		zap.L().Error("load admin dashboard failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	return &respond.AdminDashboardRespond{
		Applications: assemble.GroupByJob(applications),
		Finance:      finance,
		PendingJobs:  pending,
		LegacySchema: !s.repos.Caps().HasJobStatus,
	}, nil
}

func (s *adminService) ordersWithProfiles(ctx context.Context, statuses []workflow.OrderStatus) ([]respond.OrderRespond, error) {
	orders, err := s.repos.Order.FindByStatuses(ctx, statuses)
	if err != nil {
		return nil, err
	}
	profiles, err := s.repos.Profile.FindByPhones(ctx, assemble.DistinctPhones(orders))
	if err != nil {
		return nil, err
	}
	return assemble.AttachProfiles(orders, profiles), nil
}
