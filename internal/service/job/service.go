package job

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"tutor_match_server/internal/config"
	"tutor_match_server/internal/dao/mysql/repository"
	myredis "tutor_match_server/internal/dao/redis"
	"tutor_match_server/internal/dto/request"
	"tutor_match_server/internal/dto/respond"
	"tutor_match_server/internal/fee"
	"tutor_match_server/internal/infrastructure/ai"
	"tutor_match_server/internal/model"
	"tutor_match_server/internal/realtime"
	"tutor_match_server/internal/recommend"
	"tutor_match_server/internal/service/assemble"
	"tutor_match_server/internal/workflow"
	"tutor_match_server/pkg/constants"
	"tutor_match_server/pkg/errorx"
	"tutor_match_server/pkg/util/phone"

	"go.uber.org/zap"
)

// AI 不可用时的默认文案
const (
	fallbackPrice      = "¥100 - ¥200 / 小时"
	fallbackErrorPrice = "¥100 - ¥150 / 小时"
)

// jobService 职位业务逻辑实现
type jobService struct {
	repos     *repository.Repositories
	cache     myredis.CacheService
	broker    realtime.Broker
	calc      *fee.Calculator
	suggester ai.Suggester
	marketTTL time.Duration
}

// NewJobService 构造函数
// calc 为 nil 时使用内置课时表，suggester 为 nil 时总是返回默认文案
func NewJobService(repos *repository.Repositories, cache myredis.CacheService, broker realtime.Broker,
	calc *fee.Calculator, suggester ai.Suggester, marketTTL time.Duration) *jobService {
	if calc == nil {
		calc = fee.NewCalculator(nil)
	}
	if suggester == nil {
		suggester = ai.New(config.AIConfig{})
	}
	return &jobService{
		repos:     repos,
		cache:     cache,
		broker:    broker,
		calc:      calc,
		suggester: suggester,
		marketTTL: marketTTL,
	}
}

// PostJob 家长发布职位，进入待审核状态
func (s *jobService) PostJob(ctx context.Context, req request.PostJobRequest) (*respond.PostJobRespond, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Price = strings.TrimSpace(req.Price)
	req.ContactPhone = phone.Normalize(req.ContactPhone)
	if req.Title == "" || req.ContactPhone == "" || req.Price == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "请填写完整信息")
	}
	if !phone.Valid(req.ContactPhone) {
		return nil, errorx.ErrInvalidPhone
	}
	if req.Frequency == 0 {
		req.Frequency = 1
	}
	if req.Frequency < 1 || req.Frequency > 7 {
		return nil, errorx.New(errorx.CodeInvalidParam, "每周次数必须在 1-7 之间")
	}
	switch req.SexRequirement {
	case "":
		req.SexRequirement = model.SexRequirementUnlimited
	case model.SexRequirementMale, model.SexRequirementFemale, model.SexRequirementUnlimited:
	default:
		return nil, errorx.New(errorx.CodeInvalidParam, "性别要求只能是 male、female 或 unlimited")
	}

	job := &model.Job{
		Title:             req.Title,
		Grade:             strings.TrimSpace(req.Grade),
		Subject:           strings.TrimSpace(req.Subject),
		Price:             req.Price,
		Frequency:         req.Frequency,
		Address:           strings.TrimSpace(req.Address),
		ContactName:       strings.TrimSpace(req.ContactName),
		ContactPhone:      req.ContactPhone,
		SexRequirement:    req.SexRequirement,
		RawManagePassword: req.ManagePassword,
	}
	if err := s.repos.Job.Create(ctx, job); err != nil {
		zap.L().Error("create job failed", zap.String("phone", job.ContactPhone), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	realtime.Emit(ctx, s.broker, realtime.TableJobs, realtime.OpInsert, map[string]string{
		"id":            strconv.FormatInt(job.ID, 10),
		"status":        string(workflow.JobPending),
		"contact_phone": job.ContactPhone,
	})
	return &respond.PostJobRespond{ID: job.ID, Status: string(workflow.JobPending)}, nil
}

// ListPublishedJobs 已发布职位，最新的在前
// 结果缓存在 marketTTL 内，任何职位写操作都会先删缓存
func (s *jobService) ListPublishedJobs(ctx context.Context) ([]model.Job, error) {
	if cached, err := s.cache.Get(ctx, constants.MARKET_CACHE_KEY); err != nil {
		zap.L().Warn("read market cache failed", zap.Error(err))
	} else if cached != "" {
		var jobs []model.Job
		if err := json.Unmarshal([]byte(cached), &jobs); err == nil {
			return jobs, nil
		}
		zap.L().Warn("bad market cache, reloading")
	}

	jobs, err := s.repos.Job.FindPublished(ctx)
	if err != nil {
		zap.L().Error("list published jobs failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if data, err := json.Marshal(jobs); err == nil {
		if err := s.cache.Set(ctx, constants.MARKET_CACHE_KEY, string(data), s.marketTTL); err != nil {
			zap.L().Warn("write market cache failed", zap.Error(err))
		}
	}
	return jobs, nil
}

// ListMarketplace 职位广场
// 带手机号时去掉该学生申请过的职位（任意状态），并按简历偏好标注推荐
func (s *jobService) ListMarketplace(ctx context.Context, studentPhone string) ([]respond.MarketJobRespond, error) {
	jobs, err := s.ListPublishedJobs(ctx)
	if err != nil {
		return nil, err
	}

	applied := map[int64]struct{}{}
	var profile *model.StudentProfile
	studentPhone = phone.Normalize(studentPhone)
	if studentPhone != "" {
		if !phone.Valid(studentPhone) {
			return nil, errorx.ErrInvalidPhone
		}
		ids, err := s.repos.Order.JobIdsByStudent(ctx, studentPhone)
		if err != nil {
			zap.L().Error("list applied jobs failed", zap.String("phone", studentPhone), zap.Error(err))
			return nil, errorx.ErrServerBusy
		}
		for _, id := range ids {
			applied[id] = struct{}{}
		}
		profile, err = s.repos.Profile.FindByPhone(ctx, studentPhone)
		if err != nil {
			if !errorx.IsNotFound(err) {
				zap.L().Warn("load profile for recommendation failed", zap.Error(err))
			}
			profile = nil
		}
	}

	res := make([]respond.MarketJobRespond, 0, len(jobs))
	for i := range jobs {
		job := &jobs[i]
		if _, ok := applied[job.ID]; ok {
			continue
		}
		res = append(res, respond.MarketJobRespond{
			JobRespond:  assemble.Job(job, false),
			Fee:         s.calc.Compute(job.Grade, job.Frequency, job.Price),
			Recommended: profile != nil && recommend.IsRecommended(job, profile),
		})
	}
	return res, nil
}

// ListPendingJobs 待审核职位，最早的在前；旧表结构下为空
func (s *jobService) ListPendingJobs(ctx context.Context) ([]respond.JobRespond, error) {
	jobs, err := s.repos.Job.FindPending(ctx)
	if err != nil {
		zap.L().Error("list pending jobs failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return assemble.Jobs(jobs, true), nil
}

// UpdateJobStatus 管理员审核、拒绝或重新上架职位
func (s *jobService) UpdateJobStatus(ctx context.Context, jobId int64, status string) error {
	to, err := workflow.ParseJobStatus(status)
	if err != nil {
		return err
	}
	job, err := s.repos.Job.FindById(ctx, jobId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeNotFound, "职位不存在")
		}
		zap.L().Error("find job failed", zap.Int64("jobId", jobId), zap.Error(err))
		return errorx.ErrServerBusy
	}
	step, err := workflow.JobTransition(job.Status, to, workflow.RoleAdmin)
	if err != nil {
		return err
	}
	if err := s.repos.Job.UpdateStatus(ctx, jobId, step); err != nil {
		zap.L().Error("update job status failed", zap.Int64("jobId", jobId), zap.Error(err))
		return errorx.ErrServerBusy
	}
	s.afterJobWrite(ctx, realtime.OpUpdate, jobId, string(step.To()))
	return nil
}

// RelistJob 撮合失败后重新上架，旧订单保持原样
func (s *jobService) RelistJob(ctx context.Context, jobId int64) error {
	return s.UpdateJobStatus(ctx, jobId, string(workflow.JobPublished))
}

// DeleteJob 删除职位及其全部订单（同一事务）
func (s *jobService) DeleteJob(ctx context.Context, jobId int64) error {
	err := s.repos.Transaction(ctx, func(txRepos *repository.Repositories) error {
		if err := txRepos.Order.DeleteByJobId(ctx, jobId); err != nil {
			return err
		}
		return txRepos.Job.Delete(ctx, jobId)
	})
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeNotFound, "职位不存在")
		}
		zap.L().Error("delete job failed", zap.Int64("jobId", jobId), zap.Error(err))
		return errorx.ErrServerBusy
	}
	id := strconv.FormatInt(jobId, 10)
	realtime.Emit(ctx, s.broker, realtime.TableOrders, realtime.OpDelete, map[string]string{"job_id": id})
	s.afterJobWrite(ctx, realtime.OpDelete, jobId, "")
	return nil
}

// ParentLogin 家长凭联系电话和管理密码查看自己的职位和候选人
func (s *jobService) ParentLogin(ctx context.Context, parentPhone, password string) (*respond.ParentDashboardRespond, error) {
	parentPhone = phone.Normalize(parentPhone)
	jobs, err := s.parentJobs(ctx, parentPhone, password)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	orders, err := s.repos.Order.FindByJobIds(ctx, ids)
	if err != nil {
		zap.L().Error("list parent orders failed", zap.String("phone", parentPhone), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	profiles, err := s.repos.Profile.FindByPhones(ctx, assemble.DistinctPhones(orders))
	if err != nil {
		zap.L().Error("list candidate profiles failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	byJob := make(map[int64][]respond.OrderRespond, len(jobs))
	for _, o := range assemble.AttachProfiles(orders, profiles) {
		byJob[o.JobId] = append(byJob[o.JobId], o)
	}
	rsp := &respond.ParentDashboardRespond{Phone: parentPhone, Jobs: make([]respond.ParentJobRespond, 0, len(jobs))}
	for i := range jobs {
		candidates := byJob[jobs[i].ID]
		if candidates == nil {
			candidates = []respond.OrderRespond{}
		}
		rsp.Jobs = append(rsp.Jobs, respond.ParentJobRespond{
			Job:        assemble.Job(&jobs[i], true),
			Candidates: candidates,
		})
	}
	return rsp, nil
}

// ParentDeleteJob 家长删除自己发布的职位
func (s *jobService) ParentDeleteJob(ctx context.Context, req request.ParentDeleteJobRequest) error {
	job, err := s.repos.Job.FindById(ctx, req.JobId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeNotFound, "职位不存在")
		}
		zap.L().Error("find job failed", zap.Int64("jobId", req.JobId), zap.Error(err))
		return errorx.ErrServerBusy
	}
	if job.ContactPhone != phone.Normalize(req.Phone) || !job.CheckManagePassword(req.Password) {
		return errorx.ErrForbidden
	}
	return s.DeleteJob(ctx, req.JobId)
}

// SuggestJobDetails AI 生成标题和参考价格
// 未配置模型或调用失败时返回默认文案，不向前端报错
func (s *jobService) SuggestJobDetails(ctx context.Context, grade, subject string) (*respond.SuggestionRespond, error) {
	grade = strings.TrimSpace(grade)
	subject = strings.TrimSpace(subject)
	if grade == "" || subject == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "请先选择年级和科目")
	}

	sg, err := s.suggester.Suggest(ctx, grade, subject)
	switch {
	case err == nil:
		return &respond.SuggestionRespond{Title: sg.Title, Price: sg.Price}, nil
	case errors.Is(err, ai.ErrDisabled):
		return &respond.SuggestionRespond{Title: grade + subject + "辅导", Price: fallbackPrice, Fallback: true}, nil
	default:
		zap.L().Warn("ai suggestion failed", zap.String("grade", grade), zap.String("subject", subject), zap.Error(err))
		return &respond.SuggestionRespond{Title: grade + subject + "家教 (AI生成失败)", Price: fallbackErrorPrice, Fallback: true}, nil
	}
}

// QuoteFee 信息费试算
func (s *jobService) QuoteFee(grade string, frequency int, price string) fee.Quote {
	return s.calc.Compute(grade, frequency, price)
}

// parentJobs 校验家长身份：手机号下至少有一个职位，且管理密码匹配
// 只返回密码匹配的职位
func (s *jobService) parentJobs(ctx context.Context, parentPhone, password string) ([]model.Job, error) {
	if !phone.Valid(parentPhone) {
		return nil, errorx.ErrInvalidPhone
	}
	jobs, err := s.repos.Job.FindByContactPhone(ctx, parentPhone)
	if err != nil {
		zap.L().Error("list parent jobs failed", zap.String("phone", parentPhone), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if len(jobs) == 0 {
		return nil, errorx.New(errorx.CodeNotFound, "未找到该手机号发布的职位")
	}
	owned := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if j.CheckManagePassword(password) {
			owned = append(owned, j)
		}
	}
	if len(owned) == 0 {
		return nil, errorx.New(errorx.CodeInvalidPassword, "管理密码不正确")
	}
	return owned, nil
}

// afterJobWrite 先删广场缓存再通知订阅方
func (s *jobService) afterJobWrite(ctx context.Context, op realtime.Op, jobId int64, status string) {
	if err := s.cache.Delete(ctx, constants.MARKET_CACHE_KEY); err != nil {
		zap.L().Warn("invalidate market cache failed", zap.Error(err))
	}
	cols := map[string]string{"id": strconv.FormatInt(jobId, 10)}
	if status != "" {
		cols["status"] = status
	}
	realtime.Emit(ctx, s.broker, realtime.TableJobs, op, cols)
}
