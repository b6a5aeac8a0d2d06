package order

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"tutor_match_server/internal/dao/mysql/repository"
	myredis "tutor_match_server/internal/dao/redis"
	"tutor_match_server/internal/dto/request"
	"tutor_match_server/internal/dto/respond"
	"tutor_match_server/internal/infrastructure/metrics"
	"tutor_match_server/internal/infrastructure/sms"
	"tutor_match_server/internal/model"
	"tutor_match_server/internal/realtime"
	"tutor_match_server/internal/service/assemble"
	"tutor_match_server/internal/workflow"
	"tutor_match_server/pkg/constants"
	"tutor_match_server/pkg/errorx"
	"tutor_match_server/pkg/util/phone"

	"go.uber.org/zap"
)

// notifyTimeout 后台发送短信的超时
const notifyTimeout = 10 * time.Second

// orderService 订单业务逻辑实现
type orderService struct {
	repos     *repository.Repositories
	cache     myredis.AsyncCacheService
	broker    realtime.Broker
	notifier  sms.Notifier
	guardTTL  time.Duration
	serviceQQ string
}

// NewOrderService 构造函数
func NewOrderService(repos *repository.Repositories, cache myredis.AsyncCacheService, broker realtime.Broker,
	notifier sms.Notifier, guardTTL time.Duration, serviceQQ string) *orderService {
	return &orderService{
		repos:     repos,
		cache:     cache,
		broker:    broker,
		notifier:  notifier,
		guardTTL:  guardTTL,
		serviceQQ: serviceQQ,
	}
}

// SubmitApplication 学生申请职位
// 流程：
//  1. 手机号校验，Redis SETNX 挡住短时间内的重复提交
//  2. 职位必须处于 published
//  3. 首次申请补全简历（同一事务内按手机号 upsert）
//  4. 性别要求校验
//  5. 同一 (职位, 学生) 已有未拒绝的订单时拒绝，否则插入 applying
//
// 第 5 步是先查后写，并发的两次提交之间没有数据库约束兜底，依赖第 1 步的锁。
// 锁只在申请成功后保留到过期，任何一步被拒绝都会立即释放，学生补全简历后可以马上重新提交
func (s *orderService) SubmitApplication(ctx context.Context, req request.ApplyRequest) (_ *respond.ApplyRespond, err error) {
	studentPhone := phone.Normalize(req.Phone)
	if !phone.Valid(studentPhone) {
		return nil, errorx.ErrInvalidPhone
	}

	// 1. 防重复提交
	guardKey := fmt.Sprintf("%s%d:%s", constants.APPLY_GUARD_KEY, req.JobId, studentPhone)
	ok, err := s.cache.SetNX(ctx, guardKey, "1", s.guardTTL)
	if err != nil {
		zap.L().Warn("apply guard unavailable", zap.String("key", guardKey), zap.Error(err))
	} else if !ok {
		return nil, errorx.New(errorx.CodeDuplicateSubmit, "提交过于频繁，请稍后再试")
	}
	if ok {
		defer func() {
			if err == nil {
				return
			}
			if delErr := s.cache.Delete(context.WithoutCancel(ctx), guardKey); delErr != nil {
				zap.L().Warn("release apply guard failed", zap.String("key", guardKey), zap.Error(delErr))
			}
		}()
	}

	// 2. 职位状态
	job, err := s.repos.Job.FindById(ctx, req.JobId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeJobUnavailable, "职位不存在或已下架")
		}
		zap.L().Error("find job failed", zap.Int64("jobId", req.JobId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if job.Status != workflow.JobPublished {
		return nil, errorx.New(errorx.CodeJobUnavailable, "该职位暂不可申请")
	}

	// 3. 简历
	existing, err := s.repos.Profile.FindByPhone(ctx, studentPhone)
	if err != nil && !errorx.IsNotFound(err) {
		zap.L().Error("find profile failed", zap.String("phone", studentPhone), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if err != nil {
		existing = nil
	}
	profile, upsert, err := resolveProfile(studentPhone, existing, req.Profile)
	if err != nil {
		return nil, err
	}

	// 4. 性别要求
	if job.RequiresGender() && profile.Gender != job.SexRequirement {
		return nil, errorx.Newf(errorx.CodeGenderMismatch, "该职位要求%s家教", genderLabel(job.SexRequirement))
	}

	step, err := workflow.Apply(workflow.RoleStudent)
	if err != nil {
		return nil, err
	}

	// 5. 查重并插入
	order := &model.Order{JobId: job.ID, StudentContact: studentPhone}
	err = s.repos.Transaction(ctx, func(txRepos *repository.Repositories) error {
		if upsert {
			if err := txRepos.Profile.Upsert(ctx, profile); err != nil {
				return err
			}
		}
		if _, err := txRepos.Order.FindActive(ctx, job.ID, studentPhone); err == nil {
			return errorx.ErrDuplicateApply
		} else if !errorx.IsNotFound(err) {
			return err
		}
		return txRepos.Order.Create(ctx, order, step)
	})
	if err != nil {
		if errorx.Is(err, errorx.CodeDuplicateApply) {
			return nil, err
		}
		zap.L().Error("submit application failed",
			zap.Int64("jobId", job.ID),
			zap.String("phone", studentPhone),
			zap.Error(err),
		)
		return nil, errorx.ErrServerBusy
	}

	metrics.ObserveOrderTransition("", string(step.To()), string(step.Role()))
	if upsert {
		realtime.Emit(ctx, s.broker, realtime.TableProfiles, realtime.OpUpdate, map[string]string{"phone": studentPhone})
	}
	realtime.Emit(ctx, s.broker, realtime.TableOrders, realtime.OpInsert, orderColumns(order))
	s.notify(sms.Notice{
		Phone: job.ContactPhone,
		Kind:  sms.KindNewCandidate,
		Ref:   strconv.FormatInt(order.ID, 10),
		Title: job.Title,
	})
	return &respond.ApplyRespond{OrderId: order.ID, Status: string(order.Status)}, nil
}

// resolveProfile 决定本次申请使用的简历，以及是否需要写库
//   - 已有简历且未提交新简历：沿用
//   - 提交了新简历：姓名和学校必填，写库
//   - 没有简历也没提交：拒绝
func resolveProfile(studentPhone string, existing *model.StudentProfile, in *request.ProfileRequest) (*model.StudentProfile, bool, error) {
	if in == nil {
		if existing == nil || !existing.HasResume() {
			return nil, false, errorx.New(errorx.CodeProfileRequired, "首次申请请先填写简历")
		}
		return existing, false, nil
	}
	p := assemble.ProfileModel(studentPhone, in)
	if !p.HasResume() {
		return nil, false, errorx.New(errorx.CodeProfileRequired, "请填写必填项")
	}
	if existing != nil && p.Gender == "" {
		p.Gender = existing.Gender
	}
	return p, true, nil
}

func genderLabel(g string) string {
	switch g {
	case model.SexRequirementMale:
		return "男"
	case model.SexRequirementFemale:
		return "女"
	}
	return g
}

// ListOrdersForStudent 学生的订单，终审通过前不返回家长联系方式
func (s *orderService) ListOrdersForStudent(ctx context.Context, studentPhone string) (*respond.StudentOrdersRespond, error) {
	studentPhone = phone.Normalize(studentPhone)
	if !phone.Valid(studentPhone) {
		return nil, errorx.ErrInvalidPhone
	}
	orders, err := s.repos.Order.FindByStudent(ctx, studentPhone)
	if err != nil {
		zap.L().Error("list student orders failed", zap.String("phone", studentPhone), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return &respond.StudentOrdersRespond{
		Orders:    assemble.StudentOrders(orders),
		ServiceQQ: s.serviceQQ,
	}, nil
}

// ListOrdersForAdmin 按状态筛选订单并附上学生简历
// 简历缺失的订单照常返回，Profile 为空
func (s *orderService) ListOrdersForAdmin(ctx context.Context, statuses []string) ([]respond.OrderRespond, error) {
	parsed := make([]workflow.OrderStatus, 0, len(statuses))
	for _, raw := range statuses {
		if raw == "" {
			continue
		}
		st, err := workflow.ParseOrderStatus(raw)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, st)
	}
	return s.listWithProfiles(ctx, parsed)
}

func (s *orderService) listWithProfiles(ctx context.Context, statuses []workflow.OrderStatus) ([]respond.OrderRespond, error) {
	orders, err := s.repos.Order.FindByStatuses(ctx, statuses)
	if err != nil {
		zap.L().Error("list orders failed", zap.Any("statuses", statuses), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	profiles, err := s.repos.Profile.FindByPhones(ctx, assemble.DistinctPhones(orders))
	if err != nil {
		zap.L().Error("list profiles failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return assemble.AttachProfiles(orders, profiles), nil
}

// UpdateOrderStatus 管理员变更订单状态
func (s *orderService) UpdateOrderStatus(ctx context.Context, orderId int64, status string) error {
	to, err := workflow.ParseOrderStatus(status)
	if err != nil {
		return err
	}
	order, err := s.findOrder(ctx, orderId)
	if err != nil {
		return err
	}
	return s.transition(ctx, order, to, workflow.RoleAdmin)
}

// ParentUpdateOrderStatus 家长同意或拒绝自己职位下的申请
func (s *orderService) ParentUpdateOrderStatus(ctx context.Context, req request.ParentDecideRequest) error {
	to, err := workflow.ParseOrderStatus(req.Status)
	if err != nil {
		return err
	}
	order, err := s.findOrder(ctx, req.OrderId)
	if err != nil {
		return err
	}
	if order.Job == nil || order.Job.ContactPhone != phone.Normalize(req.Phone) || !order.Job.CheckManagePassword(req.Password) {
		return errorx.ErrForbidden
	}
	return s.transition(ctx, order, to, workflow.RoleParent)
}

// ConfirmPayment 学生声明已支付信息费，等待管理员确认
func (s *orderService) ConfirmPayment(ctx context.Context, orderId int64, studentPhone string) error {
	order, err := s.findOrder(ctx, orderId)
	if err != nil {
		return err
	}
	if order.StudentContact != phone.Normalize(studentPhone) {
		return errorx.ErrForbidden
	}
	return s.transition(ctx, order, workflow.OrderPaymentPending, workflow.RoleStudent)
}

func (s *orderService) findOrder(ctx context.Context, orderId int64) (*model.Order, error) {
	order, err := s.repos.Order.FindById(ctx, orderId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "订单不存在")
		}
		zap.L().Error("find order failed", zap.Int64("orderId", orderId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return order, nil
}

// transition 所有订单状态变更的唯一入口
// 终审通过时订单与职位（-> taken）在同一事务中写入，任一失败整体回滚
func (s *orderService) transition(ctx context.Context, order *model.Order, to workflow.OrderStatus, role workflow.Role) error {
	step, err := workflow.Transition(order.Status, to, role)
	if err != nil {
		return err
	}

	if step.RetiresJob() {
		err = s.repos.Transaction(ctx, func(txRepos *repository.Repositories) error {
			if err := txRepos.Order.UpdateStatus(ctx, order.ID, step); err != nil {
				return err
			}
			job, err := txRepos.Job.FindById(ctx, order.JobId)
			if err != nil {
				return err
			}
			jobStep, err := workflow.JobTransition(job.Status, workflow.JobTaken, workflow.RoleSystem)
			if err != nil {
				return err
			}
			return txRepos.Job.UpdateStatus(ctx, job.ID, jobStep)
		})
	} else {
		err = s.repos.Order.UpdateStatus(ctx, order.ID, step)
	}
	if err != nil {
		code := errorx.GetCode(err)
		if code == errorx.CodeIllegalTransition || code == errorx.CodeForbidden {
			return err
		}
		zap.L().Error("update order status failed",
			zap.Int64("orderId", order.ID),
			zap.String("from", string(step.From())),
			zap.String("to", string(step.To())),
			zap.Error(err),
		)
		return errorx.ErrServerBusy
	}

	metrics.ObserveOrderTransition(string(step.From()), string(step.To()), string(step.Role()))
	order.Status = step.To()
	if step.RetiresJob() {
		if err := s.cache.Delete(ctx, constants.MARKET_CACHE_KEY); err != nil {
			zap.L().Warn("invalidate market cache failed", zap.Error(err))
		}
		realtime.Emit(ctx, s.broker, realtime.TableJobs, realtime.OpUpdate, map[string]string{
			"id":     strconv.FormatInt(order.JobId, 10),
			"status": string(workflow.JobTaken),
		})
	}
	realtime.Emit(ctx, s.broker, realtime.TableOrders, realtime.OpUpdate, orderColumns(order))

	title := ""
	if order.Job != nil {
		title = order.Job.Title
	}
	switch step.To() {
	case workflow.OrderParentApproved:
		s.notify(sms.Notice{Phone: order.StudentContact, Kind: sms.KindPayRequired, Ref: strconv.FormatInt(order.ID, 10), Title: title})
	case workflow.OrderFinalApproved:
		s.notify(sms.Notice{Phone: order.StudentContact, Kind: sms.KindContactUnlocked, Ref: strconv.FormatInt(order.ID, 10), Title: title})
	}
	return nil
}

// notify 短信在 worker pool 中发送，失败只记录日志
func (s *orderService) notify(n sms.Notice) {
	if s.notifier == nil {
		return
	}
	s.cache.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(ctx, n); err != nil {
			zap.L().Warn("send notice failed", zap.String("kind", string(n.Kind)), zap.String("ref", n.Ref), zap.Error(err))
		}
	})
}

func orderColumns(o *model.Order) map[string]string {
	return map[string]string{
		"id":              strconv.FormatInt(o.ID, 10),
		"job_id":          strconv.FormatInt(o.JobId, 10),
		"student_contact": o.StudentContact,
		"status":          string(o.Status),
	}
}
