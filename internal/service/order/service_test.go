package order

import (
	"context"
	"fmt"
	"testing"
	"time"

	"tutor_match_server/internal/dto/request"
	"tutor_match_server/internal/infrastructure/sms"
	"tutor_match_server/internal/model"
	"tutor_match_server/internal/testutil"
	"tutor_match_server/internal/workflow"
	"tutor_match_server/pkg/constants"
	"tutor_match_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type OrderServiceSuite struct {
	suite.Suite
	env *testutil.Env
	svc *orderService
	job *model.Job
	ctx context.Context
}

func (s *OrderServiceSuite) SetupTest() {
	s.env = testutil.NewEnv(s.T())
	s.svc = NewOrderService(s.env.Repos, s.env.Cache, s.env.Broker, s.env.Notifier, time.Minute, "10000")
	s.job = s.env.SeedJob(s.T(), testutil.NewJob("高一数学", "13900000000"), true)
	s.ctx = context.Background()
}

func TestOrderService(t *testing.T) {
	suite.Run(t, new(OrderServiceSuite))
}

func resume(phone string) *request.ProfileRequest {
	return &request.ProfileRequest{Phone: phone, Password: "pw123456", Name: "张三", School: "师范大学", Gender: "male"}
}

// clearGuard 模拟防重复锁过期
func (s *OrderServiceSuite) clearGuard(jobId int64, phone string) {
	key := fmt.Sprintf("%s%d:%s", constants.APPLY_GUARD_KEY, jobId, phone)
	s.Require().NoError(s.env.Cache.Delete(s.ctx, key))
}

func (s *OrderServiceSuite) countOrders() int64 {
	var n int64
	s.Require().NoError(s.env.DB.Model(&model.Order{}).Count(&n).Error)
	return n
}

func (s *OrderServiceSuite) apply(phone string, profile *request.ProfileRequest) (int64, error) {
	rsp, err := s.svc.SubmitApplication(s.ctx, request.ApplyRequest{JobId: s.job.ID, Phone: phone, Profile: profile})
	if err != nil {
		return 0, err
	}
	return rsp.OrderId, nil
}

func (s *OrderServiceSuite) TestSubmitFirstApplicationUpsertsProfile() {
	id, err := s.apply("13800000001", resume("13800000001"))
	s.Require().NoError(err)

	order, err := s.env.Repos.Order.FindById(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(workflow.OrderApplying, order.Status)

	p, err := s.env.Repos.Profile.FindByPhone(s.ctx, "13800000001")
	s.Require().NoError(err)
	s.Equal("张三", p.Name)
	s.True(p.CheckPassword("pw123456"))

	s.env.Drain()
	sent := s.env.Notifier.Sent()
	s.Require().Len(sent, 1)
	s.Equal(sms.KindNewCandidate, sent[0].Kind)
	s.Equal("13900000000", sent[0].Phone)
}

func (s *OrderServiceSuite) TestSubmitWithoutProfileRequiresResume() {
	_, err := s.apply("13800000001", nil)
	s.Equal(errorx.CodeProfileRequired, errorx.GetCode(err))

	_, err = s.apply("13800000001", &request.ProfileRequest{Name: "张三"})
	s.Equal(errorx.CodeProfileRequired, errorx.GetCode(err))
	s.Zero(s.countOrders())

	_, err = s.env.Repos.Profile.FindByPhone(s.ctx, "13800000001")
	s.True(errorx.IsNotFound(err))

	// 被拒绝的提交不占用防重复锁，补全简历后立即重试成功
	id, err := s.apply("13800000001", resume("13800000001"))
	s.Require().NoError(err)
	s.NotZero(id)
	s.Equal(int64(1), s.countOrders())
}

func (s *OrderServiceSuite) TestSubmitRetryAfterRefusalNotThrottled() {
	femaleJob := testutil.NewJob("初三英语", "13900000001")
	femaleJob.SexRequirement = model.SexRequirementFemale
	s.env.SeedJob(s.T(), femaleJob, true)
	req := request.ApplyRequest{JobId: femaleJob.ID, Phone: "13800000001", Profile: resume("13800000001")}

	_, err := s.svc.SubmitApplication(s.ctx, req)
	s.Equal(errorx.CodeGenderMismatch, errorx.GetCode(err))

	req.Profile.Gender = "female"
	_, err = s.svc.SubmitApplication(s.ctx, req)
	s.Require().NoError(err)

	// 成功后锁保留到过期
	_, err = s.svc.SubmitApplication(s.ctx, req)
	s.Equal(errorx.CodeDuplicateSubmit, errorx.GetCode(err))
}

func (s *OrderServiceSuite) TestSubmitRejectsRapidResubmit() {
	_, err := s.apply("13800000001", resume("13800000001"))
	s.Require().NoError(err)
	_, err = s.apply("13800000001", nil)
	s.Equal(errorx.CodeDuplicateSubmit, errorx.GetCode(err))
	s.Equal(int64(1), s.countOrders())
}

func (s *OrderServiceSuite) TestSubmitDuplicateWritesNothing() {
	_, err := s.apply("13800000001", resume("13800000001"))
	s.Require().NoError(err)

	s.clearGuard(s.job.ID, "13800000001")
	_, err = s.apply("13800000001", nil)
	s.Equal(errorx.CodeDuplicateApply, errorx.GetCode(err))
	s.Equal(int64(1), s.countOrders())
}

func (s *OrderServiceSuite) TestSubmitAfterRejectionAllowed() {
	id, err := s.apply("13800000001", resume("13800000001"))
	s.Require().NoError(err)
	s.Require().NoError(s.svc.UpdateOrderStatus(s.ctx, id, "rejected"))

	s.clearGuard(s.job.ID, "13800000001")
	_, err = s.apply("13800000001", nil)
	s.Require().NoError(err)
	s.Equal(int64(2), s.countOrders())
}

func (s *OrderServiceSuite) TestSubmitGenderMismatch() {
	femaleJob := testutil.NewJob("初三英语", "13900000001")
	femaleJob.SexRequirement = model.SexRequirementFemale
	s.env.SeedJob(s.T(), femaleJob, true)

	_, err := s.svc.SubmitApplication(s.ctx, request.ApplyRequest{
		JobId: femaleJob.ID, Phone: "13800000001", Profile: resume("13800000001"),
	})
	s.Equal(errorx.CodeGenderMismatch, errorx.GetCode(err))
	s.Zero(s.countOrders())
}

func (s *OrderServiceSuite) TestSubmitUnpublishedJob() {
	pending := s.env.SeedJob(s.T(), testutil.NewJob("待审核", "13900000001"), false)
	_, err := s.svc.SubmitApplication(s.ctx, request.ApplyRequest{
		JobId: pending.ID, Phone: "13800000001", Profile: resume("13800000001"),
	})
	s.Equal(errorx.CodeJobUnavailable, errorx.GetCode(err))

	_, err = s.svc.SubmitApplication(s.ctx, request.ApplyRequest{JobId: 9999, Phone: "13800000001"})
	s.Equal(errorx.CodeJobUnavailable, errorx.GetCode(err))

	_, err = s.svc.SubmitApplication(s.ctx, request.ApplyRequest{JobId: s.job.ID, Phone: "138"})
	s.Equal(errorx.CodeInvalidPhone, errorx.GetCode(err))
}

func (s *OrderServiceSuite) TestFullWorkflow() {
	id, err := s.apply("13800000001", resume("13800000001"))
	s.Require().NoError(err)

	// 学生不能跳过家长直接支付
	err = s.svc.ConfirmPayment(s.ctx, id, "13800000001")
	s.Equal(errorx.CodeIllegalTransition, errorx.GetCode(err))

	err = s.svc.ParentUpdateOrderStatus(s.ctx, request.ParentDecideRequest{
		Phone: "13900000000", Password: "wrong", OrderId: id, Status: "parent_approved",
	})
	s.Equal(errorx.CodeForbidden, errorx.GetCode(err))
	s.Require().NoError(s.svc.ParentUpdateOrderStatus(s.ctx, request.ParentDecideRequest{
		Phone: "13900000000", Password: "secret", OrderId: id, Status: "parent_approved",
	}))

	err = s.svc.ConfirmPayment(s.ctx, id, "13800000002")
	s.Equal(errorx.CodeForbidden, errorx.GetCode(err))
	s.Require().NoError(s.svc.ConfirmPayment(s.ctx, id, "13800000001"))

	before, err := s.svc.ListOrdersForStudent(s.ctx, "13800000001")
	s.Require().NoError(err)
	s.Require().Len(before.Orders, 1)
	s.Empty(before.Orders[0].Job.ContactPhone)
	s.Equal("10000", before.ServiceQQ)

	s.Require().NoError(s.svc.UpdateOrderStatus(s.ctx, id, "final_approved"))

	after, err := s.svc.ListOrdersForStudent(s.ctx, "13800000001")
	s.Require().NoError(err)
	s.Equal("final_approved", after.Orders[0].Status)
	s.Equal("13900000000", after.Orders[0].Job.ContactPhone)

	job, err := s.env.Repos.Job.FindById(s.ctx, s.job.ID)
	s.Require().NoError(err)
	s.Equal(workflow.JobTaken, job.Status)
	s.False(job.IsActive)

	// 终态不能再变更
	err = s.svc.UpdateOrderStatus(s.ctx, id, "rejected")
	s.Equal(errorx.CodeIllegalTransition, errorx.GetCode(err))

	s.env.Drain()
	kinds := make([]sms.Kind, 0)
	for _, n := range s.env.Notifier.Sent() {
		kinds = append(kinds, n.Kind)
	}
	s.ElementsMatch([]sms.Kind{sms.KindNewCandidate, sms.KindPayRequired, sms.KindContactUnlocked}, kinds)
}

func (s *OrderServiceSuite) TestFinalApprovalRollsBackWhenJobCannotRetire() {
	first, err := s.apply("13800000001", resume("13800000001"))
	s.Require().NoError(err)
	second, err := s.apply("13800000002", resume("13800000002"))
	s.Require().NoError(err)

	for _, id := range []int64{first, second} {
		s.Require().NoError(s.svc.UpdateOrderStatus(s.ctx, id, "parent_approved"))
		order, err := s.env.Repos.Order.FindById(s.ctx, id)
		s.Require().NoError(err)
		s.Require().NoError(s.svc.ConfirmPayment(s.ctx, id, order.StudentContact))
	}
	s.Require().NoError(s.svc.UpdateOrderStatus(s.ctx, first, "final_approved"))

	// 职位已是 taken，第二单终审时 job 无法再次 taken，订单也不能落库
	err = s.svc.UpdateOrderStatus(s.ctx, second, "final_approved")
	s.Require().Error(err)

	order, err := s.env.Repos.Order.FindById(s.ctx, second)
	s.Require().NoError(err)
	s.Equal(workflow.OrderPaymentPending, order.Status)
	job, err := s.env.Repos.Job.FindById(s.ctx, s.job.ID)
	s.Require().NoError(err)
	s.Equal(workflow.JobTaken, job.Status)
}

func (s *OrderServiceSuite) TestAdminApprovesLegacyOrderDirectly() {
	id, err := s.apply("13800000001", resume("13800000001"))
	s.Require().NoError(err)
	s.Require().NoError(s.env.DB.Exec("UPDATE orders SET status = 'pending' WHERE id = ?", id).Error)

	s.Require().NoError(s.svc.UpdateOrderStatus(s.ctx, id, "approved"))

	order, err := s.env.Repos.Order.FindById(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(workflow.OrderFinalApproved, order.Status)
	var stored string
	s.Require().NoError(s.env.DB.Raw("SELECT status FROM orders WHERE id = ?", id).Scan(&stored).Error)
	s.Equal("final_approved", stored)

	job, err := s.env.Repos.Job.FindById(s.ctx, s.job.ID)
	s.Require().NoError(err)
	s.Equal(workflow.JobTaken, job.Status)

	list, err := s.svc.ListOrdersForStudent(s.ctx, "13800000001")
	s.Require().NoError(err)
	s.Require().Len(list.Orders, 1)
	s.Equal("13900000000", list.Orders[0].Job.ContactPhone)
}

func (s *OrderServiceSuite) TestAdminRejectsLegacyOrder() {
	id, err := s.apply("13800000001", resume("13800000001"))
	s.Require().NoError(err)
	s.Require().NoError(s.env.DB.Exec("UPDATE orders SET status = 'pending' WHERE id = ?", id).Error)

	err = s.svc.UpdateOrderStatus(s.ctx, id, "final_approved")
	s.Equal(errorx.CodeIllegalTransition, errorx.GetCode(err))
	s.Require().NoError(s.svc.UpdateOrderStatus(s.ctx, id, "rejected"))

	order, err := s.env.Repos.Order.FindById(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(workflow.OrderRejected, order.Status)
}

func (s *OrderServiceSuite) TestPhonesAreTrimmedBeforeOwnershipCheck() {
	id, err := s.apply("13800000001", resume("13800000001"))
	s.Require().NoError(err)

	s.Require().NoError(s.svc.ParentUpdateOrderStatus(s.ctx, request.ParentDecideRequest{
		Phone: " 13900000000 ", Password: "secret", OrderId: id, Status: "parent_approved",
	}))
	s.Require().NoError(s.svc.ConfirmPayment(s.ctx, id, "13800000001\n"))

	order, err := s.env.Repos.Order.FindById(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(workflow.OrderPaymentPending, order.Status)
}

func (s *OrderServiceSuite) TestParentCannotActAfterApproval() {
	id, err := s.apply("13800000001", resume("13800000001"))
	s.Require().NoError(err)
	s.Require().NoError(s.svc.UpdateOrderStatus(s.ctx, id, "parent_approved"))

	err = s.svc.ParentUpdateOrderStatus(s.ctx, request.ParentDecideRequest{
		Phone: "13900000000", Password: "secret", OrderId: id, Status: "rejected",
	})
	s.Equal(errorx.CodeForbidden, errorx.GetCode(err))
}

func (s *OrderServiceSuite) TestListOrdersForAdmin() {
	id, err := s.apply("13800000001", resume("13800000001"))
	s.Require().NoError(err)

	// 没有简历的历史订单
	step, err := workflow.Apply(workflow.RoleStudent)
	s.Require().NoError(err)
	s.Require().NoError(s.env.Repos.Order.Create(s.ctx, &model.Order{JobId: s.job.ID, StudentContact: "13800000009"}, step))
	s.Require().NoError(s.env.DB.Exec("UPDATE orders SET status = 'pending' WHERE student_contact = ?", "13800000009").Error)

	list, err := s.svc.ListOrdersForAdmin(s.ctx, []string{"applying"})
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	byPhone := map[string]bool{}
	for _, o := range list {
		s.Equal("applying", o.Status)
		byPhone[o.StudentContact] = o.Profile != nil
	}
	s.True(byPhone["13800000001"])
	s.False(byPhone["13800000009"])

	s.Require().NoError(s.svc.UpdateOrderStatus(s.ctx, id, "parent_approved"))
	list, err = s.svc.ListOrdersForAdmin(s.ctx, []string{"applying"})
	s.Require().NoError(err)
	s.Len(list, 1)

	_, err = s.svc.ListOrdersForAdmin(s.ctx, []string{"unknown"})
	s.Equal(errorx.CodeInvalidParam, errorx.GetCode(err))

	all, err := s.svc.ListOrdersForAdmin(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func TestResolveProfile(t *testing.T) {
	existing := &model.StudentProfile{Phone: "13800000001", Name: "张三", School: "师大", Gender: "female"}

	p, upsert, err := resolveProfile("13800000001", existing, nil)
	require.NoError(t, err)
	assert.False(t, upsert)
	assert.Same(t, existing, p)

	p, upsert, err = resolveProfile("13800000001", existing, &request.ProfileRequest{Phone: "13899999999", Name: "张三", School: "理工"})
	require.NoError(t, err)
	assert.True(t, upsert)
	assert.Equal(t, "13800000001", p.Phone)
	assert.Equal(t, "female", p.Gender)

	_, _, err = resolveProfile("13800000001", nil, nil)
	assert.Equal(t, errorx.CodeProfileRequired, errorx.GetCode(err))
}
