package service

import (
	"context"
	"testing"
	"time"

	"tutor_match_server/internal/config"
	"tutor_match_server/internal/dto/request"
	"tutor_match_server/internal/dto/respond"
	"tutor_match_server/internal/fee"
	"tutor_match_server/internal/model"
	"tutor_match_server/internal/realtime"
	"tutor_match_server/internal/service/live"
	"tutor_match_server/internal/testutil"
	"tutor_match_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServices(t *testing.T) (*Services, *testutil.Env) {
	t.Helper()
	env := testutil.NewEnv(t)
	cfg := &config.Config{}
	cfg.RedisConfig.MarketTTL = 60
	cfg.RedisConfig.ApplyGuardTTL = 5
	cfg.MainConfig.ServiceQQ = "10000"
	svc := NewServices(Deps{
		Repos:    env.Repos,
		Cache:    env.Cache,
		Broker:   env.Broker,
		Notifier: env.Notifier,
		Fee:      fee.NewCalculator(nil),
	}, cfg)
	return svc, env
}

func postAndPublish(t *testing.T, svc *Services, req request.PostJobRequest) int64 {
	t.Helper()
	ctx := context.Background()
	posted, err := svc.Job.PostJob(ctx, req)
	require.NoError(t, err)
	require.NoError(t, svc.Job.UpdateJobStatus(ctx, posted.ID, "published"))
	return posted.ID
}

func TestFullMatchScenario(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	jobId := postAndPublish(t, svc, request.PostJobRequest{
		Title: "高二数学", Grade: "高二", Subject: "数学", Price: "¥120/小时", Frequency: 2,
		ContactName: "王女士", ContactPhone: "13900000000", ManagePassword: "secret",
	})

	const alice, bob = "13800000001", "13800000002"
	market, err := svc.Job.ListMarketplace(ctx, bob)
	require.NoError(t, err)
	require.Len(t, market, 1)

	applied, err := svc.Order.SubmitApplication(ctx, request.ApplyRequest{
		JobId: jobId, Phone: alice,
		Profile: &request.ProfileRequest{Name: "Alice", School: "师范大学", Gender: "female"},
	})
	require.NoError(t, err)

	// 家长后台能看到候选人简历
	parent, err := svc.Job.ParentLogin(ctx, "13900000000", "secret")
	require.NoError(t, err)
	require.Len(t, parent.Jobs, 1)
	require.Len(t, parent.Jobs[0].Candidates, 1)
	require.NotNil(t, parent.Jobs[0].Candidates[0].Profile)
	assert.Equal(t, "Alice", parent.Jobs[0].Candidates[0].Profile.Name)

	require.NoError(t, svc.Order.ParentUpdateOrderStatus(ctx, request.ParentDecideRequest{
		Phone: "13900000000", Password: "secret", OrderId: applied.OrderId, Status: "parent_approved",
	}))
	require.NoError(t, svc.Order.ConfirmPayment(ctx, applied.OrderId, alice))

	dash, err := svc.Admin.Dashboard(ctx)
	require.NoError(t, err)
	require.Len(t, dash.Finance, 1)
	assert.Empty(t, dash.Applications)

	require.NoError(t, svc.Order.UpdateOrderStatus(ctx, applied.OrderId, "final_approved"))

	orders, err := svc.Order.ListOrdersForStudent(ctx, alice)
	require.NoError(t, err)
	require.Len(t, orders.Orders, 1)
	assert.Equal(t, "final_approved", orders.Orders[0].Status)
	assert.Equal(t, "13900000000", orders.Orders[0].Job.ContactPhone)
	assert.Equal(t, "王女士", orders.Orders[0].Job.ContactName)

	market, err = svc.Job.ListMarketplace(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, market)
}

func TestGenderRequirementScenario(t *testing.T) {
	svc, env := newTestServices(t)
	ctx := context.Background()

	jobId := postAndPublish(t, svc, request.PostJobRequest{
		Title: "初三英语", Grade: "初三", Subject: "英语", Price: "100", ContactPhone: "13900000000",
		SexRequirement: model.SexRequirementFemale,
	})
	_, err := svc.Order.SubmitApplication(ctx, request.ApplyRequest{
		JobId: jobId, Phone: "13800000001",
		Profile: &request.ProfileRequest{Name: "Bob", School: "理工大学", Gender: "male"},
	})
	assert.Equal(t, errorx.CodeGenderMismatch, errorx.GetCode(err))

	var n int64
	require.NoError(t, env.DB.Model(&model.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

// 两个管理员会话打开同一个申请列表，A 审核后 B 自动刷新
func TestTwoLiveViewsOnApplications(t *testing.T) {
	svc, env := newTestServices(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobId := postAndPublish(t, svc, request.PostJobRequest{
		Title: "高一物理", Grade: "高一", Subject: "物理", Price: "150", ContactPhone: "13900000000",
	})
	applied, err := svc.Order.SubmitApplication(ctx, request.ApplyRequest{
		JobId: jobId, Phone: "13800000001",
		Profile: &request.ProfileRequest{Name: "Alice", School: "师范大学"},
	})
	require.NoError(t, err)

	query := func(ctx context.Context) ([]respond.OrderRespond, error) {
		return svc.Order.ListOrdersForAdmin(ctx, []string{"applying"})
	}
	open := func(name string) *live.View[[]respond.OrderRespond] {
		v := live.New(env.Hub, name, query, nil).
			Watch(realtime.TableOrders, nil).
			Watch(realtime.TableProfiles, nil)
		require.NoError(t, v.Start(ctx))
		t.Cleanup(v.Close)
		return v
	}
	sessionA := open("admin-a")
	sessionB := open("admin-b")
	require.Len(t, sessionA.Snapshot(), 1)
	require.Len(t, sessionB.Snapshot(), 1)

	err = sessionA.Mutate(ctx,
		func(rows []respond.OrderRespond) []respond.OrderRespond {
			out := make([]respond.OrderRespond, 0, len(rows))
			for _, r := range rows {
				if r.ID != applied.OrderId {
					out = append(out, r)
				}
			}
			return out
		},
		func(ctx context.Context) error {
			return svc.Order.UpdateOrderStatus(ctx, applied.OrderId, "parent_approved")
		},
	)
	require.NoError(t, err)
	assert.Empty(t, sessionA.Snapshot())

	require.Eventually(t, func() bool {
		return len(sessionB.Snapshot()) == 0
	}, 2*time.Second, 10*time.Millisecond)

	// 非法变更：A 的乐观更新被权威数据覆盖
	err = sessionA.Mutate(ctx,
		func(rows []respond.OrderRespond) []respond.OrderRespond { return nil },
		func(ctx context.Context) error {
			return svc.Order.UpdateOrderStatus(ctx, applied.OrderId, "final_approved")
		},
	)
	assert.Equal(t, errorx.CodeIllegalTransition, errorx.GetCode(err))
	assert.Empty(t, sessionA.Snapshot())
}
