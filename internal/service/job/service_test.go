package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"tutor_match_server/internal/dto/request"
	"tutor_match_server/internal/fee"
	"tutor_match_server/internal/infrastructure/ai"
	"tutor_match_server/internal/model"
	"tutor_match_server/internal/realtime"
	"tutor_match_server/internal/testutil"
	"tutor_match_server/internal/workflow"
	"tutor_match_server/pkg/constants"
	"tutor_match_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSuggester struct {
	sg  ai.Suggestion
	err error
}

func (s stubSuggester) Suggest(context.Context, string, string) (ai.Suggestion, error) {
	return s.sg, s.err
}

func newService(t *testing.T, env *testutil.Env, sg ai.Suggester) *jobService {
	t.Helper()
	return NewJobService(env.Repos, env.Cache, env.Broker, fee.NewCalculator(nil), sg, time.Minute)
}

func TestPostJob(t *testing.T) {
	testCases := []struct {
		name     string
		req      request.PostJobRequest
		wantCode int
	}{
		{
			name:     "缺少标题",
			req:      request.PostJobRequest{ContactPhone: "13900000000", Price: "100"},
			wantCode: errorx.CodeInvalidParam,
		},
		{
			name:     "手机号格式错误",
			req:      request.PostJobRequest{Title: "高一数学", ContactPhone: "1390000", Price: "100"},
			wantCode: errorx.CodeInvalidPhone,
		},
		{
			name:     "次数超出范围",
			req:      request.PostJobRequest{Title: "高一数学", ContactPhone: "13900000000", Price: "100", Frequency: 8},
			wantCode: errorx.CodeInvalidParam,
		},
		{
			name: "成功",
			req: request.PostJobRequest{
				Title: " 高一数学 ", ContactPhone: "13900000000", Price: "¥100/小时",
				ManagePassword: "pw",
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := testutil.NewEnv(t)
			svc := newService(t, env, nil)
			sub := env.Hub.Subscribe(realtime.TableJobs, nil)
			defer sub.Unsubscribe()

			rsp, err := svc.PostJob(context.Background(), tc.req)
			if tc.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tc.wantCode, errorx.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "pending", rsp.Status)

			job, err := env.Repos.Job.FindById(context.Background(), rsp.ID)
			require.NoError(t, err)
			assert.Equal(t, "高一数学", job.Title)
			assert.Equal(t, workflow.JobPending, job.Status)
			assert.False(t, job.IsActive)
			assert.Equal(t, 1, job.Frequency)
			assert.Equal(t, model.SexRequirementUnlimited, job.SexRequirement)
			assert.NotEqual(t, "pw", job.ManagePassword)
			assert.True(t, job.CheckManagePassword("pw"))

			select {
			case <-sub.C():
			default:
				t.Fatal("expected jobs change notification")
			}
		})
	}
}

func TestListMarketplace(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := newService(t, env, nil)
	ctx := context.Background()

	older := env.SeedJob(t, testutil.NewJob("初二英语", "13900000001"), true)
	newer := env.SeedJob(t, &model.Job{
		Title: "高三物理冲刺", Grade: "高三", Subject: "物理", Price: "¥200/小时",
		Frequency: 1, ContactPhone: "13900000002", ContactName: "李先生",
	}, true)
	env.SeedJob(t, testutil.NewJob("待审核", "13900000003"), false)

	// 学生申请过 older，并偏好物理
	step, err := workflow.Apply(workflow.RoleStudent)
	require.NoError(t, err)
	require.NoError(t, env.Repos.Order.Create(ctx, &model.Order{JobId: older.ID, StudentContact: "13800000000"}, step))
	require.NoError(t, env.Repos.Profile.Upsert(ctx, &model.StudentProfile{
		Phone: "13800000000", Name: "张三", School: "师大", PreferredSubjects: "物理，化学",
	}))

	anonymous, err := svc.ListMarketplace(ctx, "")
	require.NoError(t, err)
	require.Len(t, anonymous, 2)
	assert.Equal(t, newer.ID, anonymous[0].ID)
	assert.Empty(t, anonymous[0].ContactPhone)
	assert.False(t, anonymous[0].Recommended)
	assert.Equal(t, 3.0, anonymous[0].Fee.Hours)
	assert.Equal(t, 600.0, anonymous[0].Fee.Amount)

	student, err := svc.ListMarketplace(ctx, "13800000000")
	require.NoError(t, err)
	require.Len(t, student, 1)
	assert.Equal(t, newer.ID, student[0].ID)
	assert.True(t, student[0].Recommended)

	_, err = svc.ListMarketplace(ctx, "123")
	assert.Equal(t, errorx.CodeInvalidPhone, errorx.GetCode(err))
}

func TestListPublishedJobsCache(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := newService(t, env, nil)
	ctx := context.Background()

	job := env.SeedJob(t, testutil.NewJob("高一数学", "13900000001"), true)
	jobs, err := svc.ListPublishedJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	cached, err := env.Cache.Get(ctx, constants.MARKET_CACHE_KEY)
	require.NoError(t, err)
	assert.NotEmpty(t, cached)

	// 写操作先删缓存
	require.NoError(t, svc.DeleteJob(ctx, job.ID))
	cached, err = env.Cache.Get(ctx, constants.MARKET_CACHE_KEY)
	require.NoError(t, err)
	assert.Empty(t, cached)

	jobs, err = svc.ListPublishedJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestUpdateJobStatus(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := newService(t, env, nil)
	ctx := context.Background()
	job := env.SeedJob(t, testutil.NewJob("高一数学", "13900000001"), false)

	err := svc.UpdateJobStatus(ctx, job.ID, "taken")
	assert.Equal(t, errorx.CodeIllegalTransition, errorx.GetCode(err))

	err = svc.UpdateJobStatus(ctx, job.ID, "archived")
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	require.NoError(t, svc.UpdateJobStatus(ctx, job.ID, "published"))
	got, err := env.Repos.Job.FindById(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.JobPublished, got.Status)
	assert.True(t, got.IsActive)

	// published 只能由系统置为 taken
	err = svc.UpdateJobStatus(ctx, job.ID, "taken")
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	err = svc.UpdateJobStatus(ctx, 9999, "published")
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestRelistJob(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := newService(t, env, nil)
	ctx := context.Background()
	job := env.SeedJob(t, testutil.NewJob("高一数学", "13900000001"), true)

	step, err := workflow.JobTransition(workflow.JobPublished, workflow.JobTaken, workflow.RoleSystem)
	require.NoError(t, err)
	require.NoError(t, env.Repos.Job.UpdateStatus(ctx, job.ID, step))

	require.NoError(t, svc.RelistJob(ctx, job.ID))
	got, err := env.Repos.Job.FindById(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.JobPublished, got.Status)
}

func TestDeleteJobCascades(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := newService(t, env, nil)
	ctx := context.Background()
	job := env.SeedJob(t, testutil.NewJob("高一数学", "13900000001"), true)
	other := env.SeedJob(t, testutil.NewJob("初一语文", "13900000002"), true)

	step, err := workflow.Apply(workflow.RoleStudent)
	require.NoError(t, err)
	for _, phone := range []string{"13800000001", "13800000002"} {
		require.NoError(t, env.Repos.Order.Create(ctx, &model.Order{JobId: job.ID, StudentContact: phone}, step))
	}
	require.NoError(t, env.Repos.Order.Create(ctx, &model.Order{JobId: other.ID, StudentContact: "13800000001"}, step))

	require.NoError(t, svc.DeleteJob(ctx, job.ID))

	var orphans int64
	require.NoError(t, env.DB.Model(&model.Order{}).Where("job_id = ?", job.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)
	left, err := env.Repos.Order.FindByJobIds(ctx, []int64{other.ID})
	require.NoError(t, err)
	assert.Len(t, left, 1)

	err = svc.DeleteJob(ctx, job.ID)
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestParentLoginAndDelete(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := newService(t, env, nil)
	ctx := context.Background()
	job := env.SeedJob(t, testutil.NewJob("高一数学", "13900000001"), true)

	step, err := workflow.Apply(workflow.RoleStudent)
	require.NoError(t, err)
	require.NoError(t, env.Repos.Order.Create(ctx, &model.Order{JobId: job.ID, StudentContact: "13800000001"}, step))
	require.NoError(t, env.Repos.Profile.Upsert(ctx, &model.StudentProfile{Phone: "13800000001", Name: "张三", School: "师大"}))

	_, err = svc.ParentLogin(ctx, "13900000009", "secret")
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
	_, err = svc.ParentLogin(ctx, "13900000001", "wrong")
	assert.Equal(t, errorx.CodeInvalidPassword, errorx.GetCode(err))

	dash, err := svc.ParentLogin(ctx, "13900000001", "secret")
	require.NoError(t, err)
	require.Len(t, dash.Jobs, 1)
	assert.Equal(t, "13900000001", dash.Jobs[0].Job.ContactPhone)
	require.Len(t, dash.Jobs[0].Candidates, 1)
	require.NotNil(t, dash.Jobs[0].Candidates[0].Profile)
	assert.Equal(t, "张三", dash.Jobs[0].Candidates[0].Profile.Name)

	err = svc.ParentDeleteJob(ctx, request.ParentDeleteJobRequest{Phone: "13900000002", Password: "secret", JobId: job.ID})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
	require.NoError(t, svc.ParentDeleteJob(ctx, request.ParentDeleteJobRequest{Phone: "13900000001", Password: "secret", JobId: job.ID}))
	_, err = env.Repos.Job.FindById(ctx, job.ID)
	assert.True(t, errorx.IsNotFound(err))
}

func TestSuggestJobDetails(t *testing.T) {
	testCases := []struct {
		name      string
		suggester ai.Suggester
		wantTitle string
		wantPrice string
		fallback  bool
	}{
		{
			name:      "未配置",
			suggester: stubSuggester{err: ai.ErrDisabled},
			wantTitle: "高一数学辅导",
			wantPrice: "¥100 - ¥200 / 小时",
			fallback:  true,
		},
		{
			name:      "调用失败",
			suggester: stubSuggester{err: errors.New("timeout")},
			wantTitle: "高一数学家教 (AI生成失败)",
			wantPrice: "¥100 - ¥150 / 小时",
			fallback:  true,
		},
		{
			name:      "成功",
			suggester: stubSuggester{sg: ai.Suggestion{Title: "高一数学培优", Price: "¥150 - ¥200 / 小时"}},
			wantTitle: "高一数学培优",
			wantPrice: "¥150 - ¥200 / 小时",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := testutil.NewEnv(t)
			svc := newService(t, env, tc.suggester)
			rsp, err := svc.SuggestJobDetails(context.Background(), "高一", "数学")
			require.NoError(t, err)
			assert.Equal(t, tc.wantTitle, rsp.Title)
			assert.Equal(t, tc.wantPrice, rsp.Price)
			assert.Equal(t, tc.fallback, rsp.Fallback)
		})
	}

	env := testutil.NewEnv(t)
	_, err := newService(t, env, nil).SuggestJobDetails(context.Background(), "", "数学")
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}

func TestQuoteFee(t *testing.T) {
	env := testutil.NewEnv(t)
	q := newService(t, env, nil).QuoteFee("高二", 2, "¥120/小时")
	assert.Equal(t, 3.5, q.Hours)
	assert.Equal(t, 420.0, q.Amount)
}
