package repository

import (
	"context"
	"testing"

	"tutor_match_server/internal/workflow"
	"tutor_match_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustJobStep(t *testing.T, from, to workflow.JobStatus, role workflow.Role) workflow.JobStep {
	t.Helper()
	step, err := workflow.JobTransition(from, to, role)
	require.NoError(t, err)
	return step
}

func TestJobRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	require.True(t, repos.Caps().HasJobStatus)

	first := newJob("高二数学", "13800000001")
	second := newJob("初三英语", "13800000001")
	first.IsActive = true // 新建时会被重置
	require.NoError(t, repos.Job.Create(ctx, first))
	require.NoError(t, repos.Job.Create(ctx, second))
	assert.Equal(t, workflow.JobPending, first.Status)
	assert.False(t, first.IsActive)

	pending, err := repos.Job.FindPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID, "待审核按时间正序")

	for _, j := range []int64{first.ID, second.ID} {
		require.NoError(t, repos.Job.UpdateStatus(ctx, j, mustJobStep(t, workflow.JobPending, workflow.JobPublished, workflow.RoleAdmin)))
	}
	published, err := repos.Job.FindPublished(ctx)
	require.NoError(t, err)
	require.Len(t, published, 2)
	assert.Equal(t, second.ID, published[0].ID, "广场按时间倒序")
	assert.True(t, published[0].IsActive)

	require.NoError(t, repos.Job.UpdateStatus(ctx, first.ID, mustJobStep(t, workflow.JobPublished, workflow.JobTaken, workflow.RoleSystem)))
	got, err := repos.Job.FindById(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.JobTaken, got.Status)
	assert.False(t, got.IsActive)

	mine, err := repos.Job.FindByContactPhone(ctx, "13800000001")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	require.NoError(t, repos.Job.Delete(ctx, first.ID))
	_, err = repos.Job.FindById(ctx, first.ID)
	assert.True(t, errorx.IsNotFound(err))
	assert.True(t, errorx.IsNotFound(repos.Job.Delete(ctx, first.ID)))
}

func TestJobRepository_ManagePasswordHashed(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	job := newJob("高一物理", "13800000002")
	job.RawManagePassword = "pw123"
	require.NoError(t, repos.Job.Create(ctx, job))

	got, err := repos.Job.FindById(ctx, job.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", got.ManagePassword)
	assert.True(t, got.CheckManagePassword("pw123"))
	assert.False(t, got.CheckManagePassword("wrong"))
}

func TestJobRepository_LegacySchema(t *testing.T) {
	ctx := context.Background()
	repos := newLegacyRepos(t)
	require.False(t, repos.Caps().HasJobStatus)

	job := newJob("高三化学", "13800000003")
	require.NoError(t, repos.Job.Create(ctx, job))

	pending, err := repos.Job.FindPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending, "旧表结构下待审核列表为空")

	published, err := repos.Job.FindPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, published)

	require.NoError(t, repos.Job.UpdateStatus(ctx, job.ID, mustJobStep(t, workflow.JobPending, workflow.JobPublished, workflow.RoleAdmin)))
	published, err = repos.Job.FindPublished(ctx)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, workflow.JobPublished, published[0].Status)

	require.NoError(t, repos.Job.UpdateStatus(ctx, job.ID, mustJobStep(t, workflow.JobPublished, workflow.JobTaken, workflow.RoleSystem)))
	published, err = repos.Job.FindPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, published)
}
