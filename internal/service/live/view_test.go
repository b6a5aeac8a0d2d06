package live

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tutor_match_server/internal/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore 被视图查询的“数据库”
type fakeStore struct {
	mu   sync.Mutex
	rows []string
}

func (s *fakeStore) list(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.rows...), nil
}

func (s *fakeStore) set(rows ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = rows
}

func TestView_RefreshOnNotify(t *testing.T) {
	hub := realtime.NewHub()
	store := &fakeStore{rows: []string{"a"}}
	updates := make(chan []string, 8)

	v := New[[]string](hub, "orders", store.list, func(rows []string) { updates <- rows })
	v.Watch(realtime.TableOrders, nil)
	require.NoError(t, v.Start(context.Background()))
	defer v.Close()

	assert.Equal(t, []string{"a"}, <-updates)

	store.set("a", "b")
	hub.Dispatch(realtime.NewEvent(realtime.TableOrders, realtime.OpInsert, nil))
	select {
	case rows := <-updates:
		assert.Equal(t, []string{"a", "b"}, rows)
	case <-time.After(time.Second):
		t.Fatal("视图没有刷新")
	}
	assert.Equal(t, []string{"a", "b"}, v.Snapshot())
}

func TestView_MutateRollback(t *testing.T) {
	hub := realtime.NewHub()
	store := &fakeStore{rows: []string{"applying"}}
	var calls atomic.Int32

	v := New[[]string](hub, "admin", store.list, func([]string) { calls.Add(1) })
	require.NoError(t, v.Start(context.Background()))
	defer v.Close()

	boom := errors.New("permission denied for table orders")
	err := v.Mutate(context.Background(),
		func(rows []string) []string { return []string{"parent_approved"} },
		func(context.Context) error { return boom },
	)
	assert.ErrorIs(t, err, boom, "返回写入的原始错误")
	assert.Equal(t, []string{"applying"}, v.Snapshot(), "失败后回到权威数据")
	assert.Equal(t, int32(3), calls.Load(), "初次加载 + 乐观更新 + 回滚")

	err = v.Mutate(context.Background(),
		func(rows []string) []string { return []string{} },
		func(context.Context) error { store.set(); return nil },
	)
	require.NoError(t, err)
	assert.Empty(t, v.Snapshot())
}

func TestView_StartFailure(t *testing.T) {
	hub := realtime.NewHub()
	v := New[int](hub, "broken", func(context.Context) (int, error) { return 0, errors.New("db down") }, nil)
	v.Watch(realtime.TableJobs, nil)
	assert.Error(t, v.Start(context.Background()))
	assert.Equal(t, 0, hub.Count(), "启动失败时释放订阅")
	v.Close()
}
