package websocket

import (
	"context"

	"tutor_match_server/internal/dto/respond"
	"tutor_match_server/internal/realtime"
	"tutor_match_server/internal/service"
	"tutor_match_server/internal/service/live"
	"tutor_match_server/pkg/errorx"
	"tutor_match_server/pkg/util/phone"
)

// 可订阅的视图
const (
	ViewMarketplace    = "marketplace"
	ViewStudentOrders  = "student_orders"
	ViewParentJobs     = "parent_jobs"
	ViewAdminDashboard = "admin_dashboard"
)

// Params 建立会话的查询参数
type Params struct {
	View     string
	Phone    string
	Password string
}

// viewFeed 用 live.View 实现 Feed
type viewFeed[T any] struct {
	view   *live.View[T]
	handle func(ctx context.Context, v *live.View[T], cmd Command) error
}

func (f *viewFeed[T]) Start(ctx context.Context) error { return f.view.Start(ctx) }

func (f *viewFeed[T]) Close() { f.view.Close() }

func (f *viewFeed[T]) Handle(ctx context.Context, cmd Command) error {
	if cmd.Action == ActionRefresh {
		return f.view.Refresh(ctx)
	}
	if f.handle == nil {
		return errorx.New(errorx.CodeForbidden, "该视图只读")
	}
	return f.handle(ctx, f.view, cmd)
}

func pushAs[T any](push func(any)) func(T) {
	return func(data T) { push(data) }
}

// NewFeedFactory 校验参数并返回对应视图的构造函数
// 管理后台的会话鉴权由调用方完成
func NewFeedFactory(svc *service.Services, hub *realtime.Hub, p Params) (FeedFactory, error) {
	p.Phone = phone.Normalize(p.Phone)
	switch p.View {
	case ViewMarketplace:
		if p.Phone != "" && !phone.Valid(p.Phone) {
			return nil, errorx.ErrInvalidPhone
		}
		return marketplaceFeed(svc, hub, p.Phone), nil
	case ViewStudentOrders:
		if !phone.Valid(p.Phone) {
			return nil, errorx.ErrInvalidPhone
		}
		return studentOrdersFeed(svc, hub, p.Phone), nil
	case ViewParentJobs:
		if !phone.Valid(p.Phone) {
			return nil, errorx.ErrInvalidPhone
		}
		if p.Password == "" {
			return nil, errorx.New(errorx.CodeInvalidParam, "请输入管理密码")
		}
		return parentJobsFeed(svc, hub, p.Phone, p.Password), nil
	case ViewAdminDashboard:
		return adminDashboardFeed(svc, hub), nil
	default:
		return nil, errorx.Newf(errorx.CodeInvalidParam, "未知视图: %s", p.View)
	}
}

func marketplaceFeed(svc *service.Services, hub *realtime.Hub, studentPhone string) FeedFactory {
	return func(push func(any)) Feed {
		query := func(ctx context.Context) ([]respond.MarketJobRespond, error) {
			return svc.Job.ListMarketplace(ctx, studentPhone)
		}
		v := live.New(hub, ViewMarketplace, query, pushAs[[]respond.MarketJobRespond](push)).
			Watch(realtime.TableJobs, nil)
		if studentPhone != "" {
			v.Watch(realtime.TableOrders, realtime.Eq("student_contact", studentPhone)).
				Watch(realtime.TableProfiles, realtime.Eq("phone", studentPhone))
		}
		return &viewFeed[[]respond.MarketJobRespond]{view: v}
	}
}

func studentOrdersFeed(svc *service.Services, hub *realtime.Hub, studentPhone string) FeedFactory {
	return func(push func(any)) Feed {
		query := func(ctx context.Context) (*respond.StudentOrdersRespond, error) {
			return svc.Order.ListOrdersForStudent(ctx, studentPhone)
		}
		v := live.New(hub, ViewStudentOrders, query, pushAs[*respond.StudentOrdersRespond](push)).
			Watch(realtime.TableOrders, realtime.Eq("student_contact", studentPhone)).
			Watch(realtime.TableJobs, nil)
		return &viewFeed[*respond.StudentOrdersRespond]{view: v}
	}
}

// parentJobsFeed 家长后台；职位变更事件不一定带联系电话，整表订阅
func parentJobsFeed(svc *service.Services, hub *realtime.Hub, parentPhone, password string) FeedFactory {
	return func(push func(any)) Feed {
		query := func(ctx context.Context) (*respond.ParentDashboardRespond, error) {
			return svc.Job.ParentLogin(ctx, parentPhone, password)
		}
		v := live.New(hub, ViewParentJobs, query, pushAs[*respond.ParentDashboardRespond](push)).
			Watch(realtime.TableJobs, nil).
			Watch(realtime.TableOrders, nil).
			Watch(realtime.TableProfiles, nil)
		return &viewFeed[*respond.ParentDashboardRespond]{view: v}
	}
}

func adminDashboardFeed(svc *service.Services, hub *realtime.Hub) FeedFactory {
	return func(push func(any)) Feed {
		v := live.New(hub, ViewAdminDashboard, svc.Admin.Dashboard, pushAs[*respond.AdminDashboardRespond](push)).
			Watch(realtime.TableJobs, nil).
			Watch(realtime.TableOrders, nil).
			Watch(realtime.TableProfiles, nil)
		return &viewFeed[*respond.AdminDashboardRespond]{view: v, handle: adminCommand(svc)}
	}
}

// adminCommand 管理后台的状态变更先改本地快照，写库失败时由 Mutate 拉回权威数据
func adminCommand(svc *service.Services) func(context.Context, *live.View[*respond.AdminDashboardRespond], Command) error {
	return func(ctx context.Context, v *live.View[*respond.AdminDashboardRespond], cmd Command) error {
		if cmd.ID == 0 || cmd.Status == "" {
			return errorx.New(errorx.CodeInvalidParam, "缺少 id 或 status")
		}
		switch cmd.Action {
		case ActionUpdateOrder:
			return v.Mutate(ctx,
				func(d *respond.AdminDashboardRespond) *respond.AdminDashboardRespond {
					return withOrderStatus(d, cmd.ID, cmd.Status)
				},
				func(ctx context.Context) error {
					return svc.Order.UpdateOrderStatus(ctx, cmd.ID, cmd.Status)
				},
			)
		case ActionUpdateJob:
			return v.Mutate(ctx,
				func(d *respond.AdminDashboardRespond) *respond.AdminDashboardRespond {
					return withoutPendingJob(d, cmd.ID)
				},
				func(ctx context.Context) error {
					return svc.Job.UpdateJobStatus(ctx, cmd.ID, cmd.Status)
				},
			)
		default:
			return errorx.Newf(errorx.CodeInvalidParam, "未知操作: %s", cmd.Action)
		}
	}
}

// withOrderStatus 返回改了订单状态的副本，不修改 d
func withOrderStatus(d *respond.AdminDashboardRespond, orderId int64, status string) *respond.AdminDashboardRespond {
	if d == nil {
		return nil
	}
	next := *d
	next.Applications = make([]respond.JobApplicationsRespond, len(d.Applications))
	for i, g := range d.Applications {
		next.Applications[i] = respond.JobApplicationsRespond{Job: g.Job, Orders: relabel(g.Orders, orderId, status)}
	}
	next.Finance = relabel(d.Finance, orderId, status)
	return &next
}

func relabel(orders []respond.OrderRespond, orderId int64, status string) []respond.OrderRespond {
	out := make([]respond.OrderRespond, len(orders))
	copy(out, orders)
	for i := range out {
		if out[i].ID == orderId {
			out[i].Status = status
		}
	}
	return out
}

// withoutPendingJob 审核过的职位离开待审核列表
func withoutPendingJob(d *respond.AdminDashboardRespond, jobId int64) *respond.AdminDashboardRespond {
	if d == nil {
		return nil
	}
	next := *d
	next.PendingJobs = make([]respond.JobRespond, 0, len(d.PendingJobs))
	for _, j := range d.PendingJobs {
		if j.ID != jobId {
			next.PendingJobs = append(next.PendingJobs, j)
		}
	}
	return &next
}
