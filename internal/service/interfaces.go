// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层和实时会话调用
package service

import (
	"context"

	"tutor_match_server/internal/dto/request"
	"tutor_match_server/internal/dto/respond"
	"tutor_match_server/internal/fee"
	"tutor_match_server/internal/model"
)

// JobService 职位业务接口
// 处理家长发布、职位广场、审核上下架和家长后台
type JobService interface {
	// PostJob 家长发布职位（待审核）
	PostJob(ctx context.Context, req request.PostJobRequest) (*respond.PostJobRespond, error)
	// ListPublishedJobs 已发布职位，带缓存
	ListPublishedJobs(ctx context.Context) ([]model.Job, error)
	// ListMarketplace 职位广场，studentPhone 可为空
	ListMarketplace(ctx context.Context, studentPhone string) ([]respond.MarketJobRespond, error)
	// ListPendingJobs 待审核职位
	ListPendingJobs(ctx context.Context) ([]respond.JobRespond, error)
	// UpdateJobStatus 管理员变更职位状态
	UpdateJobStatus(ctx context.Context, jobId int64, status string) error
	// RelistJob 重新上架
	RelistJob(ctx context.Context, jobId int64) error
	// DeleteJob 删除职位及其订单
	DeleteJob(ctx context.Context, jobId int64) error
	// ParentLogin 家长后台
	ParentLogin(ctx context.Context, phone, password string) (*respond.ParentDashboardRespond, error)
	// ParentDeleteJob 家长删除自己的职位
	ParentDeleteJob(ctx context.Context, req request.ParentDeleteJobRequest) error
	// SuggestJobDetails AI 生成标题与价格
	SuggestJobDetails(ctx context.Context, grade, subject string) (*respond.SuggestionRespond, error)
	// QuoteFee 信息费试算
	QuoteFee(grade string, frequency int, price string) fee.Quote
}

// OrderService 订单业务接口
// 处理学生申请、家长/管理员审核和支付确认
type OrderService interface {
	// SubmitApplication 学生申请职位
	SubmitApplication(ctx context.Context, req request.ApplyRequest) (*respond.ApplyRespond, error)
	// ListOrdersForStudent 学生订单页
	ListOrdersForStudent(ctx context.Context, phone string) (*respond.StudentOrdersRespond, error)
	// ListOrdersForAdmin 管理员按状态查询订单（附简历）
	ListOrdersForAdmin(ctx context.Context, statuses []string) ([]respond.OrderRespond, error)
	// UpdateOrderStatus 管理员变更订单状态
	UpdateOrderStatus(ctx context.Context, orderId int64, status string) error
	// ParentUpdateOrderStatus 家长同意/拒绝申请
	ParentUpdateOrderStatus(ctx context.Context, req request.ParentDecideRequest) error
	// ConfirmPayment 学生声明已支付
	ConfirmPayment(ctx context.Context, orderId int64, phone string) error
}

// ProfileService 学生简历业务接口
type ProfileService interface {
	// Login 学生登录
	Login(ctx context.Context, req request.StudentLoginRequest) (*respond.StudentLoginRespond, error)
	// GetProfile 查询简历
	GetProfile(ctx context.Context, phone string) (*respond.ProfileRespond, error)
	// UpsertProfile 新建或更新简历
	UpsertProfile(ctx context.Context, req request.ProfileRequest) (*respond.ProfileRespond, error)
}

// AdminService 管理入口业务接口
type AdminService interface {
	// Login 口令校验，签发会话 Token
	Login(ctx context.Context, surface, code string) (*respond.AdminLoginRespond, error)
	// Dashboard 管理后台数据
	Dashboard(ctx context.Context) (*respond.AdminDashboardRespond, error)
}
