// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"time"

	"tutor_match_server/internal/config"
	"tutor_match_server/internal/dao/mysql/repository"
	myredis "tutor_match_server/internal/dao/redis"
	"tutor_match_server/internal/fee"
	"tutor_match_server/internal/infrastructure/ai"
	"tutor_match_server/internal/infrastructure/sms"
	"tutor_match_server/internal/realtime"
	"tutor_match_server/internal/service/admin"
	"tutor_match_server/internal/service/job"
	"tutor_match_server/internal/service/order"
	"tutor_match_server/internal/service/profile"
)

// Deps Service 层的外部依赖
type Deps struct {
	Repos     *repository.Repositories
	Cache     myredis.AsyncCacheService
	Broker    realtime.Broker
	Notifier  sms.Notifier
	Suggester ai.Suggester
	Fee       *fee.Calculator
}

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层和实时会话通过它访问各个 Service
type Services struct {
	Job     JobService     // 职位 Service
	Order   OrderService   // 订单 Service
	Profile ProfileService // 简历 Service
	Admin   AdminService   // 管理 Service
}

// NewServices 创建并注入所有 Service 实例
func NewServices(deps Deps, cfg *config.Config) *Services {
	return &Services{
		Job: job.NewJobService(deps.Repos, deps.Cache, deps.Broker, deps.Fee, deps.Suggester,
			time.Duration(cfg.RedisConfig.MarketTTL)*time.Second),
		Order: order.NewOrderService(deps.Repos, deps.Cache, deps.Broker, deps.Notifier,
			time.Duration(cfg.RedisConfig.ApplyGuardTTL)*time.Second, cfg.MainConfig.ServiceQQ),
		Profile: profile.NewProfileService(deps.Repos, deps.Broker),
		Admin:   admin.NewAdminService(deps.Repos, cfg.AdminConfig),
	}
}

// Svc 全局 Services 实例
var Svc *Services

// InitServices 初始化全局 Services 实例
// 应在 main 中调用，在 Repository、缓存和 Broker 初始化之后
func InitServices(deps Deps, cfg *config.Config) *Services {
	Svc = NewServices(deps, cfg)
	return Svc
}
