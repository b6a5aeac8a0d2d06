// Package https_server 提供 HTTP/HTTPS 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件和路由
package https_server

import (
	"tutor_match_server/internal/config"                    // 配置管理
	"tutor_match_server/internal/handler"                   // Handler 聚合对象
	"tutor_match_server/internal/infrastructure/logger"     // 自定义日志中间件
	"tutor_match_server/internal/infrastructure/metrics"    // 请求耗时指标
	"tutor_match_server/internal/infrastructure/middleware" // TLS 重定向
	"tutor_match_server/internal/router"                    // 路由注册

	"github.com/gin-contrib/cors" // CORS 跨域中间件
	"github.com/gin-gonic/gin"    // Gin Web 框架
)

// Init 初始化 HTTP/HTTPS 服务器并返回 Gin 引擎实例
// 配置顺序：
//  1. 创建 Gin 引擎（空白，不含默认中间件）
//  2. 注册日志、恢复和指标中间件
//  3. 配置 CORS 跨域规则
//  4. forceTLS 打开时挂载 HTTPS 重定向
//  5. 注册业务路由
func Init(handlers *handler.Handlers, cfg *config.Config) *gin.Engine {
	if cfg.MainConfig.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	// GinLogger 记录每个请求的路径、状态码和耗时
	engine.Use(logger.GinLogger())
	// 参数 true 表示在日志中包含堆栈信息
	engine.Use(logger.GinRecovery(true))
	engine.Use(metrics.GinMetrics())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // 前端部署在独立域名
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	// 由 Nginx 终止 TLS 时关闭 forceTLS
	if cfg.MainConfig.ForceTLS {
		engine.Use(middleware.TlsHandler(cfg.MainConfig.Host, cfg.MainConfig.Port, cfg.MainConfig.Mode != "release"))
	}

	rt := router.NewRouter(handlers)
	rt.RegisterRoutes(engine)

	return engine
}
