package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"tutor_match_server/internal/config"
	dao "tutor_match_server/internal/dao/mysql"
	myredis "tutor_match_server/internal/dao/redis"
	"tutor_match_server/internal/fee"
	"tutor_match_server/internal/handler"
	"tutor_match_server/internal/https_server"
	"tutor_match_server/internal/infrastructure/ai"
	"tutor_match_server/internal/infrastructure/logger"
	"tutor_match_server/internal/infrastructure/sms"
	"tutor_match_server/internal/realtime"
	"tutor_match_server/internal/service"
	"tutor_match_server/pkg/util/jwt"
	"tutor_match_server/pkg/util/snowflake"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP / WebSocket 服务",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. 加载配置
	conf := config.GetConfig()
	if err := conf.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = zap.L().Sync() }()
	zap.L().Info("日志初始化成功")

	// 3. 雪花 ID（变更事件 ID）
	snowflake.Init(conf.SnowflakeConfig.MachineID)

	// 4. 初始化数据库
	repos, db, err := dao.Init(&conf.MysqlConfig)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer func() {
		if err := dao.Close(db); err != nil {
			zap.L().Warn("close database failed", zap.Error(err))
		}
	}()
	zap.L().Info("数据库初始化成功")

	// 5. 初始化 Redis（异步任务池随之启动）
	cache, err := myredis.Init(&conf.RedisConfig)
	if err != nil {
		return fmt.Errorf("init redis: %w", err)
	}
	defer cache.Close()
	zap.L().Info("Redis 初始化成功")

	// 6. 初始化 JWT
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AdminSessionExpiry)

	// 7. 短信、信息费课时表、AI
	notifier, err := sms.New(conf.NotifyConfig, cache)
	if err != nil {
		return fmt.Errorf("init sms: %w", err)
	}
	table, err := loadFeeTable(conf.FeeConfig.TablePath)
	if err != nil {
		return err
	}

	// 8. 变更通知
	hub := realtime.NewHub()
	broker := realtime.NewBroker(conf.KafkaConfig, hub)
	go broker.Start(ctx)
	defer func() {
		if err := broker.Close(); err != nil {
			zap.L().Warn("close broker failed", zap.Error(err))
		}
	}()
	zap.L().Info("变更通知初始化成功", zap.String("mode", conf.KafkaConfig.MessageMode))

	// 9. 初始化 Service 层 (依赖注入)
	svc := service.InitServices(service.Deps{
		Repos:     repos,
		Cache:     cache,
		Broker:    broker,
		Notifier:  notifier,
		Suggester: ai.New(conf.AIConfig),
		Fee:       fee.NewCalculator(table),
	}, conf)

	// 10. 初始化 HTTP 服务器
	if err := handler.InitTrans("zh"); err != nil {
		return fmt.Errorf("init validator translation: %w", err)
	}
	engine := https_server.Init(handler.NewHandlers(svc, hub), conf)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		zap.L().Info("关闭服务器...")
	case err := <-errCh:
		return fmt.Errorf("server running fault: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Warn("graceful shutdown failed", zap.Error(err))
	}
	zap.L().Info("服务器已关闭")
	return nil
}

// loadFeeTable 未配置路径时返回 nil，使用内置课时表
func loadFeeTable(path string) (*fee.Table, error) {
	if path == "" {
		return nil, nil
	}
	table, err := fee.LoadTableFile(path)
	if err != nil {
		return nil, fmt.Errorf("load fee table %s: %w", path, err)
	}
	return table, nil
}
