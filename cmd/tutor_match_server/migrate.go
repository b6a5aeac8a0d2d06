package main

import (
	"context"
	"fmt"

	"tutor_match_server/internal/config"
	dao "tutor_match_server/internal/dao/mysql"
	"tutor_match_server/internal/dao/mysql/repository"
	"tutor_match_server/internal/infrastructure/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "建表并把 pending / approved 等遗留订单状态改写为新版取值",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := config.GetConfig()
		if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer func() { _ = zap.L().Sync() }()

		db, err := dao.Open(&conf.MysqlConfig)
		if err != nil {
			return err
		}
		defer func() { _ = dao.Close(db) }()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		n, err := dao.MigrateAll(ctx, db)
		if err != nil {
			return err
		}
		caps := repository.NewRepositories(db).Caps()
		fmt.Fprintf(cmd.OutOrStdout(), "migrated: %d legacy orders rewritten, jobs.status column present: %v\n", n, caps.HasJobStatus)
		return nil
	},
}
