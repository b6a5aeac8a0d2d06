package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tutor_match_server",
	Short: "家教撮合平台服务端",
	Long: `家长发布家教职位，学生浏览申请，家长与管理员审核、确认信息费后解锁联系方式。

子命令:
  serve    启动 HTTP / WebSocket 服务
  migrate  建表并改写遗留订单状态
  fee      按配置的课时表试算信息费`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, feeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
