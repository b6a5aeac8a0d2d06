// Package snowflake 生成全局唯一 ID，用于变更事件和请求追踪
package snowflake

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
)

// Init 初始化雪花算法节点，多次调用只有第一次生效
// machineID 超出 0-1023 时退回 1，多实例部署需各自配置不同的值
func Init(machineID int64) {
	nodeOnce.Do(func() {
		if machineID < 0 || machineID > 1023 {
			zap.L().Warn("invalid snowflake machine id, using 1", zap.Int64("machineID", machineID))
			machineID = 1
		}
		var err error
		node, err = snowflake.NewNode(machineID)
		if err != nil {
			zap.L().Fatal("failed to initialize snowflake node", zap.Error(err))
		}
	})
}

// GenerateID 生成雪花 ID
func GenerateID() int64 {
	Init(1)
	return node.Generate().Int64()
}

// GenerateIDString 字符串形式，避免前端 JS 精度丢失
func GenerateIDString() string {
	Init(1)
	return node.Generate().String()
}
