// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找，敏感项可由环境变量 / .env 覆盖
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml" // TOML 配置文件解析库
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName   string `toml:"appName"`   // 应用名称，用于日志标识等
	Host      string `toml:"host"`      // 服务器监听地址，如 "0.0.0.0"
	Port      int    `toml:"port"`      // 服务器监听端口，如 8000
	Mode      string `toml:"mode"`      // 运行模式：dev / release
	ForceTLS  bool   `toml:"forceTLS"`  // 是否把 HTTP 请求重定向到 HTTPS（由 Nginx 终止 TLS 时关闭）
	ServiceQQ string `toml:"serviceQQ"` // 客服 QQ，展示在学生订单页
}

// MysqlConfig 数据库连接配置
type MysqlConfig struct {
	Driver       string `toml:"driver"`       // mysql 或 sqlite
	Host         string `toml:"host"`         // MySQL 服务器地址
	Port         int    `toml:"port"`         // MySQL 端口，默认 3306
	User         string `toml:"user"`         // 数据库用户名
	Password     string `toml:"password"`     // 数据库密码
	DatabaseName string `toml:"databaseName"` // 数据库名称
	SqlitePath   string `toml:"sqlitePath"`   // sqlite 文件路径（本地开发用）
	AutoMigrate  bool   `toml:"autoMigrate"`  // 启动时自动建表；关闭时沿用现有表结构（可能缺少 status 列）
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host          string `toml:"host"`          // Redis 服务器地址
	Port          int    `toml:"port"`          // Redis 端口，默认 6379
	Password      string `toml:"password"`      // Redis 密码，无密码留空
	Db            int    `toml:"db"`            // Redis 数据库编号，默认 0
	WorkerNum     int    `toml:"workerNum"`     // 异步任务 worker 数
	TaskChanSize  int    `toml:"taskChanSize"`  // 异步任务队列长度
	MarketTTL     int    `toml:"marketTTL"`     // 职位广场缓存有效期（秒）
	ApplyGuardTTL int    `toml:"applyGuardTTL"` // 防重复申请锁有效期（秒）
}

// NotifyConfig 订单状态短信通知配置（阿里云 SMS）
type NotifyConfig struct {
	AccessKeyID     string `toml:"accessKeyID"`     // 阿里云 AccessKey ID
	AccessKeySecret string `toml:"accessKeySecret"` // 阿里云 AccessKey Secret
	SignName        string `toml:"signName"`        // 短信签名名称
	TemplateCode    string `toml:"templateCode"`    // 短信模板 Code
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// KafkaConfig 变更通知的投递方式
type KafkaConfig struct {
	MessageMode string        `toml:"messageMode"` // "channel"（单机）或 "kafka"（多实例）
	HostPort    string        `toml:"hostPort"`    // Kafka 服务器地址，如 "localhost:9092"
	ChangeTopic string        `toml:"changeTopic"` // 表变更通知主题
	Partition   int           `toml:"partition"`   // 分区数
	Timeout     time.Duration `toml:"timeout"`     // 超时时间（秒）
	GroupPrefix string        `toml:"groupPrefix"` // 消费组前缀，每个实例独立消费组以收到全部通知
}

// JWTConfig 管理员会话 Token 配置
type JWTConfig struct {
	Secret             string `toml:"secret"`             // JWT 签名密钥，建议 32 字符以上
	AdminSessionExpiry int    `toml:"adminSessionExpiry"` // 管理员会话有效期（分钟）
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 雪花算法节点 ID，范围 0-1023，分布式部署时每台机器需唯一
}

// AdminConfig 管理入口口令
// 桌面端与移动端各一个，留空表示关闭该入口
type AdminConfig struct {
	DesktopCode string `toml:"desktopCode"`
	MobileCode  string `toml:"mobileCode"`
}

// FeeConfig 信息费配置
type FeeConfig struct {
	TablePath string `toml:"tablePath"` // 课时表 YAML 路径，留空使用内置表
}

// AIConfig 职位标题/价格建议所用的大模型（OpenAI 兼容接口）
type AIConfig struct {
	BaseURL string `toml:"baseURL"`
	APIKey  string `toml:"apiKey"`
	Model   string `toml:"model"`
	Timeout int    `toml:"timeout"` // 秒
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`      // 主配置
	MysqlConfig     `toml:"mysqlConfig"`     // 数据库配置
	RedisConfig     `toml:"redisConfig"`     // Redis 配置
	NotifyConfig    `toml:"notifyConfig"`    // 短信通知配置
	LogConfig       `toml:"logConfig"`       // 日志配置
	KafkaConfig     `toml:"kafkaConfig"`     // Kafka 配置
	JWTConfig       `toml:"jwtConfig"`       // JWT 配置
	SnowflakeConfig `toml:"snowflakeConfig"` // 雪花算法配置
	AdminConfig     `toml:"adminConfig"`     // 管理入口配置
	FeeConfig       `toml:"feeConfig"`       // 信息费配置
	AIConfig        `toml:"aiConfig"`        // 大模型配置
}

// config 全局配置单例，延迟加载
var config *Config

// candidatePaths 候选配置文件路径（优先加载本地配置）
var candidatePaths = []string{
	"configs/config_local.toml",       // 本地开发配置（优先）
	"configs/config.toml",             // 默认配置
	"../../configs/config_local.toml", // 从子目录运行时的路径
	"../../configs/config.toml",       // 从子目录运行时的路径
}

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	return loadFrom(config, candidatePaths)
}

func loadFrom(cfg *Config, paths []string) error {
	for _, path := range paths {
		if _, err := toml.DecodeFile(path, cfg); err == nil {
			return nil // 加载成功
		}
	}
	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会加载 .env、配置文件，并应用环境变量覆盖
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		loadDotEnv()
		_ = LoadConfig() // 忽略加载错误，使用默认值
		config.applyDefaults()
		config.applyEnv()
	}
	return config
}

// SetConfig 替换全局配置（测试与命令行覆盖使用）
func SetConfig(cfg *Config) {
	config = cfg
}

// applyDefaults 补齐未配置项
func (c *Config) applyDefaults() {
	if c.MainConfig.Mode == "" {
		c.MainConfig.Mode = "dev"
	}
	if c.MainConfig.Port == 0 {
		c.MainConfig.Port = 8000
	}
	if c.MainConfig.ServiceQQ == "" {
		c.MainConfig.ServiceQQ = "1400470321"
	}
	if c.MysqlConfig.Driver == "" {
		c.MysqlConfig.Driver = "mysql"
	}
	if c.RedisConfig.WorkerNum == 0 {
		c.RedisConfig.WorkerNum = 4
	}
	if c.RedisConfig.TaskChanSize == 0 {
		c.RedisConfig.TaskChanSize = 256
	}
	if c.RedisConfig.MarketTTL == 0 {
		c.RedisConfig.MarketTTL = 60
	}
	if c.RedisConfig.ApplyGuardTTL == 0 {
		c.RedisConfig.ApplyGuardTTL = 5
	}
	if c.KafkaConfig.MessageMode == "" {
		c.KafkaConfig.MessageMode = "channel"
	}
	if c.KafkaConfig.ChangeTopic == "" {
		c.KafkaConfig.ChangeTopic = "tutor_table_changes"
	}
	if c.KafkaConfig.GroupPrefix == "" {
		c.KafkaConfig.GroupPrefix = "tutor_feed"
	}
	if c.JWTConfig.AdminSessionExpiry == 0 {
		c.JWTConfig.AdminSessionExpiry = 12 * 60
	}
	if c.AIConfig.Timeout == 0 {
		c.AIConfig.Timeout = 15
	}
}

// Validate 检查会导致服务无法正常工作的配置错误
func (c *Config) Validate() error {
	if c.JWTConfig.Secret == "" {
		return fmt.Errorf("jwtConfig.secret 未配置")
	}
	switch c.KafkaConfig.MessageMode {
	case "channel", "kafka":
	default:
		return fmt.Errorf("kafkaConfig.messageMode 只能是 channel 或 kafka，当前为 %q", c.KafkaConfig.MessageMode)
	}
	switch c.MysqlConfig.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("mysqlConfig.driver 只能是 mysql 或 sqlite，当前为 %q", c.MysqlConfig.Driver)
	}
	for name, code := range map[string]string{"desktopCode": c.AdminConfig.DesktopCode, "mobileCode": c.AdminConfig.MobileCode} {
		if isPlaceholder(code) {
			return fmt.Errorf("adminConfig.%s 仍是占位值，请修改或留空关闭该入口", name)
		}
	}
	return nil
}
