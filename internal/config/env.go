package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// loadDotEnv 加载 .env 文件到进程环境变量，文件不存在时忽略
// 已存在的环境变量不会被覆盖
func loadDotEnv() {
	if err := godotenv.Load(".env"); err != nil {
		_ = godotenv.Load("../../.env")
	}
}

// applyEnv 用环境变量覆盖敏感配置，避免口令和密钥写进配置文件
func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"TUTOR_ADMIN_DESKTOP_CODE":    &c.AdminConfig.DesktopCode,
		"TUTOR_ADMIN_MOBILE_CODE":     &c.AdminConfig.MobileCode,
		"TUTOR_JWT_SECRET":            &c.JWTConfig.Secret,
		"TUTOR_MYSQL_PASSWORD":        &c.MysqlConfig.Password,
		"TUTOR_REDIS_PASSWORD":        &c.RedisConfig.Password,
		"TUTOR_AI_API_KEY":            &c.AIConfig.APIKey,
		"TUTOR_SMS_ACCESS_KEY_ID":     &c.NotifyConfig.AccessKeyID,
		"TUTOR_SMS_ACCESS_KEY_SECRET": &c.NotifyConfig.AccessKeySecret,
	}
	for key, field := range overrides {
		if v, ok := os.LookupEnv(key); ok {
			*field = strings.TrimSpace(v)
		}
	}
}

// isPlaceholder 判断是否仍是示例配置里的占位值
func isPlaceholder(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return strings.HasPrefix(v, "your ") || strings.HasPrefix(v, "change-me") || strings.HasPrefix(v, "<")
}
