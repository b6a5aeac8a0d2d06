package model

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt" // 密码哈希库
)

// hashSecret 使用 bcrypt 加密明文密码
func hashSecret(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// checkSecret 校验密码
// 早期数据以明文存储，非 bcrypt 格式时退化为常量时间的明文比较
func checkSecret(stored, plaintext string) bool {
	if stored == "" || plaintext == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plaintext)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(plaintext)) == 1
}
