// Package phone 手机号校验
package phone

import (
	"regexp"
	"strings"

	"tutor_match_server/pkg/constants"
)

var pattern = regexp.MustCompile(constants.PHONE_PATTERN)

// Valid 是否为 11 位数字
func Valid(s string) bool {
	return pattern.MatchString(s)
}

// Normalize 去掉首尾空白
func Normalize(s string) string {
	return strings.TrimSpace(s)
}
