// Package recommend 根据学生的意向年级/科目判断职位是否推荐高亮
package recommend

import (
	"strings"
	"unicode"

	"tutor_match_server/internal/model"

	"golang.org/x/text/width"
)

// Tokens 把逗号、全角逗号或空白分隔的偏好拆成词
// 全角字符先转半角，空词丢弃，重复词保留（不影响判断）
func Tokens(s string) []string {
	narrow := width.Narrow.String(s)
	return strings.FieldsFunc(narrow, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// IsRecommended 职位是否命中学生偏好
// 两类偏好都为空时不推荐；否则任一年级词出现在职位年级或标题中，
// 或任一科目词出现在职位科目或标题中，即推荐
func IsRecommended(job *model.Job, profile *model.StudentProfile) bool {
	if job == nil || profile == nil {
		return false
	}
	grades := Tokens(profile.PreferredGrades)
	subjects := Tokens(profile.PreferredSubjects)
	if len(grades) == 0 && len(subjects) == 0 {
		return false
	}
	// 职位字段与偏好词一样先转半角再比较
	grade := width.Narrow.String(job.Grade)
	subject := width.Narrow.String(job.Subject)
	title := width.Narrow.String(job.Title)
	for _, g := range grades {
		if strings.Contains(grade, g) || strings.Contains(title, g) {
			return true
		}
	}
	for _, s := range subjects {
		if strings.Contains(subject, s) || strings.Contains(title, s) {
			return true
		}
	}
	return false
}
