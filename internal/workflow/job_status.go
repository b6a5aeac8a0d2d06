package workflow

import (
	"tutor_match_server/pkg/errorx"
)

// JobStatus 职位生命周期
type JobStatus string

const (
	JobPending   JobStatus = "pending"   // 家长刚提交，等待审核
	JobPublished JobStatus = "published" // 已发布，出现在广场
	JobRejected  JobStatus = "rejected"  // 审核不通过
	JobTaken     JobStatus = "taken"     // 已有订单终审通过，从广场下架
)

// ParseJobStatus 解析职位状态
func ParseJobStatus(s string) (JobStatus, error) {
	st := JobStatus(s)
	switch st {
	case JobPending, JobPublished, JobRejected, JobTaken:
		return st, nil
	}
	return "", errorx.Newf(errorx.CodeInvalidParam, "未知的职位状态: %s", s)
}

func (s JobStatus) String() string {
	return string(s)
}

// jobTransitions 职位状态流转表
var jobTransitions = map[JobStatus]map[JobStatus][]Role{
	JobPending: {
		JobPublished: {RoleAdmin},
		JobRejected:  {RoleAdmin},
	},
	JobPublished: {
		JobTaken: {RoleSystem},
	},
	// 重新上架：撮合失败后允许新的学生申请，旧订单保持原样
	JobTaken: {
		JobPublished: {RoleAdmin},
	},
}

// JobStep 一次合法的职位状态变更
type JobStep struct {
	from JobStatus
	to   JobStatus
	role Role
}

func (s JobStep) From() JobStatus { return s.from }
func (s JobStep) To() JobStatus   { return s.to }
func (s JobStep) Role() Role      { return s.role }

// Active 旧版 is_active 字段与 published 保持一致
func (s JobStep) Active() bool { return s.to == JobPublished }

// JobTransition 校验并返回一次职位状态变更
func JobTransition(from, to JobStatus, role Role) (JobStep, error) {
	roles, ok := jobTransitions[from][to]
	if !ok {
		return JobStep{}, errorx.Newf(errorx.CodeIllegalTransition, "职位状态不能从 %s 变更为 %s", from, to)
	}
	for _, r := range roles {
		if r == role {
			return JobStep{from: from, to: to, role: role}, nil
		}
	}
	return JobStep{}, errorx.Newf(errorx.CodeForbidden, "角色 %s 无权把职位从 %s 变更为 %s", role, from, to)
}
