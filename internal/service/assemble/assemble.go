// Package assemble 把数据库实体组装为响应结构
// 订单与简历的合并（AttachProfiles）在管理后台和家长后台共用
package assemble

import (
	"strings"
	"time"

	"tutor_match_server/internal/dto/request"
	"tutor_match_server/internal/dto/respond"
	"tutor_match_server/internal/model"

	"github.com/ecodeclub/ekit/slice"
)

const timeLayout = "2006-01-02 15:04:05"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

// Job 职位响应；withContact 为 false 时隐藏联系人和电话
func Job(job *model.Job, withContact bool) respond.JobRespond {
	rsp := respond.JobRespond{
		ID:             job.ID,
		Title:          job.Title,
		Grade:          job.Grade,
		Subject:        job.Subject,
		Price:          job.Price,
		Frequency:      job.Frequency,
		Address:        job.Address,
		Status:         job.Status.String(),
		SexRequirement: job.SexRequirement,
		CreatedAt:      formatTime(job.CreatedAt),
	}
	if withContact {
		rsp.ContactName = job.ContactName
		rsp.ContactPhone = job.ContactPhone
	}
	return rsp
}

// Jobs 批量转换
func Jobs(jobs []model.Job, withContact bool) []respond.JobRespond {
	return slice.Map(jobs, func(idx int, src model.Job) respond.JobRespond {
		return Job(&src, withContact)
	})
}

// Profile 简历响应，nil 进 nil 出
func Profile(p *model.StudentProfile) *respond.ProfileRespond {
	if p == nil {
		return nil
	}
	return &respond.ProfileRespond{
		Phone:             p.Phone,
		Name:              p.Name,
		School:            p.School,
		Major:             p.Major,
		Grade:             p.Grade,
		Experience:        p.Experience,
		Gender:            p.Gender,
		PreferredGrades:   p.PreferredGrades,
		PreferredSubjects: p.PreferredSubjects,
	}
}

// ProfileModel 简历请求转实体，手机号以登录手机号为准
func ProfileModel(studentPhone string, in *request.ProfileRequest) *model.StudentProfile {
	return &model.StudentProfile{
		Phone:             studentPhone,
		RawPassword:       in.Password,
		Name:              strings.TrimSpace(in.Name),
		School:            strings.TrimSpace(in.School),
		Major:             strings.TrimSpace(in.Major),
		Grade:             strings.TrimSpace(in.Grade),
		Experience:        strings.TrimSpace(in.Experience),
		Gender:            in.Gender,
		PreferredGrades:   strings.TrimSpace(in.PreferredGrades),
		PreferredSubjects: strings.TrimSpace(in.PreferredSubjects),
	}
}

// StudentOrder 学生视角的订单：终审通过前不返回家长联系方式
func StudentOrder(o *model.Order) respond.OrderRespond {
	return order(o, o.Status.ContactVisible())
}

// StudentOrders 批量转换
func StudentOrders(orders []model.Order) []respond.OrderRespond {
	return slice.Map(orders, func(idx int, src model.Order) respond.OrderRespond {
		return StudentOrder(&src)
	})
}

func order(o *model.Order, withContact bool) respond.OrderRespond {
	rsp := respond.OrderRespond{
		ID:             o.ID,
		JobId:          o.JobId,
		StudentContact: o.StudentContact,
		Status:         o.Status.Canonical().String(),
		CreatedAt:      formatTime(o.CreatedAt),
	}
	if o.Job != nil {
		j := Job(o.Job, withContact)
		rsp.Job = &j
	}
	return rsp
}

// DistinctPhones 订单中出现过的学生手机号，保持首次出现的顺序
func DistinctPhones(orders []model.Order) []string {
	seen := make(map[string]struct{}, len(orders))
	phones := make([]string, 0, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.StudentContact]; ok {
			continue
		}
		seen[o.StudentContact] = struct{}{}
		phones = append(phones, o.StudentContact)
	}
	return phones
}

// AttachProfiles 以订单为左表、按学生手机号左连接简历
// 找不到简历的订单 Profile 为 nil，不视为错误；返回顺序与 orders 一致
// 管理员和家长都能看到职位联系方式
func AttachProfiles(orders []model.Order, profiles []model.StudentProfile) []respond.OrderRespond {
	byPhone := make(map[string]*model.StudentProfile, len(profiles))
	for i := range profiles {
		byPhone[profiles[i].Phone] = &profiles[i]
	}
	return slice.Map(orders, func(idx int, src model.Order) respond.OrderRespond {
		rsp := order(&src, true)
		rsp.Profile = Profile(byPhone[src.StudentContact])
		return rsp
	})
}

// GroupByJob 按职位分组，组的顺序为职位首次出现的顺序
func GroupByJob(orders []respond.OrderRespond) []respond.JobApplicationsRespond {
	index := make(map[int64]int)
	groups := make([]respond.JobApplicationsRespond, 0)
	for _, o := range orders {
		i, ok := index[o.JobId]
		if !ok {
			g := respond.JobApplicationsRespond{Job: respond.JobRespond{ID: o.JobId}}
			if o.Job != nil {
				g.Job = *o.Job
			}
			groups = append(groups, g)
			i = len(groups) - 1
			index[o.JobId] = i
		}
		groups[i].Orders = append(groups[i].Orders, o)
	}
	return groups
}
