// Package workflow 定义订单与职位的状态机
// 所有状态变更都必须经过本包的 Transition 函数得到 Step，仓储层只接受 Step，
// 从而避免业务代码直接写入任意状态字符串
package workflow

import (
	"tutor_match_server/pkg/errorx"
)

// Role 触发状态变更的角色
type Role string

const (
	RoleStudent Role = "student" // 学生（以手机号标识）
	RoleParent  Role = "parent"  // 家长（手机号 + 管理密码）
	RoleAdmin   Role = "admin"   // 运营管理员
	RoleSystem  Role = "system"  // 系统联动（如终审后职位自动下架）
)

// OrderStatus 订单状态
// 同一个类型同时覆盖新版五段式流程和早期的两段式审核（pending/approved）
type OrderStatus string

const (
	OrderApplying       OrderStatus = "applying"        // 学生已申请，等待家长/管理员处理
	OrderParentApproved OrderStatus = "parent_approved" // 家长同意，等待学生支付信息费
	OrderPaymentPending OrderStatus = "payment_pending" // 学生声明已支付，等待管理员确认
	OrderFinalApproved  OrderStatus = "final_approved"  // 终审通过，学生可见家长联系方式
	OrderRejected       OrderStatus = "rejected"        // 已拒绝（终态）

	// 早期两段式审核遗留的取值，只在读取旧数据时出现
	OrderLegacyPending  OrderStatus = "pending"
	OrderLegacyApproved OrderStatus = "approved"
)

// ParseOrderStatus 解析外部传入的状态字符串，两套取值都接受
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if !st.Valid() {
		return "", errorx.Newf(errorx.CodeInvalidParam, "未知的订单状态: %s", s)
	}
	return st, nil
}

// Valid 是否为已定义的取值
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderApplying, OrderParentApproved, OrderPaymentPending, OrderFinalApproved, OrderRejected,
		OrderLegacyPending, OrderLegacyApproved:
		return true
	}
	return false
}

// IsLegacy 是否为早期两段式审核的取值
func (s OrderStatus) IsLegacy() bool {
	return s == OrderLegacyPending || s == OrderLegacyApproved
}

// Canonical 把遗留取值映射到新版流程
//   - pending  -> applying
//   - approved -> final_approved
func (s OrderStatus) Canonical() OrderStatus {
	switch s {
	case OrderLegacyPending:
		return OrderApplying
	case OrderLegacyApproved:
		return OrderFinalApproved
	}
	return s
}

// IsActive 非 rejected 的订单都算有效申请，同一 (职位, 学生) 最多一条
func (s OrderStatus) IsActive() bool {
	return s.Canonical() != OrderRejected
}

// IsTerminal 是否为终态
func (s OrderStatus) IsTerminal() bool {
	c := s.Canonical()
	return c == OrderFinalApproved || c == OrderRejected
}

// ContactVisible 学生是否可以看到家长联系方式
func (s OrderStatus) ContactVisible() bool {
	return s.Canonical() == OrderFinalApproved
}

func (s OrderStatus) String() string {
	return string(s)
}

// StoredAliases 返回查询数据库时需要匹配的全部取值
// 旧数据可能仍以 pending/approved 存储，按新版状态筛选时要把它们一起查出来
func StoredAliases(statuses []OrderStatus) []string {
	seen := make(map[OrderStatus]struct{}, len(statuses)+2)
	res := make([]string, 0, len(statuses)+2)
	add := func(s OrderStatus) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		res = append(res, string(s))
	}
	for _, s := range statuses {
		c := s.Canonical()
		add(c)
		switch c {
		case OrderApplying:
			add(OrderLegacyPending)
		case OrderFinalApproved:
			add(OrderLegacyApproved)
		}
	}
	return res
}

// orderTransitions 订单状态流转表：from -> to -> 允许触发的角色
var orderTransitions = map[OrderStatus]map[OrderStatus][]Role{
	OrderApplying: {
		OrderParentApproved: {RoleParent, RoleAdmin},
		OrderRejected:       {RoleParent, RoleAdmin},
	},
	OrderParentApproved: {
		OrderPaymentPending: {RoleStudent},
		OrderRejected:       {RoleAdmin},
	},
	OrderPaymentPending: {
		OrderFinalApproved: {RoleAdmin},
		OrderRejected:      {RoleAdmin},
	},
}

// legacyTransitions 早期两段式审核的直接通过：管理员把申请中的订单直接置为 approved，
// 落库时写入规范化后的 final_approved；拒绝沿用 orderTransitions 中的 applying -> rejected
var legacyTransitions = map[OrderStatus]map[OrderStatus][]Role{
	OrderApplying: {
		OrderLegacyApproved: {RoleAdmin},
	},
}

// Step 一次合法的订单状态变更
// 字段不导出，只能通过 Apply / Transition 构造
type Step struct {
	from OrderStatus
	to   OrderStatus
	role Role
}

// From 变更前状态（已规范化）
func (s Step) From() OrderStatus { return s.from }

// To 变更后状态
func (s Step) To() OrderStatus { return s.to }

// Role 触发角色
func (s Step) Role() Role { return s.role }

// RetiresJob 终审通过时职位需要同步置为 taken
func (s Step) RetiresJob() bool { return s.to == OrderFinalApproved }

// IsCreation 是否为新建申请
func (s Step) IsCreation() bool { return s.from == "" }

// Apply 新建申请：(无) -> applying，仅学生可触发
func Apply(role Role) (Step, error) {
	if role != RoleStudent {
		return Step{}, errorx.Newf(errorx.CodeForbidden, "角色 %s 不能创建申请", role)
	}
	return Step{to: OrderApplying, role: role}, nil
}

// Transition 校验并返回一次订单状态变更
// from 允许是遗留取值，会先规范化；to 为 approved 时按两段式审核处理，Step.To 为 final_approved
func Transition(from, to OrderStatus, role Role) (Step, error) {
	if !from.Valid() || !to.Valid() {
		return Step{}, errorx.Newf(errorx.CodeIllegalTransition, "订单状态不能从 %s 变更为 %s", from, to)
	}
	cur := from.Canonical()
	table := orderTransitions
	if to.IsLegacy() {
		table = legacyTransitions
	}
	roles, ok := table[cur][to]
	if !ok {
		return Step{}, errorx.Newf(errorx.CodeIllegalTransition, "订单状态不能从 %s 变更为 %s", cur, to)
	}
	for _, r := range roles {
		if r == role {
			return Step{from: cur, to: to.Canonical(), role: role}, nil
		}
	}
	return Step{}, errorx.Newf(errorx.CodeForbidden, "角色 %s 无权把订单从 %s 变更为 %s", role, cur, to)
}

// CanTransition 仅判断是否合法
func CanTransition(from, to OrderStatus, role Role) bool {
	_, err := Transition(from, to, role)
	return err == nil
}
