package repository

import (
	"context"

	"tutor_match_server/internal/model"
	"tutor_match_server/internal/workflow"

	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建 OrderRepository 实例
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create 新建申请
// 状态只能来自 workflow.Apply，调用方无法写入任意状态
func (r *orderRepository) Create(ctx context.Context, order *model.Order, step workflow.Step) error {
	order.Status = step.To()
	if err := r.db.WithContext(ctx).Omit("Job").Create(order).Error; err != nil {
		return wrapDBErrorf(err, "创建订单 job_id=%d", order.JobId)
	}
	return nil
}

func (r *orderRepository) FindById(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).Preload("Job").First(&order, id).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询订单 id=%d", id)
	}
	return &order, nil
}

func (r *orderRepository) FindByStudent(ctx context.Context, phone string) ([]model.Order, error) {
	var orders []model.Order
	if err := r.db.WithContext(ctx).Preload("Job").
		Where("student_contact = ?", phone).
		Order("created_at DESC").Order("id DESC").
		Find(&orders).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询学生订单 phone=%s", phone)
	}
	return orders, nil
}

// FindByStatuses 按状态筛选，遗留的 pending/approved 一并匹配
func (r *orderRepository) FindByStatuses(ctx context.Context, statuses []workflow.OrderStatus) ([]model.Order, error) {
	db := r.db.WithContext(ctx).Preload("Job")
	if len(statuses) > 0 {
		db = db.Where("status IN ?", workflow.StoredAliases(statuses))
	}
	var orders []model.Order
	if err := db.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, wrapDBError(err, "按状态查询订单")
	}
	return orders, nil
}

func (r *orderRepository) FindByJobIds(ctx context.Context, jobIds []int64) ([]model.Order, error) {
	if len(jobIds) == 0 {
		return []model.Order{}, nil
	}
	var orders []model.Order
	if err := r.db.WithContext(ctx).
		Where("job_id IN ?", jobIds).
		Order("created_at DESC").Order("id DESC").
		Find(&orders).Error; err != nil {
		return nil, wrapDBError(err, "按职位查询订单")
	}
	return orders, nil
}

// FindActive 查找 (职位, 学生) 上未被拒绝的订单
func (r *orderRepository) FindActive(ctx context.Context, jobId int64, phone string) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).
		Where("job_id = ? AND student_contact = ? AND status <> ?", jobId, phone, workflow.OrderRejected).
		Order("id DESC").
		First(&order).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询有效订单 job_id=%d phone=%s", jobId, phone)
	}
	return &order, nil
}

func (r *orderRepository) JobIdsByStudent(ctx context.Context, phone string) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("student_contact = ?", phone).
		Distinct().Pluck("job_id", &ids).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询学生申请过的职位 phone=%s", phone)
	}
	return ids, nil
}

// UpdateStatus 普通的 UPDATE ... WHERE id = ?，没有版本号，后写覆盖先写
func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, step workflow.Step) error {
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", id).
		Update("status", step.To()).Error
	return wrapDBErrorf(err, "更新订单状态 id=%d", id)
}

func (r *orderRepository) DeleteByJobId(ctx context.Context, jobId int64) error {
	if err := r.db.WithContext(ctx).Where("job_id = ?", jobId).Delete(&model.Order{}).Error; err != nil {
		return wrapDBErrorf(err, "删除职位订单 job_id=%d", jobId)
	}
	return nil
}

// MigrateLegacyStatuses pending -> applying，approved -> final_approved
func (r *orderRepository) MigrateLegacyStatuses(ctx context.Context) (int64, error) {
	var total int64
	for _, legacy := range []workflow.OrderStatus{workflow.OrderLegacyPending, workflow.OrderLegacyApproved} {
		res := r.db.WithContext(ctx).Model(&model.Order{}).
			Where("status = ?", legacy).
			Update("status", legacy.Canonical())
		if res.Error != nil {
			return total, wrapDBErrorf(res.Error, "迁移遗留订单状态 %s", legacy)
		}
		total += res.RowsAffected
	}
	return total, nil
}
