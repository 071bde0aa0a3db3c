package repository

import (
	"context"

	"cme-platform/internal/model"

	"gorm.io/gorm"
)

// OrderFilter 订单查询条件
type OrderFilter struct {
	UserID      *string
	Status      *string
	ProductType *string
}

func (f OrderFilter) apply(db *gorm.DB) *gorm.DB {
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.ProductType != nil {
		db = db.Where("product_type = ?", *f.ProductType)
	}
	return db
}

// OrderRepository 订单数据仓储
type OrderRepository struct {
	orm *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{orm: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.orm.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	if err := r.orm.WithContext(ctx).Preload("User").Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) GetByOrderNo(ctx context.Context, orderNo string) (*model.Order, error) {
	var o model.Order
	if err := r.orm.WithContext(ctx).Preload("User").Where("order_no = ?", orderNo).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// Transition 仅当订单仍处于 from 状态时更新，返回是否更新成功
func (r *OrderRepository) Transition(ctx context.Context, id, from string, fields map[string]interface{}) (bool, error) {
	res := r.orm.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	return res.RowsAffected > 0, res.Error
}

func (r *OrderRepository) Query(ctx context.Context, filter OrderFilter, page Page) ([]model.Order, int64, error) {
	var orders []model.Order
	query := filter.apply(r.orm.WithContext(ctx).Model(&model.Order{}))
	total, err := findPage(query, page, &orders, func(db *gorm.DB) *gorm.DB {
		return db.Preload("User").Order("created_at DESC")
	})
	return orders, total, err
}
