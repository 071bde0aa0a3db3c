package repository

import (
	"context"

	"cme-platform/internal/model"

	"gorm.io/gorm"
)

// ResourceFilter 资源查询条件
type ResourceFilter struct {
	Status   *string
	Type     *string
	Category *string
	Keyword  *string
}

func (f ResourceFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.Type != nil {
		db = db.Where("type = ?", *f.Type)
	}
	if f.Category != nil {
		db = db.Where("category = ?", *f.Category)
	}
	if f.Keyword != nil && *f.Keyword != "" {
		db = containsAny(db, *f.Keyword, "title", "description")
	}
	return db
}

// ResourceRepository 资源数据仓储
type ResourceRepository struct {
	orm *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{orm: db}
}

func (r *ResourceRepository) Create(ctx context.Context, resource *model.Resource) error {
	return r.orm.WithContext(ctx).Create(resource).Error
}

func (r *ResourceRepository) GetByID(ctx context.Context, id string) (*model.Resource, error) {
	var res model.Resource
	if err := r.orm.WithContext(ctx).Where("id = ?", id).First(&res).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ResourceRepository) IncrementViewCount(ctx context.Context, id string) error {
	return r.orm.WithContext(ctx).Model(&model.Resource{}).Where("id = ?", id).
		UpdateColumns(increment("view_count", 1)).Error
}

func (r *ResourceRepository) Query(ctx context.Context, filter ResourceFilter, page Page) ([]model.Resource, int64, error) {
	var resources []model.Resource
	query := filter.apply(r.orm.WithContext(ctx).Model(&model.Resource{}))
	total, err := findPage(query, page, &resources, func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	})
	return resources, total, err
}
