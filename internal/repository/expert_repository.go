package repository

import (
	"context"

	"cme-platform/internal/model"

	"gorm.io/gorm"
)

// ExpertFilter 专家查询条件
type ExpertFilter struct {
	IsFeatured *bool
	Keyword    *string // 匹配医生昵称、医院、科室
}

func (f ExpertFilter) apply(db *gorm.DB) *gorm.DB {
	if f.IsFeatured != nil {
		db = db.Where("expert.is_featured = ?", *f.IsFeatured)
	}
	if f.Keyword != nil && *f.Keyword != "" {
		db = db.Joins("JOIN doctor ON doctor.id = expert.doctor_id").
			Joins("JOIN user_account ON user_account.id = doctor.user_id")
		db = containsAny(db, *f.Keyword, "user_account.nickname", "doctor.hospital", "doctor.department")
	}
	return db
}

// ExpertRepository 专家数据仓储
type ExpertRepository struct {
	orm *gorm.DB
}

func NewExpertRepository(db *gorm.DB) *ExpertRepository {
	return &ExpertRepository{orm: db}
}

func (r *ExpertRepository) Create(ctx context.Context, expert *model.Expert) error {
	return r.orm.WithContext(ctx).Create(expert).Error
}

// GetByID 获取专家（含医生及其用户摘要）
func (r *ExpertRepository) GetByID(ctx context.Context, id string) (*model.Expert, error) {
	var e model.Expert
	if err := r.orm.WithContext(ctx).Preload("Doctor.User").Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// Query 推荐优先，其次按排序值升序、创建时间倒序
func (r *ExpertRepository) Query(ctx context.Context, filter ExpertFilter, page Page) ([]model.Expert, int64, error) {
	var experts []model.Expert
	query := filter.apply(r.orm.WithContext(ctx).Model(&model.Expert{}))
	total, err := findPage(query, page, &experts, func(db *gorm.DB) *gorm.DB {
		return db.Select("expert.*").
			Preload("Doctor.User").
			Order("expert.is_featured DESC, expert.sort_order ASC, expert.created_at DESC")
	})
	return experts, total, err
}
