package repository

import (
	"context"

	"cme-platform/internal/model"

	"gorm.io/gorm"
)

// DoctorFilter 医生查询条件
type DoctorFilter struct {
	IsVerified *bool
	Keyword    *string // 匹配职称、医院、科室、专长
}

func (f DoctorFilter) apply(db *gorm.DB) *gorm.DB {
	if f.IsVerified != nil {
		db = db.Where("is_verified = ?", *f.IsVerified)
	}
	if f.Keyword != nil && *f.Keyword != "" {
		db = containsAny(db, *f.Keyword, "title", "hospital", "department", "specialty")
	}
	return db
}

// DoctorRepository 医生数据仓储
type DoctorRepository struct {
	orm *gorm.DB
}

func NewDoctorRepository(db *gorm.DB) *DoctorRepository {
	return &DoctorRepository{orm: db}
}

func (r *DoctorRepository) WithTx(tx *gorm.DB) *DoctorRepository {
	return &DoctorRepository{orm: tx}
}

func (r *DoctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	return r.orm.WithContext(ctx).Create(doctor).Error
}

// GetByID 获取医生（含用户摘要）
func (r *DoctorRepository) GetByID(ctx context.Context, id string) (*model.Doctor, error) {
	var d model.Doctor
	if err := r.orm.WithContext(ctx).Preload("User").Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DoctorRepository) GetByUserID(ctx context.Context, userID string) (*model.Doctor, error) {
	var d model.Doctor
	if err := r.orm.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DoctorRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.orm.WithContext(ctx).Model(&model.Doctor{}).Where("id = ?", id).Updates(fields).Error
}

func (r *DoctorRepository) Query(ctx context.Context, filter DoctorFilter, page Page) ([]model.Doctor, int64, error) {
	var doctors []model.Doctor
	query := filter.apply(r.orm.WithContext(ctx).Model(&model.Doctor{}))
	total, err := findPage(query, page, &doctors, func(db *gorm.DB) *gorm.DB {
		return db.Preload("User").Order("created_at DESC")
	})
	return doctors, total, err
}
