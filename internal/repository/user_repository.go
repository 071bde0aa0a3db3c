package repository

import (
	"context"

	"cme-platform/internal/model"

	"gorm.io/gorm"
)

// UserFilter 用户查询条件，nil 字段不参与过滤
type UserFilter struct {
	Role    *string
	Status  *string
	Keyword *string // 匹配邮箱、昵称、手机号
}

func (f UserFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Role != nil {
		db = db.Where("role = ?", *f.Role)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.Keyword != nil && *f.Keyword != "" {
		db = containsAny(db, *f.Keyword, "email", "nickname", "phone")
	}
	return db
}

// UserRepository 用户数据仓储
type UserRepository struct {
	orm *gorm.DB
}

// NewUserRepository 创建UserRepository实例
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{orm: db}
}

// WithTx 在事务中使用
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{orm: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.orm.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).Where("phone = ?", phone).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByNickname 昵称不唯一，取最早注册的用户
func (r *UserRepository) GetByNickname(ctx context.Context, nickname string) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).Where("nickname = ?", nickname).Order("created_at ASC").First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Exists 用户是否存在
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.orm.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Update 按字段更新
func (r *UserRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.orm.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

// ChangeRole 仅当当前角色为 from 时改为 to，返回是否修改
func (r *UserRepository) ChangeRole(ctx context.Context, id, from, to string) (bool, error) {
	res := r.orm.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND role = ?", id, from).
		Update("role", to)
	return res.RowsAffected > 0, res.Error
}

// Delete 物理删除
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.orm.WithContext(ctx).Where("id = ?", id).Delete(&model.User{}).Error
}

// Query 分页查询，按注册时间倒序
func (r *UserRepository) Query(ctx context.Context, filter UserFilter, page Page) ([]model.User, int64, error) {
	var users []model.User
	query := filter.apply(r.orm.WithContext(ctx).Model(&model.User{}))
	total, err := findPage(query, page, &users, func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	})
	return users, total, err
}
