package repository

import (
	"context"

	"cme-platform/internal/model"

	"gorm.io/gorm"
)

// PostFilter 帖子查询条件
// Status 为空时排除已删除的帖子
type PostFilter struct {
	AuthorID *string
	Category *string
	Status   *string
	Keyword  *string // 匹配标题、内容
}

func (f PostFilter) apply(db *gorm.DB) *gorm.DB {
	if f.AuthorID != nil {
		db = db.Where("author_id = ?", *f.AuthorID)
	}
	if f.Category != nil {
		db = db.Where("category = ?", *f.Category)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	} else {
		db = db.Where("status <> ?", model.PostStatusDeleted)
	}
	if f.Keyword != nil && *f.Keyword != "" {
		db = containsAny(db, *f.Keyword, "title", "content")
	}
	return db
}

// PostRepository 帖子数据仓储
type PostRepository struct {
	orm *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{orm: db}
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.orm.WithContext(ctx).Create(post).Error
}

// GetByID 获取帖子（含作者摘要）
func (r *PostRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	if err := r.orm.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.orm.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).Updates(fields).Error
}

func (r *PostRepository) IncrementViewCount(ctx context.Context, id string) error {
	return r.orm.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).
		UpdateColumns(increment("view_count", 1)).Error
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	return r.orm.WithContext(ctx).Where("id = ?", id).Delete(&model.Post{}).Error
}

func (r *PostRepository) Query(ctx context.Context, filter PostFilter, page Page) ([]model.Post, int64, error) {
	var posts []model.Post
	query := filter.apply(r.orm.WithContext(ctx).Model(&model.Post{}))
	total, err := findPage(query, page, &posts, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Author").Order("created_at DESC")
	})
	return posts, total, err
}
