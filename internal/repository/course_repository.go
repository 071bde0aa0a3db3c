package repository

import (
	"context"
	"time"

	"cme-platform/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 课程排序方式
const (
	SortLatest  = "latest"
	SortPopular = "popular"
	SortPrice   = "price"
)

// CourseFilter 课程查询条件
type CourseFilter struct {
	CategoryID *string
	Department *string // 按父分类名称匹配
	AuthorID   *string
	Status     *string
	IsFree     *bool
	Keyword    *string // 匹配标题、描述
	ExcludeID  *string
	SortBy     string
}

func (f CourseFilter) apply(db *gorm.DB) *gorm.DB {
	if f.CategoryID != nil {
		db = db.Where("category_id = ?", *f.CategoryID)
	}
	if f.AuthorID != nil {
		db = db.Where("author_id = ?", *f.AuthorID)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.IsFree != nil {
		db = db.Where("is_free = ?", *f.IsFree)
	}
	if f.ExcludeID != nil {
		db = db.Where("id <> ?", *f.ExcludeID)
	}
	if f.Department != nil && *f.Department != "" {
		db = db.Where("category_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Table("category AS c").
				Select("c.id").
				Joins("JOIN category AS p ON p.id = c.parent_id").
				Where(likeExpr("p.name"), like(*f.Department)),
		)
	}
	if f.Keyword != nil && *f.Keyword != "" {
		db = containsAny(db, *f.Keyword, "title", "description")
	}
	return db
}

func (f CourseFilter) order() string {
	switch f.SortBy {
	case SortPopular:
		return "view_count DESC"
	case SortPrice:
		return "price ASC"
	default:
		return "created_at DESC"
	}
}

// CourseRepository 课程及其关联数据仓储
type CourseRepository struct {
	orm *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{orm: db}
}

func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{orm: tx}
}

func withListRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Category").Preload("Author")
}

func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.orm.WithContext(ctx).Create(course).Error
}

// GetByID 获取课程（含分类与作者摘要）
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var c model.Course
	if err := withListRelations(r.orm.WithContext(ctx)).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.orm.WithContext(ctx).Model(&model.Course{}).Where("id = ?", id).Updates(fields).Error
}

// IncrementCounter 原子调整计数字段
func (r *CourseRepository) IncrementCounter(ctx context.Context, id, column string, delta int) error {
	return r.orm.WithContext(ctx).Model(&model.Course{}).Where("id = ?", id).
		UpdateColumns(increment(column, delta)).Error
}

func (r *CourseRepository) Query(ctx context.Context, filter CourseFilter, page Page) ([]model.Course, int64, error) {
	var courses []model.Course
	query := filter.apply(r.orm.WithContext(ctx).Model(&model.Course{}))
	total, err := findPage(query, page, &courses, func(db *gorm.DB) *gorm.DB {
		return withListRelations(db).Order(filter.order())
	})
	return courses, total, err
}

// ---- 分类 ----

// CategoryExists 分类是否存在
func (r *CourseRepository) CategoryExists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.orm.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *CourseRepository) CreateCategory(ctx context.Context, category *model.Category) error {
	return r.orm.WithContext(ctx).Create(category).Error
}

// CategoryTree 顶级分类及其子分类，均按排序值升序
func (r *CourseRepository) CategoryTree(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.orm.WithContext(ctx).
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("parent_id IS NULL").
		Order("sort_order ASC").
		Find(&categories).Error
	return categories, err
}

// ---- 视频 ----

func (r *CourseRepository) CreateVideo(ctx context.Context, video *model.CourseVideo) error {
	return r.orm.WithContext(ctx).Create(video).Error
}

func (r *CourseRepository) ListVideos(ctx context.Context, courseID string) ([]model.CourseVideo, error) {
	var videos []model.CourseVideo
	err := r.orm.WithContext(ctx).Where("course_id = ?", courseID).Order("sort_order ASC").Find(&videos).Error
	return videos, err
}

// ---- 评论 ----

func (r *CourseRepository) CreateComment(ctx context.Context, comment *model.CourseComment) error {
	return r.orm.WithContext(ctx).Create(comment).Error
}

func (r *CourseRepository) GetComment(ctx context.Context, id string) (*model.CourseComment, error) {
	var c model.CourseComment
	if err := r.orm.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListTopComments 已发布的顶级评论，回复按时间正序附带
func (r *CourseRepository) ListTopComments(ctx context.Context, courseID string, page Page) ([]model.CourseComment, int64, error) {
	var comments []model.CourseComment
	query := r.orm.WithContext(ctx).Model(&model.CourseComment{}).
		Where("course_id = ? AND status = ? AND parent_id IS NULL", courseID, model.CommentStatusPublished)
	total, err := findPage(query, page, &comments, func(db *gorm.DB) *gorm.DB {
		return db.Preload("User").
			Preload("Replies", func(db *gorm.DB) *gorm.DB {
				return db.Where("status = ?", model.CommentStatusPublished).Order("created_at ASC")
			}).
			Preload("Replies.User").
			Order("created_at DESC")
	})
	return comments, total, err
}

// ---- 点赞 / 收藏 ----

// HasLike 是否已点赞
func (r *CourseRepository) HasLike(ctx context.Context, courseID, userID string) (bool, error) {
	return r.pairExists(ctx, &model.CourseLike{}, courseID, userID)
}

// CreateLike 返回是否实际插入
func (r *CourseRepository) CreateLike(ctx context.Context, courseID, userID string) (bool, error) {
	return r.insertPair(ctx, &model.CourseLike{CourseID: courseID, UserID: userID})
}

// DeleteLike 返回是否实际删除
func (r *CourseRepository) DeleteLike(ctx context.Context, courseID, userID string) (bool, error) {
	return r.deletePair(ctx, &model.CourseLike{}, courseID, userID)
}

func (r *CourseRepository) HasFavorite(ctx context.Context, courseID, userID string) (bool, error) {
	return r.pairExists(ctx, &model.CourseFavorite{}, courseID, userID)
}

func (r *CourseRepository) CreateFavorite(ctx context.Context, courseID, userID string) (bool, error) {
	return r.insertPair(ctx, &model.CourseFavorite{CourseID: courseID, UserID: userID})
}

func (r *CourseRepository) DeleteFavorite(ctx context.Context, courseID, userID string) (bool, error) {
	return r.deletePair(ctx, &model.CourseFavorite{}, courseID, userID)
}

// insertPair 插入关联记录，已存在时忽略，返回是否实际插入
func (r *CourseRepository) insertPair(ctx context.Context, m interface{}) (bool, error) {
	res := r.orm.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m)
	return res.RowsAffected > 0, res.Error
}

func (r *CourseRepository) pairExists(ctx context.Context, m interface{}, courseID, userID string) (bool, error) {
	var count int64
	err := r.orm.WithContext(ctx).Model(m).Where("course_id = ? AND user_id = ?", courseID, userID).Count(&count).Error
	return count > 0, err
}

func (r *CourseRepository) deletePair(ctx context.Context, m interface{}, courseID, userID string) (bool, error) {
	res := r.orm.WithContext(ctx).Where("course_id = ? AND user_id = ?", courseID, userID).Delete(m)
	return res.RowsAffected > 0, res.Error
}

// ---- 观看历史 ----

// GetWatchHistory 用户在某课程的观看历史
func (r *CourseRepository) GetWatchHistory(ctx context.Context, courseID, userID string) (*model.VideoWatchHistory, error) {
	var h model.VideoWatchHistory
	if err := r.orm.WithContext(ctx).Where("course_id = ? AND user_id = ?", courseID, userID).First(&h).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

// UpsertWatchHistory 按 (course_id, user_id) 写入或覆盖观看进度
func (r *CourseRepository) UpsertWatchHistory(ctx context.Context, h *model.VideoWatchHistory) error {
	if h.LastWatchAt.IsZero() {
		h.LastWatchAt = time.Now()
	}
	return r.orm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"watch_time", "progress", "last_watch_at", "updated_at"}),
	}).Create(h).Error
}

// ListWatchHistory 用户的观看历史，最近观看优先
func (r *CourseRepository) ListWatchHistory(ctx context.Context, userID string, page Page) ([]model.VideoWatchHistory, int64, error) {
	var items []model.VideoWatchHistory
	query := r.orm.WithContext(ctx).Model(&model.VideoWatchHistory{}).Where("user_id = ?", userID)
	total, err := findPage(query, page, &items, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Course.Category").Preload("Course.Author").Order("last_watch_at DESC")
	})
	return items, total, err
}
