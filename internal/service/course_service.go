package service

import (
	"context"
	"strings"
	"time"

	"cme-platform/internal/model"
	"cme-platform/internal/repository"
	dbPkg "cme-platform/pkg/db"
	"cme-platform/pkg/errs"
	"cme-platform/pkg/logger"
	"cme-platform/pkg/redis"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const relatedCourseLimit = 5

// CreateCourseInput 创建课程
type CreateCourseInput struct {
	Title         string   `json:"title" binding:"required,min=1,max=200"`
	Description   string   `json:"description"`
	Cover         string   `json:"cover"`
	CategoryID    string   `json:"categoryId" binding:"required"`
	AuthorID      string   `json:"authorId"`
	Price         *float64 `json:"price" binding:"omitempty,min=0"`
	OriginalPrice *float64 `json:"originalPrice" binding:"omitempty,min=0"`
	IsFree        bool     `json:"isFree"`
	IsVip         bool     `json:"isVip"`
}

// UpdateCourseInput 更新课程，nil 字段不更新
type UpdateCourseInput struct {
	Title         *string  `json:"title" binding:"omitempty,min=1,max=200"`
	Description   *string  `json:"description"`
	Cover         *string  `json:"cover"`
	CategoryID    *string  `json:"categoryId" binding:"omitempty,min=1"`
	Price         *float64 `json:"price" binding:"omitempty,min=0"`
	OriginalPrice *float64 `json:"originalPrice" binding:"omitempty,min=0"`
	IsFree        *bool    `json:"isFree"`
	IsVip         *bool    `json:"isVip"`
	Status        *string  `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
}

// CourseQuery 课程查询条件
type CourseQuery struct {
	CategoryID string `form:"categoryId"`
	Department string `form:"department"`
	AuthorID   string `form:"authorId"`
	Status     string `form:"status" binding:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	IsFree     *bool  `form:"isFree"`
	Keyword    string `form:"keyword"`
	SortBy     string `form:"sortBy" binding:"omitempty,oneof=latest popular price"`
}

// CreateVideoInput 添加视频
type CreateVideoInput struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl" binding:"required,url"`
	Duration    int    `json:"duration" binding:"min=0"`
	SortOrder   int    `json:"sortOrder"`
}

// WatchInput 观看进度
type WatchInput struct {
	VideoID   *string `json:"videoId"`
	WatchTime int     `json:"watchTime" binding:"min=0"`
	Progress  float64 `json:"progress" binding:"min=0,max=1"`
}

// CommentInput 发表评论
type CommentInput struct {
	Content  string  `json:"content" binding:"required,min=1,max=1000"`
	ParentID *string `json:"parentId"`
}

// CategoryInput 创建分类
type CategoryInput struct {
	Name      string  `json:"name" binding:"required,min=1,max=64"`
	ParentID  *string `json:"parentId"`
	SortOrder int     `json:"sortOrder"`
}

// CourseDetail 课程详情，附带当前用户的互动状态
type CourseDetail struct {
	*model.Course
	IsLiked       bool    `json:"isLiked"`
	IsFavorited   bool    `json:"isFavorited"`
	WatchProgress float64 `json:"watchProgress"`
}

type CourseService struct {
	db       *gorm.DB
	courses  *repository.CourseRepository
	users    *repository.UserRepository
	points   *PointsService
	catCache *redis.JSONCache
}

func NewCourseService(db *gorm.DB, courses *repository.CourseRepository, users *repository.UserRepository, points *PointsService, catCache *redis.JSONCache) *CourseService {
	return &CourseService{db: db, courses: courses, users: users, points: points, catCache: catCache}
}

// Create 创建课程，初始为草稿
func (s *CourseService) Create(ctx context.Context, in CreateCourseInput) (*model.Course, error) {
	ok, err := s.courses.CategoryExists(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.NotFound("分类不存在")
	}
	ok, err = s.users.Exists(ctx, in.AuthorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.NotFound("作者不存在")
	}

	course := &model.Course{
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		Cover:         in.Cover,
		CategoryID:    in.CategoryID,
		AuthorID:      in.AuthorID,
		OriginalPrice: in.OriginalPrice,
		IsFree:        in.IsFree,
		IsVip:         in.IsVip,
		Status:        model.CourseStatusDraft,
	}
	if in.Price != nil {
		course.Price = *in.Price
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}
	return s.get(ctx, course.ID)
}

func (s *CourseService) get(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "课程不存在")
	}
	return course, nil
}

// Owner 课程作者ID
func (s *CourseService) Owner(ctx context.Context, id string) (string, error) {
	course, err := s.get(ctx, id)
	if err != nil {
		return "", err
	}
	return course.AuthorID, nil
}

func (s *CourseService) Update(ctx context.Context, id string, in UpdateCourseInput) (*model.Course, error) {
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}
	if in.CategoryID != nil {
		ok, err := s.courses.CategoryExists(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errs.NotFound("分类不存在")
		}
	}

	fields := map[string]interface{}{}
	setIf(fields, "title", in.Title)
	setIf(fields, "description", in.Description)
	setIf(fields, "cover", in.Cover)
	setIf(fields, "category_id", in.CategoryID)
	setIf(fields, "price", in.Price)
	setIf(fields, "original_price", in.OriginalPrice)
	setIf(fields, "is_free", in.IsFree)
	setIf(fields, "is_vip", in.IsVip)
	setIf(fields, "status", in.Status)
	if len(fields) > 0 {
		if err := s.courses.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.get(ctx, id)
}

// Get 课程详情，viewerID 为空时互动状态均为默认值
func (s *CourseService) Get(ctx context.Context, id, viewerID string) (*CourseDetail, error) {
	course, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &CourseDetail{Course: course}
	if viewerID == "" {
		return detail, nil
	}

	if detail.IsLiked, err = s.courses.HasLike(ctx, id, viewerID); err != nil {
		return nil, err
	}
	if detail.IsFavorited, err = s.courses.HasFavorite(ctx, id, viewerID); err != nil {
		return nil, err
	}
	history, err := s.courses.GetWatchHistory(ctx, id, viewerID)
	switch {
	case err == nil:
		detail.WatchProgress = history.Progress
	case !dbPkg.IsNotFound(err):
		return nil, err
	}
	return detail, nil
}

// Query 课程列表，未指定状态时只返回已发布课程
func (s *CourseService) Query(ctx context.Context, q CourseQuery, page, pageSize int) (*PageResult[model.Course], error) {
	filter := repository.CourseFilter{
		CategoryID: optional(q.CategoryID),
		Department: optional(strings.TrimSpace(q.Department)),
		AuthorID:   optional(q.AuthorID),
		Status:     strPtr(model.CourseStatusPublished),
		IsFree:     q.IsFree,
		Keyword:    optional(strings.TrimSpace(q.Keyword)),
		SortBy:     q.SortBy,
	}
	if q.Status != "" {
		filter.Status = &q.Status
	}
	courses, total, err := s.courses.Query(ctx, filter, pageOf(page, pageSize))
	if err != nil {
		return nil, err
	}
	return newPageResult(courses, total, page, pageSize), nil
}

// AddVideo 添加视频
func (s *CourseService) AddVideo(ctx context.Context, courseID string, in CreateVideoInput) (*model.CourseVideo, error) {
	if _, err := s.get(ctx, courseID); err != nil {
		return nil, err
	}
	video := &model.CourseVideo{
		CourseID:    courseID,
		Title:       in.Title,
		Description: in.Description,
		VideoURL:    in.VideoURL,
		Duration:    in.Duration,
		SortOrder:   in.SortOrder,
	}
	if err := s.courses.CreateVideo(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

// Videos 课程视频，按排序值升序
func (s *CourseService) Videos(ctx context.Context, courseID string) ([]model.CourseVideo, error) {
	if _, err := s.get(ctx, courseID); err != nil {
		return nil, err
	}
	return s.courses.ListVideos(ctx, courseID)
}

// RecordWatch 记录观看进度
// 观看历史按 (课程, 用户) 覆盖写入，观看满5分钟发放视频积分
func (s *CourseService) RecordWatch(ctx context.Context, courseID, userID string, in WatchInput) (*WatchReward, error) {
	if _, err := s.get(ctx, courseID); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courses := s.courses.WithTx(tx)
		if err := courses.UpsertWatchHistory(ctx, &model.VideoWatchHistory{
			CourseID:    courseID,
			UserID:      userID,
			VideoID:     in.VideoID,
			WatchTime:   in.WatchTime,
			Progress:    in.Progress,
			LastWatchAt: time.Now(),
		}); err != nil {
			return err
		}
		return courses.IncrementCounter(ctx, courseID, "view_count", 1)
	})
	if err != nil {
		return nil, err
	}

	if in.WatchTime < watchVideoMinSecond {
		return &WatchReward{Message: "观看时长不足5分钟"}, nil
	}
	reward, err := s.points.AddWatchVideoPoints(ctx, userID, in.WatchTime)
	if err != nil {
		logger.Error("发放观看视频积分失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return reward, nil
}

// CreateComment 发表评论
// 评论只有两级，回复的回复挂到顶级评论下
func (s *CourseService) CreateComment(ctx context.Context, courseID, userID string, in CommentInput) (*model.CourseComment, error) {
	if _, err := s.get(ctx, courseID); err != nil {
		return nil, err
	}

	comment := &model.CourseComment{
		CourseID: courseID,
		UserID:   userID,
		Content:  strings.TrimSpace(in.Content),
		Status:   model.CommentStatusPublished,
	}
	if in.ParentID != nil && *in.ParentID != "" {
		parent, err := s.courses.GetComment(ctx, *in.ParentID)
		if err != nil || parent.CourseID != courseID {
			if err != nil && !dbPkg.IsNotFound(err) {
				return nil, err
			}
			return nil, errs.NotFound("父评论不存在")
		}
		rootID := parent.ID
		if parent.ParentID != nil {
			rootID = *parent.ParentID
		}
		comment.ParentID = &rootID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courses := s.courses.WithTx(tx)
		if err := courses.CreateComment(ctx, comment); err != nil {
			return err
		}
		return courses.IncrementCounter(ctx, courseID, "comment_count", 1)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// Comments 评论列表
func (s *CourseService) Comments(ctx context.Context, courseID string, page, pageSize int) (*PageResult[model.CourseComment], error) {
	if _, err := s.get(ctx, courseID); err != nil {
		return nil, err
	}
	comments, total, err := s.courses.ListTopComments(ctx, courseID, pageOf(page, pageSize))
	if err != nil {
		return nil, err
	}
	return newPageResult(comments, total, page, pageSize), nil
}

// ToggleLike 点赞/取消点赞，返回操作后是否已点赞
func (s *CourseService) ToggleLike(ctx context.Context, courseID, userID string) (bool, error) {
	return s.toggle(ctx, courseID, "like_count", func(r *repository.CourseRepository) (bool, error) {
		return r.HasLike(ctx, courseID, userID)
	}, func(r *repository.CourseRepository) (bool, error) {
		return r.CreateLike(ctx, courseID, userID)
	}, func(r *repository.CourseRepository) (bool, error) {
		return r.DeleteLike(ctx, courseID, userID)
	})
}

// ToggleFavorite 收藏/取消收藏，返回操作后是否已收藏
func (s *CourseService) ToggleFavorite(ctx context.Context, courseID, userID string) (bool, error) {
	return s.toggle(ctx, courseID, "favorite_count", func(r *repository.CourseRepository) (bool, error) {
		return r.HasFavorite(ctx, courseID, userID)
	}, func(r *repository.CourseRepository) (bool, error) {
		return r.CreateFavorite(ctx, courseID, userID)
	}, func(r *repository.CourseRepository) (bool, error) {
		return r.DeleteFavorite(ctx, courseID, userID)
	})
}

// toggle 切换关联记录是否存在，并同步调整计数
func (s *CourseService) toggle(
	ctx context.Context,
	courseID, counter string,
	has func(*repository.CourseRepository) (bool, error),
	create func(*repository.CourseRepository) (bool, error),
	remove func(*repository.CourseRepository) (bool, error),
) (bool, error) {
	if _, err := s.get(ctx, courseID); err != nil {
		return false, err
	}

	var active bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courses := s.courses.WithTx(tx)
		exists, err := has(courses)
		if err != nil {
			return err
		}
		if exists {
			removed, err := remove(courses)
			if err != nil {
				return err
			}
			active = false
			if !removed {
				return nil
			}
			return courses.IncrementCounter(ctx, courseID, counter, -1)
		}

		created, err := create(courses)
		if err != nil {
			return err
		}
		active = true
		if !created {
			return nil
		}
		return courses.IncrementCounter(ctx, courseID, counter, 1)
	})
	return active, err
}

// WatchHistory 观看历史
func (s *CourseService) WatchHistory(ctx context.Context, userID string, page, pageSize int) (*PageResult[model.VideoWatchHistory], error) {
	items, total, err := s.courses.ListWatchHistory(ctx, userID, pageOf(page, pageSize))
	if err != nil {
		return nil, err
	}
	return newPageResult(items, total, page, pageSize), nil
}

// Related 同分类下的其他已发布课程
func (s *CourseService) Related(ctx context.Context, courseID string) ([]model.Course, error) {
	course, err := s.get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	filter := repository.CourseFilter{
		CategoryID: &course.CategoryID,
		Status:     strPtr(model.CourseStatusPublished),
		ExcludeID:  &course.ID,
	}
	courses, _, err := s.courses.Query(ctx, filter, repository.Page{Limit: relatedCourseLimit})
	return courses, err
}

// Categories 分类树，启用Redis时读缓存
func (s *CourseService) Categories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	hit, err := s.catCache.Get(ctx, &categories)
	if err != nil {
		logger.Warn("读取分类缓存失败", zap.Error(err))
	}
	if hit {
		return categories, nil
	}

	categories, err = s.courses.CategoryTree(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []model.Category{}
	}
	if err := s.catCache.Set(ctx, categories); err != nil {
		logger.Warn("写入分类缓存失败", zap.Error(err))
	}
	return categories, nil
}

// CreateCategory 创建分类并清除分类缓存
func (s *CourseService) CreateCategory(ctx context.Context, in CategoryInput) (*model.Category, error) {
	if in.ParentID != nil && *in.ParentID != "" {
		ok, err := s.courses.CategoryExists(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errs.NotFound("父分类不存在")
		}
	} else {
		in.ParentID = nil
	}

	category := &model.Category{Name: strings.TrimSpace(in.Name), ParentID: in.ParentID, SortOrder: in.SortOrder}
	if err := s.courses.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	if err := s.catCache.Invalidate(ctx); err != nil {
		logger.Warn("清除分类缓存失败", zap.Error(err))
	}
	return category, nil
}
