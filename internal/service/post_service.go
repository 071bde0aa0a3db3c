package service

import (
	"context"
	"strings"
	"time"

	"cme-platform/internal/model"
	"cme-platform/internal/repository"
	"cme-platform/pkg/errs"

	"gorm.io/datatypes"
)

// CreatePostInput 创建帖子
type CreatePostInput struct {
	AuthorID string   `json:"authorId" binding:"required"`
	Title    string   `json:"title" binding:"required,min=1,max=200"`
	Content  string   `json:"content" binding:"required,min=1"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Status   string   `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED"`
}

// UpdatePostInput 更新帖子
type UpdatePostInput struct {
	Title    *string   `json:"title" binding:"omitempty,min=1,max=200"`
	Content  *string   `json:"content" binding:"omitempty,min=1"`
	Category *string   `json:"category"`
	Tags     *[]string `json:"tags"`
	Status   *string   `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
}

// PostQuery 帖子查询条件，未指定状态时排除已删除
type PostQuery struct {
	AuthorID string `form:"authorId"`
	Category string `form:"category"`
	Status   string `form:"status" binding:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED DELETED"`
	Keyword  string `form:"keyword"`
}

type PostService struct {
	posts *repository.PostRepository
	users *repository.UserRepository
	now   func() time.Time
}

func NewPostService(posts *repository.PostRepository, users *repository.UserRepository) *PostService {
	return &PostService{posts: posts, users: users, now: time.Now}
}

// encodeTags 标签编解码约定：nil 与空切片都存为 []，读出时为空切片，顺序保持不变
func encodeTags(tags []string) datatypes.JSONSlice[string] {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return datatypes.JSONSlice[string](out)
}

func normalizeTags(p *model.Post) *model.Post {
	if p.Tags == nil {
		p.Tags = datatypes.JSONSlice[string]{}
	}
	return p
}

// Create 创建帖子，直接发布时写入发布时间
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*model.Post, error) {
	exists, err := s.users.Exists(ctx, in.AuthorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.NotFound("作者不存在")
	}

	status := in.Status
	if status == "" {
		status = model.PostStatusDraft
	}
	post := &model.Post{
		AuthorID: in.AuthorID,
		Title:    strings.TrimSpace(in.Title),
		Content:  in.Content,
		Category: in.Category,
		Tags:     encodeTags(in.Tags),
		Status:   status,
	}
	if status == model.PostStatusPublished {
		now := s.now()
		post.PublishedAt = &now
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.get(ctx, post.ID)
}

func (s *PostService) get(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "帖子不存在")
	}
	return normalizeTags(post), nil
}

// Get 帖子详情，浏览量+1
func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.posts.IncrementViewCount(ctx, id); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

// Owner 帖子作者ID
func (s *PostService) Owner(ctx context.Context, id string) (string, error) {
	post, err := s.get(ctx, id)
	if err != nil {
		return "", err
	}
	return post.AuthorID, nil
}

// Update 更新帖子
// 发布时间只在草稿首次发布时写入，之后不再改变
func (s *PostService) Update(ctx context.Context, id string, in UpdatePostInput) (*model.Post, error) {
	existing, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = strings.TrimSpace(*in.Title)
	}
	setIf(fields, "content", in.Content)
	setIf(fields, "category", in.Category)
	if in.Tags != nil {
		fields["tags"] = encodeTags(*in.Tags)
	}
	if in.Status != nil {
		fields["status"] = *in.Status
		if *in.Status == model.PostStatusPublished &&
			existing.Status == model.PostStatusDraft &&
			existing.PublishedAt == nil {
			now := s.now()
			fields["published_at"] = &now
		}
	}

	if len(fields) > 0 {
		if err := s.posts.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.get(ctx, id)
}

func (s *PostService) Query(ctx context.Context, q PostQuery, page, pageSize int) (*PageResult[model.Post], error) {
	filter := repository.PostFilter{
		AuthorID: optional(q.AuthorID),
		Category: optional(q.Category),
		Status:   optional(q.Status),
		Keyword:  optional(strings.TrimSpace(q.Keyword)),
	}
	posts, total, err := s.posts.Query(ctx, filter, pageOf(page, pageSize))
	if err != nil {
		return nil, err
	}
	for i := range posts {
		normalizeTags(&posts[i])
	}
	return newPageResult(posts, total, page, pageSize), nil
}

// Delete 软删除，状态置为 DELETED
func (s *PostService) Delete(ctx context.Context, id string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	return s.posts.Update(ctx, id, map[string]interface{}{"status": model.PostStatusDeleted})
}

// Purge 永久删除
func (s *PostService) Purge(ctx context.Context, id string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	return s.posts.Delete(ctx, id)
}
