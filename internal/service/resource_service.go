package service

import (
	"context"
	"strings"

	"cme-platform/internal/model"
	"cme-platform/internal/repository"
)

// CreateResourceInput 创建资源
type CreateResourceInput struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"required,oneof=DOCUMENT VIDEO IMAGE AUDIO"`
	FileURL     string `json:"fileUrl" binding:"required,url"`
	Cover       string `json:"cover"`
	Category    string `json:"category"`
}

// ResourceQuery 资源查询条件，只返回已发布资源
type ResourceQuery struct {
	Type     string `form:"type" binding:"omitempty,oneof=DOCUMENT VIDEO IMAGE AUDIO"`
	Category string `form:"category"`
	Keyword  string `form:"keyword"`
}

type ResourceService struct {
	resources *repository.ResourceRepository
}

func NewResourceService(resources *repository.ResourceRepository) *ResourceService {
	return &ResourceService{resources: resources}
}

// Create 创建资源，直接发布
func (s *ResourceService) Create(ctx context.Context, in CreateResourceInput) (*model.Resource, error) {
	res := &model.Resource{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Type:        in.Type,
		FileURL:     in.FileURL,
		Cover:       in.Cover,
		Category:    in.Category,
		Status:      model.ResourceStatusPublished,
	}
	if err := s.resources.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Get 资源详情，查看次数+1
func (s *ResourceService) Get(ctx context.Context, id string) (*model.Resource, error) {
	if _, err := s.resources.GetByID(ctx, id); err != nil {
		return nil, notFoundOr(err, "资源不存在")
	}
	if err := s.resources.IncrementViewCount(ctx, id); err != nil {
		return nil, err
	}
	res, err := s.resources.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "资源不存在")
	}
	return res, nil
}

func (s *ResourceService) Query(ctx context.Context, q ResourceQuery, page, pageSize int) (*PageResult[model.Resource], error) {
	filter := repository.ResourceFilter{
		Status:   strPtr(model.ResourceStatusPublished),
		Type:     optional(q.Type),
		Category: optional(q.Category),
		Keyword:  optional(strings.TrimSpace(q.Keyword)),
	}
	resources, total, err := s.resources.Query(ctx, filter, pageOf(page, pageSize))
	if err != nil {
		return nil, err
	}
	return newPageResult(resources, total, page, pageSize), nil
}
