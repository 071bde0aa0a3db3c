package service

import (
	"context"
	"strings"

	"cme-platform/internal/model"
	"cme-platform/internal/repository"
)

// CreateExpertInput 创建专家
type CreateExpertInput struct {
	DoctorID     string `json:"doctorId" binding:"required"`
	Photo        string `json:"photo"`
	Introduction string `json:"introduction"`
	Achievements string `json:"achievements"`
	IsFeatured   bool   `json:"isFeatured"`
	SortOrder    int    `json:"sortOrder"`
}

// ExpertQuery 专家查询条件
type ExpertQuery struct {
	IsFeatured *bool  `form:"isFeatured"`
	Keyword    string `form:"keyword"`
}

type ExpertService struct {
	experts *repository.ExpertRepository
	doctors *repository.DoctorRepository
	courses *repository.CourseRepository
	posts   *repository.PostRepository
}

func NewExpertService(experts *repository.ExpertRepository, doctors *repository.DoctorRepository, courses *repository.CourseRepository, posts *repository.PostRepository) *ExpertService {
	return &ExpertService{experts: experts, doctors: doctors, courses: courses, posts: posts}
}

func (s *ExpertService) Create(ctx context.Context, in CreateExpertInput) (*model.Expert, error) {
	if _, err := s.doctors.GetByID(ctx, in.DoctorID); err != nil {
		return nil, notFoundOr(err, "医生不存在")
	}
	expert := &model.Expert{
		DoctorID:     in.DoctorID,
		Photo:        in.Photo,
		Introduction: in.Introduction,
		Achievements: in.Achievements,
		IsFeatured:   in.IsFeatured,
		SortOrder:    in.SortOrder,
	}
	if err := s.experts.Create(ctx, expert); err != nil {
		return nil, err
	}
	return s.Get(ctx, expert.ID)
}

func (s *ExpertService) Get(ctx context.Context, id string) (*model.Expert, error) {
	expert, err := s.experts.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "专家不存在")
	}
	return expert, nil
}

func (s *ExpertService) Query(ctx context.Context, q ExpertQuery, page, pageSize int) (*PageResult[model.Expert], error) {
	filter := repository.ExpertFilter{
		IsFeatured: q.IsFeatured,
		Keyword:    optional(strings.TrimSpace(q.Keyword)),
	}
	experts, total, err := s.experts.Query(ctx, filter, pageOf(page, pageSize))
	if err != nil {
		return nil, err
	}
	return newPageResult(experts, total, page, pageSize), nil
}

// authorOf 专家对应医生的用户ID
func (s *ExpertService) authorOf(ctx context.Context, expertID string) (string, error) {
	expert, err := s.Get(ctx, expertID)
	if err != nil {
		return "", err
	}
	if expert.Doctor == nil {
		doctor, err := s.doctors.GetByID(ctx, expert.DoctorID)
		if err != nil {
			return "", notFoundOr(err, "医生不存在")
		}
		return doctor.UserID, nil
	}
	return expert.Doctor.UserID, nil
}

// Courses 专家已发布的课程
func (s *ExpertService) Courses(ctx context.Context, expertID string, page, pageSize int) (*PageResult[model.Course], error) {
	authorID, err := s.authorOf(ctx, expertID)
	if err != nil {
		return nil, err
	}
	filter := repository.CourseFilter{AuthorID: &authorID, Status: strPtr(model.CourseStatusPublished)}
	courses, total, err := s.courses.Query(ctx, filter, pageOf(page, pageSize))
	if err != nil {
		return nil, err
	}
	return newPageResult(courses, total, page, pageSize), nil
}

// Articles 专家已发布的文章
func (s *ExpertService) Articles(ctx context.Context, expertID string, page, pageSize int) (*PageResult[model.Post], error) {
	authorID, err := s.authorOf(ctx, expertID)
	if err != nil {
		return nil, err
	}
	filter := repository.PostFilter{AuthorID: &authorID, Status: strPtr(model.PostStatusPublished)}
	posts, total, err := s.posts.Query(ctx, filter, pageOf(page, pageSize))
	if err != nil {
		return nil, err
	}
	return newPageResult(posts, total, page, pageSize), nil
}
