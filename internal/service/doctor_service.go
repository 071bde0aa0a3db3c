package service

import (
	"context"
	"strings"

	"cme-platform/internal/model"
	"cme-platform/internal/repository"
	dbPkg "cme-platform/pkg/db"
	"cme-platform/pkg/errs"

	"gorm.io/gorm"
)

// CreateDoctorInput 创建医生资料
type CreateDoctorInput struct {
	UserID string `json:"userId" binding:"required"`
	DoctorProfileInput
}

// UpdateDoctorInput 更新医生资料
type UpdateDoctorInput struct {
	Title         *string `json:"title" binding:"omitempty,min=1"`
	Hospital      *string `json:"hospital" binding:"omitempty,min=1"`
	Department    *string `json:"department" binding:"omitempty,min=1"`
	Specialty     *string `json:"specialty"`
	Experience    *int    `json:"experience" binding:"omitempty,min=0"`
	Certification *string `json:"certification"`
	Bio           *string `json:"bio"`
}

// DoctorQuery 医生查询条件
type DoctorQuery struct {
	IsVerified *bool  `form:"isVerified"`
	Keyword    string `form:"keyword"`
}

type DoctorService struct {
	db      *gorm.DB
	doctors *repository.DoctorRepository
	users   *repository.UserRepository
}

func NewDoctorService(db *gorm.DB, doctors *repository.DoctorRepository, users *repository.UserRepository) *DoctorService {
	return &DoctorService{db: db, doctors: doctors, users: users}
}

// Create 创建医生资料，每个用户只能有一份
func (s *DoctorService) Create(ctx context.Context, in CreateDoctorInput) (*model.Doctor, error) {
	exists, err := s.users.Exists(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.NotFound("用户不存在")
	}

	if _, err := s.doctors.GetByUserID(ctx, in.UserID); err == nil {
		return nil, errs.Conflict("该用户已有医生资料")
	} else if !dbPkg.IsNotFound(err) {
		return nil, err
	}

	doctor := doctorFromInput(in.UserID, in.DoctorProfileInput)
	if err := s.doctors.Create(ctx, doctor); err != nil {
		return nil, conflictOr(err, "该用户已有医生资料")
	}
	return s.Get(ctx, doctor.ID)
}

func (s *DoctorService) Get(ctx context.Context, id string) (*model.Doctor, error) {
	doctor, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "医生不存在")
	}
	return doctor, nil
}

// GetByUser 按用户获取医生资料
func (s *DoctorService) GetByUser(ctx context.Context, userID string) (*model.Doctor, error) {
	doctor, err := s.doctors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "医生资料不存在")
	}
	return doctor, nil
}

func (s *DoctorService) Update(ctx context.Context, id string, in UpdateDoctorInput) (*model.Doctor, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	setIf(fields, "title", in.Title)
	setIf(fields, "hospital", in.Hospital)
	setIf(fields, "department", in.Department)
	setIf(fields, "specialty", in.Specialty)
	setIf(fields, "certification", in.Certification)
	setIf(fields, "bio", in.Bio)
	if in.Experience != nil {
		fields["experience"] = *in.Experience
	}
	if len(fields) > 0 {
		if err := s.doctors.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

func setIf[T any](fields map[string]interface{}, column string, v *T) {
	if v != nil {
		fields[column] = *v
	}
}

func (s *DoctorService) Query(ctx context.Context, q DoctorQuery, page, pageSize int) (*PageResult[model.Doctor], error) {
	filter := repository.DoctorFilter{
		IsVerified: q.IsVerified,
		Keyword:    optional(strings.TrimSpace(q.Keyword)),
	}
	doctors, total, err := s.doctors.Query(ctx, filter, pageOf(page, pageSize))
	if err != nil {
		return nil, err
	}
	return newPageResult(doctors, total, page, pageSize), nil
}

// Verify 审核通过：资料标记为已审核并标记医护认证
// 只有普通用户会升级为医生，管理员保留原角色
func (s *DoctorService) Verify(ctx context.Context, id string) (*model.Doctor, error) {
	doctor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.doctors.WithTx(tx).Update(ctx, id, map[string]interface{}{"is_verified": true}); err != nil {
			return err
		}
		users := s.users.WithTx(tx)
		if err := users.Update(ctx, doctor.UserID, map[string]interface{}{
			"user_type":           model.UserTypeMedicalStaff,
			"is_medical_verified": true,
		}); err != nil {
			return err
		}
		_, err := users.ChangeRole(ctx, doctor.UserID, model.RoleUser, model.RoleDoctor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
