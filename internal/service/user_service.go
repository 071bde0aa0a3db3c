package service

import (
	"context"
	"strings"

	"cme-platform/internal/model"
	"cme-platform/internal/repository"
	dbPkg "cme-platform/pkg/db"
	"cme-platform/pkg/errs"
	"cme-platform/pkg/password"
)

// CreateUserInput 管理员创建用户
type CreateUserInput struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone" binding:"omitempty,cnphone"`
	Password string  `json:"password" binding:"required,min=6,max=50"`
	Nickname string  `json:"nickname" binding:"required,min=1,max=50"`
	Role     string  `json:"role" binding:"omitempty,oneof=USER DOCTOR ADMIN"`
	UserType string  `json:"userType" binding:"omitempty,oneof=MEDICAL_STAFF NON_MEDICAL"`
}

// UpdateUserInput 更新用户资料，nil 字段不更新
type UpdateUserInput struct {
	Nickname *string `json:"nickname" binding:"omitempty,min=1,max=50"`
	Avatar   *string `json:"avatar" binding:"omitempty,url"`
	Phone    *string `json:"phone" binding:"omitempty,cnphone"`
}

// UserQuery 用户查询条件
type UserQuery struct {
	Role    string `form:"role" binding:"omitempty,oneof=USER DOCTOR ADMIN"`
	Status  string `form:"status" binding:"omitempty,oneof=ACTIVE INACTIVE BANNED"`
	Keyword string `form:"keyword"`
}

type UserService struct {
	repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Create 创建用户
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	user, err := s.newUser(ctx, s.repo, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, conflictOr(err, "邮箱或手机号已被使用")
	}
	return user, nil
}

// newUser 校验唯一性并构建用户
func (s *UserService) newUser(ctx context.Context, repo *repository.UserRepository, in CreateUserInput) (*model.User, error) {
	email := trimmed(in.Email)
	if email != nil {
		email = strPtr(strings.ToLower(*email))
	}
	phone := trimmed(in.Phone)
	if email == nil && phone == nil {
		return nil, errs.Validation("邮箱和手机号至少填写一项", nil)
	}

	if email != nil {
		if _, err := repo.GetByEmail(ctx, *email); err == nil {
			return nil, errs.Conflict("邮箱已被注册")
		} else if !dbPkg.IsNotFound(err) {
			return nil, err
		}
	}
	if phone != nil {
		if _, err := repo.GetByPhone(ctx, *phone); err == nil {
			return nil, errs.Conflict("手机号已被注册")
		} else if !dbPkg.IsNotFound(err) {
			return nil, err
		}
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, errs.Validation(err.Error(), nil)
	}

	user := &model.User{
		Email:        email,
		Phone:        phone,
		Nickname:     strings.TrimSpace(in.Nickname),
		PasswordHash: hash,
		Role:         model.RoleUser,
		Status:       model.UserStatusActive,
		UserType:     model.UserTypeNonMedical,
	}
	if in.Role != "" {
		user.Role = in.Role
	}
	if in.UserType != "" {
		user.UserType = in.UserType
	}
	return user, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// Get 获取用户
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "用户不存在")
	}
	return user, nil
}

// GetActiveUser 获取状态正常的用户，供鉴权中间件使用
func (s *UserService) GetActiveUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if dbPkg.IsNotFound(err) {
			return nil, errs.Unauthorized("用户不存在")
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, errs.Unauthorized("账户已被禁用")
	}
	return user, nil
}

// Update 更新用户资料
// 手机号不能与其他用户重复，保持自己原手机号不算冲突
func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*model.User, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Nickname != nil {
		fields["nickname"] = strings.TrimSpace(*in.Nickname)
	}
	if in.Avatar != nil {
		fields["avatar"] = *in.Avatar
	}
	if phone := trimmed(in.Phone); phone != nil {
		owner, err := s.repo.GetByPhone(ctx, *phone)
		switch {
		case err == nil && owner.ID != id:
			return nil, errs.Conflict("手机号已被其他用户使用")
		case err != nil && !dbPkg.IsNotFound(err):
			return nil, err
		}
		fields["phone"] = *phone
	}

	if len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, conflictOr(err, "手机号已被其他用户使用")
		}
	}
	return s.Get(ctx, id)
}

// Query 分页查询用户
func (s *UserService) Query(ctx context.Context, q UserQuery, page, pageSize int) (*PageResult[model.User], error) {
	filter := repository.UserFilter{
		Role:    optional(q.Role),
		Status:  optional(q.Status),
		Keyword: optional(strings.TrimSpace(q.Keyword)),
	}
	users, total, err := s.repo.Query(ctx, filter, pageOf(page, pageSize))
	if err != nil {
		return nil, err
	}
	return newPageResult(users, total, page, pageSize), nil
}

// SoftDelete 停用用户
func (s *UserService) SoftDelete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, map[string]interface{}{"status": model.UserStatusInactive})
}

// HardDelete 物理删除用户
func (s *UserService) HardDelete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
