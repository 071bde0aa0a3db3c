package service

import (
	"context"
	"strings"

	"cme-platform/internal/model"
	"cme-platform/internal/repository"
	dbPkg "cme-platform/pkg/db"
	"cme-platform/pkg/errs"
	"cme-platform/pkg/jwt"
	"cme-platform/pkg/logger"
	"cme-platform/pkg/password"
	"cme-platform/pkg/redis"
	"cme-platform/pkg/validate"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DoctorProfileInput 医生资料
type DoctorProfileInput struct {
	Title         string `json:"title" binding:"required"`
	Hospital      string `json:"hospital" binding:"required"`
	Department    string `json:"department" binding:"required"`
	Specialty     string `json:"specialty"`
	Experience    int    `json:"experience" binding:"min=0"`
	Certification string `json:"certification"`
	Bio           string `json:"bio"`
}

// RegisterInput 注册
type RegisterInput struct {
	Email    *string             `json:"email" binding:"omitempty,email"`
	Phone    *string             `json:"phone" binding:"omitempty,cnphone"`
	Password string              `json:"password" binding:"required,min=6,max=50"`
	Nickname string              `json:"nickname" binding:"required,min=1,max=50"`
	UserType string              `json:"userType" binding:"omitempty,oneof=MEDICAL_STAFF NON_MEDICAL"`
	Doctor   *DoctorProfileInput `json:"doctorInfo"`
}

// AuthResult 注册/登录结果
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

type AuthService struct {
	db      *gorm.DB
	users   *repository.UserRepository
	doctors *repository.DoctorRepository
	jwt     *jwt.JWTService
	guard   *redis.LoginGuard
}

func NewAuthService(db *gorm.DB, users *repository.UserRepository, doctors *repository.DoctorRepository, jwtService *jwt.JWTService, guard *redis.LoginGuard) *AuthService {
	return &AuthService{db: db, users: users, doctors: doctors, jwt: jwtService, guard: guard}
}

// Register 注册
// 医护人员可同时提交医生资料，资料与用户在同一事务中创建，默认未审核
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	var user *model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		var err error
		user, err = (&UserService{repo: users}).newUser(ctx, users, CreateUserInput{
			Email:    in.Email,
			Phone:    in.Phone,
			Password: in.Password,
			Nickname: in.Nickname,
			UserType: in.UserType,
		})
		if err != nil {
			return err
		}
		if err := users.Create(ctx, user); err != nil {
			return conflictOr(err, "邮箱或手机号已被注册")
		}

		if user.UserType == model.UserTypeMedicalStaff && in.Doctor != nil {
			doctor := doctorFromInput(user.ID, *in.Doctor)
			if err := s.doctors.WithTx(tx).Create(ctx, doctor); err != nil {
				return conflictOr(err, "该用户已有医生资料")
			}
			user.DoctorProfile = doctor
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	logger.Info("用户注册", zap.String("user_id", user.ID), zap.String("user_type", user.UserType))
	return &AuthResult{User: user, Token: token}, nil
}

func doctorFromInput(userID string, in DoctorProfileInput) *model.Doctor {
	return &model.Doctor{
		UserID:        userID,
		Title:         in.Title,
		Hospital:      in.Hospital,
		Department:    in.Department,
		Specialty:     in.Specialty,
		Experience:    in.Experience,
		Certification: in.Certification,
		Bio:           in.Bio,
	}
}

// Login 登录
// 账号按 手机号 → 邮箱 → 昵称 的顺序识别，手机号或邮箱未命中时回退到昵称
func (s *AuthService) Login(ctx context.Context, account, plainPassword string) (*AuthResult, error) {
	account = strings.TrimSpace(account)
	if account == "" || plainPassword == "" {
		return nil, errs.Validation("账号和密码不能为空", nil)
	}

	blocked, err := s.guard.Blocked(ctx, account)
	if err != nil {
		logger.Warn("读取登录失败计数失败", zap.Error(err))
	}
	if blocked {
		return nil, errs.Business("登录失败次数过多，请稍后再试", "TOO_MANY_ATTEMPTS")
	}

	user, err := s.findByAccount(ctx, account)
	if err != nil && !dbPkg.IsNotFound(err) {
		return nil, err
	}
	if user == nil || !password.Verify(plainPassword, user.PasswordHash) {
		if err := s.guard.RecordFailure(ctx, account); err != nil {
			logger.Warn("记录登录失败次数失败", zap.Error(err))
		}
		return nil, errs.Unauthorized("账号或密码错误")
	}
	if !user.IsActive() {
		return nil, errs.Unauthorized("账户已被禁用")
	}

	if err := s.guard.Reset(ctx, account); err != nil {
		logger.Warn("清除登录失败次数失败", zap.Error(err))
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) findByAccount(ctx context.Context, account string) (*model.User, error) {
	var (
		user *model.User
		err  error
	)
	switch {
	case validate.PhonePattern.MatchString(account):
		user, err = s.users.GetByPhone(ctx, account)
	case strings.Contains(account, "@"):
		user, err = s.users.GetByEmail(ctx, strings.ToLower(account))
	default:
		return s.users.GetByNickname(ctx, account)
	}
	if dbPkg.IsNotFound(err) {
		return s.users.GetByNickname(ctx, account)
	}
	return user, err
}

func (s *AuthService) issue(user *model.User) (string, error) {
	return s.jwt.GenerateToken(jwt.Payload{
		UserID: user.ID,
		Email:  user.EmailValue(),
		Role:   user.Role,
	})
}

// Me 当前用户（含医生资料）
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "用户不存在")
	}
	doctor, err := s.doctors.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		user.DoctorProfile = doctor
	case !dbPkg.IsNotFound(err):
		return nil, err
	}
	return user, nil
}

// VerifyMedical 提交医护认证
// 已有资料时覆盖并重新进入待审核状态
func (s *AuthService) VerifyMedical(ctx context.Context, userID string, in DoctorProfileInput) (*model.User, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		doctors := s.doctors.WithTx(tx)

		if _, err := users.GetByID(ctx, userID); err != nil {
			return notFoundOr(err, "用户不存在")
		}

		existing, err := doctors.GetByUserID(ctx, userID)
		switch {
		case err == nil:
			if err := doctors.Update(ctx, existing.ID, map[string]interface{}{
				"title":         in.Title,
				"hospital":      in.Hospital,
				"department":    in.Department,
				"specialty":     in.Specialty,
				"experience":    in.Experience,
				"certification": in.Certification,
				"bio":           in.Bio,
				"is_verified":   false,
			}); err != nil {
				return err
			}
		case dbPkg.IsNotFound(err):
			if err := doctors.Create(ctx, doctorFromInput(userID, in)); err != nil {
				return conflictOr(err, "该用户已有医生资料")
			}
		default:
			return err
		}

		return users.Update(ctx, userID, map[string]interface{}{"user_type": model.UserTypeMedicalStaff})
	})
	if err != nil {
		return nil, err
	}
	return s.Me(ctx, userID)
}
