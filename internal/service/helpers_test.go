package service

import (
	"context"
	"testing"
	"time"

	"cme-platform/config"
	"cme-platform/internal/model"
	"cme-platform/internal/repository"
	dbPkg "cme-platform/pkg/db"
	"cme-platform/pkg/jwt"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB 每个测试独立的内存库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), dbPkg.GormConfig(config.DatabaseConfig{Driver: dbPkg.DriverSQLite}))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return db
}

// services 测试用的服务集合
type services struct {
	db      *gorm.DB
	users   *UserService
	auth    *AuthService
	points  *PointsService
	courses *CourseService
	lives   *LiveService
	orders  *OrderService
	posts   *PostService
	doctors *DoctorService
	experts *ExpertService
	res     *ResourceService
}

func newServices(t *testing.T) *services {
	t.Helper()
	db := newTestDB(t)

	userRepo := repository.NewUserRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	postRepo := repository.NewPostRepository(db)
	pointsSvc := NewPointsService(db, repository.NewPointsRepository(db))
	jwtSvc := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour, Issuer: "cme-test"})

	return &services{
		db:      db,
		users:   NewUserService(userRepo),
		auth:    NewAuthService(db, userRepo, doctorRepo, jwtSvc, nil),
		points:  pointsSvc,
		courses: NewCourseService(db, courseRepo, userRepo, pointsSvc, nil),
		lives:   NewLiveService(db, repository.NewLiveRepository(db), pointsSvc),
		orders:  NewOrderService(repository.NewOrderRepository(db), userRepo, NewOrderNoGenerator("ORD")),
		posts:   NewPostService(postRepo, userRepo),
		doctors: NewDoctorService(db, doctorRepo, userRepo),
		experts: NewExpertService(repository.NewExpertRepository(db), doctorRepo, courseRepo, postRepo),
		res:     NewResourceService(repository.NewResourceRepository(db)),
	}
}

// createUser 以邮箱创建普通用户
func (s *services) createUser(t *testing.T, email string) *model.User {
	t.Helper()
	user, err := s.users.Create(context.Background(), CreateUserInput{
		Email:    &email,
		Password: "secret123",
		Nickname: "user-" + email,
	})
	require.NoError(t, err)
	return user
}

// fixedClock 固定在本地时区某天的某个时刻
func fixedClock(year int, month time.Month, day, hour int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, hour, 0, 0, 0, time.Local)
	}
}
