package service

import (
	"context"
	"testing"
	"time"

	"cme-platform/internal/model"
	"cme-platform/pkg/errs"
	"cme-platform/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, s *services, in RegisterInput) *AuthResult {
	t.Helper()
	res, err := s.auth.Register(context.Background(), in)
	require.NoError(t, err)
	return res
}

func TestRegisterAndLoginByAccount(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	email := "Doc@Example.com"
	phone := "13900000000"
	res := register(t, s, RegisterInput{Email: &email, Phone: &phone, Password: "secret123", Nickname: "doc"})
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, model.UserTypeNonMedical, res.User.UserType)

	for _, account := range []string{"13900000000", "doc@example.com", "DOC@example.com", "doc"} {
		got, err := s.auth.Login(ctx, account, "secret123")
		require.NoError(t, err, account)
		assert.Equal(t, res.User.ID, got.User.ID, account)
	}

	_, err := s.auth.Login(ctx, "doc", "wrong-pass")
	assert.True(t, errs.HasCode(err, errs.CodeUnauthorized))

	_, err = s.auth.Login(ctx, "nobody@example.com", "secret123")
	assert.True(t, errs.HasCode(err, errs.CodeUnauthorized))
}

func TestLoginFallsBackToNickname(t *testing.T) {
	s := newServices(t)
	email := "x@example.com"
	// 昵称形如手机号，但没有用户使用该手机号
	res := register(t, s, RegisterInput{Email: &email, Password: "secret123", Nickname: "13700000000"})

	got, err := s.auth.Login(context.Background(), "13700000000", "secret123")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, got.User.ID)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	email := "off@example.com"
	res := register(t, s, RegisterInput{Email: &email, Password: "secret123", Nickname: "off"})
	require.NoError(t, s.users.SoftDelete(ctx, res.User.ID))

	_, err := s.auth.Login(ctx, email, "secret123")
	require.Error(t, err)
	appErr, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, "账户已被禁用", appErr.Message)
}

func TestRegisterMedicalStaffWithDoctorProfile(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	email := "staff@example.com"
	res := register(t, s, RegisterInput{
		Email:    &email,
		Password: "secret123",
		Nickname: "staff",
		UserType: model.UserTypeMedicalStaff,
		Doctor:   &DoctorProfileInput{Title: "主治医师", Hospital: "协和", Department: "心内科"},
	})
	require.NotNil(t, res.User.DoctorProfile)
	assert.False(t, res.User.DoctorProfile.IsVerified)

	me, err := s.auth.Me(ctx, res.User.ID)
	require.NoError(t, err)
	require.NotNil(t, me.DoctorProfile)
	assert.Equal(t, "心内科", me.DoctorProfile.Department)
}

func TestVerifyMedicalUpsertsProfile(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	email := "nurse@example.com"
	res := register(t, s, RegisterInput{Email: &email, Password: "secret123", Nickname: "nurse"})

	user, err := s.auth.VerifyMedical(ctx, res.User.ID, DoctorProfileInput{Title: "护师", Hospital: "人民医院", Department: "儿科"})
	require.NoError(t, err)
	assert.Equal(t, model.UserTypeMedicalStaff, user.UserType)
	require.NotNil(t, user.DoctorProfile)

	user, err = s.auth.VerifyMedical(ctx, res.User.ID, DoctorProfileInput{Title: "主管护师", Hospital: "人民医院", Department: "儿科"})
	require.NoError(t, err)
	assert.Equal(t, "主管护师", user.DoctorProfile.Title)
	assert.False(t, user.DoctorProfile.IsVerified)
}

func TestLoginGuardBlocksAfterFailures(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))

	s := newServices(t)
	s.auth.guard = redis.NewLoginGuard(client, 2, time.Minute)
	ctx := context.Background()

	email := "guard@example.com"
	register(t, s, RegisterInput{Email: &email, Password: "secret123", Nickname: "guard"})

	for i := 0; i < 2; i++ {
		_, err := s.auth.Login(ctx, email, "bad-pass")
		assert.True(t, errs.HasCode(err, errs.CodeUnauthorized))
	}

	_, err := s.auth.Login(ctx, email, "secret123")
	assert.True(t, errs.HasCode(err, "TOO_MANY_ATTEMPTS"), "got %v", err)

	mr.FastForward(2 * time.Minute)
	_, err = s.auth.Login(ctx, email, "secret123")
	assert.NoError(t, err)
}

func TestRegisterDuplicateAccount(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	email := "twice@example.com"
	phone := "13900000011"
	register(t, s, RegisterInput{Email: &email, Phone: &phone, Password: "secret123", Nickname: "first"})

	upper := "TWICE@example.com"
	_, err := s.auth.Register(ctx, RegisterInput{Email: &upper, Password: "secret123", Nickname: "second"})
	assert.True(t, errs.HasCode(err, errs.CodeConflict), "got %v", err)

	_, err = s.auth.Register(ctx, RegisterInput{Phone: &phone, Password: "secret123", Nickname: "third"})
	assert.True(t, errs.HasCode(err, errs.CodeConflict), "got %v", err)

	var count int64
	require.NoError(t, s.db.Model(&model.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
