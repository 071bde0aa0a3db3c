package jwt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cme-platform/config"
	"cme-platform/internal/model"
	"cme-platform/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour, Issuer: "cme-test"})
}

func TestTokenRoundTrip(t *testing.T) {
	s := newTestService()
	token, err := s.GenerateToken(Payload{UserID: "u-1", Email: "a@test.local", Role: model.RoleUser})
	require.NoError(t, err)

	payload, err := s.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, Payload{UserID: "u-1", Email: "a@test.local", Role: model.RoleUser}, *payload)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	s := newTestService()
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := s.GenerateToken(Payload{UserID: "u-1", Role: model.RoleUser})
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.VerifyToken(token)
	assert.True(t, errs.HasCode(err, errs.CodeUnauthorized))
}

func TestVerifyTokenRejectsTampered(t *testing.T) {
	s := newTestService()
	token, err := s.GenerateToken(Payload{UserID: "u-1", Role: model.RoleUser})
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "other-secret", ExpireTime: time.Hour, Issuer: "cme-test"})
	_, err = other.VerifyToken(token)
	assert.True(t, errs.HasCode(err, errs.CodeUnauthorized))

	_, err = s.VerifyToken(token + "x")
	assert.True(t, errs.HasCode(err, errs.CodeUnauthorized))
}

func TestExtractToken(t *testing.T) {
	token, err := ExtractToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = ExtractToken("abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = ExtractToken("")
	assert.True(t, errs.HasCode(err, errs.CodeUnauthorized))

	_, err = ExtractToken("Bearer ")
	assert.True(t, errs.HasCode(err, errs.CodeUnauthorized))
}

func TestRequireRole(t *testing.T) {
	assert.NoError(t, RequireRole(model.RoleAdmin, model.RoleAdmin))
	assert.NoError(t, RequireRole(model.RoleDoctor, model.RoleDoctor, model.RoleAdmin))

	err := RequireRole(model.RoleUser, model.RoleAdmin)
	appErr, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
}

type stubLoader struct {
	users map[string]*model.User
}

func (l stubLoader) GetActiveUser(_ context.Context, userID string) (*model.User, error) {
	u, ok := l.users[userID]
	if !ok || u.Status != model.UserStatusActive {
		return nil, errs.Unauthorized("用户不存在或已被禁用")
	}
	return u, nil
}

func TestActiveUserRejectsInactive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newTestService()
	loader := stubLoader{users: map[string]*model.User{
		"active":   {Base: model.Base{ID: "active"}, Role: model.RoleAdmin, Status: model.UserStatusActive},
		"inactive": {Base: model.Base{ID: "inactive"}, Role: model.RoleUser, Status: model.UserStatusInactive},
	}}

	r := gin.New()
	r.GET("/me", s.ActiveUser(loader), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetCurrentUser(c).ID, "role": GetPayload(c).Role})
	})

	call := func(userID string) *httptest.ResponseRecorder {
		token, err := s.GenerateToken(Payload{UserID: userID, Role: model.RoleUser})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := call("active")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, model.RoleAdmin, body["role"], "role comes from the stored user")
	assert.Equal(t, "active", body["id"])

	assert.Equal(t, http.StatusUnauthorized, call("inactive").Code)
	assert.Equal(t, http.StatusUnauthorized, call("ghost").Code)
}

func TestOptionalAuthNeverFails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newTestService()
	r := gin.New()
	r.GET("/", s.OptionalAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	token, _ := s.GenerateToken(Payload{UserID: "u-9", Role: model.RoleUser})
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "u-9", w.Body.String())
}
