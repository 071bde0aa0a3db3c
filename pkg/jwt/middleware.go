package jwt

import (
	"context"

	"cme-platform/internal/model"
	"cme-platform/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	// ContextUserIDKey 用户ID在gin.Context中的键名
	ContextUserIDKey = "user_id"
	// ContextPayloadKey 令牌载荷在gin.Context中的键名
	ContextPayloadKey = "jwt_payload"
	// ContextUserKey 当前用户在gin.Context中的键名
	ContextUserKey = "current_user"
)

// UserLoader 加载有效用户，用户不存在或状态非 ACTIVE 时返回 Unauthorized
type UserLoader interface {
	GetActiveUser(ctx context.Context, userID string) (*model.User, error)
}

// ActiveUser 校验令牌并加载用户
// 已停用账号持有的未过期令牌在这里被拒绝
func (s *JWTService) ActiveUser(loader UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := s.authenticate(c)
		if err != nil {
			response.Fail(c, err)
			return
		}

		user, err := loader.GetActiveUser(c.Request.Context(), payload.UserID)
		if err != nil {
			response.Fail(c, err)
			return
		}

		// 以数据库中的角色为准
		payload.Role = user.Role
		setPayload(c, payload)
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// OptionalAuth 携带令牌时解析，无令牌或令牌无效时以游客身份继续
func (s *JWTService) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			if payload, err := s.authenticate(c); err == nil {
				setPayload(c, payload)
			}
		}
		c.Next()
	}
}

func (s *JWTService) authenticate(c *gin.Context) (*Payload, error) {
	token, err := ExtractToken(c.GetHeader("Authorization"))
	if err != nil {
		return nil, err
	}
	return s.VerifyToken(token)
}

func setPayload(c *gin.Context, payload *Payload) {
	c.Set(ContextUserIDKey, payload.UserID)
	c.Set(ContextPayloadKey, payload)
}

// GetUserID 从gin.Context中获取用户ID，游客返回空串
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}

// GetPayload 从gin.Context中获取令牌载荷
func GetPayload(c *gin.Context) *Payload {
	if v, exists := c.Get(ContextPayloadKey); exists {
		if p, ok := v.(*Payload); ok {
			return p
		}
	}
	return nil
}

// GetCurrentUser 从gin.Context中获取当前用户（仅 ActiveUser 之后可用）
func GetCurrentUser(c *gin.Context) *model.User {
	if v, exists := c.Get(ContextUserKey); exists {
		if u, ok := v.(*model.User); ok {
			return u
		}
	}
	return nil
}
