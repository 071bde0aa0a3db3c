package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cme-platform/config"
	"cme-platform/pkg/errs"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// JWTService 提供 JWT 生成与校验能力
// 使用对称密钥 HS256，载荷为 {userId, email, role}
type JWTService struct {
	secretKey   []byte        // 对称密钥
	issuer      string        // 签发者
	expireAfter time.Duration // 过期时间
	now         func() time.Time
}

// Payload 令牌载荷
type Payload struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// CustomClaims 自定义声明
type CustomClaims struct {
	Payload
	jwtv5.RegisteredClaims
}

// NewJWTService 创建 JWT 服务
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secretKey:   []byte(cfg.Secret),
		issuer:      cfg.Issuer,
		expireAfter: cfg.ExpireTime,
		now:         time.Now,
	}
}

// GenerateToken 生成访问令牌
func (s *JWTService) GenerateToken(payload Payload) (string, error) {
	if payload.UserID == "" {
		return "", errors.New("userID is required")
	}

	now := s.now()
	claims := &CustomClaims{
		Payload: payload,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   payload.UserID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(s.expireAfter)),
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token failed: %w", err)
	}
	return signed, nil
}

// VerifyToken 校验并解析令牌
// 签名错误、过期或载荷不完整都返回 Unauthorized
func (s *JWTService) VerifyToken(tokenString string) (*Payload, error) {
	if tokenString == "" {
		return nil, errs.Unauthorized("Token不能为空")
	}

	claims := &CustomClaims{}
	parsedToken, err := jwtv5.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwtv5.Token) (interface{}, error) {
			if token.Method != jwtv5.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secretKey, nil
		},
		jwtv5.WithIssuer(s.issuer),
		jwtv5.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, errs.Unauthorized("Token已过期")
		}
		return nil, errs.Unauthorized("Token无效")
	}
	if !parsedToken.Valid {
		return nil, errs.Unauthorized("Token无效")
	}
	if claims.UserID == "" || claims.Role == "" {
		return nil, errs.Unauthorized("Token载荷无效")
	}

	payload := claims.Payload
	return &payload, nil
}

// ExtractToken 从 Authorization 请求头提取令牌
// 支持 "Bearer <token>" 与直接传入令牌两种形式
func ExtractToken(authHeader string) (string, error) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", errs.Unauthorized("未提供认证Token")
	}
	if strings.HasPrefix(authHeader, "Bearer ") {
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			return "", errs.Unauthorized("未提供认证Token")
		}
		return token, nil
	}
	return authHeader, nil
}

// RequireRole 角色不在允许列表内时返回 Unauthorized
func RequireRole(role string, allowed ...string) error {
	for _, r := range allowed {
		if r == role {
			return nil
		}
	}
	return errs.Unauthorized("权限不足")
}
