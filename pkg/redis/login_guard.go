package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginFailureKeyPrefix 登录失败计数key前缀
const LoginFailureKeyPrefix = "cme:login:fail:"

// LoginGuard 登录失败计数，窗口内失败次数达到上限后拒绝登录
// 客户端为空时不做任何限制
type LoginGuard struct {
	client      *Client
	maxFailures int
	window      time.Duration
}

// NewLoginGuard 创建登录失败计数器
func NewLoginGuard(client *Client, maxFailures int, window time.Duration) *LoginGuard {
	return &LoginGuard{client: client, maxFailures: maxFailures, window: window}
}

func (g *LoginGuard) enabled() bool {
	return g != nil && g.client != nil && g.client.rdb != nil && g.maxFailures > 0
}

func (g *LoginGuard) key(account string) string {
	return fmt.Sprintf("%s%s", LoginFailureKeyPrefix, strings.ToLower(strings.TrimSpace(account)))
}

// Blocked 账号当前是否被锁定
func (g *LoginGuard) Blocked(ctx context.Context, account string) (bool, error) {
	if !g.enabled() {
		return false, nil
	}
	count, err := g.client.rdb.Get(ctx, g.key(account)).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("读取登录失败计数失败: %w", err)
	}
	return count >= g.maxFailures, nil
}

// RecordFailure 记录一次失败，首次失败时开始计时窗口
func (g *LoginGuard) RecordFailure(ctx context.Context, account string) error {
	if !g.enabled() {
		return nil
	}
	key := g.key(account)

	// 使用Redis INCR命令原子性增加计数
	count, err := g.client.rdb.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("增加登录失败计数失败: %w", err)
	}
	if count == 1 {
		if err := g.client.rdb.Expire(ctx, key, g.window).Err(); err != nil {
			return fmt.Errorf("设置登录失败计数TTL失败: %w", err)
		}
	}
	return nil
}

// Reset 登录成功后清除计数
func (g *LoginGuard) Reset(ctx context.Context, account string) error {
	if !g.enabled() {
		return nil
	}
	return g.client.rdb.Del(ctx, g.key(account)).Err()
}
