package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CategoryTreeKey 分类树缓存key
const CategoryTreeKey = "cme:category:tree"

// JSONCache 以JSON形式缓存单个值
// 客户端为空时 Get 总是未命中、Set 与 Invalidate 为空操作
type JSONCache struct {
	client *Client
	key    string
	ttl    time.Duration
}

// NewJSONCache 创建缓存
func NewJSONCache(client *Client, key string, ttl time.Duration) *JSONCache {
	return &JSONCache{client: client, key: key, ttl: ttl}
}

func (c *JSONCache) enabled() bool {
	return c != nil && c.client != nil && c.client.rdb != nil
}

// Get 读取缓存，命中时反序列化到 dest 并返回 true
func (c *JSONCache) Get(ctx context.Context, dest interface{}) (bool, error) {
	if !c.enabled() {
		return false, nil
	}
	data, err := c.client.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("读取缓存失败: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("反序列化缓存失败: %w", err)
	}
	return true, nil
}

// Set 写入缓存
func (c *JSONCache) Set(ctx context.Context, value interface{}) error {
	if !c.enabled() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化缓存失败: %w", err)
	}
	return c.client.rdb.Set(ctx, c.key, data, c.ttl).Err()
}

// Invalidate 删除缓存
func (c *JSONCache) Invalidate(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.client.rdb.Del(ctx, c.key).Err()
}
