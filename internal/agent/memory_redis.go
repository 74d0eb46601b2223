package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
)

// RedisChatMemory 实现 ChatMemory 接口，使用Redis List持久化会话历史
// 多实例部署时教练会话历史通过Redis共享
type RedisChatMemory struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration // 0表示不过期
}

// NewRedisChatMemory 创建一个新的 RedisChatMemory 实例
func NewRedisChatMemory(client *redis.Client, keyPrefix string, ttl time.Duration) (*RedisChatMemory, error) {
	if client == nil {
		return nil, fmt.Errorf("redis客户端不能为空")
	}
	if keyPrefix == "" {
		keyPrefix = "coach:session:"
	}

	return &RedisChatMemory{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}, nil
}

func (m *RedisChatMemory) buildKey(sessionID string) string {
	return m.keyPrefix + sessionID
}

// GetHistory 实现 ChatMemory 接口
func (m *RedisChatMemory) GetHistory(ctx context.Context, sessionID string) ([]*schema.Message, error) {
	key := m.buildKey(sessionID)

	serialized, err := m.client.LRange(ctx, key, 0, -1).Result()
	if errors.Is(err, redis.Nil) {
		return []*schema.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取会话 %s 的历史记录失败: %w", sessionID, err)
	}

	messages := make([]*schema.Message, 0, len(serialized))
	for _, raw := range serialized {
		var msg schema.Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return nil, fmt.Errorf("反序列化会话 %s 的消息失败: %w", sessionID, err)
		}
		messages = append(messages, &msg)
	}
	return messages, nil
}

// AddMessages 实现 ChatMemory 接口
func (m *RedisChatMemory) AddMessages(ctx context.Context, sessionID string, messages []*schema.Message) error {
	if len(messages) == 0 {
		return nil
	}

	key := m.buildKey(sessionID)
	values := make([]interface{}, 0, len(messages))
	for _, msg := range messages {
		raw, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("序列化会话 %s 的消息失败: %w", sessionID, err)
		}
		values = append(values, raw)
	}

	pipe := m.client.Pipeline()
	pipe.RPush(ctx, key, values...)
	if m.ttl > 0 {
		pipe.Expire(ctx, key, m.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("写入会话 %s 的历史记录失败: %w", sessionID, err)
	}
	return nil
}

// ClearHistory 实现 ChatMemory 接口
func (m *RedisChatMemory) ClearHistory(ctx context.Context, sessionID string) error {
	if err := m.client.Del(ctx, m.buildKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("清除会话 %s 的历史记录失败: %w", sessionID, err)
	}
	return nil
}
