package agent

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/schema"
)

// ChatMemory 定义了教练会话历史存储的接口
type ChatMemory interface {
	// GetHistory 获取指定会话ID的聊天历史记录
	// 会话不存在时返回空切片和nil错误
	GetHistory(ctx context.Context, sessionID string) ([]*schema.Message, error)

	// AddMessages 向指定会话ID的聊天历史记录中批量追加消息
	AddMessages(ctx context.Context, sessionID string, messages []*schema.Message) error

	// ClearHistory 清除指定会话ID的所有聊天历史记录
	// 会话不存在时静默成功
	ClearHistory(ctx context.Context, sessionID string) error
}

// InMemoryChatMemory 是 ChatMemory 接口的内存实现
// 不做持久化，用于测试和单实例部署
type InMemoryChatMemory struct {
	mu        sync.RWMutex
	histories map[string][]*schema.Message
}

// NewInMemoryChatMemory 创建一个新的 InMemoryChatMemory 实例
func NewInMemoryChatMemory() *InMemoryChatMemory {
	return &InMemoryChatMemory{
		histories: make(map[string][]*schema.Message),
	}
}

// GetHistory 实现 ChatMemory 接口
func (m *InMemoryChatMemory) GetHistory(_ context.Context, sessionID string) ([]*schema.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history, ok := m.histories[sessionID]
	if !ok {
		return []*schema.Message{}, nil
	}
	// 返回副本，防止调用方修改内部存储
	cpy := make([]*schema.Message, len(history))
	copy(cpy, history)
	return cpy, nil
}

// AddMessages 实现 ChatMemory 接口
func (m *InMemoryChatMemory) AddMessages(_ context.Context, sessionID string, messages []*schema.Message) error {
	if len(messages) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.histories[sessionID] = append(m.histories[sessionID], messages...)
	return nil
}

// ClearHistory 实现 ChatMemory 接口
func (m *InMemoryChatMemory) ClearHistory(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.histories, sessionID)
	return nil
}
