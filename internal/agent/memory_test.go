package agent

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryChatMemory(t *testing.T) {
	ctx := context.Background()
	memory := NewInMemoryChatMemory()

	// 不存在的会话返回空历史
	history, err := memory.GetHistory(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, history)

	msgs := []*schema.Message{
		{Role: schema.User, Content: "帮我准备面试"},
		{Role: schema.Assistant, Content: "好的，我们从自我介绍开始"},
	}
	require.NoError(t, memory.AddMessages(ctx, "s1", msgs))

	history, err = memory.GetHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "帮我准备面试", history[0].Content)

	// 返回的是副本，修改不影响内部存储
	history[0] = &schema.Message{Role: schema.User, Content: "changed"}
	again, err := memory.GetHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "帮我准备面试", again[0].Content)

	// 清除后为空且不报错
	require.NoError(t, memory.ClearHistory(ctx, "s1"))
	history, err = memory.GetHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)

	// 清除不存在的会话静默成功
	assert.NoError(t, memory.ClearHistory(ctx, "missing"))
}

func TestNewOpenAIChatModelValidation(t *testing.T) {
	_, err := NewOpenAIChatModel("", "", "")
	assert.Error(t, err, "空API密钥应返回错误")

	m, err := NewOpenAIChatModel("sk-test", "", "")
	require.NoError(t, err)
	assert.Equal(t, defaultModelName, m.modelName)
	assert.Equal(t, defaultOpenAIAPIURL, m.apiURL)
}
