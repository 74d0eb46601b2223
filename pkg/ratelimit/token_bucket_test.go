package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTokenBucketAllow 初始容量内的请求应被放行，超出后被拒绝
func TestTokenBucketAllow(t *testing.T) {
	tb := NewTokenBucket(60, 2)

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	// 容量耗尽且补充速率为每秒1个，立即的第三次请求应被拒绝
	assert.False(t, tb.Allow())
}

// TestTokenBucketWaitCancelled 上下文取消时Wait应立即返回错误
func TestTokenBucketWaitCancelled(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	require.True(t, tb.Allow()) // 耗尽唯一的令牌

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := tb.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestRetryWithBackoffNonRetryable 不可重试错误应直接返回，不消耗重试次数
func TestRetryWithBackoffNonRetryable(t *testing.T) {
	tb := NewTokenBucket(600, 10)

	calls := 0
	err := tb.RetryWithBackoff(context.Background(), func() error {
		calls++
		return errors.New("invalid request payload")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls, "不可重试错误不应触发重试")
}

// TestRetryWithBackoffRetryable 可重试错误应重试直至成功
func TestRetryWithBackoffRetryable(t *testing.T) {
	tb := NewTokenBucket(600, 10).WithRetryPolicy(time.Millisecond, 3)

	calls := 0
	err := tb.RetryWithBackoff(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("429 Too Many Requests")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}
