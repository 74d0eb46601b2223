package parser

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestJoinPageTexts 验证页面文本拼接语义：跳过空页，页间不插入分隔符
func TestJoinPageTexts(t *testing.T) {
	testCases := []struct {
		name     string
		pages    []string
		expected string
	}{
		{
			name:     "普通多页",
			pages:    []string{"page one ", "page two"},
			expected: "page one page two",
		},
		{
			name:     "跳过空页且不插入分隔符",
			pages:    []string{"alpha", "", "beta"},
			expected: "alphabeta",
		},
		{
			name:     "全部为空页",
			pages:    []string{"", "", ""},
			expected: "",
		},
		{
			name:     "无页面",
			pages:    nil,
			expected: "",
		},
		{
			name:     "保持页序",
			pages:    []string{"1", "2", "3"},
			expected: "123",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, joinPageTexts(tc.pages))
		})
	}
}

// TestExtractFromFile 需要本地测试PDF文件，不存在时跳过
func TestExtractFromFile(t *testing.T) {
	testFile := "testdata/resume.pdf"
	if _, err := os.Stat(testFile); os.IsNotExist(err) {
		t.Skipf("测试文件 %s 不存在，跳过", testFile)
	}

	ctx := context.Background()
	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err)

	text, metadata, err := extractor.ExtractFromFile(ctx, testFile)
	require.NoError(t, err)
	assert.NotEmpty(t, text, "提取的文本不应为空")
	assert.NotNil(t, metadata)
	assert.Contains(t, metadata, "page_count")
}

// TestExtractFromFileNotExist 文件不存在时应返回错误而不是panic
func TestExtractFromFileNotExist(t *testing.T) {
	ctx := context.Background()
	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err)

	_, _, err = extractor.ExtractFromFile(ctx, "testdata/definitely_missing.pdf")
	assert.Error(t, err)
}
