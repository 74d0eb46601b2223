package handler

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"career-agent-go/internal/config"
	"career-agent-go/internal/extractor"
	"career-agent-go/internal/processor"
)

// stubPDFExtractor 返回预置文本，替代真实的PDF解析
type stubPDFExtractor struct {
	text string
}

func (s *stubPDFExtractor) ExtractFromReader(_ context.Context, _ io.Reader, _ string) (string, map[string]interface{}, error) {
	return s.text, nil, nil
}

const sampleResumeText = `Alice Johnson
alice.johnson@example.com
555-123-4567
B.Tech, graduated 2019
Skills: Python, Machine Learning, SQL
3 years of experience building data pipelines with AWS Certified colleagues`

func newStubService(text string) *processor.FieldExtractionService {
	return processor.NewFieldExtractionServiceWithComponents(&config.Config{}, processor.Components{
		PDFExtractor:   &stubPDFExtractor{text: text},
		FieldExtractor: extractor.New(),
	}, nil)
}

// TestHandleSyncExtract 同步提取返回完整的七字段映射
func TestHandleSyncExtract(t *testing.T) {
	h := NewResumeHandler(&config.Config{}, nil, newStubService(sampleResumeText))

	fields, err := h.HandleSyncExtract(context.Background(), bytes.NewReader([]byte("%PDF-1.4")), "resume.pdf")
	require.NoError(t, err)

	for _, key := range []string{
		extractor.FieldName,
		extractor.FieldEmail,
		extractor.FieldPhone,
		extractor.FieldYearOfPassing,
		extractor.FieldSkills,
		extractor.FieldExperience,
		extractor.FieldCertifications,
	} {
		assert.Contains(t, fields, key)
	}
	assert.Equal(t, "Alice Johnson", fields[extractor.FieldName])
	assert.Equal(t, "alice.johnson@example.com", fields[extractor.FieldEmail])
}

// TestHandleSyncExtractText 纯文本路径不经过PDF解析
func TestHandleSyncExtractText(t *testing.T) {
	// stub文本设为空，命中即说明走了PDF路径
	h := NewResumeHandler(&config.Config{}, nil, newStubService(""))

	fields, err := h.HandleSyncExtractText(sampleResumeText)
	require.NoError(t, err)
	assert.Equal(t, "Alice Johnson", fields[extractor.FieldName])
	assert.Equal(t, "555-123-4567", fields[extractor.FieldPhone])
}

// TestHandlePQAnalysis 提取与PQ评估串联返回
func TestHandlePQAnalysis(t *testing.T) {
	h := NewAnalysisHandler(newStubService(sampleResumeText), nil)

	resp, err := h.HandlePQAnalysis(context.Background(), bytes.NewReader([]byte("%PDF-1.4")), "resume.pdf")
	require.NoError(t, err)
	require.NotNil(t, resp.PQ)
	require.NotNil(t, resp.RiskReward)

	// 命中 Python / Machine Learning / SQL 三项技能
	assert.Equal(t, 3, resp.PQ.SkillsMatched)
	assert.Greater(t, resp.PQ.Score, 0.0)
	assert.NotEmpty(t, resp.RiskReward.RiskLevel)
	assert.Equal(t, "Alice Johnson", resp.Fields[extractor.FieldName])
}

// TestHandleATSAnalysisUnavailable 未配置分析器时返回明确错误
func TestHandleATSAnalysisUnavailable(t *testing.T) {
	h := NewAnalysisHandler(newStubService(sampleResumeText), nil)

	_, err := h.HandleATSAnalysis(context.Background(), &ATSRequest{ResumeText: "x", JobDescription: "y"})
	assert.ErrorIs(t, err, ErrAIUnavailable)
}

// TestCoachHandlerUnavailable 未配置模型时教练接口统一报错
func TestCoachHandlerUnavailable(t *testing.T) {
	h := NewCoachHandler(nil)

	_, err := h.HandleDailyMotivation(context.Background(), nil)
	assert.ErrorIs(t, err, ErrAIUnavailable)

	_, err = h.HandleChat(context.Background(), &ChatRequest{Message: "hi"})
	assert.ErrorIs(t, err, ErrAIUnavailable)

	err = h.HandleEndSession(context.Background(), "session-1")
	assert.ErrorIs(t, err, ErrAIUnavailable)
}

// TestCoachHandlerValidation 非法请求在进入教练前被拦截
func TestCoachHandlerValidation(t *testing.T) {
	h := NewCoachHandler(nil)

	_, err := h.HandleChat(context.Background(), nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAIUnavailable)

	err = h.HandleEndSession(context.Background(), "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAIUnavailable)
}

// TestGameHandlerUnavailable 未配置模型时游戏接口统一报错
func TestGameHandlerUnavailable(t *testing.T) {
	h := NewGameHandler(nil)

	_, err := h.HandleQuiz(context.Background(), &GameRequest{JobRole: "Data Engineer"})
	assert.ErrorIs(t, err, ErrAIUnavailable)

	_, err = h.HandleScenario(context.Background(), &GameRequest{JobRole: "Data Engineer"})
	assert.ErrorIs(t, err, ErrAIUnavailable)
}
