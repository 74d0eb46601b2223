package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"career-agent-go/internal/config"
	"career-agent-go/internal/constants"
	"career-agent-go/internal/extractor"
	"career-agent-go/internal/storage"
)

// stubPDFExtractor 返回预置文本，替代真实的PDF解析
type stubPDFExtractor struct {
	text    string
	err     error
	lastURI string
}

func (s *stubPDFExtractor) ExtractFromReader(_ context.Context, _ io.Reader, uri string) (string, map[string]interface{}, error) {
	s.lastURI = uri
	if s.err != nil {
		return "", nil, s.err
	}
	return s.text, map[string]interface{}{"pages": 1}, nil
}

const sampleResumeText = `Alice Johnson
alice.johnson@example.com
555-123-4567
B.Tech, graduated 2019
Skills: Python, Machine Learning, SQL
3 years of experience building data pipelines
AWS Certified Solutions Architect`

func newTestService(stub *stubPDFExtractor) *FieldExtractionService {
	return NewFieldExtractionServiceWithComponents(&config.Config{}, Components{
		PDFExtractor:   stub,
		FieldExtractor: extractor.New(),
	}, nil)
}

// TestExtractFields 解析与字段提取串联执行
func TestExtractFields(t *testing.T) {
	stub := &stubPDFExtractor{text: sampleResumeText}
	service := newTestService(stub)

	record, text, err := service.ExtractFields(context.Background(), []byte("%PDF-1.4"), "resume/abc/original.pdf")
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, sampleResumeText, text)
	assert.Equal(t, "resume/abc/original.pdf", stub.lastURI)
	assert.Equal(t, "Alice Johnson", record.Name)
	assert.Equal(t, "alice.johnson@example.com", record.Email)
	assert.Equal(t, "555-123-4567", record.Phone)
	assert.Equal(t, "2019", record.YearOfPassing)
	assert.Equal(t, []string{"Python", "Machine Learning", "SQL"}, record.Skills)
	assert.Equal(t, "3 years", record.Experience)
	assert.Equal(t, []string{"AWS Certified"}, record.Certifications)
}

// TestExtractFieldsParserError 文本解析失败应向上传递
func TestExtractFieldsParserError(t *testing.T) {
	stub := &stubPDFExtractor{err: fmt.Errorf("损坏的PDF")}
	service := newTestService(stub)

	_, _, err := service.ExtractFields(context.Background(), []byte("broken"), "resume/x/original.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "提取文本失败")
}

// TestExtractFieldsMissingComponents 组件缺失时返回明确错误
func TestExtractFieldsMissingComponents(t *testing.T) {
	service := NewFieldExtractionServiceWithComponents(&config.Config{}, Components{}, nil)

	_, _, err := service.ExtractFields(context.Background(), []byte("data"), "uri")
	assert.ErrorIs(t, err, ErrExtractorNotInit)
}

// TestProcessUploadedResumeNoStorage 存储未初始化时拒绝处理
func TestProcessUploadedResumeNoStorage(t *testing.T) {
	stub := &stubPDFExtractor{text: sampleResumeText}
	service := newTestService(stub)

	err := service.ProcessUploadedResume(context.Background(), &storage.ResumeUploadedMessage{
		SubmissionUUID: "0190b7e0-0000-7000-8000-000000000000",
	})
	assert.ErrorIs(t, err, ErrStorageNotInit)
}

// TestHandleUploadedMessageBadJSON 无法解析的消息直接确认丢弃
func TestHandleUploadedMessageBadJSON(t *testing.T) {
	service := newTestService(&stubPDFExtractor{text: sampleResumeText})

	assert.True(t, service.HandleUploadedMessage([]byte("not json")))
}

// TestHandleUploadedMessageProcessFailureStillAcks 处理失败也确认消费，避免死循环重试
func TestHandleUploadedMessageProcessFailureStillAcks(t *testing.T) {
	service := newTestService(&stubPDFExtractor{text: sampleResumeText})

	payload, err := json.Marshal(&storage.ResumeUploadedMessage{
		SubmissionUUID: "0190b7e0-0000-7000-8000-000000000001",
	})
	require.NoError(t, err)

	// 存储未初始化，处理必然失败
	assert.True(t, service.HandleUploadedMessage(payload))
}

// TestBuildDBRecord 提取结果与评分组装为持久化行
func TestBuildDBRecord(t *testing.T) {
	record := &extractor.Record{
		Name:           "Alice Johnson",
		Email:          "alice.johnson@example.com",
		Phone:          "555-123-4567",
		YearOfPassing:  "2019",
		Skills:         []string{"Python", "SQL"},
		Experience:     "3 years",
		Certifications: []string{constants.NotFoundSentinel},
	}
	pq := CalculatePQ(sampleResumeText, 2)
	riskReward := CalculateRiskReward(pq.Score, 2, 3)

	dbRecord, err := buildDBRecord("0190b7e0-0000-7000-8000-000000000002", record, pq, riskReward, len(sampleResumeText))
	require.NoError(t, err)

	assert.Equal(t, "0190b7e0-0000-7000-8000-000000000002", dbRecord.SubmissionUUID)
	assert.Equal(t, pq.Score, dbRecord.PQScore)
	assert.Equal(t, riskReward.RiskLevel, dbRecord.RiskLevel)
	assert.Equal(t, len(sampleResumeText), dbRecord.TextLength)

	var skills []string
	require.NoError(t, json.Unmarshal(dbRecord.Skills, &skills))
	assert.Equal(t, []string{"Python", "SQL"}, skills)

	var breakdown map[string]interface{}
	require.NoError(t, json.Unmarshal(dbRecord.PQBreakdown, &breakdown))
	assert.Contains(t, breakdown, "pq_score")
	assert.Contains(t, breakdown, "skills_matched")
}
