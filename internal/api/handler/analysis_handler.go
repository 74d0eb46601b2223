package handler

import (
	"context"
	"fmt"
	"io"

	"career-agent-go/internal/coach"
	"career-agent-go/internal/constants"
	"career-agent-go/internal/processor"
)

// AnalysisHandler 候选人潜力与技能分析入口
type AnalysisHandler struct {
	service        *processor.FieldExtractionService
	skillsAnalyzer *coach.SkillsAnalyzer
}

// NewAnalysisHandler 创建分析处理器
// skillsAnalyzer为nil时ATS分析不可用
func NewAnalysisHandler(service *processor.FieldExtractionService, skillsAnalyzer *coach.SkillsAnalyzer) *AnalysisHandler {
	return &AnalysisHandler{
		service:        service,
		skillsAnalyzer: skillsAnalyzer,
	}
}

// PQAnalysisResponse PQ评估响应
type PQAnalysisResponse struct {
	Fields     map[string]interface{} `json:"fields"`
	PQ         *processor.PQResult    `json:"pq"`
	RiskReward *processor.RiskReward  `json:"risk_reward"`
}

// HandlePQAnalysis 对上传的简历做字段提取和PQ评估
func (h *AnalysisHandler) HandlePQAnalysis(ctx context.Context, reader io.Reader, filename string) (*PQAnalysisResponse, error) {
	fileBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("读取上传文件内容失败: %w", err)
	}

	record, text, err := h.service.ExtractFields(ctx, fileBytes, filename)
	if err != nil {
		return nil, err
	}

	skillsMatched := 0
	for _, skill := range record.Skills {
		if skill != constants.NotFoundSentinel {
			skillsMatched++
		}
	}

	pq := processor.CalculatePQ(text, skillsMatched)
	riskReward := processor.CalculateRiskReward(pq.Score, skillsMatched, processor.ExperienceYears(record.Experience))

	return &PQAnalysisResponse{
		Fields:     record.Fields(),
		PQ:         pq,
		RiskReward: riskReward,
	}, nil
}

// ATSRequest ATS兼容性分析请求
type ATSRequest struct {
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
}

// HandleATSAnalysis 分析简历与岗位描述的ATS兼容性
func (h *AnalysisHandler) HandleATSAnalysis(ctx context.Context, req *ATSRequest) (*coach.ATSCompatibility, error) {
	if h.skillsAnalyzer == nil {
		return nil, ErrAIUnavailable
	}
	return h.skillsAnalyzer.AnalyzeATSCompatibility(ctx, req.ResumeText, req.JobDescription)
}
