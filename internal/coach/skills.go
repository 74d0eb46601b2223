package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ATSCompatibility 简历与岗位描述的ATS兼容性分析结果
type ATSCompatibility struct {
	Score           int      `json:"score"` // 0-100
	MatchedKeywords []string `json:"matched_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
}

// SkillsAnalyzer 基于聊天模型的简历技能分析
type SkillsAnalyzer struct {
	chatModel model.BaseChatModel
}

// NewSkillsAnalyzer 创建技能分析器
func NewSkillsAnalyzer(chatModel model.BaseChatModel) (*SkillsAnalyzer, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("聊天模型不能为空")
	}
	return &SkillsAnalyzer{chatModel: chatModel}, nil
}

// buildATSPrompt 构造ATS兼容性分析提示词
func buildATSPrompt(resumeText, jobDescription string) string {
	var b strings.Builder
	b.WriteString("Analyze this resume against the job description for ATS compatibility.\n\n")
	fmt.Fprintf(&b, "Resume: %s\n", resumeText)
	fmt.Fprintf(&b, "Job Description: %s\n\n", jobDescription)
	b.WriteString(`Return a JSON object with:
- score (number): 0-100 ATS compatibility score
- matched_keywords (array): Keywords found in both resume and job description
- missing_keywords (array): Important keywords from job description missing in resume

Example:
{
    "score": 85,
    "matched_keywords": ["Python", "Machine Learning"],
    "missing_keywords": ["Docker", "Kubernetes"]
}`)
	return b.String()
}

// AnalyzeATSCompatibility 计算简历对岗位描述的ATS兼容性分数和关键词匹配
func (a *SkillsAnalyzer) AnalyzeATSCompatibility(ctx context.Context, resumeText, jobDescription string) (*ATSCompatibility, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, fmt.Errorf("简历文本不能为空")
	}
	if strings.TrimSpace(jobDescription) == "" {
		return nil, fmt.Errorf("岗位描述不能为空")
	}

	messages := []*schema.Message{
		{Role: schema.System, Content: "You are an ATS expert. Always respond with valid JSON."},
		{Role: schema.User, Content: buildATSPrompt(resumeText, jobDescription)},
	}

	resp, err := a.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("ATS兼容性分析失败: %w", err)
	}

	var result ATSCompatibility
	if err := json.Unmarshal([]byte(CleanJSON(resp.Content)), &result); err != nil {
		return nil, fmt.Errorf("解析ATS分析响应失败: %w", err)
	}
	return &result, nil
}
