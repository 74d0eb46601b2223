package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"career-agent-go/internal/agent"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const coachSystemPrompt = "You are an experienced career coach who provides personalized, actionable advice."

// UserProfile 教练功能的用户画像输入
type UserProfile struct {
	JobRole          string   `json:"job_role"`
	Goals            string   `json:"goals"`
	Achievements     string   `json:"achievements"`
	ImprovementAreas string   `json:"improvement_areas"`
	SkillLevel       string   `json:"skill_level"`
	AvailableTime    int      `json:"available_time"` // 每周可用小时数
	Skills           []string `json:"skills"`
}

// Motivation 每日激励消息
type Motivation struct {
	Message    string `json:"message"`
	FocusArea  string `json:"focus_area"`
	QuickTip   string `json:"quick_tip"`
	Quote      string `json:"quote"`
	ActionItem string `json:"action_item"`
}

// DailyTask 周挑战中的单日任务
type DailyTask struct {
	Day          string `json:"day"`
	Task         string `json:"task"`
	TimeRequired string `json:"time_required"`
	Resources    string `json:"resources"`
}

// WeeklyChallenge 每周技能挑战
type WeeklyChallenge struct {
	ChallengeName   string      `json:"challenge_name"`
	Description     string      `json:"description"`
	DailyTasks      []DailyTask `json:"daily_tasks"`
	SuccessCriteria string      `json:"success_criteria"`
	BonusChallenge  string      `json:"bonus_challenge"`
	ExpectedOutcome string      `json:"expected_outcome"`
}

// ProgressData 阶段性进展反馈的输入数据
type ProgressData struct {
	RecentProgress string   `json:"recent_progress"`
	CompletedTasks []string `json:"completed_tasks"`
	Challenges     string   `json:"challenges"`
	TimeSpent      int      `json:"time_spent"` // 投入小时数
}

// Observation 进展反馈中的单条观察
type Observation struct {
	Observation    string `json:"observation"`
	Impact         string `json:"impact"`
	Recommendation string `json:"recommendation"`
}

// Strength 识别出的优势及利用方式
type Strength struct {
	Strength      string `json:"strength"`
	HowToLeverage string `json:"how_to_leverage"`
}

// ImprovementArea 待改进领域
type ImprovementArea struct {
	Area         string `json:"area"`
	WhyImportant string `json:"why_important"`
	HowToImprove string `json:"how_to_improve"`
}

// ProgressFeedback 阶段性进展反馈
type ProgressFeedback struct {
	OverallAssessment string            `json:"overall_assessment"`
	KeyObservations   []Observation     `json:"key_observations"`
	Strengths         []Strength        `json:"strengths"`
	ImprovementAreas  []ImprovementArea `json:"improvement_areas"`
	NextSteps         []string          `json:"next_steps"`
	Motivation        string            `json:"motivation"`
}

// CareerCoach 职业教练，基于聊天模型生成个性化建议
type CareerCoach struct {
	chatModel model.BaseChatModel
	memory    agent.ChatMemory
}

// NewCareerCoach 创建职业教练
// memory为nil时使用内存实现，会话历史不持久化
func NewCareerCoach(chatModel model.BaseChatModel, memory agent.ChatMemory) (*CareerCoach, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("聊天模型不能为空")
	}
	if memory == nil {
		memory = agent.NewInMemoryChatMemory()
	}
	return &CareerCoach{
		chatModel: chatModel,
		memory:    memory,
	}, nil
}

// buildMotivationPrompt 构造每日激励的提示词
func buildMotivationPrompt(profile *UserProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a motivational message for a %s professional.\n", profile.JobRole)
	fmt.Fprintf(&b, "Consider their goals: %s\n", profile.Goals)
	fmt.Fprintf(&b, "Recent achievements: %s\n", profile.Achievements)
	fmt.Fprintf(&b, "Areas of improvement: %s\n\n", profile.ImprovementAreas)
	b.WriteString(`Return the response in this JSON format:
{
    "message": "The motivational message",
    "focus_area": "Today's focus area",
    "quick_tip": "A practical tip for today",
    "quote": "An inspiring quote",
    "action_item": "One specific action to take today"
}`)
	return b.String()
}

// buildWeeklyChallengePrompt 构造每周挑战的提示词
func buildWeeklyChallengePrompt(profile *UserProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a weekly skill challenge for a %s professional.\n", profile.JobRole)
	fmt.Fprintf(&b, "Current skill level: %s\n", profile.SkillLevel)
	fmt.Fprintf(&b, "Available time: %d hours per week\n", profile.AvailableTime)
	fmt.Fprintf(&b, "Goals: %s\n", profile.Goals)
	fmt.Fprintf(&b, "Current skills: %s\n\n", strings.Join(profile.Skills, ", "))
	b.WriteString(`Return the response in this JSON format:
{
    "challenge_name": "Name of the challenge",
    "description": "Description of the challenge",
    "daily_tasks": [
        {
            "day": "Day of the week",
            "task": "Task description",
            "time_required": "Estimated time",
            "resources": "Helpful resources"
        }
    ],
    "success_criteria": "How to measure success",
    "bonus_challenge": "Additional optional challenge",
    "expected_outcome": "What to expect after completion"
}`)
	return b.String()
}

// buildProgressFeedbackPrompt 构造进展反馈的提示词
func buildProgressFeedbackPrompt(profile *UserProfile, data *ProgressData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Provide progress feedback for a %s professional.\n\n", profile.JobRole)
	b.WriteString("Progress Data:\n")
	fmt.Fprintf(&b, "Recent progress: %s\n", data.RecentProgress)
	fmt.Fprintf(&b, "Completed tasks: %s\n", strings.Join(data.CompletedTasks, ", "))
	fmt.Fprintf(&b, "Challenges faced: %s\n", data.Challenges)
	fmt.Fprintf(&b, "Time spent: %d hours\n\n", data.TimeSpent)
	b.WriteString(`Return the response in this JSON format:
{
    "overall_assessment": "Overall progress assessment",
    "key_observations": [
        {
            "observation": "Key observation",
            "impact": "Impact on progress",
            "recommendation": "Recommendation"
        }
    ],
    "strengths": [
        {
            "strength": "Identified strength",
            "how_to_leverage": "How to leverage this strength"
        }
    ],
    "improvement_areas": [
        {
            "area": "Area for improvement",
            "why_important": "Why this matters",
            "how_to_improve": "How to improve"
        }
    ],
    "next_steps": ["List of next steps"],
    "motivation": "Motivational message"
}`)
	return b.String()
}

// generateJSON 调用模型并把清理后的JSON响应解码到out
func (c *CareerCoach) generateJSON(ctx context.Context, systemPrompt, userPrompt string, out interface{}) error {
	messages := []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: userPrompt},
	}

	resp, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return fmt.Errorf("调用聊天模型失败: %w", err)
	}

	cleaned := CleanJSON(resp.Content)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("解析模型JSON响应失败: %w", err)
	}
	return nil
}

// DailyMotivation 生成个性化的每日激励消息
func (c *CareerCoach) DailyMotivation(ctx context.Context, profile *UserProfile) (*Motivation, error) {
	if profile == nil {
		return nil, fmt.Errorf("用户画像不能为空")
	}

	var motivation Motivation
	if err := c.generateJSON(ctx, coachSystemPrompt, buildMotivationPrompt(profile), &motivation); err != nil {
		return nil, err
	}
	return &motivation, nil
}

// GenerateWeeklyChallenge 生成个性化的每周技能挑战
func (c *CareerCoach) GenerateWeeklyChallenge(ctx context.Context, profile *UserProfile) (*WeeklyChallenge, error) {
	if profile == nil {
		return nil, fmt.Errorf("用户画像不能为空")
	}

	systemPrompt := "You are an experienced career coach who creates engaging learning challenges."
	var challenge WeeklyChallenge
	if err := c.generateJSON(ctx, systemPrompt, buildWeeklyChallengePrompt(profile), &challenge); err != nil {
		return nil, err
	}
	return &challenge, nil
}

// GenerateProgressFeedback 基于阶段性进展数据生成反馈
func (c *CareerCoach) GenerateProgressFeedback(ctx context.Context, profile *UserProfile, data *ProgressData) (*ProgressFeedback, error) {
	if profile == nil {
		return nil, fmt.Errorf("用户画像不能为空")
	}
	if data == nil {
		return nil, fmt.Errorf("进展数据不能为空")
	}

	systemPrompt := "You are an experienced career coach who provides constructive feedback."
	var feedback ProgressFeedback
	if err := c.generateJSON(ctx, systemPrompt, buildProgressFeedbackPrompt(profile, data), &feedback); err != nil {
		return nil, err
	}
	return &feedback, nil
}

// Chat 带会话历史的教练对话
// 历史记录经ChatMemory持久化，同一sessionID的多轮对话共享上下文
func (c *CareerCoach) Chat(ctx context.Context, sessionID, userMessage string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("会话ID不能为空")
	}
	if strings.TrimSpace(userMessage) == "" {
		return "", fmt.Errorf("消息内容不能为空")
	}

	history, err := c.memory.GetHistory(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("读取会话历史失败: %w", err)
	}

	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, &schema.Message{Role: schema.System, Content: coachSystemPrompt})
	messages = append(messages, history...)
	userMsg := &schema.Message{Role: schema.User, Content: userMessage}
	messages = append(messages, userMsg)

	resp, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("调用聊天模型失败: %w", err)
	}

	if err := c.memory.AddMessages(ctx, sessionID, []*schema.Message{userMsg, resp}); err != nil {
		return "", fmt.Errorf("保存会话历史失败: %w", err)
	}

	return resp.Content, nil
}

// EndSession 结束会话并清除历史
func (c *CareerCoach) EndSession(ctx context.Context, sessionID string) error {
	return c.memory.ClearHistory(ctx, sessionID)
}
