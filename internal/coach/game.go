package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// GameModes 支持的游戏模式
var GameModes = map[string]string{
	"quiz":     "Quick Quiz Challenge",
	"scenario": "Real-world Scenario Solver",
	"rapid":    "Rapid Fire Round",
}

// DifficultyLevels 支持的难度等级
var DifficultyLevels = map[string]string{
	"beginner":     "Beginner",
	"intermediate": "Intermediate",
	"advanced":     "Advanced",
	"expert":       "Expert",
}

const defaultDifficulty = "intermediate"

// QuizQuestion 单选题
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// RapidFireQuestion 快问快答题目
type RapidFireQuestion struct {
	ID        int      `json:"id"`
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Keywords  []string `json:"keywords"`
	TimeLimit int      `json:"time_limit"` // 作答秒数
}

// ScenarioChallenge 场景挑战
type ScenarioChallenge struct {
	Scenario       string   `json:"scenario"`
	Constraints    []string `json:"constraints"`
	Expectations   []string `json:"expectations"`
	EvaluationTips []string `json:"evaluation_tips"`
}

// QuizEvaluation 选择题评估结果
type QuizEvaluation struct {
	Correct     bool   `json:"correct"`
	UserAnswer  string `json:"user_answer"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation"`
}

// InterviewGame 面试游戏生成与评估
type InterviewGame struct {
	chatModel model.BaseChatModel
}

// NewInterviewGame 创建面试游戏服务
func NewInterviewGame(chatModel model.BaseChatModel) (*InterviewGame, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("聊天模型不能为空")
	}
	return &InterviewGame{chatModel: chatModel}, nil
}

// normalizeDifficulty 不认识的难度回落到intermediate
func normalizeDifficulty(difficulty string) string {
	if _, ok := DifficultyLevels[difficulty]; !ok {
		return defaultDifficulty
	}
	return difficulty
}

// buildQuizPrompt 构造选择题生成提示词
func buildQuizPrompt(jobRole, difficulty string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate 5 multiple-choice interview questions for a %s position at %s level.\n\n",
		jobRole, difficulty)
	b.WriteString(`Format as JSON array:
[{
    "question": "question text",
    "options": ["option1", "option2", "option3", "option4"],
    "correct_answer": "correct option",
    "explanation": "detailed explanation"
}]`)
	return b.String()
}

// GenerateQuizQuestions 生成一组选择题
func (g *InterviewGame) GenerateQuizQuestions(ctx context.Context, jobRole, difficulty string) ([]QuizQuestion, error) {
	if strings.TrimSpace(jobRole) == "" {
		return nil, fmt.Errorf("岗位名称不能为空")
	}
	difficulty = normalizeDifficulty(difficulty)

	messages := []*schema.Message{
		{Role: schema.System, Content: "You are an expert technical interviewer."},
		{Role: schema.User, Content: buildQuizPrompt(jobRole, difficulty)},
	}

	resp, err := g.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("生成选择题失败: %w", err)
	}

	var questions []QuizQuestion
	if err := json.Unmarshal([]byte(CleanJSON(resp.Content)), &questions); err != nil {
		return nil, fmt.Errorf("解析选择题响应失败: %w", err)
	}
	return questions, nil
}

// EvaluateQuizAnswer 本地评估选择题答案，大小写不敏感
func (g *InterviewGame) EvaluateQuizAnswer(question *QuizQuestion, userAnswer string) *QuizEvaluation {
	correct := strings.EqualFold(
		strings.TrimSpace(userAnswer),
		strings.TrimSpace(question.CorrectAnswer),
	)
	return &QuizEvaluation{
		Correct:     correct,
		UserAnswer:  userAnswer,
		Answer:      question.CorrectAnswer,
		Explanation: question.Explanation,
	}
}

// buildRapidFirePrompt 构造快问快答生成提示词，要求固定的行格式便于解析
func buildRapidFirePrompt(jobRole, difficulty string, numQuestions int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create %d rapid-fire technical questions for a %s position at %s level.\n",
		numQuestions, jobRole, difficulty)
	b.WriteString(`For each question, format exactly as follows:

Q1: [Question text]
Answer: [Correct answer]
Keywords: [Key terms or concepts that should be in the answer]
Time: [Time in seconds to answer]

Q2: [...]
[and so on...]`)
	return b.String()
}

// parseRapidFireResponse 把固定行格式的模型输出解析为结构化题目
// 缺少问题或答案的块被丢弃，时间解析失败时默认30秒
func parseRapidFireResponse(content string, limit int) []RapidFireQuestion {
	var questions []RapidFireQuestion

	for _, block := range strings.Split(content, "\n\n") {
		block = strings.TrimSpace(block)
		if !strings.HasPrefix(block, "Q") {
			continue
		}

		q := RapidFireQuestion{
			ID:        len(questions) + 1,
			TimeLimit: 30,
		}

		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "Q"):
				if _, val, ok := strings.Cut(line, ":"); ok {
					q.Question = strings.TrimSpace(val)
				}
			case strings.HasPrefix(line, "Answer:"):
				q.Answer = strings.TrimSpace(strings.TrimPrefix(line, "Answer:"))
			case strings.HasPrefix(line, "Keywords:"):
				raw := strings.TrimSpace(strings.TrimPrefix(line, "Keywords:"))
				for _, kw := range strings.Split(raw, ",") {
					if kw = strings.TrimSpace(kw); kw != "" {
						q.Keywords = append(q.Keywords, kw)
					}
				}
			case strings.HasPrefix(line, "Time:"):
				raw := strings.TrimSpace(strings.TrimPrefix(line, "Time:"))
				if fields := strings.Fields(raw); len(fields) > 0 {
					if seconds, err := strconv.Atoi(fields[0]); err == nil {
						q.TimeLimit = seconds
					}
				}
			}
		}

		if q.Question != "" && q.Answer != "" {
			questions = append(questions, q)
		}
		if len(questions) >= limit {
			break
		}
	}

	return questions
}

// GenerateRapidFire 生成快问快答题目
func (g *InterviewGame) GenerateRapidFire(ctx context.Context, jobRole, difficulty string, numQuestions int) ([]RapidFireQuestion, error) {
	if strings.TrimSpace(jobRole) == "" {
		return nil, fmt.Errorf("岗位名称不能为空")
	}
	difficulty = normalizeDifficulty(difficulty)
	if numQuestions <= 0 {
		numQuestions = 10
	}

	messages := []*schema.Message{
		{
			Role:    schema.System,
			Content: "You are a technical interviewer generating rapid-fire questions. Questions should be concise and focused on core concepts.",
		},
		{Role: schema.User, Content: buildRapidFirePrompt(jobRole, difficulty, numQuestions)},
	}

	resp, err := g.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("生成快问快答题目失败: %w", err)
	}

	return parseRapidFireResponse(resp.Content, numQuestions), nil
}

// EvaluateRapidFireAnswer 本地评估快问快答：统计答案中命中的关键词比例
func (g *InterviewGame) EvaluateRapidFireAnswer(question *RapidFireQuestion, userAnswer string) float64 {
	if len(question.Keywords) == 0 {
		if strings.EqualFold(strings.TrimSpace(userAnswer), strings.TrimSpace(question.Answer)) {
			return 1.0
		}
		return 0.0
	}

	lower := strings.ToLower(userAnswer)
	hit := 0
	for _, kw := range question.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			hit++
		}
	}
	return float64(hit) / float64(len(question.Keywords))
}

// GenerateScenarioChallenge 生成场景挑战
func (g *InterviewGame) GenerateScenarioChallenge(ctx context.Context, jobRole, difficulty string) (*ScenarioChallenge, error) {
	if strings.TrimSpace(jobRole) == "" {
		return nil, fmt.Errorf("岗位名称不能为空")
	}
	difficulty = normalizeDifficulty(difficulty)

	var b strings.Builder
	fmt.Fprintf(&b, "Create a realistic technical scenario for a %s interview at %s level.\n\n", jobRole, difficulty)
	b.WriteString(`Return the response in this JSON format:
{
    "scenario": "A detailed scenario description",
    "constraints": ["Technical or business constraints"],
    "expectations": ["What a good solution should cover"],
    "evaluation_tips": ["How to judge the answer"]
}`)

	messages := []*schema.Message{
		{Role: schema.System, Content: "You are an expert technical interviewer."},
		{Role: schema.User, Content: b.String()},
	}

	resp, err := g.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("生成场景挑战失败: %w", err)
	}

	var challenge ScenarioChallenge
	if err := json.Unmarshal([]byte(CleanJSON(resp.Content)), &challenge); err != nil {
		return nil, fmt.Errorf("解析场景挑战响应失败: %w", err)
	}
	return &challenge, nil
}
