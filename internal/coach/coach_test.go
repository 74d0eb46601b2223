package coach

import (
	"context"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatModel 返回预置内容的模型桩，并记录收到的消息
type fakeChatModel struct {
	response string
	err      error
	lastMsgs []*schema.Message
	calls    int
}

func (f *fakeChatModel) Generate(_ context.Context, messages []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.calls++
	f.lastMsgs = messages
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{Role: schema.Assistant, Content: f.response}, nil
}

func (f *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("not implemented")
}

func TestCleanJSON(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"无围栏", `{"a":1}`, `{"a":1}`},
		{"json围栏", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"裸围栏", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"前后空白", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CleanJSON(tc.input))
		})
	}
}

func TestDailyMotivation(t *testing.T) {
	fake := &fakeChatModel{response: "```json\n" + `{
		"message": "Keep pushing",
		"focus_area": "Deep work",
		"quick_tip": "Timebox your morning",
		"quote": "Stay hungry",
		"action_item": "Review one PR"
	}` + "\n```"}

	c, err := NewCareerCoach(fake, nil)
	require.NoError(t, err)

	profile := &UserProfile{
		JobRole:          "Backend Engineer",
		Goals:            "become tech lead",
		Achievements:     "shipped v2",
		ImprovementAreas: "public speaking",
	}

	motivation, err := c.DailyMotivation(context.Background(), profile)
	require.NoError(t, err)
	assert.Equal(t, "Keep pushing", motivation.Message)
	assert.Equal(t, "Deep work", motivation.FocusArea)

	// 提示词应包含用户画像的关键信息
	require.Len(t, fake.lastMsgs, 2)
	assert.Contains(t, fake.lastMsgs[1].Content, "Backend Engineer")
	assert.Contains(t, fake.lastMsgs[1].Content, "become tech lead")
}

func TestGenerateProgressFeedback(t *testing.T) {
	fake := &fakeChatModel{response: `{
		"overall_assessment": "Solid momentum",
		"key_observations": [
			{"observation": "Consistent study habit", "impact": "Faster ramp-up", "recommendation": "Keep the cadence"}
		],
		"strengths": [
			{"strength": "Self-discipline", "how_to_leverage": "Take on a stretch project"}
		],
		"improvement_areas": [
			{"area": "System design", "why_important": "Needed for senior scope", "how_to_improve": "Weekly design kata"}
		],
		"next_steps": ["Draft a design doc"],
		"motivation": "You are closer than you think"
	}`}

	c, err := NewCareerCoach(fake, nil)
	require.NoError(t, err)

	profile := &UserProfile{JobRole: "Data Engineer"}
	data := &ProgressData{
		RecentProgress: "finished SQL course",
		CompletedTasks: []string{"course", "mini project"},
		Challenges:     "time management",
		TimeSpent:      12,
	}

	feedback, err := c.GenerateProgressFeedback(context.Background(), profile, data)
	require.NoError(t, err)
	assert.Equal(t, "Solid momentum", feedback.OverallAssessment)
	require.Len(t, feedback.KeyObservations, 1)
	assert.Equal(t, "Consistent study habit", feedback.KeyObservations[0].Observation)
	assert.Equal(t, []string{"Draft a design doc"}, feedback.NextSteps)

	// 提示词包含画像与进展数据
	require.Len(t, fake.lastMsgs, 2)
	assert.Contains(t, fake.lastMsgs[1].Content, "Data Engineer")
	assert.Contains(t, fake.lastMsgs[1].Content, "finished SQL course")
	assert.Contains(t, fake.lastMsgs[1].Content, "12 hours")

	// 画像或数据缺失时直接报错
	_, err = c.GenerateProgressFeedback(context.Background(), nil, data)
	assert.Error(t, err)
	_, err = c.GenerateProgressFeedback(context.Background(), profile, nil)
	assert.Error(t, err)
}

func TestDailyMotivationNilProfile(t *testing.T) {
	c, err := NewCareerCoach(&fakeChatModel{}, nil)
	require.NoError(t, err)

	_, err = c.DailyMotivation(context.Background(), nil)
	assert.Error(t, err)
}

func TestChatKeepsHistory(t *testing.T) {
	fake := &fakeChatModel{response: "first reply"}
	c, err := NewCareerCoach(fake, nil)
	require.NoError(t, err)

	ctx := context.Background()
	reply, err := c.Chat(ctx, "session-1", "hello coach")
	require.NoError(t, err)
	assert.Equal(t, "first reply", reply)

	// 第二轮对话应携带第一轮的历史：system + user + assistant + user
	_, err = c.Chat(ctx, "session-1", "next question")
	require.NoError(t, err)
	require.Len(t, fake.lastMsgs, 4)
	assert.Equal(t, "hello coach", fake.lastMsgs[1].Content)
	assert.Equal(t, "first reply", fake.lastMsgs[2].Content)
	assert.Equal(t, "next question", fake.lastMsgs[3].Content)

	// 结束会话后历史被清除
	require.NoError(t, c.EndSession(ctx, "session-1"))
	_, err = c.Chat(ctx, "session-1", "fresh start")
	require.NoError(t, err)
	assert.Len(t, fake.lastMsgs, 2)
}

func TestChatValidation(t *testing.T) {
	c, err := NewCareerCoach(&fakeChatModel{}, nil)
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), "", "hi")
	assert.Error(t, err)
	_, err = c.Chat(context.Background(), "s1", "   ")
	assert.Error(t, err)
}

func TestGenerateQuizQuestions(t *testing.T) {
	fake := &fakeChatModel{response: `[
		{
			"question": "What does ACID stand for?",
			"options": ["a", "b", "c", "d"],
			"correct_answer": "a",
			"explanation": "basics"
		}
	]`}

	g, err := NewInterviewGame(fake)
	require.NoError(t, err)

	questions, err := g.GenerateQuizQuestions(context.Background(), "DBA", "advanced")
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "What does ACID stand for?", questions[0].Question)
	assert.Contains(t, fake.lastMsgs[1].Content, "advanced level")
}

func TestGenerateQuizQuestionsUnknownDifficulty(t *testing.T) {
	fake := &fakeChatModel{response: `[]`}
	g, err := NewInterviewGame(fake)
	require.NoError(t, err)

	_, err = g.GenerateQuizQuestions(context.Background(), "DBA", "nightmare")
	require.NoError(t, err)
	// 不认识的难度回落到intermediate
	assert.Contains(t, fake.lastMsgs[1].Content, "intermediate level")
}

func TestEvaluateQuizAnswer(t *testing.T) {
	g, err := NewInterviewGame(&fakeChatModel{})
	require.NoError(t, err)

	q := &QuizQuestion{CorrectAnswer: "Atomicity", Explanation: "see docs"}

	eval := g.EvaluateQuizAnswer(q, " atomicity ")
	assert.True(t, eval.Correct, "大小写和空白差异不应影响判定")
	assert.Equal(t, "see docs", eval.Explanation)

	eval = g.EvaluateQuizAnswer(q, "Durability")
	assert.False(t, eval.Correct)
}

func TestParseRapidFireResponse(t *testing.T) {
	content := `Q1: What is a goroutine?
Answer: A lightweight thread managed by the Go runtime
Keywords: goroutine, runtime, lightweight
Time: 20 seconds

Q2: What does GC stand for?
Answer: Garbage collection
Keywords: garbage, collection
Time: not-a-number

This block should be ignored.

Q3: Incomplete question without answer`

	questions := parseRapidFireResponse(content, 10)
	require.Len(t, questions, 2, "缺少答案的块和非题目块应被丢弃")

	assert.Equal(t, 1, questions[0].ID)
	assert.Equal(t, "What is a goroutine?", questions[0].Question)
	assert.Equal(t, []string{"goroutine", "runtime", "lightweight"}, questions[0].Keywords)
	assert.Equal(t, 20, questions[0].TimeLimit)

	// 时间解析失败时默认30秒
	assert.Equal(t, 30, questions[1].TimeLimit)
}

func TestParseRapidFireResponseLimit(t *testing.T) {
	content := "Q1: a?\nAnswer: x\n\nQ2: b?\nAnswer: y\n\nQ3: c?\nAnswer: z"
	questions := parseRapidFireResponse(content, 2)
	assert.Len(t, questions, 2)
}

func TestEvaluateRapidFireAnswer(t *testing.T) {
	g, err := NewInterviewGame(&fakeChatModel{})
	require.NoError(t, err)

	q := &RapidFireQuestion{
		Answer:   "Garbage collection",
		Keywords: []string{"garbage", "collection"},
	}

	assert.Equal(t, 1.0, g.EvaluateRapidFireAnswer(q, "automatic garbage collection"))
	assert.Equal(t, 0.5, g.EvaluateRapidFireAnswer(q, "collecting stuff? collection maybe"))
	assert.Equal(t, 0.0, g.EvaluateRapidFireAnswer(q, "no idea"))

	// 无关键词时精确比较答案
	exact := &RapidFireQuestion{Answer: "mutex"}
	assert.Equal(t, 1.0, g.EvaluateRapidFireAnswer(exact, "Mutex"))
	assert.Equal(t, 0.0, g.EvaluateRapidFireAnswer(exact, "semaphore"))
}

func TestAnalyzeATSCompatibility(t *testing.T) {
	fake := &fakeChatModel{response: `{
		"score": 85,
		"matched_keywords": ["Python", "Machine Learning"],
		"missing_keywords": ["Docker"]
	}`}

	a, err := NewSkillsAnalyzer(fake)
	require.NoError(t, err)

	result, err := a.AnalyzeATSCompatibility(context.Background(), "resume text", "job description")
	require.NoError(t, err)
	assert.Equal(t, 85, result.Score)
	assert.Equal(t, []string{"Python", "Machine Learning"}, result.MatchedKeywords)

	_, err = a.AnalyzeATSCompatibility(context.Background(), "", "jd")
	assert.Error(t, err)
}
